package habits

import (
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

// Complete applies the daily completion transition to habit.
//
// doneToday reports whether a completion is already recorded for the
// calendar day of now. If so the habit is returned unchanged together with
// ErrAlreadyCompletedToday. Otherwise streak and points grow and
// LastCompletedAt moves to now. A missed day never resets the streak.
func Complete(habit *models.Habit, now time.Time, doneToday bool) (models.Habit, error) {
	if habit == nil || habit.ID == "" {
		return models.Habit{}, apperrors.ErrNotFound
	}

	h := *habit
	if doneToday {
		h.TodayCompleted = true
		return h, apperrors.ErrAlreadyCompletedToday
	}

	completedAt := now
	h.TodayCompleted = true
	h.Streak += constants.StreakPerCompletion
	h.Points += constants.PointsPerCompletion
	h.LastCompletedAt = &completedAt
	return h, nil
}
