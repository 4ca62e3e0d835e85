package habits

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

func TestComplete_FirstCompletion(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	habit := models.Habit{ID: "h1", Streak: 4, Points: 40}

	got, err := Complete(&habit, now, false)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.Streak != 5 || got.Points != 50 || !got.TodayCompleted {
		t.Errorf("unexpected result: streak=%d points=%d today=%v", got.Streak, got.Points, got.TodayCompleted)
	}
	if got.LastCompletedAt == nil || !got.LastCompletedAt.Equal(now) {
		t.Errorf("expected LastCompletedAt %v, got %v", now, got.LastCompletedAt)
	}
	if habit.Streak != 4 || habit.LastCompletedAt != nil {
		t.Error("input habit must not be modified")
	}
}

func TestComplete_DoneToday(t *testing.T) {
	last := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	habit := models.Habit{ID: "h1", Streak: 3, Points: 30, LastCompletedAt: &last}

	got, err := Complete(&habit, last.Add(2*time.Hour), true)
	if !errors.Is(err, apperrors.ErrAlreadyCompletedToday) {
		t.Fatalf("expected ErrAlreadyCompletedToday, got %v", err)
	}
	if got.Streak != 3 || got.Points != 30 || !got.LastCompletedAt.Equal(last) {
		t.Errorf("habit must be unchanged, got streak=%d points=%d", got.Streak, got.Points)
	}
	if !got.TodayCompleted {
		t.Error("expected TodayCompleted on a repeat")
	}
}

func TestComplete_MissedDaysDoNotReset(t *testing.T) {
	last := time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC)
	habit := models.Habit{ID: "h1", Streak: 3, Points: 30, LastCompletedAt: &last}

	got, err := Complete(&habit, time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC), false)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.Streak != 4 || got.Points != 40 {
		t.Errorf("expected streak 4 / points 40, got %d / %d", got.Streak, got.Points)
	}
}

func TestComplete_NilHabit(t *testing.T) {
	if _, err := Complete(nil, time.Now(), false); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for nil habit, got %v", err)
	}
	if _, err := Complete(&models.Habit{}, time.Now(), false); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty habit, got %v", err)
	}
}
