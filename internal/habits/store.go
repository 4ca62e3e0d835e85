// Package habits owns habit records, their completions and the completion
// transition.
package habits

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/utils"
)

// Repository is the slice of storage.Provider the habit store needs
type Repository interface {
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitsByOwner(ownerID string) ([]models.Habit, error)
	CompleteHabit(habit models.Habit, completion models.Completion) error
	GetCompletions(habitID string, startDay, endDay string) ([]models.Completion, error)
}

// Summary aggregates a set of habits for the dashboard
type Summary struct {
	TotalStreak    int
	TotalPoints    int
	CompletedToday int
	Pending        int
	Total          int
}

type Store struct {
	mu    sync.Mutex
	repo  Repository
	loc   *time.Location
	Clock func() time.Time
}

// NewStore returns a habit store comparing days in loc. A nil loc means time.Local.
func NewStore(repo Repository, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		repo:  repo,
		loc:   loc,
		Clock: time.Now,
	}
}

// Location returns the timezone calendar days are taken in
func (s *Store) Location() *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

// SetLocation moves day boundaries to loc. A nil loc means time.Local.
func (s *Store) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	s.mu.Lock()
	s.loc = loc
	s.mu.Unlock()
}

// ListByOwner returns the owner's habits in creation order
func (s *Store) ListByOwner(ownerID string) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits, err := s.repo.GetHabitsByOwner(ownerID)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}

	today := utils.CalendarDate(s.Clock(), s.loc)
	for i := range habits {
		done, err := s.completedOn(habits[i].ID, today)
		if err != nil {
			return nil, err
		}
		habits[i].TodayCompleted = done
	}
	return habits, nil
}

func (s *Store) Get(habitID string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(habitID, utils.CalendarDate(s.Clock(), s.loc))
}

func (s *Store) get(habitID, today string) (models.Habit, error) {
	h, err := s.repo.GetHabit(habitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Habit{}, err
		}
		return models.Habit{}, apperrors.Persistence(err)
	}
	done, err := s.completedOn(h.ID, today)
	if err != nil {
		return models.Habit{}, err
	}
	h.TodayCompleted = done
	return h, nil
}

// completedOn reports whether a completion row exists for habitID on day.
// That row is the only record of "done today".
func (s *Store) completedOn(habitID, day string) (bool, error) {
	rows, err := s.repo.GetCompletions(habitID, day, day)
	if err != nil {
		return false, apperrors.Persistence(err)
	}
	return len(rows) > 0, nil
}

// Create validates fields and stores a new habit for ownerID
func (s *Store) Create(ownerID string, fields models.HabitFields) (models.Habit, error) {
	if ownerID == "" {
		return models.Habit{}, apperrors.ErrNotAuthenticated
	}
	fields, err := ValidateFields(fields)
	if err != nil {
		return models.Habit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	habit := models.Habit{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Name:         fields.Name,
		Description:  fields.Description,
		Category:     fields.Category,
		Frequency:    fields.Frequency,
		ReminderTime: fields.ReminderTime,
		RequirePhoto: fields.RequirePhoto,
		IsPublic:     fields.IsPublic,
		WeekProgress: constants.DefaultWeekProgress,
		ChainMembers: constants.DefaultChainMembers,
		CreatedAt:    s.Clock().UTC(),
	}
	if err := s.repo.AddHabit(habit); err != nil {
		return models.Habit{}, apperrors.Persistence(err)
	}

	logger.Info("Habit created", "id", habit.ID, "owner", ownerID)
	return habit, nil
}

// ApplyCompletion completes habitID for today. ErrAlreadyCompletedToday is
// returned together with the unchanged habit.
func (s *Store) ApplyCompletion(habitID string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Clock()
	today := utils.CalendarDate(now, s.loc)

	current, err := s.get(habitID, today)
	if err != nil {
		return models.Habit{}, err
	}

	updated, err := Complete(&current, now, current.TodayCompleted)
	if err != nil {
		return updated, err
	}

	completion := models.Completion{
		ID:          uuid.New().String(),
		HabitID:     habitID,
		Day:         today,
		CompletedAt: now.UTC(),
	}
	if err := s.repo.CompleteHabit(updated, completion); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyCompletedToday) {
			// Recorded for this calendar day by an earlier write
			current.TodayCompleted = true
			return current, err
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Habit{}, err
		}
		return models.Habit{}, apperrors.Persistence(err)
	}

	logger.Debug("Habit completed", "id", habitID, "streak", updated.Streak, "day", completion.Day)
	return updated, nil
}

// History returns the completions of habitID over the last days calendar
// days including today, newest first
func (s *Store) History(habitID string, days int) ([]models.Completion, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be at least 1, got %d", days)
	}
	if _, err := s.Get(habitID); err != nil {
		return nil, err
	}

	now, loc := s.Clock(), s.Location()
	start := utils.DaysAgo(now, days-1, loc)
	end := utils.CalendarDate(now, loc)

	completions, err := s.repo.GetCompletions(habitID, start, end)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return completions, nil
}

// Summarize totals streaks, points and today's progress
func Summarize(habits []models.Habit) Summary {
	sum := Summary{Total: len(habits)}
	for _, h := range habits {
		sum.TotalStreak += h.Streak
		sum.TotalPoints += h.Points
		if h.TodayCompleted {
			sum.CompletedToday++
		}
	}
	sum.Pending = sum.Total - sum.CompletedToday
	return sum
}

// ValidateFields checks user-supplied habit fields and fills defaults
func ValidateFields(fields models.HabitFields) (models.HabitFields, error) {
	fields.Name = strings.TrimSpace(fields.Name)
	fields.Description = strings.TrimSpace(fields.Description)
	fields.Category = strings.ToLower(strings.TrimSpace(fields.Category))
	fields.ReminderTime = strings.TrimSpace(fields.ReminderTime)
	fields.Frequency = constants.Frequency(strings.ToLower(strings.TrimSpace(string(fields.Frequency))))

	if fields.Name == "" {
		return fields, fmt.Errorf("%w: name is required", apperrors.ErrInvalidHabit)
	}

	if fields.Frequency == "" {
		fields.Frequency = constants.FrequencyDaily
	}
	if !constants.ValidFrequency(fields.Frequency) {
		return fields, fmt.Errorf("%w: unknown frequency %q", apperrors.ErrInvalidHabit, fields.Frequency)
	}

	if fields.Category != "" && !constants.ValidCategory(fields.Category) {
		return fields, fmt.Errorf("%w: unknown category %q (expected one of %s)",
			apperrors.ErrInvalidHabit, fields.Category, strings.Join(constants.Categories, ", "))
	}

	if fields.ReminderTime != "" && !utils.ValidateTimeFormat(fields.ReminderTime) {
		return fields, fmt.Errorf("%w: reminder time must be HH:MM, got %q", apperrors.ErrInvalidHabit, fields.ReminderTime)
	}

	return fields, nil
}
