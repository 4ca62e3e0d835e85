package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

const habitColumns = `id, owner_id, name, description, category, frequency, reminder_time,
	require_photo, is_public, streak, today_completed, week_progress, chain_members, points,
	created_at, last_completed_at`

func (s *Store) AddHabit(habit models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}

	var lastCompletedAt sql.NullString
	if habit.LastCompletedAt != nil {
		lastCompletedAt = sql.NullString{String: formatTime(*habit.LastCompletedAt), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		habit.ID, habit.OwnerID, habit.Name, habit.Description, habit.Category,
		string(habit.Frequency), habit.ReminderTime, habit.RequirePhoto, habit.IsPublic,
		habit.Streak, habit.TodayCompleted, habit.WeekProgress, habit.ChainMembers, habit.Points,
		formatTime(habit.CreatedAt), lastCompletedAt)

	return apperrors.Persistence(err)
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	if err := s.ready(); err != nil {
		return models.Habit{}, err
	}

	row := s.db.QueryRow("SELECT "+habitColumns+" FROM habits WHERE id = ?", id)
	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabitsByOwner(ownerID string) ([]models.Habit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT "+habitColumns+" FROM habits WHERE owner_id = ? ORDER BY seq", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHabits(rows)
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT " + habitColumns + " FROM habits ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHabits(rows)
}

func (s *Store) CompleteHabit(habit models.Habit, completion models.Completion) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.Persistence(err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO habit_completions (id, habit_id, day, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO NOTHING`,
		completion.ID, habit.ID, completion.Day, formatTime(completion.CompletedAt))
	if err != nil {
		return apperrors.Persistence(err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return apperrors.Persistence(err)
	}
	if inserted == 0 {
		return apperrors.ErrAlreadyCompletedToday
	}

	var lastCompletedAt sql.NullString
	if habit.LastCompletedAt != nil {
		lastCompletedAt = sql.NullString{String: formatTime(*habit.LastCompletedAt), Valid: true}
	}

	result, err = tx.Exec(`
		UPDATE habits
		SET streak = ?, points = ?, today_completed = ?, last_completed_at = ?
		WHERE id = ?`,
		habit.Streak, habit.Points, habit.TodayCompleted, lastCompletedAt, habit.ID)
	if err != nil {
		return apperrors.Persistence(err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return apperrors.Persistence(err)
	}
	if updated == 0 {
		return fmt.Errorf("habit %s: %w", habit.ID, apperrors.ErrNotFound)
	}

	return apperrors.Persistence(tx.Commit())
}

func (s *Store) GetCompletions(habitID string, startDay, endDay string) ([]models.Completion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, habit_id, day, completed_at
		FROM habit_completions
		WHERE habit_id = ? AND day >= ? AND day <= ?
		ORDER BY day DESC`, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCompletions(rows)
}

func (s *Store) GetAllCompletions() ([]models.Completion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, habit_id, day, completed_at
		FROM habit_completions ORDER BY habit_id, day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCompletions(rows)
}

func scanHabits(rows *sql.Rows) ([]models.Habit, error) {
	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var frequency, createdAt string
	var lastCompletedAt sql.NullString

	err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &h.Category, &frequency,
		&h.ReminderTime, &h.RequirePhoto, &h.IsPublic, &h.Streak, &h.TodayCompleted,
		&h.WeekProgress, &h.ChainMembers, &h.Points, &createdAt, &lastCompletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.Frequency(frequency)
	h.CreatedAt, err = parseTime("created_at", createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if lastCompletedAt.Valid {
		t, err := parseTime("last_completed_at", lastCompletedAt.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
		}
		h.LastCompletedAt = &t
	}

	return h, nil
}

func scanCompletions(rows *sql.Rows) ([]models.Completion, error) {
	completions := []models.Completion{}
	for rows.Next() {
		var c models.Completion
		var completedAt string
		if err := rows.Scan(&c.ID, &c.HabitID, &c.Day, &completedAt); err != nil {
			return nil, err
		}
		t, err := parseTime("completed_at", completedAt)
		if err != nil {
			return nil, fmt.Errorf("completion %s: %w", c.ID, err)
		}
		c.CompletedAt = t
		completions = append(completions, c)
	}
	return completions, rows.Err()
}
