package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

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

	err := s.retry(func() error {
		_, err := s.db.Exec(`
			INSERT INTO habits (`+habitColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (id) DO NOTHING`,
			habit.ID, habit.OwnerID, habit.Name, habit.Description, habit.Category,
			string(habit.Frequency), habit.ReminderTime, habit.RequirePhoto, habit.IsPublic,
			habit.Streak, habit.TodayCompleted, habit.WeekProgress, habit.ChainMembers, habit.Points,
			habit.CreatedAt.UTC(), nullTime(habit.LastCompletedAt))
		return err
	})
	return apperrors.Persistence(err)
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	if err := s.ready(); err != nil {
		return models.Habit{}, err
	}

	var h models.Habit
	err := s.retry(func() error {
		var err error
		h, err = scanHabit(s.db.QueryRow("SELECT "+habitColumns+" FROM habits WHERE id = $1", id))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabitsByOwner(ownerID string) ([]models.Habit, error) {
	return s.queryHabits("SELECT "+habitColumns+" FROM habits WHERE owner_id = $1 ORDER BY seq", ownerID)
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	return s.queryHabits("SELECT " + habitColumns + " FROM habits ORDER BY seq")
}

func (s *Store) queryHabits(query string, args ...any) ([]models.Habit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var habits []models.Habit
	err := s.retry(func() error {
		rows, err := s.db.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		habits = []models.Habit{}
		for rows.Next() {
			h, err := scanHabit(rows)
			if err != nil {
				return err
			}
			habits = append(habits, h)
		}
		return rows.Err()
	})
	return habits, err
}

// CompleteHabit records the completion and the habit update in one transaction.
// A retry that finds its own completion already committed is treated as success.
func (s *Store) CompleteHabit(habit models.Habit, completion models.Completion) error {
	if err := s.ready(); err != nil {
		return err
	}

	err := s.retry(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		result, err := tx.Exec(`
			INSERT INTO habit_completions (id, habit_id, day, completed_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (habit_id, day) DO NOTHING`,
			completion.ID, habit.ID, completion.Day, completion.CompletedAt.UTC())
		if err != nil {
			return err
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			var existingID string
			err := tx.QueryRow(
				"SELECT id FROM habit_completions WHERE habit_id = $1 AND day = $2",
				habit.ID, completion.Day).Scan(&existingID)
			if err != nil {
				return err
			}
			if existingID == completion.ID {
				return nil
			}
			return apperrors.ErrAlreadyCompletedToday
		}

		result, err = tx.Exec(`
			UPDATE habits
			SET streak = $1, points = $2, today_completed = $3, last_completed_at = $4
			WHERE id = $5`,
			habit.Streak, habit.Points, habit.TodayCompleted, nullTime(habit.LastCompletedAt), habit.ID)
		if err != nil {
			return err
		}
		updated, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if updated == 0 {
			return fmt.Errorf("habit %s: %w", habit.ID, apperrors.ErrNotFound)
		}
		return tx.Commit()
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrAlreadyCompletedToday), errors.Is(err, apperrors.ErrNotFound):
		return err
	default:
		return apperrors.Persistence(err)
	}
}

func (s *Store) GetCompletions(habitID string, startDay, endDay string) ([]models.Completion, error) {
	return s.queryCompletions(`
		SELECT id, habit_id, day, completed_at
		FROM habit_completions
		WHERE habit_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day DESC`, habitID, startDay, endDay)
}

func (s *Store) GetAllCompletions() ([]models.Completion, error) {
	return s.queryCompletions(`
		SELECT id, habit_id, day, completed_at
		FROM habit_completions ORDER BY habit_id, day`)
}

func (s *Store) queryCompletions(query string, args ...any) ([]models.Completion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var completions []models.Completion
	err := s.retry(func() error {
		rows, err := s.db.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		completions = []models.Completion{}
		for rows.Next() {
			var c models.Completion
			if err := rows.Scan(&c.ID, &c.HabitID, &c.Day, &c.CompletedAt); err != nil {
				return err
			}
			c.CompletedAt = c.CompletedAt.UTC()
			completions = append(completions, c)
		}
		return rows.Err()
	})
	return completions, err
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var frequency string
	var lastCompletedAt sql.NullTime

	err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &h.Category, &frequency,
		&h.ReminderTime, &h.RequirePhoto, &h.IsPublic, &h.Streak, &h.TodayCompleted,
		&h.WeekProgress, &h.ChainMembers, &h.Points, &h.CreatedAt, &lastCompletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.Frequency(frequency)
	h.CreatedAt = h.CreatedAt.UTC()
	if lastCompletedAt.Valid {
		t := lastCompletedAt.Time.UTC()
		h.LastCompletedAt = &t
	}
	return h, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
