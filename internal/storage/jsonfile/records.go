package jsonfile

import (
	"fmt"
	"sort"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.view(func(st *state) error {
		v, ok := st.Settings[key]
		if !ok {
			return fmt.Errorf("setting %q: %w", key, apperrors.ErrNotFound)
		}
		value = v
		return nil
	})
	return value, err
}

func (s *Store) SetSetting(key, value string) error {
	return s.mutate(func(st *state) error {
		st.Settings[key] = value
		return nil
	})
}

func (s *Store) GetAllSettings() (map[string]string, error) {
	settings := make(map[string]string)
	err := s.view(func(st *state) error {
		for k, v := range st.Settings {
			settings[k] = v
		}
		return nil
	})
	return settings, err
}

func (s *Store) AddAccount(account models.Account) error {
	return s.mutate(func(st *state) error {
		if _, exists := st.Accounts[account.Email]; exists {
			return apperrors.ErrDuplicateEmail
		}
		st.Accounts[account.Email] = account
		return nil
	})
}

func (s *Store) GetAccountByEmail(email string) (models.Account, error) {
	var account models.Account
	err := s.view(func(st *state) error {
		a, ok := st.Accounts[email]
		if !ok {
			return fmt.Errorf("account: %w", apperrors.ErrNotFound)
		}
		account = a
		return nil
	})
	return account, err
}

func (s *Store) GetAccount(id string) (models.Account, error) {
	var account models.Account
	err := s.view(func(st *state) error {
		for _, a := range st.Accounts {
			if a.ID == id {
				account = a
				return nil
			}
		}
		return fmt.Errorf("account: %w", apperrors.ErrNotFound)
	})
	return account, err
}

func (s *Store) GetAllAccounts() ([]models.Account, error) {
	var accounts []models.Account
	err := s.view(func(st *state) error {
		for _, a := range st.Accounts {
			accounts = append(accounts, a)
		}
		return nil
	})
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, err
}

func (s *Store) GetSession() (models.Session, error) {
	var sess models.Session
	err := s.view(func(st *state) error {
		if st.Session == nil {
			return fmt.Errorf("session: %w", apperrors.ErrNotFound)
		}
		sess = *st.Session
		return nil
	})
	return sess, err
}

func (s *Store) SaveSession(sess models.Session) error {
	return s.mutate(func(st *state) error {
		st.Session = &sess
		return nil
	})
}

func (s *Store) DeleteSession() error {
	return s.mutate(func(st *state) error {
		st.Session = nil
		return nil
	})
}

func (s *Store) AddHabit(habit models.Habit) error {
	return s.mutate(func(st *state) error {
		for _, h := range st.Habits {
			if h.ID == habit.ID {
				return nil
			}
		}
		st.Habits = append(st.Habits, habit)
		return nil
	})
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	var habit models.Habit
	err := s.view(func(st *state) error {
		i := findHabit(st, id)
		if i < 0 {
			return fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
		}
		habit = st.Habits[i]
		return nil
	})
	return habit, err
}

func (s *Store) GetHabitsByOwner(ownerID string) ([]models.Habit, error) {
	habits := []models.Habit{}
	err := s.view(func(st *state) error {
		for _, h := range st.Habits {
			if h.OwnerID == ownerID {
				habits = append(habits, h)
			}
		}
		return nil
	})
	return habits, err
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	var habits []models.Habit
	err := s.view(func(st *state) error {
		habits = append([]models.Habit{}, st.Habits...)
		return nil
	})
	return habits, err
}

func (s *Store) CompleteHabit(habit models.Habit, completion models.Completion) error {
	return s.mutate(func(st *state) error {
		for _, c := range st.Completions {
			if c.HabitID == habit.ID && c.Day == completion.Day {
				return apperrors.ErrAlreadyCompletedToday
			}
		}
		i := findHabit(st, habit.ID)
		if i < 0 {
			return fmt.Errorf("habit %s: %w", habit.ID, apperrors.ErrNotFound)
		}

		stored := st.Habits[i]
		stored.Streak = habit.Streak
		stored.Points = habit.Points
		stored.TodayCompleted = habit.TodayCompleted
		stored.LastCompletedAt = habit.LastCompletedAt
		st.Habits[i] = stored

		completion.HabitID = habit.ID
		st.Completions = append(st.Completions, completion)
		return nil
	})
}

func (s *Store) GetCompletions(habitID string, startDay, endDay string) ([]models.Completion, error) {
	completions := []models.Completion{}
	err := s.view(func(st *state) error {
		for _, c := range st.Completions {
			if c.HabitID == habitID && c.Day >= startDay && c.Day <= endDay {
				completions = append(completions, c)
			}
		}
		return nil
	})
	sort.Slice(completions, func(i, j int) bool {
		return completions[i].Day > completions[j].Day
	})
	return completions, err
}

func (s *Store) GetAllCompletions() ([]models.Completion, error) {
	var completions []models.Completion
	err := s.view(func(st *state) error {
		completions = append([]models.Completion{}, st.Completions...)
		return nil
	})
	sort.SliceStable(completions, func(i, j int) bool {
		if completions[i].HabitID != completions[j].HabitID {
			return completions[i].HabitID < completions[j].HabitID
		}
		return completions[i].Day < completions[j].Day
	})
	return completions, err
}

func findHabit(st *state, id string) int {
	for i, h := range st.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}
