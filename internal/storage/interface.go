package storage

import "github.com/julianstephens/habitchain/internal/models"

// Provider is the persistence boundary of the core. Every backend stores the
// same collections: settings, accounts, session, habits and habit completions.
//
// Lookups that find nothing return an error wrapping errors.ErrNotFound.
// Failed writes return an error wrapping errors.ErrPersistence.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	GetAllSettings() (map[string]string, error)

	// Accounts
	// AddAccount fails with errors.ErrDuplicateEmail if the email is taken.
	AddAccount(models.Account) error
	GetAccountByEmail(email string) (models.Account, error)
	GetAccount(id string) (models.Account, error)
	GetAllAccounts() ([]models.Account, error)

	// Session
	GetSession() (models.Session, error)
	SaveSession(models.Session) error
	DeleteSession() error

	// Habits
	// AddHabit is idempotent on habit.ID: re-adding an existing id is a no-op.
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitsByOwner(ownerID string) ([]models.Habit, error)
	GetAllHabits() ([]models.Habit, error)

	// Completions
	// CompleteHabit atomically records the completion for (habit.ID, completion.Day)
	// and persists the updated habit. It fails with errors.ErrAlreadyCompletedToday
	// if that day is already recorded, leaving the stored habit untouched.
	CompleteHabit(habit models.Habit, completion models.Completion) error
	GetCompletions(habitID string, startDay, endDay string) ([]models.Completion, error)
	GetAllCompletions() ([]models.Completion, error)

	// Utils
	GetConfigPath() string
}
