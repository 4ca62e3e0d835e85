// Package app is the operation set the CLI and TUI call into. It wires the
// account store, session manager and habit store over one storage.Provider.
package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/habitchain/internal/accounts"
	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/habits"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/session"
	"github.com/julianstephens/habitchain/internal/storage"
	"github.com/julianstephens/habitchain/internal/utils"
)

type Options struct {
	// BcryptCost is the password hashing cost. Zero means the default.
	BcryptCost int
	// Clock overrides time.Now for every component
	Clock func() time.Time
}

type App struct {
	store    storage.Provider
	Accounts *accounts.Store
	Session  *session.Manager
	Habits   *habits.Store
}

// New builds the core over a loaded store. The timezone setting decides
// where calendar days begin.
func New(store storage.Provider, opts Options) (*App, error) {
	loc, err := loadLocation(store)
	if err != nil {
		return nil, err
	}

	acct := accounts.NewStore(store, opts.BcryptCost)
	a := &App{
		store:    store,
		Accounts: acct,
		Session:  session.NewManager(store, acct),
		Habits:   habits.NewStore(store, loc),
	}
	if opts.Clock != nil {
		a.Accounts.Clock = opts.Clock
		a.Session.Clock = opts.Clock
		a.Habits.Clock = opts.Clock
	}
	return a, nil
}

func loadLocation(store storage.Provider) (*time.Location, error) {
	tz, err := store.GetSetting(constants.SettingTimezone)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		tz = constants.DefaultTimezone
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		logger.Warn("Invalid timezone setting, using local time", "timezone", tz, "error", err)
		return time.Local, nil
	}
	return loc, nil
}

// Store returns the underlying storage provider
func (a *App) Store() storage.Provider {
	return a.store
}

// Signup creates an account and logs it in
func (a *App) Signup(name, email, password string) (models.Profile, error) {
	profile, err := a.Accounts.Create(name, email, password)
	if err != nil {
		return models.Profile{}, err
	}
	if err := a.Session.Start(profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// Login verifies the credentials and starts a session
func (a *App) Login(email, password string) (models.Profile, error) {
	profile, err := a.Accounts.Verify(email, password)
	if err != nil {
		return models.Profile{}, err
	}
	if err := a.Session.Start(profile); err != nil {
		return models.Profile{}, err
	}
	logger.Info("Logged in", "id", profile.ID)
	return profile, nil
}

func (a *App) Logout() error {
	return a.Session.End()
}

// Restore resumes the persisted session, returning nil when there is none
func (a *App) Restore() (*models.Profile, error) {
	return a.Session.Restore()
}

func (a *App) CurrentUser() *models.Profile {
	return a.Session.Current()
}

// RequireUser returns the active profile or ErrNotAuthenticated
func (a *App) RequireUser() (models.Profile, error) {
	p := a.Session.Current()
	if p == nil {
		return models.Profile{}, apperrors.ErrNotAuthenticated
	}
	return *p, nil
}

func (a *App) ListHabits(ownerID string) ([]models.Habit, error) {
	return a.Habits.ListByOwner(ownerID)
}

func (a *App) CreateHabit(ownerID string, fields models.HabitFields) (models.Habit, error) {
	return a.Habits.Create(ownerID, fields)
}

// CompleteHabit marks habitID done for today. With an active session only the
// owner's habits are visible.
func (a *App) CompleteHabit(habitID string) (models.Habit, error) {
	if err := a.checkOwner(habitID); err != nil {
		return models.Habit{}, err
	}
	return a.Habits.ApplyCompletion(habitID)
}

// History returns habitID's completions over the last days calendar days
func (a *App) History(habitID string, days int) ([]models.Completion, error) {
	if err := a.checkOwner(habitID); err != nil {
		return nil, err
	}
	return a.Habits.History(habitID, days)
}

// Summary aggregates the owner's habits for the dashboard
func (a *App) Summary(ownerID string) (habits.Summary, error) {
	list, err := a.Habits.ListByOwner(ownerID)
	if err != nil {
		return habits.Summary{}, err
	}
	return habits.Summarize(list), nil
}

func (a *App) checkOwner(habitID string) error {
	user := a.Session.Current()
	if user == nil {
		return nil
	}
	h, err := a.Habits.Get(habitID)
	if err != nil {
		return err
	}
	if h.OwnerID != user.ID {
		return fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	return nil
}

// OnboardingComplete reports whether the intro screens were dismissed
func (a *App) OnboardingComplete() bool {
	v, err := a.store.GetSetting(constants.SettingOnboardingComplete)
	if err != nil {
		return false
	}
	done, _ := strconv.ParseBool(v)
	return done
}

func (a *App) CompleteOnboarding() error {
	return a.store.SetSetting(constants.SettingOnboardingComplete, "true")
}

// SetTimezone validates and stores tz, then uses it for day boundaries
func (a *App) SetTimezone(tz string) error {
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return err
	}
	if err := a.store.SetSetting(constants.SettingTimezone, tz); err != nil {
		return err
	}
	a.Habits.SetLocation(loc)
	return nil
}
