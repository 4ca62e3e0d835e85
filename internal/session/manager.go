// Package session tracks the currently authenticated identity.
package session

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
)

// State is the authentication state of the running client
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Repository persists the singleton session record
type Repository interface {
	GetSession() (models.Session, error)
	SaveSession(models.Session) error
	DeleteSession() error
}

// AccountLookup confirms a restored session still points at a real account
type AccountLookup interface {
	Get(id string) (models.Profile, error)
}

type Manager struct {
	mu       sync.RWMutex
	repo     Repository
	accounts AccountLookup
	current  *models.Profile
	Clock    func() time.Time
}

// NewManager returns an anonymous session manager. accounts may be nil.
func NewManager(repo Repository, accounts AccountLookup) *Manager {
	return &Manager{
		repo:     repo,
		accounts: accounts,
		Clock:    time.Now,
	}
}

// Restore loads the persisted session. Missing, unreadable or orphaned
// state leaves the manager anonymous and is not an error.
func (m *Manager) Restore() (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil

	sess, err := m.repo.GetSession()
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Ignoring unreadable session", "error", err)
		}
		return nil, nil
	}
	if sess.ID == "" {
		logger.Warn("Ignoring session without an account id")
		return nil, nil
	}

	if m.accounts != nil {
		if _, err := m.accounts.Get(sess.ID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Warn("Dropping session for unknown account", "id", sess.ID)
				if err := m.repo.DeleteSession(); err != nil {
					logger.Warn("Failed to delete orphaned session", "error", err)
				}
			} else {
				logger.Warn("Could not validate session", "error", err)
			}
			return nil, nil
		}
	}

	profile := sess.Profile
	m.current = &profile
	logger.Debug("Session restored", "id", profile.ID)
	return m.snapshot(), nil
}

// Start makes profile the active identity and persists it
func (m *Manager) Start(profile models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := models.Session{
		Profile:   profile,
		StartedAt: m.Clock().UTC(),
	}
	if err := m.repo.SaveSession(sess); err != nil {
		return apperrors.Persistence(err)
	}
	m.current = &profile
	return nil
}

// End clears the active identity and its persisted state
func (m *Manager) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.DeleteSession(); err != nil {
		return apperrors.Persistence(err)
	}
	m.current = nil
	return nil
}

// Current returns a copy of the active profile, or nil when anonymous
func (m *Manager) Current() *models.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

func (m *Manager) snapshot() *models.Profile {
	if m.current == nil {
		return nil
	}
	p := *m.current
	return &p
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

func (m *Manager) State() State {
	if m.Authenticated() {
		return Authenticated
	}
	return Anonymous
}

// UserID returns the active account id, or ErrNotAuthenticated
func (m *Manager) UserID() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", apperrors.ErrNotAuthenticated
	}
	return m.current.ID, nil
}
