package session

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

// memRepo is an in-memory Repository
type memRepo struct {
	sess    *models.Session
	getErr  error
	saveErr error
}

func (r *memRepo) GetSession() (models.Session, error) {
	if r.getErr != nil {
		return models.Session{}, r.getErr
	}
	if r.sess == nil {
		return models.Session{}, apperrors.ErrNotFound
	}
	return *r.sess, nil
}

func (r *memRepo) SaveSession(s models.Session) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.sess = &s
	return nil
}

func (r *memRepo) DeleteSession() error {
	r.sess = nil
	return nil
}

type memAccounts map[string]models.Profile

func (a memAccounts) Get(id string) (models.Profile, error) {
	p, ok := a[id]
	if !ok {
		return models.Profile{}, apperrors.ErrNotFound
	}
	return p, nil
}

var ada = models.Profile{ID: "a1", Name: "Ada", Email: "ada@example.com"}

func TestStartAndEnd(t *testing.T) {
	repo := &memRepo{}
	m := NewManager(repo, nil)
	m.Clock = func() time.Time { return time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC) }

	if m.State() != Anonymous || m.Current() != nil {
		t.Fatal("new manager should be anonymous")
	}
	if _, err := m.UserID(); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}

	if err := m.Start(ada); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if m.State() != Authenticated || !m.Authenticated() {
		t.Error("expected authenticated state after Start")
	}
	if repo.sess == nil || repo.sess.ID != "a1" || repo.sess.StartedAt.IsZero() {
		t.Errorf("expected persisted session, got %+v", repo.sess)
	}
	if id, _ := m.UserID(); id != "a1" {
		t.Errorf("UserID() = %q", id)
	}

	if err := m.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if m.State() != Anonymous || repo.sess != nil {
		t.Error("expected anonymous state and no persisted session after End")
	}
}

func TestStart_PersistenceFailure(t *testing.T) {
	m := NewManager(&memRepo{saveErr: errors.New("disk full")}, nil)
	if err := m.Start(ada); !errors.Is(err, apperrors.ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
	if m.Authenticated() {
		t.Error("failed Start must not authenticate")
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name     string
		repo     *memRepo
		accounts AccountLookup
		wantID   string
	}{
		{"absent", &memRepo{}, nil, ""},
		{"present", &memRepo{sess: &models.Session{Profile: ada}}, nil, "a1"},
		{"corrupt", &memRepo{getErr: errors.New("failed to parse started_at")}, nil, ""},
		{"empty id", &memRepo{sess: &models.Session{}}, nil, ""},
		{"known account", &memRepo{sess: &models.Session{Profile: ada}}, memAccounts{"a1": ada}, "a1"},
		{"orphaned", &memRepo{sess: &models.Session{Profile: ada}}, memAccounts{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.repo, tt.accounts)
			profile, err := m.Restore()
			if err != nil {
				t.Fatalf("Restore must not fail, got %v", err)
			}
			if tt.wantID == "" {
				if profile != nil || m.Authenticated() {
					t.Errorf("expected anonymous, got %+v", profile)
				}
				return
			}
			if profile == nil || profile.ID != tt.wantID {
				t.Fatalf("expected profile %s, got %+v", tt.wantID, profile)
			}
			if !m.Authenticated() {
				t.Error("expected authenticated after restore")
			}
		})
	}
}

func TestRestore_OrphanedSessionIsDeleted(t *testing.T) {
	repo := &memRepo{sess: &models.Session{Profile: ada}}
	m := NewManager(repo, memAccounts{})
	if _, err := m.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if repo.sess != nil {
		t.Error("expected orphaned session to be removed")
	}
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	m := NewManager(&memRepo{}, nil)
	if err := m.Start(ada); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	p := m.Current()
	p.Name = "Changed"
	if m.Current().Name != "Ada" {
		t.Error("Current must not expose internal state")
	}
}
