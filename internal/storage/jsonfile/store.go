// Package jsonfile is a single-file JSON storage backend. The whole state is
// rewritten on every mutation, which suits small single-user data sets.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
)

const stateVersion = 1

type state struct {
	Version     int                       `json:"version"`
	Settings    map[string]string         `json:"settings"`
	Accounts    map[string]models.Account `json:"accounts"` // keyed by email
	Session     *models.Session           `json:"session,omitempty"`
	Habits      []models.Habit            `json:"habits"`
	Completions []models.Completion       `json:"habit_completions"`
}

func newState() *state {
	return &state{
		Version:     stateVersion,
		Settings:    map[string]string{constants.SettingTimezone: constants.DefaultTimezone},
		Accounts:    make(map[string]models.Account),
		Habits:      []models.Habit{},
		Completions: []models.Completion{},
	}
}

func (st *state) normalize() {
	if st.Settings == nil {
		st.Settings = make(map[string]string)
	}
	if st.Accounts == nil {
		st.Accounts = make(map[string]models.Account)
	}
	if st.Habits == nil {
		st.Habits = []models.Habit{}
	}
	if st.Completions == nil {
		st.Completions = []models.Completion{}
	}
}

type Store struct {
	path  string
	mu    sync.Mutex
	state *state
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Init creates the state file, keeping existing data if the file is readable
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	st, err := s.read()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if st == nil {
		st = newState()
	}
	if _, ok := st.Settings[constants.SettingTimezone]; !ok {
		st.Settings[constants.SettingTimezone] = constants.DefaultTimezone
	}
	s.state = st
	return s.save()
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.ErrStorageNotInitialized
		}
		return err
	}
	s.state = st
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// read parses the state file. A corrupt file is treated as empty state.
func (s *Store) read() (*state, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	st := &state{}
	if err := json.Unmarshal(data, st); err != nil {
		logger.Warn("Storage file is corrupt, starting from empty state", "path", s.path, "error", err)
		return newState(), nil
	}
	if st.Version > stateVersion {
		return nil, fmt.Errorf("storage file version (%d) is newer than supported version (%d) - please upgrade the application", st.Version, stateVersion)
	}
	st.Version = stateVersion
	st.normalize()
	return st, nil
}

// save writes the state to a temp file and renames it over the original
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to serialize storage: %w", err))
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return apperrors.Persistence(fmt.Errorf("failed to write storage: %w", err))
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return apperrors.Persistence(fmt.Errorf("failed to write storage: %w", err))
	}
	return nil
}

// mutate applies fn to the loaded state and saves it. fn must not modify the
// state before returning an error. A failed save reloads the state from disk.
func (s *Store) mutate(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return apperrors.ErrStorageNotInitialized
	}
	if err := fn(s.state); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		s.rollback()
		return err
	}
	return nil
}

func (s *Store) rollback() {
	st, err := s.read()
	if err != nil {
		logger.Error("Failed to reload storage after a failed write", "path", s.path, "error", err)
		st = newState()
	}
	s.state = st
}

// view runs fn against the loaded state without saving
func (s *Store) view(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return apperrors.ErrStorageNotInitialized
	}
	return fn(s.state)
}
