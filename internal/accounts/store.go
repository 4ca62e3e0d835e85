// Package accounts owns user identity records and the credential check.
package accounts

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/utils"
)

// Repository is the slice of storage.Provider the account store needs
type Repository interface {
	AddAccount(models.Account) error
	GetAccountByEmail(email string) (models.Account, error)
	GetAccount(id string) (models.Account, error)
}

type Store struct {
	mu    sync.Mutex
	repo  Repository
	cost  int
	Clock func() time.Time
}

// NewStore returns an account store hashing passwords with the given bcrypt
// cost. A zero cost means constants.DefaultBcryptCost.
func NewStore(repo Repository, cost int) *Store {
	if cost == 0 {
		cost = constants.DefaultBcryptCost
	}
	return &Store{
		repo:  repo,
		cost:  cost,
		Clock: time.Now,
	}
}

// Create registers a new account. Emails are matched exactly after trimming
// surrounding whitespace, so case is significant.
func (s *Store) Create(name, email, password string) (models.Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return models.Profile{}, fmt.Errorf("%w: name, email and password are required", apperrors.ErrInvalidAccount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetAccountByEmail(email); err == nil {
		return models.Profile{}, apperrors.ErrDuplicateEmail
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.Profile{}, apperrors.Persistence(err)
	}

	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.Profile{}, fmt.Errorf("%w: password is too long", apperrors.ErrInvalidAccount)
		}
		return models.Profile{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.Account{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.Clock().UTC(),
	}
	if err := s.repo.AddAccount(account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return models.Profile{}, err
		}
		return models.Profile{}, apperrors.Persistence(err)
	}

	logger.Info("Account created", "id", account.ID)
	return account.Profile(), nil
}

// Verify checks a password against the stored hash for email. The email is
// trimmed like in Create.
func (s *Store) Verify(email, password string) (models.Profile, error) {
	account, err := s.repo.GetAccountByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Profile{}, apperrors.ErrInvalidCredentials
		}
		return models.Profile{}, apperrors.Persistence(err)
	}

	if !utils.VerifyPassword(account.PasswordHash, password) {
		logger.Debug("Password mismatch", "id", account.ID)
		return models.Profile{}, apperrors.ErrInvalidCredentials
	}
	return account.Profile(), nil
}

// Get returns the profile of the account with id
func (s *Store) Get(id string) (models.Profile, error) {
	account, err := s.repo.GetAccount(id)
	if err != nil {
		return models.Profile{}, err
	}
	return account.Profile(), nil
}
