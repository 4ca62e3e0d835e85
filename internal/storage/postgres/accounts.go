package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

const accountColumns = "id, name, email, password_hash, created_at"

// AddAccount inserts the account unless its email is taken. A retried insert
// whose first attempt already committed is recognised by its id and succeeds.
func (s *Store) AddAccount(account models.Account) error {
	if err := s.ready(); err != nil {
		return err
	}

	var duplicate bool
	err := s.retry(func() error {
		duplicate = false
		result, err := s.db.Exec(`
			INSERT INTO accounts (id, name, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING`,
			account.ID, account.Name, account.Email, account.PasswordHash, account.CreatedAt.UTC())
		if err != nil {
			return err
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if inserted > 0 {
			return nil
		}

		var existingID string
		if err := s.db.QueryRow("SELECT id FROM accounts WHERE email = $1", account.Email).Scan(&existingID); err != nil {
			return err
		}
		duplicate = existingID != account.ID
		return nil
	})
	if err != nil {
		return apperrors.Persistence(err)
	}
	if duplicate {
		return apperrors.ErrDuplicateEmail
	}
	return nil
}

func (s *Store) GetAccountByEmail(email string) (models.Account, error) {
	return s.getAccount("email", email)
}

func (s *Store) GetAccount(id string) (models.Account, error) {
	return s.getAccount("id", id)
}

func (s *Store) getAccount(column, value string) (models.Account, error) {
	if err := s.ready(); err != nil {
		return models.Account{}, err
	}

	var a models.Account
	err := s.retry(func() error {
		row := s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE "+column+" = $1", value)
		var err error
		a, err = scanAccount(row)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, fmt.Errorf("account: %w", apperrors.ErrNotFound)
		}
		return models.Account{}, err
	}
	return a, nil
}

func (s *Store) GetAllAccounts() ([]models.Account, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var accounts []models.Account
	err := s.retry(func() error {
		rows, err := s.db.Query("SELECT " + accountColumns + " FROM accounts ORDER BY created_at")
		if err != nil {
			return err
		}
		defer rows.Close()

		accounts = nil
		for rows.Next() {
			a, err := scanAccount(rows)
			if err != nil {
				return err
			}
			accounts = append(accounts, a)
		}
		return rows.Err()
	})
	return accounts, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (models.Account, error) {
	var a models.Account
	var createdAt time.Time
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &createdAt); err != nil {
		return models.Account{}, err
	}
	a.CreatedAt = createdAt.UTC()
	return a, nil
}
