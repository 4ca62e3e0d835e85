package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

const accountColumns = "id, name, email, password_hash, created_at"

func (s *Store) AddAccount(account models.Account) error {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.Persistence(err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(*) FROM accounts WHERE email = ?", account.Email).Scan(&exists); err != nil {
		return apperrors.Persistence(err)
	}
	if exists > 0 {
		return apperrors.ErrDuplicateEmail
	}

	_, err = tx.Exec(`
		INSERT INTO accounts (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.Name, account.Email, account.PasswordHash, formatTime(account.CreatedAt))
	if err != nil {
		return apperrors.Persistence(err)
	}

	return apperrors.Persistence(tx.Commit())
}

func (s *Store) GetAccountByEmail(email string) (models.Account, error) {
	if err := s.ready(); err != nil {
		return models.Account{}, err
	}
	row := s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE email = ?", email)
	return scanAccount(row)
}

func (s *Store) GetAccount(id string) (models.Account, error) {
	if err := s.ready(); err != nil {
		return models.Account{}, err
	}
	row := s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	return scanAccount(row)
}

func (s *Store) GetAllAccounts() ([]models.Account, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT " + accountColumns + " FROM accounts ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (models.Account, error) {
	var a models.Account
	var createdAt string

	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, fmt.Errorf("account: %w", apperrors.ErrNotFound)
		}
		return models.Account{}, err
	}

	a.CreatedAt, err = parseTime("created_at", createdAt)
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}
