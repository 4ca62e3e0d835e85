package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
)

func (s *Store) GetSetting(key string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	var value string
	err := s.retry(func() error {
		return s.db.QueryRow("SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("setting %q: %w", key, apperrors.ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	if err := s.ready(); err != nil {
		return err
	}

	err := s.retry(func() error {
		_, err := s.db.Exec(`
			INSERT INTO settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
		return err
	})
	return apperrors.Persistence(err)
}

func (s *Store) GetAllSettings() (map[string]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var settings map[string]string
	err := s.retry(func() error {
		rows, err := s.db.Query("SELECT key, value FROM settings ORDER BY key")
		if err != nil {
			return err
		}
		defer rows.Close()

		settings = make(map[string]string)
		for rows.Next() {
			var key, value string
			if err := rows.Scan(&key, &value); err != nil {
				return err
			}
			settings[key] = value
		}
		return rows.Err()
	})
	return settings, err
}
