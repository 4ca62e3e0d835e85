package sqlite

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
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
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

	_, err := s.db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	return apperrors.Persistence(err)
}

func (s *Store) GetAllSettings() (map[string]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
