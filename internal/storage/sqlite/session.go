package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

func (s *Store) GetSession() (models.Session, error) {
	if err := s.ready(); err != nil {
		return models.Session{}, err
	}

	var sess models.Session
	var createdAt, startedAt string
	err := s.db.QueryRow(`
		SELECT account_id, name, email, created_at, started_at
		FROM session WHERE singleton = 1`).
		Scan(&sess.ID, &sess.Name, &sess.Email, &createdAt, &startedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, fmt.Errorf("session: %w", apperrors.ErrNotFound)
		}
		return models.Session{}, err
	}

	if sess.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Session{}, err
	}
	if sess.StartedAt, err = parseTime("started_at", startedAt); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (s *Store) SaveSession(sess models.Session) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO session (singleton, account_id, name, email, created_at, started_at)
		VALUES (1, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Email, formatTime(sess.CreatedAt), formatTime(sess.StartedAt))
	return apperrors.Persistence(err)
}

func (s *Store) DeleteSession() error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.Exec("DELETE FROM session")
	return apperrors.Persistence(err)
}
