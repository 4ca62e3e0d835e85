package postgres

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
	err := s.retry(func() error {
		return s.db.QueryRow(`
			SELECT account_id, name, email, created_at, started_at
			FROM session WHERE singleton = 1`).
			Scan(&sess.ID, &sess.Name, &sess.Email, &sess.CreatedAt, &sess.StartedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, fmt.Errorf("session: %w", apperrors.ErrNotFound)
		}
		return models.Session{}, err
	}
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.StartedAt = sess.StartedAt.UTC()
	return sess, nil
}

func (s *Store) SaveSession(sess models.Session) error {
	if err := s.ready(); err != nil {
		return err
	}

	err := s.retry(func() error {
		_, err := s.db.Exec(`
			INSERT INTO session (singleton, account_id, name, email, created_at, started_at)
			VALUES (1, $1, $2, $3, $4, $5)
			ON CONFLICT (singleton) DO UPDATE SET
				account_id = EXCLUDED.account_id,
				name = EXCLUDED.name,
				email = EXCLUDED.email,
				created_at = EXCLUDED.created_at,
				started_at = EXCLUDED.started_at`,
			sess.ID, sess.Name, sess.Email, sess.CreatedAt.UTC(), sess.StartedAt.UTC())
		return err
	})
	return apperrors.Persistence(err)
}

func (s *Store) DeleteSession() error {
	if err := s.ready(); err != nil {
		return err
	}

	err := s.retry(func() error {
		_, err := s.db.Exec("DELETE FROM session")
		return err
	})
	return apperrors.Persistence(err)
}
