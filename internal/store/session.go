package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type sessionStore struct {
	db db.DBTX
}

func (s *sessionStore) Create(ctx context.Context, session *model.Session) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		session.ID, session.UserID, session.ExpiresAt).Scan(&session.CreatedAt)
}

func (s *sessionStore) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, expires_at, created_at
		FROM sessions WHERE id = $1`, id).
		Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *sessionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}
