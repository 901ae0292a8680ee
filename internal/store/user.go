package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type userStore struct {
	db db.DBTX
}

const userColumns = `id, name, email, avatar_url, workos_id, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL, &u.WorkOSID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, avatar_url, workos_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.AvatarURL, user.WorkOSID)
	created, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *userStore) UpsertByWorkOSID(ctx context.Context, user *model.User) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, avatar_url, workos_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workos_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = now()
		RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.AvatarURL, user.WorkOSID)
	upserted, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *upserted
	return nil
}
