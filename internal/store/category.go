package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type categoryStore struct {
	db db.DBTX
}

const categoryColumns = `id, organization_id, name, slug, description, category_type,
	parent_id, icon, color, sort_order, is_system, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Slug, &c.Description,
		&c.Type, &c.ParentID, &c.Icon, &c.Color, &c.SortOrder, &c.IsSystem,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *categoryStore) Create(ctx context.Context, cat *model.Category) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO categories (id, organization_id, name, slug, description,
			category_type, parent_id, icon, color, sort_order, is_system, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+categoryColumns,
		cat.ID, cat.OrganizationID, cat.Name, cat.Slug, cat.Description, cat.Type,
		cat.ParentID, cat.Icon, cat.Color, cat.SortOrder, cat.IsSystem, cat.IsActive)
	created, err := scanCategory(row)
	if err != nil {
		return err
	}
	*cat = *created
	return nil
}

func (s *categoryStore) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	return scanCategory(s.db.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

func (s *categoryStore) GetBySlug(ctx context.Context, orgID *int64, slug string) (*model.Category, error) {
	// Custom categories shadow system defaults with the same slug.
	return scanCategory(s.db.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE slug = $2 AND is_active
		  AND (organization_id = $1 OR organization_id IS NULL)
		ORDER BY organization_id NULLS LAST
		LIMIT 1`, orgID, slug))
}

func (s *categoryStore) Update(ctx context.Context, cat *model.Category) error {
	row := s.db.QueryRow(ctx, `
		UPDATE categories SET
			name = $2, description = $3, icon = $4, color = $5, sort_order = $6,
			is_active = $7, updated_at = now()
		WHERE id = $1 AND organization_id IS NOT NULL
		RETURNING `+categoryColumns,
		cat.ID, cat.Name, cat.Description, cat.Icon, cat.Color, cat.SortOrder,
		cat.IsActive)
	updated, err := scanCategory(row)
	if err != nil {
		return err
	}
	*cat = *updated
	return nil
}

func (s *categoryStore) ListActive(ctx context.Context, orgID *int64) ([]model.Category, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE is_active AND (organization_id IS NULL OR organization_id = $1)
		ORDER BY sort_order, name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}
