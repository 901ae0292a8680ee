package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type organizationStore struct {
	db db.DBTX
}

const orgColumns = `id, owner_user_id, name, slug, logo_url, subscription_tier,
	subscription_status, trial_ends_at, billing_email, created_at, updated_at, deleted_at`

func scanOrganization(row pgx.Row) (*model.Organization, error) {
	var o model.Organization
	err := row.Scan(&o.ID, &o.OwnerUserID, &o.Name, &o.Slug, &o.LogoURL,
		&o.SubscriptionTier, &o.SubscriptionStatus, &o.TrialEndsAt,
		&o.BillingEmail, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *organizationStore) Create(ctx context.Context, org *model.Organization) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO organizations (id, owner_user_id, name, slug, logo_url,
			subscription_tier, subscription_status, trial_ends_at, billing_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+orgColumns,
		org.ID, org.OwnerUserID, org.Name, org.Slug, org.LogoURL,
		org.SubscriptionTier, org.SubscriptionStatus, org.TrialEndsAt, org.BillingEmail)
	created, err := scanOrganization(row)
	if err != nil {
		return err
	}
	*org = *created
	return nil
}

func (s *organizationStore) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	return scanOrganization(s.db.QueryRow(ctx, `
		SELECT `+orgColumns+` FROM organizations
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (s *organizationStore) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	return scanOrganization(s.db.QueryRow(ctx, `
		SELECT `+orgColumns+` FROM organizations
		WHERE slug = $1 AND deleted_at IS NULL`, slug))
}

func (s *organizationStore) Update(ctx context.Context, org *model.Organization) error {
	row := s.db.QueryRow(ctx, `
		UPDATE organizations SET
			name = $2, slug = $3, logo_url = $4, subscription_tier = $5,
			subscription_status = $6, billing_email = $7, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+orgColumns,
		org.ID, org.Name, org.Slug, org.LogoURL, org.SubscriptionTier,
		org.SubscriptionStatus, org.BillingEmail)
	updated, err := scanOrganization(row)
	if err != nil {
		return err
	}
	*org = *updated
	return nil
}

func (s *organizationStore) SoftDelete(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE organizations SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (s *organizationStore) ListForUser(ctx context.Context, userID int64) ([]model.Organization, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT `+qualify(orgColumns, "o")+`
		FROM organizations o
		JOIN team_members m ON m.organization_id = o.id
		WHERE m.user_id = $1 AND m.status = 'active' AND o.deleted_at IS NULL
		ORDER BY o.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *o)
	}
	return orgs, rows.Err()
}
