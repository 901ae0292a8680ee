package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type businessStore struct {
	db db.DBTX
}

const businessColumns = `id, organization_id, name, short_name, description, industry,
	business_type, primary_currency, opening_balance, opening_balance_date,
	current_balance, balance_updated_at, archived_at, archived_by, created_by,
	created_at, updated_at`

func scanBusiness(row pgx.Row) (*model.Business, error) {
	var b model.Business
	err := row.Scan(&b.ID, &b.OrganizationID, &b.Name, &b.ShortName, &b.Description,
		&b.Industry, &b.BusinessType, &b.PrimaryCurrency, &b.OpeningBalance,
		&b.OpeningBalanceDate, &b.CurrentBalance, &b.BalanceUpdatedAt,
		&b.ArchivedAt, &b.ArchivedBy, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *businessStore) Create(ctx context.Context, biz *model.Business) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO businesses (id, organization_id, name, short_name, description,
			industry, business_type, primary_currency, opening_balance,
			opening_balance_date, current_balance, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $9, $11)
		RETURNING `+businessColumns,
		biz.ID, biz.OrganizationID, biz.Name, biz.ShortName, biz.Description,
		biz.Industry, biz.BusinessType, biz.PrimaryCurrency, biz.OpeningBalance,
		biz.OpeningBalanceDate, biz.CreatedBy)
	created, err := scanBusiness(row)
	if err != nil {
		return err
	}
	*biz = *created
	return nil
}

func (s *businessStore) GetByID(ctx context.Context, id int64) (*model.Business, error) {
	return scanBusiness(s.db.QueryRow(ctx, `
		SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id))
}

func (s *businessStore) Update(ctx context.Context, biz *model.Business) error {
	row := s.db.QueryRow(ctx, `
		UPDATE businesses SET
			name = $2, short_name = $3, description = $4, industry = $5,
			business_type = $6, primary_currency = $7, opening_balance = $8,
			opening_balance_date = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+businessColumns,
		biz.ID, biz.Name, biz.ShortName, biz.Description, biz.Industry,
		biz.BusinessType, biz.PrimaryCurrency, biz.OpeningBalance, biz.OpeningBalanceDate)
	updated, err := scanBusiness(row)
	if err != nil {
		return err
	}
	*biz = *updated
	return nil
}

func (s *businessStore) Archive(ctx context.Context, id, actorID int64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE businesses SET archived_at = $2, archived_by = $3, updated_at = now()
		WHERE id = $1 AND archived_at IS NULL`, id, at, actorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *businessStore) ListByOrganization(ctx context.Context, orgID int64) ([]model.Business, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+businessColumns+` FROM businesses
		WHERE organization_id = $1 AND archived_at IS NULL
		ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	return collectBusinesses(rows)
}

func (s *businessStore) ListByIDs(ctx context.Context, orgID int64, ids []int64) ([]model.Business, error) {
	if len(ids) == 0 {
		return []model.Business{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+businessColumns+` FROM businesses
		WHERE organization_id = $1 AND id = ANY($2) AND archived_at IS NULL
		ORDER BY name`, orgID, ids)
	if err != nil {
		return nil, err
	}
	return collectBusinesses(rows)
}

func (s *businessStore) ListIDsByOrganization(ctx context.Context, orgID int64) ([]int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id FROM businesses
		WHERE organization_id = $1 AND archived_at IS NULL`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *businessStore) CountActive(ctx context.Context, orgID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM businesses
		WHERE organization_id = $1 AND archived_at IS NULL`, orgID).Scan(&count)
	return count, err
}

func (s *businessStore) LockForBalance(ctx context.Context, id int64) (*model.Business, error) {
	// Row lock held until the surrounding transaction commits; concurrent
	// recalculations for the same business queue behind it.
	return scanBusiness(s.db.QueryRow(ctx, `
		SELECT `+businessColumns+` FROM businesses WHERE id = $1 FOR UPDATE`, id))
}

func (s *businessStore) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE businesses SET current_balance = $2, balance_updated_at = $3
		WHERE id = $1`, id, balance, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectBusinesses(rows pgx.Rows) ([]model.Business, error) {
	defer rows.Close()
	var businesses []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *b)
	}
	return businesses, rows.Err()
}
