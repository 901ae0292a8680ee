package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type bankAccountStore struct {
	db db.DBTX
}

const bankAccountColumns = `id, business_id, organization_id, bank_name, account_name,
	account_number, currency, provider, provider_account_id, sync_status,
	last_synced_at, last_sync_error, current_balance, balance_updated_at,
	connected_by, created_at, updated_at`

func scanBankAccount(row pgx.Row) (*model.BankAccount, error) {
	var a model.BankAccount
	err := row.Scan(&a.ID, &a.BusinessID, &a.OrganizationID, &a.BankName,
		&a.AccountName, &a.AccountNumber, &a.Currency, &a.Provider,
		&a.ProviderAccountID, &a.SyncStatus, &a.LastSyncedAt, &a.LastSyncError,
		&a.CurrentBalance, &a.BalanceUpdatedAt, &a.ConnectedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *bankAccountStore) Create(ctx context.Context, account *model.BankAccount) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO bank_accounts (id, business_id, organization_id, bank_name,
			account_name, account_number, currency, provider, provider_account_id,
			sync_status, connected_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+bankAccountColumns,
		account.ID, account.BusinessID, account.OrganizationID, account.BankName,
		account.AccountName, account.AccountNumber, account.Currency,
		account.Provider, account.ProviderAccountID, account.SyncStatus, account.ConnectedBy)
	created, err := scanBankAccount(row)
	if err != nil {
		return err
	}
	*account = *created
	return nil
}

func (s *bankAccountStore) GetByID(ctx context.Context, id int64) (*model.BankAccount, error) {
	return scanBankAccount(s.db.QueryRow(ctx, `
		SELECT `+bankAccountColumns+` FROM bank_accounts WHERE id = $1`, id))
}

func (s *bankAccountStore) ListByBusiness(ctx context.Context, businessID int64) ([]model.BankAccount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bankAccountColumns+` FROM bank_accounts
		WHERE business_id = $1
		ORDER BY created_at`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.BankAccount
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (s *bankAccountStore) SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus, syncErr *string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bank_accounts SET
			sync_status = $2, last_sync_error = $3, last_synced_at = $4, updated_at = now()
		WHERE id = $1`, id, status, syncErr, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
