package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BankProvider string

const (
	ProviderMono   BankProvider = "mono"
	ProviderOkra   BankProvider = "okra"
	ProviderManual BankProvider = "manual"
)

type SyncStatus string

const (
	SyncActive       SyncStatus = "active"
	SyncPaused       SyncStatus = "paused"
	SyncFailed       SyncStatus = "failed"
	SyncDisconnected SyncStatus = "disconnected"
)

// BankAccount links a business to an external provider. Its cached balance is
// the provider's view and is independent of the ledger balance.
type BankAccount struct {
	ID             int64 `json:"id"`
	BusinessID     int64 `json:"business_id"`
	OrganizationID int64 `json:"organization_id"`

	BankName      string  `json:"bank_name"`
	AccountName   *string `json:"account_name,omitempty"`
	AccountNumber string  `json:"account_number"`
	Currency      string  `json:"currency"`

	Provider          BankProvider `json:"provider"`
	ProviderAccountID *string      `json:"-"`

	SyncStatus    SyncStatus `json:"sync_status"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	LastSyncError *string    `json:"last_sync_error,omitempty"`

	CurrentBalance   *decimal.Decimal `json:"current_balance,omitempty"`
	BalanceUpdatedAt *time.Time       `json:"balance_updated_at,omitempty"`

	ConnectedBy *int64    `json:"connected_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MaskedNumber hides all but the last four digits of the account number.
func (a *BankAccount) MaskedNumber() string {
	if len(a.AccountNumber) < 4 {
		return a.AccountNumber
	}
	return "****" + a.AccountNumber[len(a.AccountNumber)-4:]
}
