package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/internal/model"
)

type BusinessRequest struct {
	Name               string          `json:"name" binding:"required,min=1,max=255"`
	ShortName          *string         `json:"short_name,omitempty"`
	Description        *string         `json:"description,omitempty"`
	Industry           string          `json:"industry" binding:"required"`
	BusinessType       *string         `json:"business_type,omitempty"`
	PrimaryCurrency    string          `json:"primary_currency,omitempty"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate *time.Time      `json:"opening_balance_date,omitempty"`
}

type BusinessResponse struct {
	ID               int64           `json:"id,string"`
	OrganizationID   int64           `json:"organization_id,string"`
	Name             string          `json:"name"`
	ShortName        *string         `json:"short_name,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Industry         string          `json:"industry"`
	BusinessType     *string         `json:"business_type,omitempty"`
	PrimaryCurrency  string          `json:"primary_currency"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	BalanceUpdatedAt *time.Time      `json:"balance_updated_at,omitempty"`
	ArchivedAt       *time.Time      `json:"archived_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func ToBusinessResponse(b *model.Business) *BusinessResponse {
	var businessType *string
	if b.BusinessType != nil {
		s := string(*b.BusinessType)
		businessType = &s
	}
	return &BusinessResponse{
		ID:               b.ID,
		OrganizationID:   b.OrganizationID,
		Name:             b.Name,
		ShortName:        b.ShortName,
		Description:      b.Description,
		Industry:         string(b.Industry),
		BusinessType:     businessType,
		PrimaryCurrency:  b.PrimaryCurrency,
		OpeningBalance:   b.OpeningBalance,
		CurrentBalance:   b.CurrentBalance,
		BalanceUpdatedAt: b.BalanceUpdatedAt,
		ArchivedAt:       b.ArchivedAt,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

type ConnectBankAccountRequest struct {
	BankName          string  `json:"bank_name" binding:"required"`
	AccountName       *string `json:"account_name,omitempty"`
	AccountNumber     string  `json:"account_number" binding:"required"`
	Currency          string  `json:"currency,omitempty"`
	Provider          string  `json:"provider" binding:"required"`
	ProviderAccountID *string `json:"provider_account_id,omitempty"`
}

type BankAccountResponse struct {
	ID            int64      `json:"id,string"`
	BusinessID    int64      `json:"business_id,string"`
	BankName      string     `json:"bank_name"`
	AccountName   *string    `json:"account_name,omitempty"`
	AccountNumber string     `json:"account_number"`
	Currency      string     `json:"currency"`
	Provider      string     `json:"provider"`
	SyncStatus    string     `json:"sync_status"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToBankAccountResponse(a *model.BankAccount) *BankAccountResponse {
	return &BankAccountResponse{
		ID:            a.ID,
		BusinessID:    a.BusinessID,
		BankName:      a.BankName,
		AccountName:   a.AccountName,
		AccountNumber: a.MaskedNumber(),
		Currency:      a.Currency,
		Provider:      string(a.Provider),
		SyncStatus:    string(a.SyncStatus),
		LastSyncedAt:  a.LastSyncedAt,
		CreatedAt:     a.CreatedAt,
	}
}

type BalanceResponse struct {
	BusinessID int64           `json:"business_id,string"`
	Balance    decimal.Decimal `json:"balance"`
}
