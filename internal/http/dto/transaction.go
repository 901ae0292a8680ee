package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/internal/model"
)

type TransactionRequest struct {
	BusinessID      int64            `json:"business_id,string" binding:"required"`
	TransactionDate time.Time        `json:"transaction_date" binding:"required"`
	Type            string           `json:"transaction_type" binding:"required"`
	Amount          decimal.Decimal  `json:"amount" binding:"required"`
	Currency        string           `json:"currency,omitempty"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate,omitempty"`
	Category        string           `json:"category" binding:"required"`
	Subcategory     *string          `json:"subcategory,omitempty"`
	Description     string           `json:"description" binding:"required"`
	Notes           *string          `json:"notes,omitempty"`
	Reference       *string          `json:"reference_number,omitempty"`
	PaymentMethod   *string          `json:"payment_method,omitempty"`
	Status          *string          `json:"status,omitempty"`
}

type TransferRequest struct {
	FromBusinessID  int64           `json:"from_business_id,string" binding:"required"`
	ToBusinessID    int64           `json:"to_business_id,string" binding:"required"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	Notes           *string         `json:"notes,omitempty"`
	Reference       *string         `json:"reference_number,omitempty"`
}

type VoidTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type TransactionResponse struct {
	ID                   int64           `json:"id,string"`
	OrganizationID       int64           `json:"organization_id,string"`
	BusinessID           int64           `json:"business_id,string"`
	TransactionDate      time.Time       `json:"transaction_date"`
	Type                 string          `json:"transaction_type"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	ExchangeRate         decimal.Decimal `json:"exchange_rate"`
	AmountNGN            decimal.Decimal `json:"amount_ngn"`
	Category             string          `json:"category"`
	Subcategory          *string         `json:"subcategory,omitempty"`
	Description          string          `json:"description"`
	Notes                *string         `json:"notes,omitempty"`
	Reference            *string         `json:"reference_number,omitempty"`
	PaymentMethod        *string         `json:"payment_method,omitempty"`
	TransferToBusinessID *int64          `json:"transfer_to_business_id,string,omitempty"`
	TransferPairID       *int64          `json:"transfer_pair_id,string,omitempty"`
	Status               string          `json:"status"`
	VoidedAt             *time.Time      `json:"voided_at,omitempty"`
	VoidReason           *string         `json:"void_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func ToTransactionResponse(t *model.Transaction) *TransactionResponse {
	var paymentMethod *string
	if t.PaymentMethod != nil {
		s := string(*t.PaymentMethod)
		paymentMethod = &s
	}
	return &TransactionResponse{
		ID:                   t.ID,
		OrganizationID:       t.OrganizationID,
		BusinessID:           t.BusinessID,
		TransactionDate:      t.TransactionDate,
		Type:                 string(t.Type),
		Amount:               t.Amount,
		Currency:             t.Currency,
		ExchangeRate:         t.ExchangeRate,
		AmountNGN:            t.AmountNGN,
		Category:             t.Category,
		Subcategory:          t.Subcategory,
		Description:          t.Description,
		Notes:                t.Notes,
		Reference:            t.Reference,
		PaymentMethod:        paymentMethod,
		TransferToBusinessID: t.TransferToBusinessID,
		TransferPairID:       t.TransferPairID,
		Status:               string(t.Status),
		VoidedAt:             t.VoidedAt,
		VoidReason:           t.VoidReason,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func ToTransactionResponses(txns []model.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = *ToTransactionResponse(&txns[i])
	}
	return out
}

type TransactionSummaryResponse struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Count        int64           `json:"count"`
}
