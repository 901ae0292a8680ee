package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the ledger's reporting currency. Every transaction carries
// a derived amount in it regardless of its native currency.
const BaseCurrency = "NGN"

type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Sign is the transaction type's contribution direction in a business's
// balance sum. Transfers net to zero at the single-business view; movement is
// only visible through the paired counter-entry on the other business.
func (t TransactionType) Sign() int {
	switch t {
	case TypeIncome:
		return 1
	case TypeExpense:
		return -1
	default:
		return 0
	}
}

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusConfirmed  TransactionStatus = "confirmed"
	StatusReconciled TransactionStatus = "reconciled"
	StatusVoided     TransactionStatus = "voided" // terminal
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentPOS          PaymentMethod = "pos"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
	PaymentOnline       PaymentMethod = "online"
)

// Transaction is a single ledger entry. OrganizationID is denormalized from
// the business at creation and must always equal the business's organization.
type Transaction struct {
	ID             int64 `json:"id"`
	OrganizationID int64 `json:"organization_id"`
	BusinessID     int64 `json:"business_id"`

	TransactionDate time.Time       `json:"transaction_date"`
	Type            TransactionType `json:"transaction_type"`

	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	// AmountNGN is recomputed on every write from amount and rate, never
	// trusted from input.
	AmountNGN decimal.Decimal `json:"amount_ngn"`

	Category    string  `json:"category"`
	Subcategory *string `json:"subcategory,omitempty"`
	Description string  `json:"description"`
	Notes       *string `json:"notes,omitempty"`
	Reference   *string `json:"reference_number,omitempty"`

	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`

	TransferToBusinessID *int64 `json:"transfer_to_business_id,omitempty"`
	TransferPairID       *int64 `json:"transfer_pair_id,omitempty"`

	BankAccountID     *int64  `json:"bank_account_id,omitempty"`
	BankTransactionID *string `json:"bank_transaction_id,omitempty"`

	Status TransactionStatus `json:"status"`

	CreatedBy *int64    `json:"created_by,omitempty"`
	UpdatedBy *int64    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	VoidedAt   *time.Time `json:"voided_at,omitempty"`
	VoidedBy   *int64     `json:"voided_by,omitempty"`
	VoidReason *string    `json:"void_reason,omitempty"`
}

func (t *Transaction) IsVoided() bool {
	return t.Status == StatusVoided
}

// ComputeAmountNGN derives the base-currency amount. The rate collapses to 1
// when the transaction is already in the base currency.
func ComputeAmountNGN(amount decimal.Decimal, currency string, rate decimal.Decimal) decimal.Decimal {
	if currency == BaseCurrency {
		return amount
	}
	return amount.Mul(rate)
}
