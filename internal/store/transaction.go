package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type transactionStore struct {
	db db.DBTX
}

const transactionColumns = `id, organization_id, business_id, transaction_date,
	transaction_type, amount, currency, exchange_rate, amount_ngn, category,
	subcategory, description, notes, reference_number, payment_method,
	transfer_to_business_id, transfer_pair_id, bank_account_id, bank_transaction_id,
	status, created_by, updated_by, created_at, updated_at, voided_at, voided_by,
	void_reason`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(&t.ID, &t.OrganizationID, &t.BusinessID, &t.TransactionDate,
		&t.Type, &t.Amount, &t.Currency, &t.ExchangeRate, &t.AmountNGN,
		&t.Category, &t.Subcategory, &t.Description, &t.Notes, &t.Reference,
		&t.PaymentMethod, &t.TransferToBusinessID, &t.TransferPairID,
		&t.BankAccountID, &t.BankTransactionID, &t.Status, &t.CreatedBy,
		&t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt, &t.VoidedAt, &t.VoidedBy,
		&t.VoidReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *transactionStore) Create(ctx context.Context, txn *model.Transaction) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO transactions (id, organization_id, business_id, transaction_date,
			transaction_type, amount, currency, exchange_rate, amount_ngn, category,
			subcategory, description, notes, reference_number, payment_method,
			transfer_to_business_id, transfer_pair_id, bank_account_id,
			bank_transaction_id, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21)
		RETURNING `+transactionColumns,
		txn.ID, txn.OrganizationID, txn.BusinessID, txn.TransactionDate,
		txn.Type, txn.Amount, txn.Currency, txn.ExchangeRate, txn.AmountNGN,
		txn.Category, txn.Subcategory, txn.Description, txn.Notes, txn.Reference,
		txn.PaymentMethod, txn.TransferToBusinessID, txn.TransferPairID,
		txn.BankAccountID, txn.BankTransactionID, txn.Status, txn.CreatedBy)
	created, err := scanTransaction(row)
	if err != nil {
		return err
	}
	*txn = *created
	return nil
}

func (s *transactionStore) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	return scanTransaction(s.db.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
}

func (s *transactionStore) Update(ctx context.Context, txn *model.Transaction) error {
	row := s.db.QueryRow(ctx, `
		UPDATE transactions SET
			transaction_date = $2, transaction_type = $3, amount = $4, currency = $5,
			exchange_rate = $6, amount_ngn = $7, category = $8, subcategory = $9,
			description = $10, notes = $11, reference_number = $12,
			payment_method = $13, status = $14, updated_by = $15, updated_at = now()
		WHERE id = $1 AND status <> 'voided'
		RETURNING `+transactionColumns,
		txn.ID, txn.TransactionDate, txn.Type, txn.Amount, txn.Currency,
		txn.ExchangeRate, txn.AmountNGN, txn.Category, txn.Subcategory,
		txn.Description, txn.Notes, txn.Reference, txn.PaymentMethod, txn.Status,
		txn.UpdatedBy)
	updated, err := scanTransaction(row)
	if err != nil {
		return err
	}
	*txn = *updated
	return nil
}

func (s *transactionStore) Void(ctx context.Context, id, actorID int64, reason string, at time.Time) (*model.Transaction, error) {
	// The status guard makes the write conditional: a second void matches no
	// row and the first void's audit fields survive untouched.
	return scanTransaction(s.db.QueryRow(ctx, `
		UPDATE transactions SET
			status = 'voided', voided_at = $2, voided_by = $3, void_reason = $4,
			updated_at = now()
		WHERE id = $1 AND status <> 'voided'
		RETURNING `+transactionColumns, id, at, actorID, reason))
}

func (s *transactionStore) SetTransferPair(ctx context.Context, id, pairID int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE transactions SET transfer_pair_id = $2 WHERE id = $1`, id, pairID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *transactionStore) List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	if len(filter.BusinessIDs) == 0 {
		return []model.Transaction{}, nil
	}

	where, args := buildTransactionWhere(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE %s
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (s *transactionStore) Summarize(ctx context.Context, filter TransactionFilter) (*TransactionSummary, error) {
	summary := &TransactionSummary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	if len(filter.BusinessIDs) == 0 {
		return summary, nil
	}

	where, args := buildTransactionWhere(filter)
	query := fmt.Sprintf(`
		SELECT
			COALESCE(sum(amount_ngn) FILTER (WHERE transaction_type = 'income'), 0),
			COALESCE(sum(amount_ngn) FILTER (WHERE transaction_type = 'expense'), 0),
			count(*)
		FROM transactions
		WHERE %s`, where)

	err := s.db.QueryRow(ctx, query, args...).
		Scan(&summary.TotalIncome, &summary.TotalExpense, &summary.Count)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *transactionStore) SumSigned(ctx context.Context, businessID int64, statuses []model.TransactionStatus) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(sum(
			CASE transaction_type
				WHEN 'income' THEN amount_ngn
				WHEN 'expense' THEN -amount_ngn
				ELSE 0
			END), 0)
		FROM transactions
		WHERE business_id = $1 AND status = ANY($2)`,
		businessID, statuses).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// buildTransactionWhere assembles the WHERE clause shared by List and
// Summarize. Voided rows are excluded unless the filter pins a status.
func buildTransactionWhere(filter TransactionFilter) (string, []any) {
	clauses := []string{"business_id = ANY($1)"}
	args := []any{filter.BusinessIDs}

	next := func() int { return len(args) + 1 }

	if filter.Status != nil {
		clauses = append(clauses, fmt.Sprintf("status = $%d", next()))
		args = append(args, *filter.Status)
	} else {
		clauses = append(clauses, "status IN ('pending', 'confirmed', 'reconciled')")
	}
	if filter.Type != nil {
		clauses = append(clauses, fmt.Sprintf("transaction_type = $%d", next()))
		args = append(args, *filter.Type)
	}
	if filter.Category != nil {
		clauses = append(clauses, fmt.Sprintf("category = $%d", next()))
		args = append(args, *filter.Category)
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("transaction_date >= $%d", next()))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("transaction_date <= $%d", next()))
		args = append(args, *filter.DateTo)
	}
	if filter.MinAmount != nil {
		clauses = append(clauses, fmt.Sprintf("amount_ngn >= $%d", next()))
		args = append(args, *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		clauses = append(clauses, fmt.Sprintf("amount_ngn <= $%d", next()))
		args = append(args, *filter.MaxAmount)
	}

	return strings.Join(clauses, " AND "), args
}
