package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/store"
)

// countedStatuses is the set of transaction statuses that contribute to a
// business's materialized balance. Pending entries are provisional and
// reconciled entries have already been confirmed into a bank statement, so
// only confirmed rows count.
var countedStatuses = []model.TransactionStatus{model.StatusConfirmed}

// BalanceService rebuilds a business's cached balance from its transactions.
// The cached value is derived state: a full recomputation must always be able
// to reproduce it.
type BalanceService interface {
	// Recalculate recomputes the balance inside the caller's transaction. It
	// takes a row lock on the business first, which is the serialization
	// point for concurrent ledger writes against the same business.
	Recalculate(ctx context.Context, stores StoreProvider, businessID int64) (decimal.Decimal, error)
	// ForceRecalculate runs a recalculation in its own transaction, for
	// repair and for the archived-business edge where no write triggers one.
	ForceRecalculate(ctx context.Context, businessID int64) (decimal.Decimal, error)
}

type balanceService struct {
	txRunner TxRunner
}

func NewBalanceService(txRunner TxRunner) BalanceService {
	return &balanceService{txRunner: txRunner}
}

func (s *balanceService) Recalculate(ctx context.Context, stores StoreProvider, businessID int64) (decimal.Decimal, error) {
	biz, err := stores.Businesses().LockForBalance(ctx, businessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("locking business: %w", err)
	}

	sum, err := stores.Transactions().SumSigned(ctx, businessID, countedStatuses)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing transactions: %w", err)
	}

	balance := biz.OpeningBalance.Add(sum)
	if err := stores.Businesses().UpdateBalance(ctx, businessID, balance, time.Now()); err != nil {
		return decimal.Zero, fmt.Errorf("updating balance: %w", err)
	}

	slog.DebugContext(ctx, "balance recalculated",
		"business_id", businessID,
		"balance", balance.String(),
	)

	return balance, nil
}

func (s *balanceService) ForceRecalculate(ctx context.Context, businessID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		var err error
		balance, err = s.Recalculate(ctx, stores, businessID)
		return err
	})
	return balance, err
}
