package service

import (
	"context"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/store"
)

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	Organizations() store.OrganizationStore
	TeamMembers() store.TeamMemberStore
	Businesses() store.BusinessStore
	BankAccounts() store.BankAccountStore
	Transactions() store.TransactionStore
	AlertRules() store.AlertRuleStore
	Alerts() store.AlertStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(tx db.DBTX) error {
		stores := store.NewStores(tx)
		return fn(stores)
	})
}
