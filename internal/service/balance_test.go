package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
	"github.com/kudihq/kudi/internal/store"
)

var _ = Describe("BalanceService", func() {
	var (
		svc      service.BalanceService
		bizStore *mockBusinessStore
		txnStore *mockTransactionStore
		provider *mockStoreProvider
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		bizStore = &mockBusinessStore{}
		txnStore = &mockTransactionStore{}
		provider = &mockStoreProvider{businesses: bizStore, transactions: txnStore}
		svc = service.NewBalanceService(&mockTxRunner{provider: provider})
	})

	It("computes opening balance plus the signed confirmed sum", func() {
		bizStore.lockForBalanceFn = func(_ context.Context, id int64) (*model.Business, error) {
			return &model.Business{ID: id, OpeningBalance: decimal.NewFromInt(1000)}, nil
		}
		txnStore.sumSignedFn = func(_ context.Context, businessID int64, statuses []model.TransactionStatus) (decimal.Decimal, error) {
			Expect(businessID).To(Equal(int64(10)))
			Expect(statuses).To(Equal([]model.TransactionStatus{model.StatusConfirmed}))
			return decimal.NewFromInt(-250), nil
		}
		var written decimal.Decimal
		bizStore.updateBalanceFn = func(_ context.Context, id int64, balance decimal.Decimal, _ time.Time) error {
			Expect(id).To(Equal(int64(10)))
			written = balance
			return nil
		}

		balance, err := svc.Recalculate(ctx, provider, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(balance.Equal(decimal.NewFromInt(750))).To(BeTrue())
		Expect(written.Equal(decimal.NewFromInt(750))).To(BeTrue())
		Expect(bizStore.lockCalls).To(Equal(1))
	})

	It("maps a missing business to not found", func() {
		bizStore.lockForBalanceFn = func(_ context.Context, _ int64) (*model.Business, error) {
			return nil, store.ErrNotFound
		}

		_, err := svc.Recalculate(ctx, provider, 10)
		Expect(err).To(MatchError(service.ErrNotFound))
	})

	It("tracks an income, expense, void sequence", func() {
		bizStore.lockForBalanceFn = func(_ context.Context, id int64) (*model.Business, error) {
			return &model.Business{ID: id, OpeningBalance: decimal.Zero}, nil
		}
		// confirmed rows by step: +1000 income, then -400 expense, then the
		// expense voided again
		sums := []int64{1000, 600, 1000}
		step := 0
		txnStore.sumSignedFn = func(_ context.Context, _ int64, _ []model.TransactionStatus) (decimal.Decimal, error) {
			s := sums[step]
			step++
			return decimal.NewFromInt(s), nil
		}

		for _, want := range []int64{1000, 600, 1000} {
			balance, err := svc.Recalculate(ctx, provider, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.Equal(decimal.NewFromInt(want))).To(BeTrue())
		}
	})

	It("runs ForceRecalculate in its own transaction", func() {
		bizStore.lockForBalanceFn = func(_ context.Context, id int64) (*model.Business, error) {
			return &model.Business{ID: id, OpeningBalance: decimal.NewFromInt(50)}, nil
		}
		txnStore.sumSignedFn = func(_ context.Context, _ int64, _ []model.TransactionStatus) (decimal.Decimal, error) {
			return decimal.NewFromInt(25), nil
		}

		balance, err := svc.ForceRecalculate(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(balance.Equal(decimal.NewFromInt(75))).To(BeTrue())
	})
})
