package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/common/id"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/queue"
	"github.com/kudihq/kudi/internal/service"
)

var _ = Describe("BusinessService", func() {
	const (
		orgID      = int64(1)
		userID     = int64(7)
		businessID = int64(10)
	)

	var (
		svc       service.BusinessService
		orgStore  *mockOrganizationStore
		bizStore  *mockBusinessStore
		acctStore *mockBankAccountStore
		txnStore  *mockTransactionStore
		members   *mockTeamMemberStore
		producer  *mockProducer
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		orgStore = &mockOrganizationStore{}
		bizStore = &mockBusinessStore{}
		acctStore = &mockBankAccountStore{}
		txnStore = &mockTransactionStore{}
		members = &mockTeamMemberStore{}
		producer = &mockProducer{}

		members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
			return &model.TeamMember{ID: 5, OrganizationID: orgID, Role: model.RoleAdmin, Status: model.MemberActive}, nil
		}
		orgStore.getByIDFn = func(_ context.Context, _ int64) (*model.Organization, error) {
			return &model.Organization{ID: orgID, SubscriptionTier: model.TierStarter}, nil
		}
		bizStore.getByIDFn = func(_ context.Context, bid int64) (*model.Business, error) {
			return &model.Business{ID: bid, OrganizationID: orgID, Name: "Shop One"}, nil
		}

		access := service.NewAccessService(members, bizStore)
		provider := &mockStoreProvider{businesses: bizStore, transactions: txnStore}
		balance := service.NewBalanceService(&mockTxRunner{provider: provider})
		svc = service.NewBusinessService(orgStore, bizStore, acctStore, access, balance, producer)
	})

	Describe("Create", func() {
		It("defaults the primary currency", func() {
			var created *model.Business
			bizStore.createFn = func(_ context.Context, b *model.Business) error {
				created = b
				return nil
			}

			biz, err := svc.Create(ctx, orgID, userID, service.BusinessParams{Name: "Shop Two"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).NotTo(BeNil())
			Expect(biz.PrimaryCurrency).To(Equal(model.BaseCurrency))
			Expect(biz.OrganizationID).To(Equal(orgID))
		})

		It("enforces the tier business limit", func() {
			bizStore.countActiveFn = func(_ context.Context, _ int64) (int, error) {
				org := &model.Organization{SubscriptionTier: model.TierStarter}
				return org.Limits().Businesses, nil
			}

			_, err := svc.Create(ctx, orgID, userID, service.BusinessParams{Name: "One Too Many"})
			Expect(err).To(MatchError(service.ErrLimitReached))
		})

		It("requires a name", func() {
			_, err := svc.Create(ctx, orgID, userID, service.BusinessParams{Name: "   "})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("rebuilds the cached balance when the opening balance changes", func() {
			bizStore.lockForBalanceFn = func(_ context.Context, bid int64) (*model.Business, error) {
				return &model.Business{ID: bid, OpeningBalance: decimal.NewFromInt(500)}, nil
			}
			txnStore.sumSignedFn = func(_ context.Context, _ int64, _ []model.TransactionStatus) (decimal.Decimal, error) {
				return decimal.NewFromInt(100), nil
			}

			_, err := svc.Update(ctx, orgID, userID, businessID, service.BusinessParams{
				Name:           "Shop One",
				OpeningBalance: decimal.NewFromInt(500),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(bizStore.lockCalls).To(Equal(1))
		})

		It("leaves the balance alone when the opening balance is unchanged", func() {
			_, err := svc.Update(ctx, orgID, userID, businessID, service.BusinessParams{
				Name:           "Shop One Renamed",
				OpeningBalance: decimal.Zero,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(bizStore.lockCalls).To(BeZero())
		})

		It("refuses to modify an archived business", func() {
			archivedAt := time.Now()
			bizStore.getByIDFn = func(_ context.Context, bid int64) (*model.Business, error) {
				return &model.Business{ID: bid, OrganizationID: orgID, ArchivedAt: &archivedAt}, nil
			}

			_, err := svc.Update(ctx, orgID, userID, businessID, service.BusinessParams{Name: "Nope"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		It("narrows the listing to granted businesses", func() {
			members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
				return &model.TeamMember{
					OrganizationID: orgID,
					Role:           model.RoleAccountant,
					Status:         model.MemberActive,
					BusinessAccess: []int64{businessID},
				}, nil
			}
			bizStore.listByIDsFn = func(_ context.Context, oid int64, ids []int64) ([]model.Business, error) {
				Expect(oid).To(Equal(orgID))
				Expect(ids).To(Equal([]int64{businessID}))
				return []model.Business{{ID: businessID}}, nil
			}

			listed, err := svc.List(ctx, orgID, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
		})
	})

	Describe("ConnectBankAccount", func() {
		It("allows manual accounts on any tier", func() {
			var created *model.BankAccount
			acctStore.createFn = func(_ context.Context, a *model.BankAccount) error {
				created = a
				return nil
			}

			account, err := svc.ConnectBankAccount(ctx, orgID, userID, businessID, service.BankAccountParams{
				BankName:      "GTBank",
				AccountNumber: "0123456789",
				Currency:      model.BaseCurrency,
				Provider:      model.ProviderManual,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).NotTo(BeNil())
			Expect(account.SyncStatus).To(Equal(model.SyncActive))
		})

		It("gates synced providers behind the tier", func() {
			_, err := svc.ConnectBankAccount(ctx, orgID, userID, businessID, service.BankAccountParams{
				BankName:      "GTBank",
				AccountNumber: "0123456789",
				Currency:      model.BaseCurrency,
				Provider:      model.ProviderMono,
			})
			Expect(err).To(MatchError(service.ErrLimitReached))
		})
	})

	Describe("RecordSyncFailure", func() {
		It("marks the account failed and enqueues a sync_failed event", func() {
			acctStore.getByIDFn = func(_ context.Context, aid int64) (*model.BankAccount, error) {
				return &model.BankAccount{ID: aid, BusinessID: businessID, OrganizationID: orgID}, nil
			}
			var setStatus model.SyncStatus
			acctStore.setSyncStatusFn = func(_ context.Context, _ int64, status model.SyncStatus, syncErr *string, _ time.Time) error {
				setStatus = status
				Expect(*syncErr).To(Equal("token revoked"))
				return nil
			}

			Expect(svc.RecordSyncFailure(ctx, 77, "token revoked")).To(Succeed())
			Expect(setStatus).To(Equal(model.SyncFailed))
			Expect(producer.events).To(HaveLen(1))
			Expect(producer.events[0].EventType).To(Equal(queue.EventSyncFailed))
			Expect(*producer.events[0].BankAccountID).To(Equal(int64(77)))
		})

		It("maps a missing account to not found", func() {
			err := svc.RecordSyncFailure(ctx, 77, "token revoked")
			Expect(err).To(MatchError(service.ErrNotFound))
		})
	})
})
