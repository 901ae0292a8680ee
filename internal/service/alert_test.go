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
	"github.com/kudihq/kudi/internal/store"
)

var _ = Describe("AlertService", func() {
	const (
		orgID      = int64(1)
		userID     = int64(7)
		businessID = int64(10)
	)

	var (
		svc        service.AlertService
		ruleStore  *mockAlertRuleStore
		alertStore *mockAlertStore
		bizStore   *mockBusinessStore
		txnStore   *mockTransactionStore
		members    *mockTeamMemberStore
		ctx        context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		ruleStore = &mockAlertRuleStore{}
		alertStore = &mockAlertStore{}
		bizStore = &mockBusinessStore{}
		txnStore = &mockTransactionStore{}
		members = &mockTeamMemberStore{}
		members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
			return &model.TeamMember{OrganizationID: orgID, Role: model.RoleAdmin, Status: model.MemberActive}, nil
		}

		access := service.NewAccessService(members, bizStore)
		svc = service.NewAlertService(ruleStore, alertStore, bizStore, txnStore, access)
	})

	createdEvent := func(txnID int64) queue.LedgerEvent {
		return queue.LedgerEvent{
			EventType:      queue.EventTransactionCreated,
			OrganizationID: orgID,
			BusinessID:     businessID,
			TransactionID:  &txnID,
		}
	}

	lowCashRule := func(threshold float64) model.AlertRule {
		return model.AlertRule{
			ID:             50,
			OrganizationID: orgID,
			Type:           model.AlertLowCash,
			Conditions:     map[string]any{"threshold": threshold},
			IsActive:       true,
		}
	}

	Describe("CreateRule", func() {
		It("rejects a low_cash rule without a threshold", func() {
			_, err := svc.CreateRule(ctx, orgID, userID, service.RuleParams{
				Type:     model.AlertLowCash,
				IsActive: true,
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unusual_expense rule without a positive multiplier", func() {
			_, err := svc.CreateRule(ctx, orgID, userID, service.RuleParams{
				Type:       model.AlertUnusualExpense,
				Conditions: map[string]any{"multiplier": float64(0)},
				IsActive:   true,
			})
			Expect(err).To(HaveOccurred())
		})

		It("stores a valid rule", func() {
			var created *model.AlertRule
			ruleStore.createFn = func(_ context.Context, r *model.AlertRule) error {
				created = r
				return nil
			}

			rule, err := svc.CreateRule(ctx, orgID, userID, service.RuleParams{
				Type:       model.AlertLargeTransaction,
				Conditions: map[string]any{"amount": float64(500000)},
				IsActive:   true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).NotTo(BeNil())
			Expect(rule.OrganizationID).To(Equal(orgID))
		})
	})

	Describe("Evaluate low_cash", func() {
		BeforeEach(func() {
			ruleStore.listActiveForEventFn = func(_ context.Context, _ int64, _ int64, alertType model.AlertType) ([]model.AlertRule, error) {
				if alertType == model.AlertLowCash {
					return []model.AlertRule{lowCashRule(10000)}, nil
				}
				return nil, nil
			}
		})

		It("fires when the balance drops below the threshold", func() {
			bizStore.getByIDFn = func(_ context.Context, bid int64) (*model.Business, error) {
				return &model.Business{ID: bid, OrganizationID: orgID, Name: "Shop One",
					CurrentBalance: decimal.NewFromInt(5000)}, nil
			}
			var alert *model.Alert
			alertStore.createFn = func(_ context.Context, a *model.Alert) error {
				alert = a
				return nil
			}

			Expect(svc.Evaluate(ctx, createdEvent(55))).To(Succeed())
			Expect(alert).NotTo(BeNil())
			Expect(alert.Type).To(Equal(model.AlertLowCash))
			Expect(alert.Severity).To(Equal(model.SeverityHigh))
			Expect(alert.Status).To(Equal(model.AlertUnread))
			Expect(ruleStore.markTriggeredCalls).To(Equal(1))
		})

		It("stays quiet at or above the threshold", func() {
			bizStore.getByIDFn = func(_ context.Context, bid int64) (*model.Business, error) {
				return &model.Business{ID: bid, OrganizationID: orgID,
					CurrentBalance: decimal.NewFromInt(10000)}, nil
			}

			Expect(svc.Evaluate(ctx, createdEvent(55))).To(Succeed())
			Expect(alertStore.createCalls).To(BeZero())
		})

		It("skips rules inside their cooldown window", func() {
			recently := time.Now().Add(-time.Minute)
			rule := lowCashRule(10000)
			rule.Schedule = map[string]any{"cooldown_minutes": float64(60)}
			rule.LastTriggeredAt = &recently
			ruleStore.listActiveForEventFn = func(_ context.Context, _ int64, _ int64, alertType model.AlertType) ([]model.AlertRule, error) {
				if alertType == model.AlertLowCash {
					return []model.AlertRule{rule}, nil
				}
				return nil, nil
			}
			bizStore.getByIDFn = func(_ context.Context, bid int64) (*model.Business, error) {
				return &model.Business{ID: bid, OrganizationID: orgID,
					CurrentBalance: decimal.NewFromInt(5000)}, nil
			}

			Expect(svc.Evaluate(ctx, createdEvent(55))).To(Succeed())
			Expect(alertStore.createCalls).To(BeZero())
			Expect(ruleStore.markTriggeredCalls).To(BeZero())
		})
	})

	Describe("Evaluate large_transaction", func() {
		BeforeEach(func() {
			ruleStore.listActiveForEventFn = func(_ context.Context, _ int64, _ int64, alertType model.AlertType) ([]model.AlertRule, error) {
				if alertType == model.AlertLargeTransaction {
					return []model.AlertRule{{
						ID:             51,
						OrganizationID: orgID,
						Type:           model.AlertLargeTransaction,
						Conditions:     map[string]any{"amount": float64(100000)},
						IsActive:       true,
					}}, nil
				}
				return nil, nil
			}
		})

		It("fires on amounts at or above the limit", func() {
			txnStore.getByIDFn = func(_ context.Context, tid int64) (*model.Transaction, error) {
				return &model.Transaction{ID: tid, Type: model.TypeExpense, Status: model.StatusConfirmed,
					AmountNGN: decimal.NewFromInt(100000)}, nil
			}

			Expect(svc.Evaluate(ctx, createdEvent(55))).To(Succeed())
			Expect(alertStore.createCalls).To(Equal(1))
		})

		It("ignores voided transactions", func() {
			voidedAt := time.Now()
			txnStore.getByIDFn = func(_ context.Context, tid int64) (*model.Transaction, error) {
				return &model.Transaction{ID: tid, Type: model.TypeExpense, Status: model.StatusVoided,
					VoidedAt: &voidedAt, AmountNGN: decimal.NewFromInt(900000)}, nil
			}

			Expect(svc.Evaluate(ctx, createdEvent(55))).To(Succeed())
			Expect(alertStore.createCalls).To(BeZero())
		})
	})

	Describe("Evaluate unusual_expense", func() {
		BeforeEach(func() {
			ruleStore.listActiveForEventFn = func(_ context.Context, _ int64, _ int64, alertType model.AlertType) ([]model.AlertRule, error) {
				if alertType == model.AlertUnusualExpense {
					return []model.AlertRule{{
						ID:             52,
						OrganizationID: orgID,
						Type:           model.AlertUnusualExpense,
						Conditions:     map[string]any{"multiplier": float64(3)},
						IsActive:       true,
					}}, nil
				}
				return nil, nil
			}
			txnStore.getByIDFn = func(_ context.Context, tid int64) (*model.Transaction, error) {
				return &model.Transaction{ID: tid, Type: model.TypeExpense, Status: model.StatusConfirmed,
					AmountNGN: decimal.NewFromInt(90000)}, nil
			}
		})

		It("fires when the expense exceeds the multiplied average", func() {
			txnStore.summarizeFn = func(_ context.Context, filter store.TransactionFilter) (*store.TransactionSummary, error) {
				Expect(filter.BusinessIDs).To(Equal([]int64{businessID}))
				// average 10000, ceiling 30000, txn is 90000
				return &store.TransactionSummary{TotalExpense: decimal.NewFromInt(100000), Count: 10}, nil
			}

			Expect(svc.Evaluate(ctx, createdEvent(55))).To(Succeed())
			Expect(alertStore.createCalls).To(Equal(1))
		})

		It("needs a minimum sample of historical expenses", func() {
			txnStore.summarizeFn = func(_ context.Context, _ store.TransactionFilter) (*store.TransactionSummary, error) {
				return &store.TransactionSummary{TotalExpense: decimal.NewFromInt(10000), Count: 2}, nil
			}

			Expect(svc.Evaluate(ctx, createdEvent(55))).To(Succeed())
			Expect(alertStore.createCalls).To(BeZero())
		})
	})

	Describe("Evaluate sync_failed", func() {
		It("always raises a high severity alert", func() {
			ruleStore.listActiveForEventFn = func(_ context.Context, _ int64, _ int64, alertType model.AlertType) ([]model.AlertRule, error) {
				Expect(alertType).To(Equal(model.AlertSyncFailed))
				return []model.AlertRule{{ID: 53, OrganizationID: orgID, Type: model.AlertSyncFailed, IsActive: true}}, nil
			}
			var alert *model.Alert
			alertStore.createFn = func(_ context.Context, a *model.Alert) error {
				alert = a
				return nil
			}

			accountID := int64(77)
			Expect(svc.Evaluate(ctx, queue.LedgerEvent{
				EventType:      queue.EventSyncFailed,
				OrganizationID: orgID,
				BusinessID:     businessID,
				BankAccountID:  &accountID,
			})).To(Succeed())
			Expect(alert).NotTo(BeNil())
			Expect(alert.Severity).To(Equal(model.SeverityHigh))
		})
	})

	Describe("MarkActioned", func() {
		It("flips the alert to actioned", func() {
			alertStore.getByIDFn = func(_ context.Context, aid int64) (*model.Alert, error) {
				return &model.Alert{ID: aid, OrganizationID: orgID, Status: model.AlertUnread}, nil
			}
			alertStore.markActionedFn = func(_ context.Context, aid int64, _ time.Time) (*model.Alert, error) {
				return &model.Alert{ID: aid, OrganizationID: orgID, Status: model.AlertActioned}, nil
			}

			alert, err := svc.MarkActioned(ctx, orgID, userID, 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(alert.Status).To(Equal(model.AlertActioned))
		})
	})

	Describe("MarkRead", func() {
		It("returns the current state when already read", func() {
			alertStore.getByIDFn = func(_ context.Context, aid int64) (*model.Alert, error) {
				return &model.Alert{ID: aid, OrganizationID: orgID, Status: model.AlertRead}, nil
			}
			alertStore.markReadFn = func(_ context.Context, _, _ int64, _ time.Time) (*model.Alert, error) {
				return nil, store.ErrNotFound
			}

			alert, err := svc.MarkRead(ctx, orgID, userID, 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(alert.Status).To(Equal(model.AlertRead))
		})

		It("hides alerts from other organizations", func() {
			alertStore.getByIDFn = func(_ context.Context, aid int64) (*model.Alert, error) {
				return &model.Alert{ID: aid, OrganizationID: orgID + 1, Status: model.AlertUnread}, nil
			}

			_, err := svc.MarkRead(ctx, orgID, userID, 60)
			Expect(err).To(MatchError(service.ErrNotFound))
		})
	})
})
