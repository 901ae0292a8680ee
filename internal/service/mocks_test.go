package service_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/queue"
	"github.com/kudihq/kudi/internal/service"
	"github.com/kudihq/kudi/internal/store"
)

type mockOrganizationStore struct {
	createFn      func(ctx context.Context, org *model.Organization) error
	getByIDFn     func(ctx context.Context, id int64) (*model.Organization, error)
	getBySlugFn   func(ctx context.Context, slug string) (*model.Organization, error)
	listForUserFn func(ctx context.Context, userID int64) ([]model.Organization, error)
	softDeleteFn  func(ctx context.Context, id int64) error
	createCalls   int
}

func (m *mockOrganizationStore) Create(ctx context.Context, org *model.Organization) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, org)
	}
	return nil
}

func (m *mockOrganizationStore) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockOrganizationStore) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, store.ErrNotFound
}

func (m *mockOrganizationStore) Update(ctx context.Context, _ *model.Organization) error {
	return nil
}

func (m *mockOrganizationStore) SoftDelete(ctx context.Context, id int64) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id)
	}
	return nil
}

func (m *mockOrganizationStore) ListForUser(ctx context.Context, userID int64) ([]model.Organization, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userID)
	}
	return []model.Organization{}, nil
}

type mockTeamMemberStore struct {
	createFn             func(ctx context.Context, member *model.TeamMember) error
	getByIDFn            func(ctx context.Context, id int64) (*model.TeamMember, error)
	getActiveFn          func(ctx context.Context, orgID, userID int64) (*model.TeamMember, error)
	getByInviteTokenFn   func(ctx context.Context, token string) (*model.TeamMember, error)
	getLiveByEmailFn     func(ctx context.Context, orgID int64, email string) (*model.TeamMember, error)
	countActiveFn        func(ctx context.Context, orgID int64) (int, error)
	acceptFn             func(ctx context.Context, id, userID int64, at time.Time) (*model.TeamMember, error)
	setStatusFn          func(ctx context.Context, id int64, status model.MemberStatus) error
	updateFn             func(ctx context.Context, member *model.TeamMember) error
	listByOrganizationFn func(ctx context.Context, orgID int64) ([]model.TeamMember, error)
	createCalls          int
}

func (m *mockTeamMemberStore) Create(ctx context.Context, member *model.TeamMember) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, member)
	}
	return nil
}

func (m *mockTeamMemberStore) GetByID(ctx context.Context, id int64) (*model.TeamMember, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockTeamMemberStore) GetActive(ctx context.Context, orgID, userID int64) (*model.TeamMember, error) {
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx, orgID, userID)
	}
	return nil, store.ErrNotFound
}

func (m *mockTeamMemberStore) GetByInviteToken(ctx context.Context, token string) (*model.TeamMember, error) {
	if m.getByInviteTokenFn != nil {
		return m.getByInviteTokenFn(ctx, token)
	}
	return nil, store.ErrNotFound
}

func (m *mockTeamMemberStore) GetLiveByEmail(ctx context.Context, orgID int64, email string) (*model.TeamMember, error) {
	if m.getLiveByEmailFn != nil {
		return m.getLiveByEmailFn(ctx, orgID, email)
	}
	return nil, store.ErrNotFound
}

func (m *mockTeamMemberStore) CountActive(ctx context.Context, orgID int64) (int, error) {
	if m.countActiveFn != nil {
		return m.countActiveFn(ctx, orgID)
	}
	return 0, nil
}

func (m *mockTeamMemberStore) Accept(ctx context.Context, id, userID int64, at time.Time) (*model.TeamMember, error) {
	if m.acceptFn != nil {
		return m.acceptFn(ctx, id, userID, at)
	}
	return nil, store.ErrNotFound
}

func (m *mockTeamMemberStore) SetStatus(ctx context.Context, id int64, status model.MemberStatus) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockTeamMemberStore) Update(ctx context.Context, member *model.TeamMember) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, member)
	}
	return nil
}

func (m *mockTeamMemberStore) ListByOrganization(ctx context.Context, orgID int64) ([]model.TeamMember, error) {
	if m.listByOrganizationFn != nil {
		return m.listByOrganizationFn(ctx, orgID)
	}
	return []model.TeamMember{}, nil
}

type mockBusinessStore struct {
	createFn                func(ctx context.Context, biz *model.Business) error
	getByIDFn               func(ctx context.Context, id int64) (*model.Business, error)
	updateFn                func(ctx context.Context, biz *model.Business) error
	archiveFn               func(ctx context.Context, id, actorID int64, at time.Time) error
	listByOrganizationFn    func(ctx context.Context, orgID int64) ([]model.Business, error)
	listByIDsFn             func(ctx context.Context, orgID int64, ids []int64) ([]model.Business, error)
	listIDsByOrganizationFn func(ctx context.Context, orgID int64) ([]int64, error)
	countActiveFn           func(ctx context.Context, orgID int64) (int, error)
	lockForBalanceFn        func(ctx context.Context, id int64) (*model.Business, error)
	updateBalanceFn         func(ctx context.Context, id int64, balance decimal.Decimal, at time.Time) error
	lockCalls               int
}

func (m *mockBusinessStore) Create(ctx context.Context, biz *model.Business) error {
	if m.createFn != nil {
		return m.createFn(ctx, biz)
	}
	return nil
}

func (m *mockBusinessStore) GetByID(ctx context.Context, id int64) (*model.Business, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockBusinessStore) Update(ctx context.Context, biz *model.Business) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, biz)
	}
	return nil
}

func (m *mockBusinessStore) Archive(ctx context.Context, id, actorID int64, at time.Time) error {
	if m.archiveFn != nil {
		return m.archiveFn(ctx, id, actorID, at)
	}
	return nil
}

func (m *mockBusinessStore) ListByOrganization(ctx context.Context, orgID int64) ([]model.Business, error) {
	if m.listByOrganizationFn != nil {
		return m.listByOrganizationFn(ctx, orgID)
	}
	return []model.Business{}, nil
}

func (m *mockBusinessStore) ListByIDs(ctx context.Context, orgID int64, ids []int64) ([]model.Business, error) {
	if m.listByIDsFn != nil {
		return m.listByIDsFn(ctx, orgID, ids)
	}
	return []model.Business{}, nil
}

func (m *mockBusinessStore) ListIDsByOrganization(ctx context.Context, orgID int64) ([]int64, error) {
	if m.listIDsByOrganizationFn != nil {
		return m.listIDsByOrganizationFn(ctx, orgID)
	}
	return []int64{}, nil
}

func (m *mockBusinessStore) CountActive(ctx context.Context, orgID int64) (int, error) {
	if m.countActiveFn != nil {
		return m.countActiveFn(ctx, orgID)
	}
	return 0, nil
}

func (m *mockBusinessStore) LockForBalance(ctx context.Context, id int64) (*model.Business, error) {
	m.lockCalls++
	if m.lockForBalanceFn != nil {
		return m.lockForBalanceFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockBusinessStore) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, at time.Time) error {
	if m.updateBalanceFn != nil {
		return m.updateBalanceFn(ctx, id, balance, at)
	}
	return nil
}

type mockBankAccountStore struct {
	createFn         func(ctx context.Context, account *model.BankAccount) error
	getByIDFn        func(ctx context.Context, id int64) (*model.BankAccount, error)
	listByBusinessFn func(ctx context.Context, businessID int64) ([]model.BankAccount, error)
	setSyncStatusFn  func(ctx context.Context, id int64, status model.SyncStatus, syncErr *string, at time.Time) error
}

func (m *mockBankAccountStore) Create(ctx context.Context, account *model.BankAccount) error {
	if m.createFn != nil {
		return m.createFn(ctx, account)
	}
	return nil
}

func (m *mockBankAccountStore) GetByID(ctx context.Context, id int64) (*model.BankAccount, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockBankAccountStore) ListByBusiness(ctx context.Context, businessID int64) ([]model.BankAccount, error) {
	if m.listByBusinessFn != nil {
		return m.listByBusinessFn(ctx, businessID)
	}
	return []model.BankAccount{}, nil
}

func (m *mockBankAccountStore) SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus, syncErr *string, at time.Time) error {
	if m.setSyncStatusFn != nil {
		return m.setSyncStatusFn(ctx, id, status, syncErr, at)
	}
	return nil
}

type mockTransactionStore struct {
	createFn          func(ctx context.Context, txn *model.Transaction) error
	getByIDFn         func(ctx context.Context, id int64) (*model.Transaction, error)
	updateFn          func(ctx context.Context, txn *model.Transaction) error
	voidFn            func(ctx context.Context, id, actorID int64, reason string, at time.Time) (*model.Transaction, error)
	setTransferPairFn func(ctx context.Context, id, pairID int64) error
	listFn            func(ctx context.Context, filter store.TransactionFilter) ([]model.Transaction, error)
	summarizeFn       func(ctx context.Context, filter store.TransactionFilter) (*store.TransactionSummary, error)
	sumSignedFn       func(ctx context.Context, businessID int64, statuses []model.TransactionStatus) (decimal.Decimal, error)
	createCalls       int
	pairCalls         int
}

func (m *mockTransactionStore) Create(ctx context.Context, txn *model.Transaction) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, txn)
	}
	return nil
}

func (m *mockTransactionStore) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockTransactionStore) Update(ctx context.Context, txn *model.Transaction) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, txn)
	}
	return nil
}

func (m *mockTransactionStore) Void(ctx context.Context, id, actorID int64, reason string, at time.Time) (*model.Transaction, error) {
	if m.voidFn != nil {
		return m.voidFn(ctx, id, actorID, reason, at)
	}
	return nil, store.ErrNotFound
}

func (m *mockTransactionStore) SetTransferPair(ctx context.Context, id, pairID int64) error {
	m.pairCalls++
	if m.setTransferPairFn != nil {
		return m.setTransferPairFn(ctx, id, pairID)
	}
	return nil
}

func (m *mockTransactionStore) List(ctx context.Context, filter store.TransactionFilter) ([]model.Transaction, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []model.Transaction{}, nil
}

func (m *mockTransactionStore) Summarize(ctx context.Context, filter store.TransactionFilter) (*store.TransactionSummary, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, filter)
	}
	return &store.TransactionSummary{}, nil
}

func (m *mockTransactionStore) SumSigned(ctx context.Context, businessID int64, statuses []model.TransactionStatus) (decimal.Decimal, error) {
	if m.sumSignedFn != nil {
		return m.sumSignedFn(ctx, businessID, statuses)
	}
	return decimal.Zero, nil
}

type mockCategoryStore struct {
	createFn     func(ctx context.Context, cat *model.Category) error
	getByIDFn    func(ctx context.Context, id int64) (*model.Category, error)
	getBySlugFn  func(ctx context.Context, orgID *int64, slug string) (*model.Category, error)
	updateFn     func(ctx context.Context, cat *model.Category) error
	listActiveFn func(ctx context.Context, orgID *int64) ([]model.Category, error)
}

func (m *mockCategoryStore) Create(ctx context.Context, cat *model.Category) error {
	if m.createFn != nil {
		return m.createFn(ctx, cat)
	}
	return nil
}

func (m *mockCategoryStore) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockCategoryStore) GetBySlug(ctx context.Context, orgID *int64, slug string) (*model.Category, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, orgID, slug)
	}
	return nil, store.ErrNotFound
}

func (m *mockCategoryStore) Update(ctx context.Context, cat *model.Category) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, cat)
	}
	return nil
}

func (m *mockCategoryStore) ListActive(ctx context.Context, orgID *int64) ([]model.Category, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, orgID)
	}
	return []model.Category{}, nil
}

type mockAlertRuleStore struct {
	createFn             func(ctx context.Context, rule *model.AlertRule) error
	getByIDFn            func(ctx context.Context, id int64) (*model.AlertRule, error)
	updateFn             func(ctx context.Context, rule *model.AlertRule) error
	listActiveForEventFn func(ctx context.Context, orgID int64, businessID int64, alertType model.AlertType) ([]model.AlertRule, error)
	listByOrganizationFn func(ctx context.Context, orgID int64) ([]model.AlertRule, error)
	markTriggeredFn      func(ctx context.Context, id int64, at time.Time) error
	markTriggeredCalls   int
}

func (m *mockAlertRuleStore) Create(ctx context.Context, rule *model.AlertRule) error {
	if m.createFn != nil {
		return m.createFn(ctx, rule)
	}
	return nil
}

func (m *mockAlertRuleStore) GetByID(ctx context.Context, id int64) (*model.AlertRule, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockAlertRuleStore) Update(ctx context.Context, rule *model.AlertRule) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, rule)
	}
	return nil
}

func (m *mockAlertRuleStore) ListActiveForEvent(ctx context.Context, orgID int64, businessID int64, alertType model.AlertType) ([]model.AlertRule, error) {
	if m.listActiveForEventFn != nil {
		return m.listActiveForEventFn(ctx, orgID, businessID, alertType)
	}
	return []model.AlertRule{}, nil
}

func (m *mockAlertRuleStore) ListByOrganization(ctx context.Context, orgID int64) ([]model.AlertRule, error) {
	if m.listByOrganizationFn != nil {
		return m.listByOrganizationFn(ctx, orgID)
	}
	return []model.AlertRule{}, nil
}

func (m *mockAlertRuleStore) MarkTriggered(ctx context.Context, id int64, at time.Time) error {
	m.markTriggeredCalls++
	if m.markTriggeredFn != nil {
		return m.markTriggeredFn(ctx, id, at)
	}
	return nil
}

type mockAlertStore struct {
	createFn             func(ctx context.Context, alert *model.Alert) error
	getByIDFn            func(ctx context.Context, id int64) (*model.Alert, error)
	listByOrganizationFn func(ctx context.Context, orgID int64, status *model.AlertStatus, limit, offset int32) ([]model.Alert, error)
	markReadFn           func(ctx context.Context, id, userID int64, at time.Time) (*model.Alert, error)
	dismissFn            func(ctx context.Context, id, userID int64, at time.Time) (*model.Alert, error)
	markActionedFn       func(ctx context.Context, id int64, at time.Time) (*model.Alert, error)
	createCalls          int
}

func (m *mockAlertStore) Create(ctx context.Context, alert *model.Alert) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, alert)
	}
	return nil
}

func (m *mockAlertStore) GetByID(ctx context.Context, id int64) (*model.Alert, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockAlertStore) ListByOrganization(ctx context.Context, orgID int64, status *model.AlertStatus, limit, offset int32) ([]model.Alert, error) {
	if m.listByOrganizationFn != nil {
		return m.listByOrganizationFn(ctx, orgID, status, limit, offset)
	}
	return []model.Alert{}, nil
}

func (m *mockAlertStore) MarkRead(ctx context.Context, id, userID int64, at time.Time) (*model.Alert, error) {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, id, userID, at)
	}
	return nil, store.ErrNotFound
}

func (m *mockAlertStore) Dismiss(ctx context.Context, id, userID int64, at time.Time) (*model.Alert, error) {
	if m.dismissFn != nil {
		return m.dismissFn(ctx, id, userID, at)
	}
	return nil, store.ErrNotFound
}

func (m *mockAlertStore) MarkActioned(ctx context.Context, id int64, at time.Time) (*model.Alert, error) {
	if m.markActionedFn != nil {
		return m.markActionedFn(ctx, id, at)
	}
	return nil, store.ErrNotFound
}

// mockStoreProvider hands the same mocks back inside transactions so tests can
// observe writes made through the tx runner.
type mockStoreProvider struct {
	orgs         store.OrganizationStore
	members      store.TeamMemberStore
	businesses   store.BusinessStore
	bankAccounts store.BankAccountStore
	transactions store.TransactionStore
	alertRules   store.AlertRuleStore
	alerts       store.AlertStore
}

func (m *mockStoreProvider) Organizations() store.OrganizationStore {
	return m.orgs
}

func (m *mockStoreProvider) TeamMembers() store.TeamMemberStore {
	return m.members
}

func (m *mockStoreProvider) Businesses() store.BusinessStore {
	return m.businesses
}

func (m *mockStoreProvider) BankAccounts() store.BankAccountStore {
	return m.bankAccounts
}

func (m *mockStoreProvider) Transactions() store.TransactionStore {
	return m.transactions
}

func (m *mockStoreProvider) AlertRules() store.AlertRuleStore {
	return m.alertRules
}

func (m *mockStoreProvider) Alerts() store.AlertStore {
	return m.alerts
}

type mockTxRunner struct {
	provider service.StoreProvider
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	if m.provider != nil {
		return fn(m.provider)
	}
	return fn(&mockStoreProvider{})
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, event queue.LedgerEvent) error
	events    []queue.LedgerEvent
}

func (m *mockProducer) Enqueue(ctx context.Context, event queue.LedgerEvent) error {
	m.events = append(m.events, event)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, event)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }
