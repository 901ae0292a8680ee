package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/common/id"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/queue"
	"github.com/kudihq/kudi/internal/store"
)

// BusinessParams carries the caller-editable business fields.
type BusinessParams struct {
	Name               string
	ShortName          *string
	Description        *string
	Industry           model.Industry
	BusinessType       *model.BusinessType
	PrimaryCurrency    string
	OpeningBalance     decimal.Decimal
	OpeningBalanceDate *time.Time
}

// BankAccountParams describes a bank account connection.
type BankAccountParams struct {
	BankName          string
	AccountName       *string
	AccountNumber     string
	Currency          string
	Provider          model.BankProvider
	ProviderAccountID *string
}

type BusinessService interface {
	Create(ctx context.Context, orgID, actorUserID int64, params BusinessParams) (*model.Business, error)
	Get(ctx context.Context, orgID, userID, businessID int64) (*model.Business, error)
	List(ctx context.Context, orgID, userID int64) ([]model.Business, error)
	Update(ctx context.Context, orgID, actorUserID, businessID int64, params BusinessParams) (*model.Business, error)
	Archive(ctx context.Context, orgID, actorUserID, businessID int64) error
	// Recalculate forces a balance rebuild, for drift repair.
	Recalculate(ctx context.Context, orgID, actorUserID, businessID int64) (decimal.Decimal, error)

	ConnectBankAccount(ctx context.Context, orgID, actorUserID, businessID int64, params BankAccountParams) (*model.BankAccount, error)
	ListBankAccounts(ctx context.Context, orgID, userID, businessID int64) ([]model.BankAccount, error)
	// RecordSyncFailure marks the account failed and emits a sync_failed
	// event for alerting. Called from provider webhook handling.
	RecordSyncFailure(ctx context.Context, bankAccountID int64, syncErr string) error
}

type businessService struct {
	orgStore         store.OrganizationStore
	businessStore    store.BusinessStore
	bankAccountStore store.BankAccountStore
	access           AccessService
	balance          BalanceService
	producer         queue.Producer
}

func NewBusinessService(
	orgStore store.OrganizationStore,
	businessStore store.BusinessStore,
	bankAccountStore store.BankAccountStore,
	access AccessService,
	balance BalanceService,
	producer queue.Producer,
) BusinessService {
	return &businessService{
		orgStore:         orgStore,
		businessStore:    businessStore,
		bankAccountStore: bankAccountStore,
		access:           access,
		balance:          balance,
		producer:         producer,
	}
}

func (s *businessService) Create(ctx context.Context, orgID, actorUserID int64, params BusinessParams) (*model.Business, error) {
	actor, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, Validation("business name is required")
	}

	org, err := s.orgStore.GetByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}

	if limit := org.Limits().Businesses; limit != model.Unlimited {
		count, err := s.businessStore.CountActive(ctx, orgID)
		if err != nil {
			return nil, fmt.Errorf("counting businesses: %w", err)
		}
		if count >= limit {
			return nil, ErrLimitReached
		}
	}

	currency := params.PrimaryCurrency
	if currency == "" {
		currency = model.BaseCurrency
	}

	biz := &model.Business{
		ID:                 id.New(),
		OrganizationID:     orgID,
		Name:               params.Name,
		ShortName:          params.ShortName,
		Description:        params.Description,
		Industry:           params.Industry,
		BusinessType:       params.BusinessType,
		PrimaryCurrency:    currency,
		OpeningBalance:     params.OpeningBalance,
		OpeningBalanceDate: params.OpeningBalanceDate,
		CreatedBy:          &actor.ID,
	}

	if err := s.businessStore.Create(ctx, biz); err != nil {
		return nil, fmt.Errorf("creating business: %w", err)
	}

	slog.InfoContext(ctx, "business created",
		"organization_id", orgID,
		"business_id", biz.ID,
		"name", biz.Name,
	)

	return biz, nil
}

func (s *businessService) Get(ctx context.Context, orgID, userID, businessID int64) (*model.Business, error) {
	member, err := s.access.Resolve(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	return s.access.ResolveBusiness(ctx, member, businessID)
}

func (s *businessService) List(ctx context.Context, orgID, userID int64) ([]model.Business, error) {
	member, err := s.access.Resolve(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	if member.CanAccessAllBusinesses() {
		return s.businessStore.ListByOrganization(ctx, orgID)
	}
	return s.businessStore.ListByIDs(ctx, orgID, member.BusinessAccess)
}

func (s *businessService) Update(ctx context.Context, orgID, actorUserID, businessID int64, params BusinessParams) (*model.Business, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses)
	if err != nil {
		return nil, err
	}
	biz, err := s.access.ResolveBusiness(ctx, member, businessID)
	if err != nil {
		return nil, err
	}
	if biz.IsArchived() {
		return nil, Validation("archived businesses cannot be modified")
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, Validation("business name is required")
	}

	openingChanged := !biz.OpeningBalance.Equal(params.OpeningBalance)

	biz.Name = params.Name
	biz.ShortName = params.ShortName
	biz.Description = params.Description
	biz.Industry = params.Industry
	biz.BusinessType = params.BusinessType
	if params.PrimaryCurrency != "" {
		biz.PrimaryCurrency = params.PrimaryCurrency
	}
	biz.OpeningBalance = params.OpeningBalance
	biz.OpeningBalanceDate = params.OpeningBalanceDate

	if err := s.businessStore.Update(ctx, biz); err != nil {
		return nil, fmt.Errorf("updating business: %w", err)
	}

	// Opening balance feeds the cached balance directly.
	if openingChanged {
		if _, err := s.balance.ForceRecalculate(ctx, businessID); err != nil {
			return nil, fmt.Errorf("recalculating balance: %w", err)
		}
		biz, err = s.businessStore.GetByID(ctx, businessID)
		if err != nil {
			return nil, fmt.Errorf("reloading business: %w", err)
		}
	}

	return biz, nil
}

func (s *businessService) Archive(ctx context.Context, orgID, actorUserID, businessID int64) error {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses)
	if err != nil {
		return err
	}
	if _, err := s.access.ResolveBusiness(ctx, member, businessID); err != nil {
		return err
	}

	if err := s.businessStore.Archive(ctx, businessID, actorUserID, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("archiving business: %w", err)
	}

	slog.InfoContext(ctx, "business archived",
		"organization_id", orgID,
		"business_id", businessID,
		"archived_by", actorUserID,
	)

	return nil
}

func (s *businessService) Recalculate(ctx context.Context, orgID, actorUserID, businessID int64) (decimal.Decimal, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses)
	if err != nil {
		return decimal.Zero, err
	}
	if _, err := s.access.ResolveBusiness(ctx, member, businessID); err != nil {
		return decimal.Zero, err
	}
	return s.balance.ForceRecalculate(ctx, businessID)
}

func (s *businessService) ConnectBankAccount(ctx context.Context, orgID, actorUserID, businessID int64, params BankAccountParams) (*model.BankAccount, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses)
	if err != nil {
		return nil, err
	}
	biz, err := s.access.ResolveBusiness(ctx, member, businessID)
	if err != nil {
		return nil, err
	}
	if biz.IsArchived() {
		return nil, Validation("archived businesses cannot connect bank accounts")
	}

	org, err := s.orgStore.GetByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}
	if params.Provider != model.ProviderManual && !org.Limits().BankSync {
		return nil, ErrLimitReached
	}

	account := &model.BankAccount{
		ID:                id.New(),
		BusinessID:        businessID,
		OrganizationID:    orgID,
		BankName:          params.BankName,
		AccountName:       params.AccountName,
		AccountNumber:     params.AccountNumber,
		Currency:          params.Currency,
		Provider:          params.Provider,
		ProviderAccountID: params.ProviderAccountID,
		SyncStatus:        model.SyncActive,
		ConnectedBy:       &actorUserID,
	}

	if err := s.bankAccountStore.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("creating bank account: %w", err)
	}

	slog.InfoContext(ctx, "bank account connected",
		"organization_id", orgID,
		"business_id", businessID,
		"bank_account_id", account.ID,
		"provider", account.Provider,
	)

	return account, nil
}

func (s *businessService) ListBankAccounts(ctx context.Context, orgID, userID, businessID int64) ([]model.BankAccount, error) {
	member, err := s.access.Resolve(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.ResolveBusiness(ctx, member, businessID); err != nil {
		return nil, err
	}
	return s.bankAccountStore.ListByBusiness(ctx, businessID)
}

func (s *businessService) RecordSyncFailure(ctx context.Context, bankAccountID int64, syncErr string) error {
	account, err := s.bankAccountStore.GetByID(ctx, bankAccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("getting bank account: %w", err)
	}

	if err := s.bankAccountStore.SetSyncStatus(ctx, bankAccountID, model.SyncFailed, &syncErr, time.Now()); err != nil {
		return fmt.Errorf("marking sync failed: %w", err)
	}

	event := queue.LedgerEvent{
		EventType:      queue.EventSyncFailed,
		OrganizationID: account.OrganizationID,
		BusinessID:     account.BusinessID,
		BankAccountID:  &bankAccountID,
	}
	if err := s.producer.Enqueue(ctx, event); err != nil {
		// The status change already committed; alerting catches up later.
		slog.ErrorContext(ctx, "failed to enqueue sync_failed event",
			"error", err,
			"bank_account_id", bankAccountID,
		)
	}

	return nil
}
