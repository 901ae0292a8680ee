package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/kudihq/kudi/common/id"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/queue"
	"github.com/kudihq/kudi/internal/store"
)

// TransactionParams carries caller-editable transaction fields. The derived
// base-currency amount is never accepted from callers.
type TransactionParams struct {
	BusinessID      int64
	TransactionDate time.Time
	Type            model.TransactionType
	Amount          decimal.Decimal
	Currency        string
	ExchangeRate    decimal.Decimal
	Category        string
	Subcategory     *string
	Description     string
	Notes           *string
	Reference       *string
	PaymentMethod   *model.PaymentMethod
	Status          *model.TransactionStatus
}

// TransferParams describes an atomic movement between two businesses in the
// same organization.
type TransferParams struct {
	FromBusinessID  int64
	ToBusinessID    int64
	TransactionDate time.Time
	Amount          decimal.Decimal
	Description     string
	Notes           *string
	Reference       *string
}

// ListParams narrows transaction listing. A nil BusinessID means all
// businesses the caller can access.
type ListParams struct {
	BusinessID *int64
	Type       *model.TransactionType
	Category   *string
	Status     *model.TransactionStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Limit      int32
	Offset     int32
}

type LedgerService interface {
	Create(ctx context.Context, orgID, actorUserID int64, params TransactionParams) (*model.Transaction, error)
	Get(ctx context.Context, orgID, userID, txnID int64) (*model.Transaction, error)
	List(ctx context.Context, orgID, userID int64, params ListParams) ([]model.Transaction, error)
	Summarize(ctx context.Context, orgID, userID int64, params ListParams) (*store.TransactionSummary, error)
	Update(ctx context.Context, orgID, actorUserID, txnID int64, params TransactionParams) (*model.Transaction, error)
	// Void retires a transaction without deleting it. Voiding one leg of a
	// transfer voids both.
	Void(ctx context.Context, orgID, actorUserID, txnID int64, reason string) (*model.Transaction, error)
	// Transfer records the paired counter-entries atomically and returns the
	// outgoing leg.
	Transfer(ctx context.Context, orgID, actorUserID int64, params TransferParams) (*model.Transaction, error)
}

type ledgerService struct {
	txnStore store.TransactionStore
	access   AccessService
	catalog  CategoryService
	balance  BalanceService
	txRunner TxRunner
	producer queue.Producer
}

func NewLedgerService(
	txnStore store.TransactionStore,
	access AccessService,
	catalog CategoryService,
	balance BalanceService,
	txRunner TxRunner,
	producer queue.Producer,
) LedgerService {
	return &ledgerService{
		txnStore: txnStore,
		access:   access,
		catalog:  catalog,
		balance:  balance,
		txRunner: txRunner,
		producer: producer,
	}
}

func (s *ledgerService) Create(ctx context.Context, orgID, actorUserID int64, params TransactionParams) (*model.Transaction, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermAddTransactions)
	if err != nil {
		return nil, err
	}
	biz, err := s.access.ResolveBusiness(ctx, member, params.BusinessID)
	if err != nil {
		return nil, err
	}
	if biz.IsArchived() {
		return nil, Validation("archived businesses cannot take new transactions")
	}

	if params.Type != model.TypeIncome && params.Type != model.TypeExpense {
		return nil, Validation("transaction type must be income or expense")
	}

	txn, err := s.buildTransaction(ctx, orgID, actorUserID, params)
	if err != nil {
		return nil, err
	}

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Transactions().Create(ctx, txn); err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
		if _, err := s.balance.Recalculate(ctx, stores, txn.BusinessID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "transaction created",
		"organization_id", orgID,
		"business_id", txn.BusinessID,
		"transaction_id", txn.ID,
		"transaction_type", txn.Type,
		"amount_ngn", txn.AmountNGN.String(),
	)

	s.enqueueEvent(ctx, queue.EventTransactionCreated, txn)
	return txn, nil
}

func (s *ledgerService) Get(ctx context.Context, orgID, userID, txnID int64) (*model.Transaction, error) {
	member, err := s.access.Resolve(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveTransaction(ctx, member, txnID)
}

func (s *ledgerService) List(ctx context.Context, orgID, userID int64, params ListParams) ([]model.Transaction, error) {
	member, err := s.access.Resolve(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	filter, err := s.buildFilter(ctx, member, params)
	if err != nil {
		return nil, err
	}
	return s.txnStore.List(ctx, filter)
}

func (s *ledgerService) Summarize(ctx context.Context, orgID, userID int64, params ListParams) (*store.TransactionSummary, error) {
	member, err := s.access.RequirePermission(ctx, orgID, userID, model.PermViewReports)
	if err != nil {
		return nil, err
	}
	filter, err := s.buildFilter(ctx, member, params)
	if err != nil {
		return nil, err
	}
	return s.txnStore.Summarize(ctx, filter)
}

func (s *ledgerService) Update(ctx context.Context, orgID, actorUserID, txnID int64, params TransactionParams) (*model.Transaction, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermEditTransactions)
	if err != nil {
		return nil, err
	}
	existing, err := s.resolveTransaction(ctx, member, txnID)
	if err != nil {
		return nil, err
	}
	if existing.IsVoided() {
		return nil, ErrVoided
	}
	if existing.Type == model.TypeTransfer {
		return nil, Validation("transfer legs cannot be edited, void the transfer instead")
	}
	if params.Type != model.TypeIncome && params.Type != model.TypeExpense {
		return nil, Validation("transaction type must be income or expense")
	}
	if params.BusinessID != existing.BusinessID {
		return nil, Validation("transactions cannot move between businesses")
	}

	status := existing.Status
	if params.Status != nil && *params.Status != existing.Status {
		if !validStatusTransition(existing.Status, *params.Status) {
			return nil, Validation(fmt.Sprintf("cannot move a %s transaction to %s", existing.Status, *params.Status))
		}
		status = *params.Status
	}

	updated, err := s.buildTransaction(ctx, orgID, actorUserID, params)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.Status = status
	updated.UpdatedBy = &actorUserID

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Transactions().Update(ctx, updated); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrVoided
			}
			return fmt.Errorf("updating transaction: %w", err)
		}
		if _, err := s.balance.Recalculate(ctx, stores, updated.BusinessID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "transaction updated",
		"organization_id", orgID,
		"business_id", updated.BusinessID,
		"transaction_id", updated.ID,
		"status", updated.Status,
	)

	s.enqueueEvent(ctx, queue.EventTransactionUpdated, updated)
	return updated, nil
}

func (s *ledgerService) Void(ctx context.Context, orgID, actorUserID, txnID int64, reason string) (*model.Transaction, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermDeleteTransactions)
	if err != nil {
		return nil, err
	}
	existing, err := s.resolveTransaction(ctx, member, txnID)
	if err != nil {
		return nil, err
	}
	if existing.IsVoided() {
		return nil, ErrAlreadyVoided
	}

	now := time.Now()
	var voided *model.Transaction
	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		v, err := stores.Transactions().Void(ctx, txnID, actorUserID, reason, now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAlreadyVoided
			}
			return fmt.Errorf("voiding transaction: %w", err)
		}
		voided = v

		if _, err := s.balance.Recalculate(ctx, stores, v.BusinessID); err != nil {
			return err
		}

		// A transfer leg never voids alone.
		if v.TransferPairID != nil {
			pair, err := stores.Transactions().Void(ctx, *v.TransferPairID, actorUserID, reason, now)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("voiding transfer pair: %w", err)
			}
			if pair != nil {
				if _, err := s.balance.Recalculate(ctx, stores, pair.BusinessID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "transaction voided",
		"organization_id", orgID,
		"business_id", voided.BusinessID,
		"transaction_id", voided.ID,
		"voided_by", actorUserID,
	)

	s.enqueueEvent(ctx, queue.EventTransactionVoided, voided)
	return voided, nil
}

func (s *ledgerService) Transfer(ctx context.Context, orgID, actorUserID int64, params TransferParams) (*model.Transaction, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermAddTransactions)
	if err != nil {
		return nil, err
	}
	if params.FromBusinessID == params.ToBusinessID {
		return nil, Validation("transfer source and destination must differ")
	}
	if !params.Amount.IsPositive() {
		return nil, Validation("transfer amount must be positive")
	}

	from, err := s.access.ResolveBusiness(ctx, member, params.FromBusinessID)
	if err != nil {
		return nil, err
	}
	to, err := s.access.ResolveBusiness(ctx, member, params.ToBusinessID)
	if err != nil {
		return nil, err
	}
	if from.IsArchived() || to.IsArchived() {
		return nil, Validation("archived businesses cannot take transfers")
	}

	date := params.TransactionDate
	if date.IsZero() {
		date = time.Now()
	}

	outgoing := s.transferLeg(orgID, actorUserID, params, date, params.FromBusinessID, params.ToBusinessID)
	incoming := s.transferLeg(orgID, actorUserID, params, date, params.ToBusinessID, params.FromBusinessID)

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Transactions().Create(ctx, outgoing); err != nil {
			return fmt.Errorf("creating outgoing leg: %w", err)
		}
		if err := stores.Transactions().Create(ctx, incoming); err != nil {
			return fmt.Errorf("creating incoming leg: %w", err)
		}
		if err := stores.Transactions().SetTransferPair(ctx, outgoing.ID, incoming.ID); err != nil {
			return fmt.Errorf("pairing outgoing leg: %w", err)
		}
		if err := stores.Transactions().SetTransferPair(ctx, incoming.ID, outgoing.ID); err != nil {
			return fmt.Errorf("pairing incoming leg: %w", err)
		}

		// Lock in a stable order so concurrent transfers between the same
		// pair of businesses cannot deadlock.
		first, second := params.FromBusinessID, params.ToBusinessID
		if second < first {
			first, second = second, first
		}
		if _, err := s.balance.Recalculate(ctx, stores, first); err != nil {
			return err
		}
		if _, err := s.balance.Recalculate(ctx, stores, second); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		var domainErr *Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "transfer failed",
			"error", err,
			"organization_id", orgID,
			"from_business_id", params.FromBusinessID,
			"to_business_id", params.ToBusinessID,
		)
		return nil, ErrTransferFailed
	}
	outgoing.TransferPairID = &incoming.ID

	slog.InfoContext(ctx, "transfer recorded",
		"organization_id", orgID,
		"from_business_id", params.FromBusinessID,
		"to_business_id", params.ToBusinessID,
		"amount", params.Amount.String(),
	)

	s.enqueueEvent(ctx, queue.EventTransactionCreated, outgoing)
	return outgoing, nil
}

func (s *ledgerService) transferLeg(orgID, actorUserID int64, params TransferParams, date time.Time, businessID, counterpartID int64) *model.Transaction {
	return &model.Transaction{
		ID:                   id.New(),
		OrganizationID:       orgID,
		BusinessID:           businessID,
		TransactionDate:      date,
		Type:                 model.TypeTransfer,
		Amount:               params.Amount,
		Currency:             model.BaseCurrency,
		ExchangeRate:         decimal.NewFromInt(1),
		AmountNGN:            params.Amount,
		Category:             "transfer",
		Description:          params.Description,
		Notes:                params.Notes,
		Reference:            params.Reference,
		TransferToBusinessID: &counterpartID,
		Status:               model.StatusConfirmed,
		CreatedBy:            &actorUserID,
	}
}

func (s *ledgerService) buildTransaction(ctx context.Context, orgID, actorUserID int64, params TransactionParams) (*model.Transaction, error) {
	if !params.Amount.IsPositive() {
		return nil, Validation("amount must be positive")
	}
	if params.TransactionDate.IsZero() {
		return nil, Validation("transaction date is required")
	}
	if strings.TrimSpace(params.Category) == "" {
		return nil, Validation("category is required")
	}

	currency := params.Currency
	if currency == "" {
		currency = model.BaseCurrency
	}
	rate := params.ExchangeRate
	if currency == model.BaseCurrency {
		rate = decimal.NewFromInt(1)
	} else if !rate.IsPositive() {
		return nil, Validation("exchange rate must be positive for foreign currency transactions")
	}

	if err := s.catalog.Validate(ctx, orgID, params.Category, params.Subcategory, params.Type); err != nil {
		return nil, err
	}

	status := model.StatusConfirmed
	if params.Status != nil {
		switch *params.Status {
		case model.StatusPending, model.StatusConfirmed:
			status = *params.Status
		default:
			return nil, Validation("new transactions must be pending or confirmed")
		}
	}

	return &model.Transaction{
		ID:              id.New(),
		OrganizationID:  orgID,
		BusinessID:      params.BusinessID,
		TransactionDate: params.TransactionDate,
		Type:            params.Type,
		Amount:          params.Amount,
		Currency:        currency,
		ExchangeRate:    rate,
		AmountNGN:       model.ComputeAmountNGN(params.Amount, currency, rate),
		Category:        params.Category,
		Subcategory:     params.Subcategory,
		Description:     params.Description,
		Notes:           params.Notes,
		Reference:       params.Reference,
		PaymentMethod:   params.PaymentMethod,
		Status:          status,
		CreatedBy:       &actorUserID,
	}, nil
}

func (s *ledgerService) resolveTransaction(ctx context.Context, member *model.TeamMember, txnID int64) (*model.Transaction, error) {
	txn, err := s.txnStore.GetByID(ctx, txnID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	if txn.OrganizationID != member.OrganizationID {
		return nil, ErrNotFound
	}
	if _, err := s.access.ResolveBusiness(ctx, member, txn.BusinessID); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) buildFilter(ctx context.Context, member *model.TeamMember, params ListParams) (store.TransactionFilter, error) {
	var businessIDs []int64
	if params.BusinessID != nil {
		if _, err := s.access.ResolveBusiness(ctx, member, *params.BusinessID); err != nil {
			return store.TransactionFilter{}, err
		}
		businessIDs = []int64{*params.BusinessID}
	} else {
		ids, err := s.access.AccessibleBusinessIDs(ctx, member)
		if err != nil {
			return store.TransactionFilter{}, err
		}
		businessIDs = ids
	}

	return store.TransactionFilter{
		BusinessIDs: businessIDs,
		Type:        params.Type,
		Category:    params.Category,
		Status:      params.Status,
		DateFrom:    params.DateFrom,
		DateTo:      params.DateTo,
		MinAmount:   params.MinAmount,
		MaxAmount:   params.MaxAmount,
		Limit:       params.Limit,
		Offset:      params.Offset,
	}, nil
}

func (s *ledgerService) enqueueEvent(ctx context.Context, eventType queue.EventType, txn *model.Transaction) {
	var traceID *string
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		t := sc.TraceID().String()
		traceID = &t
	}

	event := queue.LedgerEvent{
		EventType:      eventType,
		OrganizationID: txn.OrganizationID,
		BusinessID:     txn.BusinessID,
		TransactionID:  &txn.ID,
		TraceID:        traceID,
	}
	if err := s.producer.Enqueue(ctx, event); err != nil {
		// The write already committed; alert evaluation is best-effort.
		slog.ErrorContext(ctx, "failed to enqueue ledger event",
			"error", err,
			"event_type", eventType,
			"transaction_id", txn.ID,
		)
	}
}

// validStatusTransition enforces the forward-only lifecycle
// pending -> confirmed -> reconciled. Voiding goes through Void.
func validStatusTransition(from, to model.TransactionStatus) bool {
	switch from {
	case model.StatusPending:
		return to == model.StatusConfirmed
	case model.StatusConfirmed:
		return to == model.StatusReconciled
	default:
		return false
	}
}
