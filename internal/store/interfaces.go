package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/internal/model"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpsertByWorkOSID(ctx context.Context, user *model.User) error
}

type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	Delete(ctx context.Context, id int64) error
}

type OrganizationStore interface {
	Create(ctx context.Context, org *model.Organization) error
	GetByID(ctx context.Context, id int64) (*model.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*model.Organization, error)
	Update(ctx context.Context, org *model.Organization) error
	SoftDelete(ctx context.Context, id int64) error
	ListForUser(ctx context.Context, userID int64) ([]model.Organization, error)
}

type TeamMemberStore interface {
	Create(ctx context.Context, member *model.TeamMember) error
	GetByID(ctx context.Context, id int64) (*model.TeamMember, error)
	// GetActive returns the active membership joining (organization, user).
	GetActive(ctx context.Context, orgID, userID int64) (*model.TeamMember, error)
	GetByInviteToken(ctx context.Context, token string) (*model.TeamMember, error)
	// GetLiveByEmail finds a pending or active member invited under email.
	GetLiveByEmail(ctx context.Context, orgID int64, email string) (*model.TeamMember, error)
	CountActive(ctx context.Context, orgID int64) (int, error)
	Accept(ctx context.Context, id, userID int64, at time.Time) (*model.TeamMember, error)
	SetStatus(ctx context.Context, id int64, status model.MemberStatus) error
	Update(ctx context.Context, member *model.TeamMember) error
	ListByOrganization(ctx context.Context, orgID int64) ([]model.TeamMember, error)
}

type BusinessStore interface {
	Create(ctx context.Context, biz *model.Business) error
	GetByID(ctx context.Context, id int64) (*model.Business, error)
	Update(ctx context.Context, biz *model.Business) error
	Archive(ctx context.Context, id, actorID int64, at time.Time) error
	ListByOrganization(ctx context.Context, orgID int64) ([]model.Business, error)
	ListByIDs(ctx context.Context, orgID int64, ids []int64) ([]model.Business, error)
	ListIDsByOrganization(ctx context.Context, orgID int64) ([]int64, error)
	CountActive(ctx context.Context, orgID int64) (int, error)
	// LockForBalance acquires a row-level lock on the business for the
	// duration of the surrounding transaction. This is the serialization
	// point for balance recomputation across processes.
	LockForBalance(ctx context.Context, id int64) (*model.Business, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, at time.Time) error
}

type BankAccountStore interface {
	Create(ctx context.Context, account *model.BankAccount) error
	GetByID(ctx context.Context, id int64) (*model.BankAccount, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]model.BankAccount, error)
	SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus, syncErr *string, at time.Time) error
}

// TransactionFilter narrows List and Summarize. BusinessIDs is mandatory:
// callers must pass the pre-resolved accessible set, an empty slice yields
// nothing.
type TransactionFilter struct {
	BusinessIDs []int64
	Type        *model.TransactionType
	Category    *string
	Status      *model.TransactionStatus
	DateFrom    *time.Time
	DateTo      *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Limit       int32
	Offset      int32
}

// TransactionSummary aggregates the filtered set in base currency.
type TransactionSummary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Count        int64
}

type TransactionStore interface {
	Create(ctx context.Context, txn *model.Transaction) error
	GetByID(ctx context.Context, id int64) (*model.Transaction, error)
	Update(ctx context.Context, txn *model.Transaction) error
	// Void flips status to voided and stamps the audit fields. Returns
	// ErrNotFound when the row is absent or already voided so the first
	// void's audit data can never be overwritten.
	Void(ctx context.Context, id, actorID int64, reason string, at time.Time) (*model.Transaction, error)
	SetTransferPair(ctx context.Context, id, pairID int64) error
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	Summarize(ctx context.Context, filter TransactionFilter) (*TransactionSummary, error)
	// SumSigned returns the signed base-currency sum over the business's
	// transactions in the given statuses: income positive, expense negative,
	// transfer zero.
	SumSigned(ctx context.Context, businessID int64, statuses []model.TransactionStatus) (decimal.Decimal, error)
}

type CategoryStore interface {
	Create(ctx context.Context, cat *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	// GetBySlug resolves a slug against the organization's custom categories
	// and the system defaults.
	GetBySlug(ctx context.Context, orgID *int64, slug string) (*model.Category, error)
	// Update writes the mutable fields of a custom category. System
	// categories are never updated through this path.
	Update(ctx context.Context, cat *model.Category) error
	// ListActive returns all active system categories plus the given
	// organization's custom ones.
	ListActive(ctx context.Context, orgID *int64) ([]model.Category, error)
}

type AlertRuleStore interface {
	Create(ctx context.Context, rule *model.AlertRule) error
	GetByID(ctx context.Context, id int64) (*model.AlertRule, error)
	Update(ctx context.Context, rule *model.AlertRule) error
	// ListActiveForEvent matches active rules by organization and type;
	// rules pinned to a business match only that business, unpinned rules
	// match all.
	ListActiveForEvent(ctx context.Context, orgID int64, businessID int64, alertType model.AlertType) ([]model.AlertRule, error)
	ListByOrganization(ctx context.Context, orgID int64) ([]model.AlertRule, error)
	MarkTriggered(ctx context.Context, id int64, at time.Time) error
}

type AlertStore interface {
	Create(ctx context.Context, alert *model.Alert) error
	GetByID(ctx context.Context, id int64) (*model.Alert, error)
	ListByOrganization(ctx context.Context, orgID int64, status *model.AlertStatus, limit, offset int32) ([]model.Alert, error)
	MarkRead(ctx context.Context, id, userID int64, at time.Time) (*model.Alert, error)
	Dismiss(ctx context.Context, id, userID int64, at time.Time) (*model.Alert, error)
	MarkActioned(ctx context.Context, id int64, at time.Time) (*model.Alert, error)
}
