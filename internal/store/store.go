package store

import (
	"errors"

	"github.com/kudihq/kudi/core/db"
)

// ErrNotFound is returned when a row does not exist. Services translate it
// into the domain error taxonomy; stores never decide between NotFound and
// Forbidden.
var ErrNotFound = errors.New("record not found")

// Stores bundles typed accessors over a single DBTX. Bind it to a pool for
// plain reads or to a transaction (via service.TxRunner) for atomic units of
// work.
type Stores struct {
	db db.DBTX
}

func NewStores(dbtx db.DBTX) *Stores {
	return &Stores{db: dbtx}
}

func (s *Stores) Users() UserStore                 { return &userStore{db: s.db} }
func (s *Stores) Sessions() SessionStore           { return &sessionStore{db: s.db} }
func (s *Stores) Organizations() OrganizationStore { return &organizationStore{db: s.db} }
func (s *Stores) TeamMembers() TeamMemberStore     { return &teamMemberStore{db: s.db} }
func (s *Stores) Businesses() BusinessStore        { return &businessStore{db: s.db} }
func (s *Stores) BankAccounts() BankAccountStore   { return &bankAccountStore{db: s.db} }
func (s *Stores) Transactions() TransactionStore   { return &transactionStore{db: s.db} }
func (s *Stores) Categories() CategoryStore        { return &categoryStore{db: s.db} }
func (s *Stores) AlertRules() AlertRuleStore       { return &alertRuleStore{db: s.db} }
func (s *Stores) Alerts() AlertStore               { return &alertStore{db: s.db} }
