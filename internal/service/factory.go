package service

import (
	"github.com/kudihq/kudi/core/config"
	"github.com/kudihq/kudi/internal/queue"
	"github.com/kudihq/kudi/internal/store"
)

type Services struct {
	stores       *store.Stores
	txRunner     TxRunner
	producer     queue.Producer
	workOSCfg    config.WorkOSConfig
	dashboardURL string
}

func NewServices(stores *store.Stores, txRunner TxRunner, producer queue.Producer, workOSCfg config.WorkOSConfig, dashboardURL string) *Services {
	return &Services{
		stores:       stores,
		txRunner:     txRunner,
		producer:     producer,
		workOSCfg:    workOSCfg,
		dashboardURL: dashboardURL,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users(), s.stores.Sessions(), s.workOSCfg)
}

func (s *Services) Access() AccessService {
	return NewAccessService(s.stores.TeamMembers(), s.stores.Businesses())
}

func (s *Services) Organizations() OrganizationService {
	return NewOrganizationService(
		s.stores.Organizations(),
		s.stores.TeamMembers(),
		s.Access(),
		s.txRunner,
		s.dashboardURL,
	)
}

func (s *Services) Balances() BalanceService {
	return NewBalanceService(s.txRunner)
}

func (s *Services) Businesses() BusinessService {
	return NewBusinessService(
		s.stores.Organizations(),
		s.stores.Businesses(),
		s.stores.BankAccounts(),
		s.Access(),
		s.Balances(),
		s.producer,
	)
}

func (s *Services) Categories() CategoryService {
	return NewCategoryService(s.stores.Categories(), s.Access())
}

func (s *Services) Ledger() LedgerService {
	return NewLedgerService(
		s.stores.Transactions(),
		s.Access(),
		s.Categories(),
		s.Balances(),
		s.txRunner,
		s.producer,
	)
}

func (s *Services) Alerts() AlertService {
	return NewAlertService(
		s.stores.AlertRules(),
		s.stores.Alerts(),
		s.stores.Businesses(),
		s.stores.Transactions(),
		s.Access(),
	)
}
