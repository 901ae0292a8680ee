package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/common/id"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/queue"
	"github.com/kudihq/kudi/internal/store"
)

// unusualExpenseWindow is how far back the evaluator looks when computing the
// average expense an unusual_expense rule compares against.
const unusualExpenseWindow = 30 * 24 * time.Hour

// unusualExpenseMinSample is the minimum number of historical expenses before
// an unusual_expense rule can fire. Below it the average is noise.
const unusualExpenseMinSample = 5

// RuleParams describes a new or updated alert rule.
type RuleParams struct {
	BusinessID     *int64
	Type           model.AlertType
	Name           *string
	Description    *string
	Conditions     map[string]any
	NotifyEmail    bool
	NotifySMS      bool
	NotifyPush     bool
	NotifyWhatsApp bool
	Schedule       map[string]any
	IsActive       bool
}

type AlertService interface {
	CreateRule(ctx context.Context, orgID, actorUserID int64, params RuleParams) (*model.AlertRule, error)
	UpdateRule(ctx context.Context, orgID, actorUserID, ruleID int64, params RuleParams) (*model.AlertRule, error)
	ListRules(ctx context.Context, orgID, userID int64) ([]model.AlertRule, error)

	// Evaluate processes one ledger event against the organization's active
	// rules. Safe under at-least-once delivery: cooldown state is persisted,
	// so a redelivered event cannot double-fire a rule inside its window.
	Evaluate(ctx context.Context, event queue.LedgerEvent) error

	ListAlerts(ctx context.Context, orgID, userID int64, status *model.AlertStatus, limit, offset int32) ([]model.Alert, error)
	MarkRead(ctx context.Context, orgID, userID, alertID int64) (*model.Alert, error)
	Dismiss(ctx context.Context, orgID, userID, alertID int64) (*model.Alert, error)
	MarkActioned(ctx context.Context, orgID, userID, alertID int64) (*model.Alert, error)
}

type alertService struct {
	ruleStore     store.AlertRuleStore
	alertStore    store.AlertStore
	businessStore store.BusinessStore
	txnStore      store.TransactionStore
	access        AccessService
}

func NewAlertService(
	ruleStore store.AlertRuleStore,
	alertStore store.AlertStore,
	businessStore store.BusinessStore,
	txnStore store.TransactionStore,
	access AccessService,
) AlertService {
	return &alertService{
		ruleStore:     ruleStore,
		alertStore:    alertStore,
		businessStore: businessStore,
		txnStore:      txnStore,
		access:        access,
	}
}

func (s *alertService) CreateRule(ctx context.Context, orgID, actorUserID int64, params RuleParams) (*model.AlertRule, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses)
	if err != nil {
		return nil, err
	}
	if err := validateRuleParams(params); err != nil {
		return nil, err
	}
	if params.BusinessID != nil {
		if _, err := s.access.ResolveBusiness(ctx, member, *params.BusinessID); err != nil {
			return nil, err
		}
	}

	rule := &model.AlertRule{
		ID:             id.New(),
		OrganizationID: orgID,
		BusinessID:     params.BusinessID,
		Type:           params.Type,
		Name:           params.Name,
		Description:    params.Description,
		Conditions:     params.Conditions,
		NotifyEmail:    params.NotifyEmail,
		NotifySMS:      params.NotifySMS,
		NotifyPush:     params.NotifyPush,
		NotifyWhatsApp: params.NotifyWhatsApp,
		Schedule:       params.Schedule,
		IsActive:       params.IsActive,
		CreatedBy:      &actorUserID,
	}

	if err := s.ruleStore.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("creating alert rule: %w", err)
	}

	slog.InfoContext(ctx, "alert rule created",
		"organization_id", orgID,
		"alert_rule_id", rule.ID,
		"alert_type", rule.Type,
	)

	return rule, nil
}

func (s *alertService) UpdateRule(ctx context.Context, orgID, actorUserID, ruleID int64, params RuleParams) (*model.AlertRule, error) {
	member, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses)
	if err != nil {
		return nil, err
	}
	if err := validateRuleParams(params); err != nil {
		return nil, err
	}

	rule, err := s.ruleStore.GetByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting alert rule: %w", err)
	}
	if rule.OrganizationID != orgID {
		return nil, ErrNotFound
	}
	if params.BusinessID != nil {
		if _, err := s.access.ResolveBusiness(ctx, member, *params.BusinessID); err != nil {
			return nil, err
		}
	}

	rule.BusinessID = params.BusinessID
	rule.Name = params.Name
	rule.Description = params.Description
	rule.Conditions = params.Conditions
	rule.NotifyEmail = params.NotifyEmail
	rule.NotifySMS = params.NotifySMS
	rule.NotifyPush = params.NotifyPush
	rule.NotifyWhatsApp = params.NotifyWhatsApp
	rule.Schedule = params.Schedule
	rule.IsActive = params.IsActive

	if err := s.ruleStore.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("updating alert rule: %w", err)
	}

	return rule, nil
}

func (s *alertService) ListRules(ctx context.Context, orgID, userID int64) ([]model.AlertRule, error) {
	if _, err := s.access.Resolve(ctx, orgID, userID); err != nil {
		return nil, err
	}
	return s.ruleStore.ListByOrganization(ctx, orgID)
}

func (s *alertService) Evaluate(ctx context.Context, event queue.LedgerEvent) error {
	for _, alertType := range relevantRuleTypes(event.EventType) {
		rules, err := s.ruleStore.ListActiveForEvent(ctx, event.OrganizationID, event.BusinessID, alertType)
		if err != nil {
			return fmt.Errorf("listing rules: %w", err)
		}
		for i := range rules {
			if err := s.evaluateRule(ctx, &rules[i], event); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *alertService) evaluateRule(ctx context.Context, rule *model.AlertRule, event queue.LedgerEvent) error {
	now := time.Now()
	if rule.InCooldown(now) {
		slog.DebugContext(ctx, "rule in cooldown, skipping",
			"alert_rule_id", rule.ID,
			"alert_type", rule.Type,
		)
		return nil
	}

	triggered, severity, title, message, contextData, err := s.checkConditions(ctx, rule, event)
	if err != nil {
		return err
	}
	if !triggered {
		return nil
	}

	alert := &model.Alert{
		ID:             id.New(),
		OrganizationID: event.OrganizationID,
		AlertRuleID:    &rule.ID,
		BusinessID:     &event.BusinessID,
		Type:           rule.Type,
		Severity:       severity,
		Title:          title,
		Message:        message,
		ContextData:    contextData,
		Status:         model.AlertUnread,
	}
	if err := s.alertStore.Create(ctx, alert); err != nil {
		return fmt.Errorf("creating alert: %w", err)
	}
	if err := s.ruleStore.MarkTriggered(ctx, rule.ID, now); err != nil {
		return fmt.Errorf("marking rule triggered: %w", err)
	}

	slog.InfoContext(ctx, "alert triggered",
		"organization_id", event.OrganizationID,
		"business_id", event.BusinessID,
		"alert_rule_id", rule.ID,
		"alert_id", alert.ID,
		"alert_type", rule.Type,
		"severity", severity,
	)

	return nil
}

func (s *alertService) checkConditions(ctx context.Context, rule *model.AlertRule, event queue.LedgerEvent) (bool, model.AlertSeverity, string, string, map[string]any, error) {
	switch rule.Type {
	case model.AlertLowCash:
		return s.checkLowCash(ctx, rule, event)
	case model.AlertLargeTransaction:
		return s.checkLargeTransaction(ctx, rule, event)
	case model.AlertUnusualExpense:
		return s.checkUnusualExpense(ctx, rule, event)
	case model.AlertSyncFailed:
		title := "Bank sync failed"
		message := "A connected bank account stopped syncing and needs attention."
		data := map[string]any{}
		if event.BankAccountID != nil {
			data["bank_account_id"] = *event.BankAccountID
		}
		return true, model.SeverityHigh, title, message, data, nil
	default:
		// daily_summary and goal_achieved run on schedules, not on ledger
		// events.
		return false, "", "", "", nil, nil
	}
}

func (s *alertService) checkLowCash(ctx context.Context, rule *model.AlertRule, event queue.LedgerEvent) (bool, model.AlertSeverity, string, string, map[string]any, error) {
	threshold, ok := conditionDecimal(rule.Conditions, "threshold")
	if !ok {
		return false, "", "", "", nil, nil
	}

	biz, err := s.businessStore.GetByID(ctx, event.BusinessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, "", "", "", nil, nil
		}
		return false, "", "", "", nil, fmt.Errorf("getting business: %w", err)
	}

	if biz.CurrentBalance.GreaterThanOrEqual(threshold) {
		return false, "", "", "", nil, nil
	}

	title := fmt.Sprintf("Low cash in %s", biz.Name)
	message := fmt.Sprintf("Balance dropped to %s NGN, below your %s NGN threshold.",
		biz.CurrentBalance.StringFixed(2), threshold.StringFixed(2))
	data := map[string]any{
		"balance":   biz.CurrentBalance.String(),
		"threshold": threshold.String(),
	}
	return true, model.SeverityHigh, title, message, data, nil
}

func (s *alertService) checkLargeTransaction(ctx context.Context, rule *model.AlertRule, event queue.LedgerEvent) (bool, model.AlertSeverity, string, string, map[string]any, error) {
	if event.EventType != queue.EventTransactionCreated || event.TransactionID == nil {
		return false, "", "", "", nil, nil
	}
	limit, ok := conditionDecimal(rule.Conditions, "amount")
	if !ok {
		return false, "", "", "", nil, nil
	}

	txn, err := s.txnStore.GetByID(ctx, *event.TransactionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, "", "", "", nil, nil
		}
		return false, "", "", "", nil, fmt.Errorf("getting transaction: %w", err)
	}
	if txn.IsVoided() || txn.AmountNGN.LessThan(limit) {
		return false, "", "", "", nil, nil
	}

	title := "Large transaction recorded"
	message := fmt.Sprintf("A %s of %s NGN was recorded, at or above your %s NGN threshold.",
		txn.Type, txn.AmountNGN.StringFixed(2), limit.StringFixed(2))
	data := map[string]any{
		"transaction_id": txn.ID,
		"amount_ngn":     txn.AmountNGN.String(),
		"limit":          limit.String(),
	}
	return true, model.SeverityMedium, title, message, data, nil
}

func (s *alertService) checkUnusualExpense(ctx context.Context, rule *model.AlertRule, event queue.LedgerEvent) (bool, model.AlertSeverity, string, string, map[string]any, error) {
	if event.EventType != queue.EventTransactionCreated || event.TransactionID == nil {
		return false, "", "", "", nil, nil
	}
	multiplier, ok := conditionDecimal(rule.Conditions, "multiplier")
	if !ok || !multiplier.IsPositive() {
		return false, "", "", "", nil, nil
	}

	txn, err := s.txnStore.GetByID(ctx, *event.TransactionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, "", "", "", nil, nil
		}
		return false, "", "", "", nil, fmt.Errorf("getting transaction: %w", err)
	}
	if txn.IsVoided() || txn.Type != model.TypeExpense {
		return false, "", "", "", nil, nil
	}

	expenseType := model.TypeExpense
	dateFrom := time.Now().Add(-unusualExpenseWindow)
	summary, err := s.txnStore.Summarize(ctx, store.TransactionFilter{
		BusinessIDs: []int64{event.BusinessID},
		Type:        &expenseType,
		DateFrom:    &dateFrom,
	})
	if err != nil {
		return false, "", "", "", nil, fmt.Errorf("summarizing expenses: %w", err)
	}
	if summary.Count < unusualExpenseMinSample {
		return false, "", "", "", nil, nil
	}

	average := summary.TotalExpense.Div(decimal.NewFromInt(summary.Count))
	ceiling := average.Mul(multiplier)
	if txn.AmountNGN.LessThanOrEqual(ceiling) {
		return false, "", "", "", nil, nil
	}

	title := "Unusual expense detected"
	message := fmt.Sprintf("An expense of %s NGN is more than %s times your recent average of %s NGN.",
		txn.AmountNGN.StringFixed(2), multiplier.String(), average.StringFixed(2))
	data := map[string]any{
		"transaction_id": txn.ID,
		"amount_ngn":     txn.AmountNGN.String(),
		"average":        average.String(),
		"multiplier":     multiplier.String(),
	}
	return true, model.SeverityMedium, title, message, data, nil
}

func (s *alertService) ListAlerts(ctx context.Context, orgID, userID int64, status *model.AlertStatus, limit, offset int32) ([]model.Alert, error) {
	if _, err := s.access.Resolve(ctx, orgID, userID); err != nil {
		return nil, err
	}
	return s.alertStore.ListByOrganization(ctx, orgID, status, limit, offset)
}

func (s *alertService) MarkRead(ctx context.Context, orgID, userID, alertID int64) (*model.Alert, error) {
	if err := s.resolveAlert(ctx, orgID, userID, alertID); err != nil {
		return nil, err
	}
	alert, err := s.alertStore.MarkRead(ctx, alertID, userID, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Already read or dismissed; return current state.
			return s.alertStore.GetByID(ctx, alertID)
		}
		return nil, fmt.Errorf("marking alert read: %w", err)
	}
	return alert, nil
}

func (s *alertService) Dismiss(ctx context.Context, orgID, userID, alertID int64) (*model.Alert, error) {
	if err := s.resolveAlert(ctx, orgID, userID, alertID); err != nil {
		return nil, err
	}
	alert, err := s.alertStore.Dismiss(ctx, alertID, userID, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.alertStore.GetByID(ctx, alertID)
		}
		return nil, fmt.Errorf("dismissing alert: %w", err)
	}
	return alert, nil
}

func (s *alertService) MarkActioned(ctx context.Context, orgID, userID, alertID int64) (*model.Alert, error) {
	if err := s.resolveAlert(ctx, orgID, userID, alertID); err != nil {
		return nil, err
	}
	alert, err := s.alertStore.MarkActioned(ctx, alertID, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.alertStore.GetByID(ctx, alertID)
		}
		return nil, fmt.Errorf("marking alert actioned: %w", err)
	}
	return alert, nil
}

func (s *alertService) resolveAlert(ctx context.Context, orgID, userID, alertID int64) error {
	if _, err := s.access.Resolve(ctx, orgID, userID); err != nil {
		return err
	}
	alert, err := s.alertStore.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("getting alert: %w", err)
	}
	if alert.OrganizationID != orgID {
		return ErrNotFound
	}
	return nil
}

func validateRuleParams(params RuleParams) error {
	switch params.Type {
	case model.AlertLowCash, model.AlertUnusualExpense, model.AlertLargeTransaction,
		model.AlertSyncFailed, model.AlertDailySummary, model.AlertGoalAchieved:
	default:
		return Validation("invalid alert type")
	}

	switch params.Type {
	case model.AlertLowCash:
		if _, ok := conditionDecimal(params.Conditions, "threshold"); !ok {
			return Validation("low_cash rules need a numeric threshold condition")
		}
	case model.AlertLargeTransaction:
		if _, ok := conditionDecimal(params.Conditions, "amount"); !ok {
			return Validation("large_transaction rules need a numeric amount condition")
		}
	case model.AlertUnusualExpense:
		if v, ok := conditionDecimal(params.Conditions, "multiplier"); !ok || !v.IsPositive() {
			return Validation("unusual_expense rules need a positive multiplier condition")
		}
	}
	return nil
}

// relevantRuleTypes maps a ledger event to the rule types worth loading.
func relevantRuleTypes(eventType queue.EventType) []model.AlertType {
	switch eventType {
	case queue.EventTransactionCreated:
		return []model.AlertType{model.AlertLowCash, model.AlertLargeTransaction, model.AlertUnusualExpense}
	case queue.EventTransactionUpdated, queue.EventTransactionVoided:
		return []model.AlertType{model.AlertLowCash}
	case queue.EventSyncFailed:
		return []model.AlertType{model.AlertSyncFailed}
	default:
		return nil
	}
}

// conditionDecimal reads a numeric condition that may arrive as a JSON number
// or a string.
func conditionDecimal(conditions map[string]any, key string) (decimal.Decimal, bool) {
	raw, ok := conditions[key]
	if !ok {
		return decimal.Zero, false
	}
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
