package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type alertRuleStore struct {
	db db.DBTX
}

const alertRuleColumns = `id, organization_id, business_id, alert_type, name,
	description, conditions, notify_email, notify_sms, notify_push, notify_whatsapp,
	schedule, is_active, last_triggered_at, trigger_count, created_by, created_at,
	updated_at`

func scanAlertRule(row pgx.Row) (*model.AlertRule, error) {
	var r model.AlertRule
	err := row.Scan(&r.ID, &r.OrganizationID, &r.BusinessID, &r.Type, &r.Name,
		&r.Description, &r.Conditions, &r.NotifyEmail, &r.NotifySMS, &r.NotifyPush,
		&r.NotifyWhatsApp, &r.Schedule, &r.IsActive, &r.LastTriggeredAt,
		&r.TriggerCount, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *alertRuleStore) Create(ctx context.Context, rule *model.AlertRule) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO alert_rules (id, organization_id, business_id, alert_type, name,
			description, conditions, notify_email, notify_sms, notify_push,
			notify_whatsapp, schedule, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+alertRuleColumns,
		rule.ID, rule.OrganizationID, rule.BusinessID, rule.Type, rule.Name,
		rule.Description, rule.Conditions, rule.NotifyEmail, rule.NotifySMS,
		rule.NotifyPush, rule.NotifyWhatsApp, rule.Schedule, rule.IsActive,
		rule.CreatedBy)
	created, err := scanAlertRule(row)
	if err != nil {
		return err
	}
	*rule = *created
	return nil
}

func (s *alertRuleStore) GetByID(ctx context.Context, id int64) (*model.AlertRule, error) {
	return scanAlertRule(s.db.QueryRow(ctx, `
		SELECT `+alertRuleColumns+` FROM alert_rules WHERE id = $1`, id))
}

func (s *alertRuleStore) Update(ctx context.Context, rule *model.AlertRule) error {
	row := s.db.QueryRow(ctx, `
		UPDATE alert_rules SET
			business_id = $2, name = $3, description = $4, conditions = $5,
			notify_email = $6, notify_sms = $7, notify_push = $8,
			notify_whatsapp = $9, schedule = $10, is_active = $11, updated_at = now()
		WHERE id = $1
		RETURNING `+alertRuleColumns,
		rule.ID, rule.BusinessID, rule.Name, rule.Description, rule.Conditions,
		rule.NotifyEmail, rule.NotifySMS, rule.NotifyPush, rule.NotifyWhatsApp,
		rule.Schedule, rule.IsActive)
	updated, err := scanAlertRule(row)
	if err != nil {
		return err
	}
	*rule = *updated
	return nil
}

func (s *alertRuleStore) ListActiveForEvent(ctx context.Context, orgID int64, businessID int64, alertType model.AlertType) ([]model.AlertRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+alertRuleColumns+` FROM alert_rules
		WHERE organization_id = $1 AND alert_type = $2 AND is_active
		  AND (business_id IS NULL OR business_id = $3)
		ORDER BY id`, orgID, alertType, businessID)
	if err != nil {
		return nil, err
	}
	return collectAlertRules(rows)
}

func (s *alertRuleStore) ListByOrganization(ctx context.Context, orgID int64) ([]model.AlertRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+alertRuleColumns+` FROM alert_rules
		WHERE organization_id = $1
		ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	return collectAlertRules(rows)
}

func (s *alertRuleStore) MarkTriggered(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE alert_rules SET
			last_triggered_at = $2, trigger_count = trigger_count + 1, updated_at = now()
		WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectAlertRules(rows pgx.Rows) ([]model.AlertRule, error) {
	defer rows.Close()
	var rules []model.AlertRule
	for rows.Next() {
		r, err := scanAlertRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

type alertStore struct {
	db db.DBTX
}

const alertColumns = `id, organization_id, alert_rule_id, business_id, alert_type,
	severity, title, message, context_data, status, read_at, read_by, actioned_at,
	dismissed_at, dismissed_by, email_sent, sms_sent, push_sent, created_at,
	expires_at`

func scanAlert(row pgx.Row) (*model.Alert, error) {
	var a model.Alert
	err := row.Scan(&a.ID, &a.OrganizationID, &a.AlertRuleID, &a.BusinessID,
		&a.Type, &a.Severity, &a.Title, &a.Message, &a.ContextData, &a.Status,
		&a.ReadAt, &a.ReadBy, &a.ActionedAt, &a.DismissedAt, &a.DismissedBy,
		&a.EmailSent, &a.SMSSent, &a.PushSent, &a.CreatedAt, &a.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *alertStore) Create(ctx context.Context, alert *model.Alert) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO alerts (id, organization_id, alert_rule_id, business_id,
			alert_type, severity, title, message, context_data, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+alertColumns,
		alert.ID, alert.OrganizationID, alert.AlertRuleID, alert.BusinessID,
		alert.Type, alert.Severity, alert.Title, alert.Message, alert.ContextData,
		alert.Status, alert.ExpiresAt)
	created, err := scanAlert(row)
	if err != nil {
		return err
	}
	*alert = *created
	return nil
}

func (s *alertStore) GetByID(ctx context.Context, id int64) (*model.Alert, error) {
	return scanAlert(s.db.QueryRow(ctx, `
		SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id))
}

func (s *alertStore) ListByOrganization(ctx context.Context, orgID int64, status *model.AlertStatus, limit, offset int32) ([]model.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+alertColumns+` FROM alerts
		WHERE organization_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, orgID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (s *alertStore) MarkRead(ctx context.Context, id, userID int64, at time.Time) (*model.Alert, error) {
	return scanAlert(s.db.QueryRow(ctx, `
		UPDATE alerts SET status = 'read', read_at = $2, read_by = $3
		WHERE id = $1 AND status = 'unread'
		RETURNING `+alertColumns, id, at, userID))
}

func (s *alertStore) Dismiss(ctx context.Context, id, userID int64, at time.Time) (*model.Alert, error) {
	return scanAlert(s.db.QueryRow(ctx, `
		UPDATE alerts SET status = 'dismissed', dismissed_at = $2, dismissed_by = $3
		WHERE id = $1 AND status <> 'dismissed'
		RETURNING `+alertColumns, id, at, userID))
}

func (s *alertStore) MarkActioned(ctx context.Context, id int64, at time.Time) (*model.Alert, error) {
	return scanAlert(s.db.QueryRow(ctx, `
		UPDATE alerts SET status = 'actioned', actioned_at = $2
		WHERE id = $1
		RETURNING `+alertColumns, id, at))
}
