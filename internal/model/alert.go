package model

import "time"

type AlertType string

const (
	AlertLowCash          AlertType = "low_cash"
	AlertUnusualExpense   AlertType = "unusual_expense"
	AlertLargeTransaction AlertType = "large_transaction"
	AlertSyncFailed       AlertType = "sync_failed"
	AlertDailySummary     AlertType = "daily_summary"
	AlertGoalAchieved     AlertType = "goal_achieved"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

type AlertStatus string

const (
	AlertUnread    AlertStatus = "unread"
	AlertRead      AlertStatus = "read"
	AlertActioned  AlertStatus = "actioned"
	AlertDismissed AlertStatus = "dismissed"
)

// AlertRule defines a trigger scoped to an organization and optionally a
// single business (nil BusinessID applies to all).
type AlertRule struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	BusinessID     *int64 `json:"business_id,omitempty"`

	Type        AlertType `json:"alert_type"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`

	// Conditions is a small per-type map: low_cash uses "threshold",
	// large_transaction uses "amount", unusual_expense uses "multiplier".
	Conditions map[string]any `json:"conditions"`

	NotifyEmail    bool `json:"notify_email"`
	NotifySMS      bool `json:"notify_sms"`
	NotifyPush     bool `json:"notify_push"`
	NotifyWhatsApp bool `json:"notify_whatsapp"`

	// Schedule carries "cooldown_minutes"; an empty map means evaluate on
	// every matching event with no cooldown.
	Schedule map[string]any `json:"schedule"`

	IsActive        bool       `json:"is_active"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	TriggerCount    int        `json:"trigger_count"`

	CreatedBy *int64    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CooldownMinutes reads the rule's cooldown from its schedule; zero means no
// cooldown.
func (r *AlertRule) CooldownMinutes() int {
	if r.Schedule == nil {
		return 0
	}
	switch v := r.Schedule["cooldown_minutes"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// InCooldown reports whether the rule fired within its cooldown window
// relative to now.
func (r *AlertRule) InCooldown(now time.Time) bool {
	cooldown := r.CooldownMinutes()
	if cooldown <= 0 || r.LastTriggeredAt == nil {
		return false
	}
	return now.Sub(*r.LastTriggeredAt) < time.Duration(cooldown)*time.Minute
}

// Alert is a generated, addressable instance. Append-only after creation;
// only the status/read/dismiss fields mutate.
type Alert struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	AlertRuleID    *int64 `json:"alert_rule_id,omitempty"`
	BusinessID     *int64 `json:"business_id,omitempty"`

	Type     AlertType     `json:"alert_type"`
	Severity AlertSeverity `json:"severity"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`

	ContextData map[string]any `json:"context_data,omitempty"`

	Status      AlertStatus `json:"status"`
	ReadAt      *time.Time  `json:"read_at,omitempty"`
	ReadBy      *int64      `json:"read_by,omitempty"`
	ActionedAt  *time.Time  `json:"actioned_at,omitempty"`
	DismissedAt *time.Time  `json:"dismissed_at,omitempty"`
	DismissedBy *int64      `json:"dismissed_by,omitempty"`

	EmailSent bool `json:"email_sent"`
	SMSSent   bool `json:"sms_sent"`
	PushSent  bool `json:"push_sent"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
