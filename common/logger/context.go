package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields carries structured fields that every log statement within a
// context picks up automatically. Handlers and the worker enrich the context
// once; downstream services never pass IDs to the logger by hand.
type LogFields struct {
	OrganizationID *int64  // Tenant boundary for the current request
	BusinessID     *int64  // Business whose ledger is being touched
	TransactionID  *int64  // Ledger row being created/updated/voided
	AlertRuleID    *int64  // Rule under evaluation
	MessageID      *string // Redis stream message ID (worker only)
	EventType      *string // Ledger event type (e.g. "transaction_created")
	Component      string  // Component name, OTel style (e.g. "kudi.worker.alerts")
}

// WithLogFields enriches context with structured log fields. Repeated calls
// merge, newer non-nil/non-empty values winning.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context, empty if unset.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.OrganizationID != nil {
		result.OrganizationID = next.OrganizationID
	}
	if next.BusinessID != nil {
		result.BusinessID = next.BusinessID
	}
	if next.TransactionID != nil {
		result.TransactionID = next.TransactionID
	}
	if next.AlertRuleID != nil {
		result.AlertRuleID = next.AlertRuleID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr builds a pointer from a value, for inline LogFields construction.
func Ptr[T any](v T) *T {
	return &v
}
