package dto

import (
	"time"

	"github.com/kudihq/kudi/internal/model"
)

type AlertRuleRequest struct {
	BusinessID     *int64         `json:"business_id,string,omitempty"`
	Type           string         `json:"alert_type" binding:"required"`
	Name           *string        `json:"name,omitempty"`
	Description    *string        `json:"description,omitempty"`
	Conditions     map[string]any `json:"conditions"`
	NotifyEmail    bool           `json:"notify_email"`
	NotifySMS      bool           `json:"notify_sms"`
	NotifyPush     bool           `json:"notify_push"`
	NotifyWhatsApp bool           `json:"notify_whatsapp"`
	Schedule       map[string]any `json:"schedule"`
	IsActive       *bool          `json:"is_active,omitempty"`
}

type AlertRuleResponse struct {
	ID              int64          `json:"id,string"`
	OrganizationID  int64          `json:"organization_id,string"`
	BusinessID      *int64         `json:"business_id,string,omitempty"`
	Type            string         `json:"alert_type"`
	Name            *string        `json:"name,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Conditions      map[string]any `json:"conditions"`
	NotifyEmail     bool           `json:"notify_email"`
	NotifySMS       bool           `json:"notify_sms"`
	NotifyPush      bool           `json:"notify_push"`
	NotifyWhatsApp  bool           `json:"notify_whatsapp"`
	Schedule        map[string]any `json:"schedule"`
	IsActive        bool           `json:"is_active"`
	LastTriggeredAt *time.Time     `json:"last_triggered_at,omitempty"`
	TriggerCount    int            `json:"trigger_count"`
	CreatedAt       time.Time      `json:"created_at"`
}

func ToAlertRuleResponse(r *model.AlertRule) *AlertRuleResponse {
	return &AlertRuleResponse{
		ID:              r.ID,
		OrganizationID:  r.OrganizationID,
		BusinessID:      r.BusinessID,
		Type:            string(r.Type),
		Name:            r.Name,
		Description:     r.Description,
		Conditions:      r.Conditions,
		NotifyEmail:     r.NotifyEmail,
		NotifySMS:       r.NotifySMS,
		NotifyPush:      r.NotifyPush,
		NotifyWhatsApp:  r.NotifyWhatsApp,
		Schedule:        r.Schedule,
		IsActive:        r.IsActive,
		LastTriggeredAt: r.LastTriggeredAt,
		TriggerCount:    r.TriggerCount,
		CreatedAt:       r.CreatedAt,
	}
}

type AlertResponse struct {
	ID             int64          `json:"id,string"`
	OrganizationID int64          `json:"organization_id,string"`
	BusinessID     *int64         `json:"business_id,string,omitempty"`
	Type           string         `json:"alert_type"`
	Severity       string         `json:"severity"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	ContextData    map[string]any `json:"context_data,omitempty"`
	Status         string         `json:"status"`
	ReadAt         *time.Time     `json:"read_at,omitempty"`
	DismissedAt    *time.Time     `json:"dismissed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func ToAlertResponse(a *model.Alert) *AlertResponse {
	return &AlertResponse{
		ID:             a.ID,
		OrganizationID: a.OrganizationID,
		BusinessID:     a.BusinessID,
		Type:           string(a.Type),
		Severity:       string(a.Severity),
		Title:          a.Title,
		Message:        a.Message,
		ContextData:    a.ContextData,
		Status:         string(a.Status),
		ReadAt:         a.ReadAt,
		DismissedAt:    a.DismissedAt,
		CreatedAt:      a.CreatedAt,
	}
}

func ToAlertResponses(alerts []model.Alert) []AlertResponse {
	out := make([]AlertResponse, len(alerts))
	for i := range alerts {
		out[i] = *ToAlertResponse(&alerts[i])
	}
	return out
}
