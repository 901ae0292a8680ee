package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/dto"
	"github.com/kudihq/kudi/internal/http/middleware"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
)

type AlertHandler struct {
	alertService service.AlertService
}

func NewAlertHandler(alertService service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

func (h *AlertHandler) CreateRule(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	var req dto.AlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "alert_type is required")
		return
	}

	rule, err := h.alertService.CreateRule(ctx, orgID, user.ID, toRuleParams(req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAlertRuleResponse(rule))
}

func (h *AlertHandler) UpdateRule(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	ruleID, ok := parseIDParam(c, "ruleID")
	if !ok {
		return
	}

	var req dto.AlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "alert_type is required")
		return
	}

	rule, err := h.alertService.UpdateRule(ctx, orgID, user.ID, ruleID, toRuleParams(req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAlertRuleResponse(rule))
}

func (h *AlertHandler) ListRules(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	rules, err := h.alertService.ListRules(ctx, orgID, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.AlertRuleResponse, len(rules))
	for i := range rules {
		resp[i] = *dto.ToAlertRuleResponse(&rules[i])
	}
	c.JSON(http.StatusOK, gin.H{"alert_rules": resp})
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	var status *model.AlertStatus
	if v := c.Query("status"); v != "" {
		s := model.AlertStatus(v)
		status = &s
	}

	limit := int32(50)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			writeValidationError(c, "invalid limit")
			return
		}
		limit = int32(n)
	}
	var offset int32
	if v := c.Query("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			writeValidationError(c, "invalid offset")
			return
		}
		offset = int32(n)
	}

	alerts, err := h.alertService.ListAlerts(ctx, orgID, user.ID, status, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": dto.ToAlertResponses(alerts)})
}

func (h *AlertHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	alertID, ok := parseIDParam(c, "alertID")
	if !ok {
		return
	}

	alert, err := h.alertService.MarkRead(ctx, orgID, user.ID, alertID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAlertResponse(alert))
}

func (h *AlertHandler) Dismiss(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	alertID, ok := parseIDParam(c, "alertID")
	if !ok {
		return
	}

	alert, err := h.alertService.Dismiss(ctx, orgID, user.ID, alertID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAlertResponse(alert))
}

func (h *AlertHandler) Action(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	alertID, ok := parseIDParam(c, "alertID")
	if !ok {
		return
	}

	alert, err := h.alertService.MarkActioned(ctx, orgID, user.ID, alertID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAlertResponse(alert))
}

func toRuleParams(req dto.AlertRuleRequest) service.RuleParams {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return service.RuleParams{
		BusinessID:     req.BusinessID,
		Type:           model.AlertType(req.Type),
		Name:           req.Name,
		Description:    req.Description,
		Conditions:     req.Conditions,
		NotifyEmail:    req.NotifyEmail,
		NotifySMS:      req.NotifySMS,
		NotifyPush:     req.NotifyPush,
		NotifyWhatsApp: req.NotifyWhatsApp,
		Schedule:       req.Schedule,
		IsActive:       isActive,
	}
}
