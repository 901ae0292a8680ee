package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kudihq/kudi/internal/http/dto"
	"github.com/kudihq/kudi/internal/http/middleware"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
)

type TransactionHandler struct {
	ledger service.LedgerService
}

func NewTransactionHandler(ledger service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

func (h *TransactionHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "business_id, transaction_date, transaction_type, amount, category and description are required")
		return
	}

	txn, err := h.ledger.Create(ctx, orgID, user.ID, toTransactionParams(req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *TransactionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "txnID")
	if !ok {
		return
	}

	txn, err := h.ledger.Get(ctx, orgID, user.ID, txnID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *TransactionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	params, ok := parseListParams(c)
	if !ok {
		return
	}

	txns, err := h.ledger.List(ctx, orgID, user.ID, params)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToTransactionResponses(txns)})
}

func (h *TransactionHandler) Summarize(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	params, ok := parseListParams(c)
	if !ok {
		return
	}

	summary, err := h.ledger.Summarize(ctx, orgID, user.ID, params)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransactionSummaryResponse{
		TotalIncome:  summary.TotalIncome,
		TotalExpense: summary.TotalExpense,
		Net:          summary.TotalIncome.Sub(summary.TotalExpense),
		Count:        summary.Count,
	})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "txnID")
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "business_id, transaction_date, transaction_type, amount, category and description are required")
		return
	}

	txn, err := h.ledger.Update(ctx, orgID, user.ID, txnID, toTransactionParams(req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *TransactionHandler) Void(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "txnID")
	if !ok {
		return
	}

	var req dto.VoidTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "reason is required")
		return
	}

	txn, err := h.ledger.Void(ctx, orgID, user.ID, txnID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *TransactionHandler) Transfer(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "from_business_id, to_business_id, amount and description are required")
		return
	}

	params := service.TransferParams{
		FromBusinessID: req.FromBusinessID,
		ToBusinessID:   req.ToBusinessID,
		Amount:         req.Amount,
		Description:    req.Description,
		Notes:          req.Notes,
		Reference:      req.Reference,
	}
	if req.TransactionDate != nil {
		params.TransactionDate = *req.TransactionDate
	}

	outgoing, err := h.ledger.Transfer(ctx, orgID, user.ID, params)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(outgoing))
}

func toTransactionParams(req dto.TransactionRequest) service.TransactionParams {
	params := service.TransactionParams{
		BusinessID:      req.BusinessID,
		TransactionDate: req.TransactionDate,
		Type:            model.TransactionType(req.Type),
		Amount:          req.Amount,
		Currency:        req.Currency,
		Category:        req.Category,
		Subcategory:     req.Subcategory,
		Description:     req.Description,
		Notes:           req.Notes,
		Reference:       req.Reference,
	}
	if req.ExchangeRate != nil {
		params.ExchangeRate = *req.ExchangeRate
	}
	if req.PaymentMethod != nil {
		pm := model.PaymentMethod(*req.PaymentMethod)
		params.PaymentMethod = &pm
	}
	if req.Status != nil {
		st := model.TransactionStatus(*req.Status)
		params.Status = &st
	}
	return params
}

// parseListParams builds filter params from query string values. A bad value
// fails the request rather than silently widening the filter.
func parseListParams(c *gin.Context) (service.ListParams, bool) {
	var params service.ListParams

	if v := c.Query("business_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeValidationError(c, "invalid business_id")
			return params, false
		}
		params.BusinessID = &id
	}
	if v := c.Query("transaction_type"); v != "" {
		t := model.TransactionType(v)
		params.Type = &t
	}
	if v := c.Query("category"); v != "" {
		params.Category = &v
	}
	if v := c.Query("status"); v != "" {
		s := model.TransactionStatus(v)
		params.Status = &s
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeValidationError(c, "date_from must be RFC 3339")
			return params, false
		}
		params.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeValidationError(c, "date_to must be RFC 3339")
			return params, false
		}
		params.DateTo = &t
	}
	if v := c.Query("min_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeValidationError(c, "invalid min_amount")
			return params, false
		}
		params.MinAmount = &d
	}
	if v := c.Query("max_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeValidationError(c, "invalid max_amount")
			return params, false
		}
		params.MaxAmount = &d
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			writeValidationError(c, "invalid limit")
			return params, false
		}
		params.Limit = int32(n)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			writeValidationError(c, "invalid offset")
			return params, false
		}
		params.Offset = int32(n)
	}

	return params, true
}
