package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/dto"
	"github.com/kudihq/kudi/internal/http/middleware"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
)

type BusinessHandler struct {
	bizService service.BusinessService
}

func NewBusinessHandler(bizService service.BusinessService) *BusinessHandler {
	return &BusinessHandler{bizService: bizService}
}

func (h *BusinessHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	var req dto.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "name and industry are required")
		return
	}

	biz, err := h.bizService.Create(ctx, orgID, user.ID, toBusinessParams(req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBusinessResponse(biz))
}

func (h *BusinessHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "businessID")
	if !ok {
		return
	}

	biz, err := h.bizService.Get(ctx, orgID, user.ID, businessID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBusinessResponse(biz))
}

func (h *BusinessHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	businesses, err := h.bizService.List(ctx, orgID, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.BusinessResponse, len(businesses))
	for i := range businesses {
		resp[i] = *dto.ToBusinessResponse(&businesses[i])
	}
	c.JSON(http.StatusOK, gin.H{"businesses": resp})
}

func (h *BusinessHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "businessID")
	if !ok {
		return
	}

	var req dto.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "name and industry are required")
		return
	}

	biz, err := h.bizService.Update(ctx, orgID, user.ID, businessID, toBusinessParams(req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBusinessResponse(biz))
}

func (h *BusinessHandler) Archive(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "businessID")
	if !ok {
		return
	}

	if err := h.bizService.Archive(ctx, orgID, user.ID, businessID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "business archived"})
}

func (h *BusinessHandler) Recalculate(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "businessID")
	if !ok {
		return
	}

	balance, err := h.bizService.Recalculate(ctx, orgID, user.ID, businessID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		BusinessID: businessID,
		Balance:    balance,
	})
}

func (h *BusinessHandler) ConnectBankAccount(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "businessID")
	if !ok {
		return
	}

	var req dto.ConnectBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "bank_name, account_number and provider are required")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = model.BaseCurrency
	}

	account, err := h.bizService.ConnectBankAccount(ctx, orgID, user.ID, businessID, service.BankAccountParams{
		BankName:          req.BankName,
		AccountName:       req.AccountName,
		AccountNumber:     req.AccountNumber,
		Currency:          currency,
		Provider:          model.BankProvider(req.Provider),
		ProviderAccountID: req.ProviderAccountID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBankAccountResponse(account))
}

func (h *BusinessHandler) ListBankAccounts(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	businessID, ok := parseIDParam(c, "businessID")
	if !ok {
		return
	}

	accounts, err := h.bizService.ListBankAccounts(ctx, orgID, user.ID, businessID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.BankAccountResponse, len(accounts))
	for i := range accounts {
		resp[i] = *dto.ToBankAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, gin.H{"bank_accounts": resp})
}

func toBusinessParams(req dto.BusinessRequest) service.BusinessParams {
	var businessType *model.BusinessType
	if req.BusinessType != nil {
		bt := model.BusinessType(*req.BusinessType)
		businessType = &bt
	}
	return service.BusinessParams{
		Name:               req.Name,
		ShortName:          req.ShortName,
		Description:        req.Description,
		Industry:           model.Industry(req.Industry),
		BusinessType:       businessType,
		PrimaryCurrency:    req.PrimaryCurrency,
		OpeningBalance:     req.OpeningBalance,
		OpeningBalanceDate: req.OpeningBalanceDate,
	}
}
