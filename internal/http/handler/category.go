package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/dto"
	"github.com/kudihq/kudi/internal/http/middleware"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
)

type CategoryHandler struct {
	catService service.CategoryService
}

func NewCategoryHandler(catService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{catService: catService}
}

func (h *CategoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	cats, err := h.catService.List(ctx, orgID, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": dto.ToCategoryResponses(cats)})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "name and category_type are required")
		return
	}

	cat, err := h.catService.Create(ctx, orgID, user.ID, service.CategoryParams{
		Name:     req.Name,
		Type:     model.CategoryType(req.Type),
		ParentID: req.ParentID,
		Icon:     req.Icon,
		Color:    req.Color,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryResponse(cat))
}

func (h *CategoryHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "categoryID")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "invalid category payload")
		return
	}

	cat, err := h.catService.Update(ctx, orgID, user.ID, categoryID, service.CategoryUpdateParams{
		Name:     req.Name,
		Icon:     req.Icon,
		Color:    req.Color,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryResponse(cat))
}
