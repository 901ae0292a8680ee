package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kudihq/kudi/common"
	"github.com/kudihq/kudi/common/id"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/store"
)

// CategoryParams describes a new custom category.
type CategoryParams struct {
	Name     string
	Type     model.CategoryType
	ParentID *int64
	Icon     *string
	Color    *string
}

// CategoryUpdateParams carries the mutable fields of a custom category. Nil
// means keep. The slug never changes because transactions reference it.
type CategoryUpdateParams struct {
	Name     *string
	Icon     *string
	Color    *string
	IsActive *bool
}

type CategoryService interface {
	// List returns the merged catalog for the organization as a tree: system
	// defaults plus the organization's custom categories, subcategories
	// nested under their parents.
	List(ctx context.Context, orgID, userID int64) ([]model.Category, error)
	Create(ctx context.Context, orgID, actorUserID int64, params CategoryParams) (*model.Category, error)
	Update(ctx context.Context, orgID, actorUserID, categoryID int64, params CategoryUpdateParams) (*model.Category, error)
	// Validate checks that a transaction's category labels resolve against
	// the organization's catalog and agree with the transaction type.
	Validate(ctx context.Context, orgID int64, category string, subcategory *string, txnType model.TransactionType) error
}

type categoryService struct {
	catStore store.CategoryStore
	access   AccessService
}

func NewCategoryService(catStore store.CategoryStore, access AccessService) CategoryService {
	return &categoryService{
		catStore: catStore,
		access:   access,
	}
}

func (s *categoryService) List(ctx context.Context, orgID, userID int64) ([]model.Category, error) {
	if _, err := s.access.Resolve(ctx, orgID, userID); err != nil {
		return nil, err
	}

	flat, err := s.catStore.ListActive(ctx, &orgID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	return buildCategoryTree(flat), nil
}

func (s *categoryService) Create(ctx context.Context, orgID, actorUserID int64, params CategoryParams) (*model.Category, error) {
	if _, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses); err != nil {
		return nil, err
	}

	switch params.Type {
	case model.CategoryIncome, model.CategoryExpense, model.CategoryTransfer:
	default:
		return nil, Validation("invalid category type")
	}

	slug, err := common.Slugify(params.Name, "")
	if err != nil {
		return nil, Validation("category name is required")
	}

	existing, err := s.catStore.GetBySlug(ctx, &orgID, slug)
	if err == nil && existing.OrganizationID != nil {
		return nil, Validation("a category with this name already exists")
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking category slug: %w", err)
	}

	if params.ParentID != nil {
		parent, err := s.catStore.GetByID(ctx, *params.ParentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, Validation("parent category not found")
			}
			return nil, fmt.Errorf("getting parent category: %w", err)
		}
		if parent.OrganizationID != nil && *parent.OrganizationID != orgID {
			return nil, Validation("parent category not found")
		}
		if !parent.IsActive || parent.ParentID != nil {
			return nil, Validation("parent must be an active top-level category")
		}
		if parent.Type != params.Type {
			return nil, Validation("subcategory type must match its parent")
		}
	}

	cat := &model.Category{
		ID:             id.New(),
		OrganizationID: &orgID,
		Name:           params.Name,
		Slug:           slug,
		Type:           params.Type,
		ParentID:       params.ParentID,
		Icon:           params.Icon,
		Color:          params.Color,
		IsSystem:       false,
		IsActive:       true,
	}

	if err := s.catStore.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	slog.InfoContext(ctx, "category created",
		"organization_id", orgID,
		"category_id", cat.ID,
		"slug", cat.Slug,
		"category_type", cat.Type,
	)

	return cat, nil
}

func (s *categoryService) Update(ctx context.Context, orgID, actorUserID, categoryID int64, params CategoryUpdateParams) (*model.Category, error) {
	if _, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageBusinesses); err != nil {
		return nil, err
	}

	cat, err := s.catStore.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting category: %w", err)
	}
	if cat.IsSystem || cat.OrganizationID == nil || *cat.OrganizationID != orgID {
		return nil, ErrNotFound
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, Validation("category name is required")
		}
		cat.Name = *params.Name
	}
	if params.Icon != nil {
		cat.Icon = params.Icon
	}
	if params.Color != nil {
		cat.Color = params.Color
	}
	if params.IsActive != nil {
		cat.IsActive = *params.IsActive
	}

	if err := s.catStore.Update(ctx, cat); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating category: %w", err)
	}

	return cat, nil
}

func (s *categoryService) Validate(ctx context.Context, orgID int64, category string, subcategory *string, txnType model.TransactionType) error {
	cat, err := s.catStore.GetBySlug(ctx, &orgID, category)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Validation(fmt.Sprintf("unknown category %q", category))
		}
		return fmt.Errorf("getting category: %w", err)
	}

	if string(cat.Type) != string(txnType) {
		return Validation(fmt.Sprintf("category %q cannot be used on %s transactions", category, txnType))
	}

	if subcategory == nil || *subcategory == "" {
		return nil
	}

	sub, err := s.catStore.GetBySlug(ctx, &orgID, *subcategory)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Validation(fmt.Sprintf("unknown subcategory %q", *subcategory))
		}
		return fmt.Errorf("getting subcategory: %w", err)
	}
	if sub.ParentID == nil || *sub.ParentID != cat.ID {
		return Validation(fmt.Sprintf("subcategory %q does not belong to category %q", *subcategory, category))
	}

	return nil
}

// buildCategoryTree nests subcategories under their parents. Children whose
// parent is missing from the active set are dropped rather than surfaced as
// orphan top-level entries.
func buildCategoryTree(flat []model.Category) []model.Category {
	byID := make(map[int64]*model.Category, len(flat))
	var roots []*model.Category
	for i := range flat {
		c := flat[i]
		c.Subcategories = nil
		byID[c.ID] = &c
		if c.ParentID == nil {
			roots = append(roots, byID[c.ID])
		}
	}
	for i := range flat {
		c := flat[i]
		if c.ParentID == nil {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Subcategories = append(parent.Subcategories, *byID[c.ID])
		}
	}

	tree := make([]model.Category, 0, len(roots))
	for _, r := range roots {
		tree = append(tree, *r)
	}
	return tree
}
