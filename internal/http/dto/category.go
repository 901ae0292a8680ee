package dto

import "github.com/kudihq/kudi/internal/model"

type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=100"`
	Type     string  `json:"category_type" binding:"required"`
	ParentID *int64  `json:"parent_id,string,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Color    *string `json:"color,omitempty"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Icon     *string `json:"icon,omitempty"`
	Color    *string `json:"color,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type CategoryResponse struct {
	ID            int64              `json:"id,string"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Type          string             `json:"category_type"`
	ParentID      *int64             `json:"parent_id,string,omitempty"`
	Icon          *string            `json:"icon,omitempty"`
	Color         *string            `json:"color,omitempty"`
	IsSystem      bool               `json:"is_system"`
	Subcategories []CategoryResponse `json:"subcategories,omitempty"`
}

func ToCategoryResponse(c *model.Category) *CategoryResponse {
	resp := &CategoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		Type:     string(c.Type),
		ParentID: c.ParentID,
		Icon:     c.Icon,
		Color:    c.Color,
		IsSystem: c.IsSystem,
	}
	for i := range c.Subcategories {
		resp.Subcategories = append(resp.Subcategories, *ToCategoryResponse(&c.Subcategories[i]))
	}
	return resp
}

func ToCategoryResponses(cats []model.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(cats))
	for i := range cats {
		out[i] = *ToCategoryResponse(&cats[i])
	}
	return out
}
