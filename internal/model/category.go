package model

import "time"

type CategoryType string

const (
	CategoryIncome   CategoryType = "income"
	CategoryExpense  CategoryType = "expense"
	CategoryTransfer CategoryType = "transfer"
)

// Category is a tree-structured transaction label. A nil OrganizationID marks
// a system default available to every tenant; otherwise it is custom to one
// organization. Unique on (organization, slug). Parent/child is one level by
// convention only.
type Category struct {
	ID             int64  `json:"id"`
	OrganizationID *int64 `json:"organization_id,omitempty"` // nil = system default

	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description,omitempty"`
	Type        CategoryType `json:"category_type"`
	ParentID    *int64       `json:"parent_id,omitempty"`

	Icon      *string `json:"icon,omitempty"`
	Color     *string `json:"color,omitempty"`
	SortOrder int     `json:"sort_order"`

	IsSystem bool `json:"is_system"`
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Subcategories []Category `json:"subcategories,omitempty"`
}
