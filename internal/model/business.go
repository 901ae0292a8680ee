package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Industry string

const (
	IndustryRestaurant    Industry = "restaurant"
	IndustryRetail        Industry = "retail"
	IndustryTransport     Industry = "transport"
	IndustryRealEstate    Industry = "real_estate"
	IndustryConsulting    Industry = "consulting"
	IndustryAgriculture   Industry = "agriculture"
	IndustryManufacturing Industry = "manufacturing"
	IndustryTechnology    Industry = "technology"
	IndustryHealthcare    Industry = "healthcare"
	IndustryEducation     Industry = "education"
	IndustryHospitality   Industry = "hospitality"
	IndustryFashion       Industry = "fashion"
	IndustryConstruction  Industry = "construction"
	IndustryEntertainment Industry = "entertainment"
	IndustryOther         Industry = "other"
)

type BusinessType string

const (
	BusinessSoleProprietorship BusinessType = "sole_proprietorship"
	BusinessPartnership        BusinessType = "partnership"
	BusinessLimitedLiability   BusinessType = "limited_liability"
	BusinessPLC                BusinessType = "plc"
	BusinessCooperative        BusinessType = "cooperative"
	BusinessOtherType          BusinessType = "other"
)

// Business is a tracked financial unit owned by exactly one organization.
// CurrentBalance is a materialized view over confirmed transactions plus the
// opening balance, never the source of truth.
type Business struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	Name           string `json:"name"`
	ShortName      *string `json:"short_name,omitempty"`
	Description    *string `json:"description,omitempty"`

	Industry     Industry      `json:"industry"`
	BusinessType *BusinessType `json:"business_type,omitempty"`

	PrimaryCurrency string `json:"primary_currency"`

	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate *time.Time      `json:"opening_balance_date,omitempty"`

	CurrentBalance   decimal.Decimal `json:"current_balance"`
	BalanceUpdatedAt *time.Time      `json:"balance_updated_at,omitempty"`

	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	ArchivedBy *int64     `json:"-"`

	CreatedBy *int64    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Business) IsArchived() bool {
	return b.ArchivedAt != nil
}
