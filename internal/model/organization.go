package model

import "time"

type SubscriptionTier string

const (
	TierStarter    SubscriptionTier = "starter"
	TierGrowth     SubscriptionTier = "growth"
	TierBusiness   SubscriptionTier = "business"
	TierEnterprise SubscriptionTier = "enterprise"
)

type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionUnpaid   SubscriptionStatus = "unpaid"
)

// Organization is the tenant root: one owner, many businesses, a subscription
// tier that gates numeric limits.
type Organization struct {
	ID                 int64              `json:"id"`
	OwnerUserID        int64              `json:"owner_user_id"`
	Name               string             `json:"name"`
	Slug               string             `json:"slug"`
	LogoURL            *string            `json:"logo_url,omitempty"`
	SubscriptionTier   SubscriptionTier   `json:"subscription_tier"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	TrialEndsAt        *time.Time         `json:"trial_ends_at,omitempty"`
	BillingEmail       *string            `json:"billing_email,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	DeletedAt          *time.Time         `json:"-"` // soft delete, internal
}

func (o *Organization) IsActive() bool {
	return o.SubscriptionStatus == SubscriptionTrialing || o.SubscriptionStatus == SubscriptionActive
}

// TierLimits holds per-tier capacity. Unlimited is -1.
type TierLimits struct {
	Businesses  int
	TeamMembers int
	BankSync    bool
}

const Unlimited = -1

var tierLimits = map[SubscriptionTier]TierLimits{
	TierStarter:    {Businesses: 3, TeamMembers: 1, BankSync: false},
	TierGrowth:     {Businesses: 10, TeamMembers: 5, BankSync: true},
	TierBusiness:   {Businesses: Unlimited, TeamMembers: 20, BankSync: true},
	TierEnterprise: {Businesses: Unlimited, TeamMembers: Unlimited, BankSync: true},
}

// Limits returns the fixed capacity table entry for the organization's tier.
// Unknown tiers fall back to starter.
func (o *Organization) Limits() TierLimits {
	if l, ok := tierLimits[o.SubscriptionTier]; ok {
		return l
	}
	return tierLimits[TierStarter]
}
