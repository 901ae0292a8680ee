package dto

import (
	"time"

	"github.com/kudihq/kudi/internal/model"
)

type CreateOrganizationRequest struct {
	Name string  `json:"name" binding:"required,min=1,max=255"`
	Slug *string `json:"slug,omitempty" binding:"omitempty,min=1,max=255"`
}

type OrganizationResponse struct {
	ID                 int64      `json:"id,string"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	OwnerUserID        int64      `json:"owner_user_id,string"`
	SubscriptionTier   string     `json:"subscription_tier"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func ToOrganizationResponse(org *model.Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:                 org.ID,
		Name:               org.Name,
		Slug:               org.Slug,
		OwnerUserID:        org.OwnerUserID,
		SubscriptionTier:   string(org.SubscriptionTier),
		SubscriptionStatus: string(org.SubscriptionStatus),
		TrialEndsAt:        org.TrialEndsAt,
		CreatedAt:          org.CreatedAt,
		UpdatedAt:          org.UpdatedAt,
	}
}

type InviteMemberRequest struct {
	Email               string          `json:"email" binding:"required,email"`
	Role                string          `json:"role" binding:"required"`
	BusinessAccess      []int64         `json:"business_access,omitempty"`
	PermissionsOverride map[string]bool `json:"permissions_override,omitempty"`
}

type UpdateMemberRequest struct {
	Role                *string         `json:"role,omitempty"`
	BusinessAccess      []int64         `json:"business_access,omitempty"`
	PermissionsOverride map[string]bool `json:"permissions_override,omitempty"`
}

type AcceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

type TeamMemberResponse struct {
	ID             int64      `json:"id,string"`
	OrganizationID int64      `json:"organization_id,string"`
	UserID         *int64     `json:"user_id,string,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	BusinessAccess []int64    `json:"business_access"`
	InvitedEmail   *string    `json:"invited_email,omitempty"`
	InvitedAt      *time.Time `json:"invited_at,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func ToTeamMemberResponse(m *model.TeamMember) *TeamMemberResponse {
	return &TeamMemberResponse{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Role:           string(m.Role),
		Status:         string(m.Status),
		BusinessAccess: m.BusinessAccess,
		InvitedEmail:   m.InvitedEmail,
		InvitedAt:      m.InvitedAt,
		AcceptedAt:     m.AcceptedAt,
		CreatedAt:      m.CreatedAt,
	}
}

type InviteMemberResponse struct {
	Member    *TeamMemberResponse `json:"member"`
	InviteURL string              `json:"invite_url"`
}
