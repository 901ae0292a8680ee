package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kudihq/kudi/common"
	"github.com/kudihq/kudi/common/id"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/store"
)

const (
	inviteTokenLength = 32
	inviteExpiryDays  = 7
)

var (
	ErrInviteNotFound = errors.New("invitation not found")
	ErrInviteExpired  = errors.New("invitation has expired")
	ErrEmailMismatch  = errors.New("authenticated email does not match invitation")
)

// InviteParams describes a new team member invitation.
type InviteParams struct {
	Email               string
	Role                model.Role
	BusinessAccess      []int64
	PermissionsOverride map[model.Permission]bool
}

// MemberUpdateParams carries the mutable membership fields. Nil means keep.
type MemberUpdateParams struct {
	Role                *model.Role
	BusinessAccess      []int64
	PermissionsOverride map[model.Permission]bool
}

type OrganizationService interface {
	// Create provisions the organization and its owner membership atomically.
	Create(ctx context.Context, name string, slug *string, ownerUserID int64) (*model.Organization, error)
	Get(ctx context.Context, orgID, userID int64) (*model.Organization, error)
	ListForUser(ctx context.Context, userID int64) ([]model.Organization, error)
	// Invite creates a pending membership and returns it with the invite URL.
	Invite(ctx context.Context, orgID, actorUserID int64, params InviteParams) (*model.TeamMember, string, error)
	AcceptInvite(ctx context.Context, token string, user *model.User) (*model.TeamMember, error)
	UpdateMember(ctx context.Context, orgID, actorUserID, memberID int64, params MemberUpdateParams) (*model.TeamMember, error)
	RemoveMember(ctx context.Context, orgID, actorUserID, memberID int64) error
	ListMembers(ctx context.Context, orgID, userID int64) ([]model.TeamMember, error)
	// Delete soft-deletes the organization. Owner only.
	Delete(ctx context.Context, orgID, actorUserID int64) error
}

type organizationService struct {
	orgStore     store.OrganizationStore
	memberStore  store.TeamMemberStore
	access       AccessService
	txRunner     TxRunner
	dashboardURL string
}

func NewOrganizationService(
	orgStore store.OrganizationStore,
	memberStore store.TeamMemberStore,
	access AccessService,
	txRunner TxRunner,
	dashboardURL string,
) OrganizationService {
	return &organizationService{
		orgStore:     orgStore,
		memberStore:  memberStore,
		access:       access,
		txRunner:     txRunner,
		dashboardURL: dashboardURL,
	}
}

func (s *organizationService) Create(ctx context.Context, name string, slug *string, ownerUserID int64) (*model.Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, Validation("organization name is required")
	}

	finalSlug, err := s.ensureSlug(ctx, name, slug)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	trialEnd := now.Add(14 * 24 * time.Hour)
	org := &model.Organization{
		ID:                 id.New(),
		OwnerUserID:        ownerUserID,
		Name:               name,
		Slug:               finalSlug,
		SubscriptionTier:   model.TierStarter,
		SubscriptionStatus: model.SubscriptionTrialing,
		TrialEndsAt:        &trialEnd,
	}

	// The owner membership is what makes the organization reachable, so it
	// must never exist without one.
	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Organizations().Create(ctx, org); err != nil {
			return fmt.Errorf("creating organization: %w", err)
		}
		owner := &model.TeamMember{
			ID:             id.New(),
			OrganizationID: org.ID,
			UserID:         &ownerUserID,
			Role:           model.RoleOwner,
			Status:         model.MemberActive,
			AcceptedAt:     &now,
		}
		if err := stores.TeamMembers().Create(ctx, owner); err != nil {
			return fmt.Errorf("creating owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "organization created",
		"organization_id", org.ID,
		"slug", org.Slug,
		"owner_user_id", ownerUserID,
	)

	return org, nil
}

func (s *organizationService) Get(ctx context.Context, orgID, userID int64) (*model.Organization, error) {
	if _, err := s.access.Resolve(ctx, orgID, userID); err != nil {
		return nil, err
	}
	org, err := s.orgStore.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting organization: %w", err)
	}
	return org, nil
}

func (s *organizationService) ListForUser(ctx context.Context, userID int64) ([]model.Organization, error) {
	return s.orgStore.ListForUser(ctx, userID)
}

func (s *organizationService) Delete(ctx context.Context, orgID, actorUserID int64) error {
	member, err := s.access.Resolve(ctx, orgID, actorUserID)
	if err != nil {
		return err
	}
	if member.Role != model.RoleOwner {
		return ErrForbidden
	}

	if err := s.orgStore.SoftDelete(ctx, orgID); err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}

	slog.InfoContext(ctx, "organization deleted",
		"organization_id", orgID,
		"deleted_by", actorUserID,
	)

	return nil
}

func (s *organizationService) Invite(ctx context.Context, orgID, actorUserID int64, params InviteParams) (*model.TeamMember, string, error) {
	actor, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageTeam)
	if err != nil {
		return nil, "", err
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, "", Validation("email is required")
	}
	if params.Role == model.RoleOwner {
		return nil, "", Validation("owner role cannot be granted by invitation")
	}

	org, err := s.orgStore.GetByID(ctx, orgID)
	if err != nil {
		return nil, "", fmt.Errorf("getting organization: %w", err)
	}

	if limit := org.Limits().TeamMembers; limit != model.Unlimited {
		count, err := s.memberStore.CountActive(ctx, orgID)
		if err != nil {
			return nil, "", fmt.Errorf("counting members: %w", err)
		}
		if count >= limit {
			return nil, "", ErrLimitReached
		}
	}

	if existing, err := s.memberStore.GetLiveByEmail(ctx, orgID, email); err == nil && existing != nil {
		return nil, "", ErrAlreadyMember
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("checking existing member: %w", err)
	}

	token, err := generateSecureToken(inviteTokenLength)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(inviteExpiryDays * 24 * time.Hour)
	member := &model.TeamMember{
		ID:                  id.New(),
		OrganizationID:      orgID,
		Role:                params.Role,
		Status:              model.MemberPending,
		BusinessAccess:      params.BusinessAccess,
		PermissionsOverride: params.PermissionsOverride,
		InvitedEmail:        &email,
		InvitedBy:           &actor.ID,
		InvitedAt:           &now,
		InvitationToken:     &token,
		InviteExpiresAt:     &expiresAt,
	}

	if err := s.memberStore.Create(ctx, member); err != nil {
		return nil, "", fmt.Errorf("creating invitation: %w", err)
	}

	inviteURL := fmt.Sprintf("%s/invite?token=%s", s.dashboardURL, token)

	slog.InfoContext(ctx, "team member invited",
		"organization_id", orgID,
		"member_id", member.ID,
		"email", email,
		"role", params.Role,
		"expires_at", expiresAt,
	)

	return member, inviteURL, nil
}

func (s *organizationService) AcceptInvite(ctx context.Context, token string, user *model.User) (*model.TeamMember, error) {
	member, err := s.memberStore.GetByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("getting invitation: %w", err)
	}

	if !member.InviteIsValid() {
		return nil, ErrInviteExpired
	}

	if member.InvitedEmail == nil || !strings.EqualFold(*member.InvitedEmail, user.Email) {
		slog.WarnContext(ctx, "email mismatch on invitation acceptance",
			"member_id", member.ID,
			"user_email", user.Email,
		)
		return nil, ErrEmailMismatch
	}

	accepted, err := s.memberStore.Accept(ctx, member.ID, user.ID, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInviteExpired
		}
		return nil, fmt.Errorf("accepting invitation: %w", err)
	}

	slog.InfoContext(ctx, "invitation accepted",
		"organization_id", accepted.OrganizationID,
		"member_id", accepted.ID,
		"user_id", user.ID,
	)

	return accepted, nil
}

func (s *organizationService) UpdateMember(ctx context.Context, orgID, actorUserID, memberID int64, params MemberUpdateParams) (*model.TeamMember, error) {
	if _, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageTeam); err != nil {
		return nil, err
	}

	member, err := s.getOrgMember(ctx, orgID, memberID)
	if err != nil {
		return nil, err
	}
	if member.Role == model.RoleOwner {
		return nil, Validation("the owner membership cannot be modified")
	}

	if params.Role != nil {
		if *params.Role == model.RoleOwner {
			return nil, Validation("ownership cannot be granted through member updates")
		}
		member.Role = *params.Role
	}
	if params.BusinessAccess != nil {
		member.BusinessAccess = params.BusinessAccess
	}
	if params.PermissionsOverride != nil {
		member.PermissionsOverride = params.PermissionsOverride
	}

	if err := s.memberStore.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("updating member: %w", err)
	}

	slog.InfoContext(ctx, "team member updated",
		"organization_id", orgID,
		"member_id", memberID,
		"role", member.Role,
	)

	return member, nil
}

func (s *organizationService) RemoveMember(ctx context.Context, orgID, actorUserID, memberID int64) error {
	if _, err := s.access.RequirePermission(ctx, orgID, actorUserID, model.PermManageTeam); err != nil {
		return err
	}

	member, err := s.getOrgMember(ctx, orgID, memberID)
	if err != nil {
		return err
	}
	if member.Role == model.RoleOwner {
		return Validation("the owner cannot be removed")
	}

	if err := s.memberStore.SetStatus(ctx, memberID, model.MemberRemoved); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}

	slog.InfoContext(ctx, "team member removed",
		"organization_id", orgID,
		"member_id", memberID,
	)

	return nil
}

func (s *organizationService) ListMembers(ctx context.Context, orgID, userID int64) ([]model.TeamMember, error) {
	if _, err := s.access.Resolve(ctx, orgID, userID); err != nil {
		return nil, err
	}
	return s.memberStore.ListByOrganization(ctx, orgID)
}

func (s *organizationService) getOrgMember(ctx context.Context, orgID, memberID int64) (*model.TeamMember, error) {
	member, err := s.memberStore.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting member: %w", err)
	}
	if member.OrganizationID != orgID {
		return nil, ErrNotFound
	}
	return member, nil
}

func (s *organizationService) ensureSlug(ctx context.Context, name string, slug *string) (string, error) {
	input := name
	if slug != nil && *slug != "" {
		input = *slug
	}

	base, err := common.Slugify(input, "org")
	if err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}

	// Fast path
	if _, err := s.orgStore.GetBySlug(ctx, base); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return base, nil
		}
		return "", fmt.Errorf("checking slug availability: %w", err)
	}

	// Add numeric suffix until available
	for i := 1; i <= 20; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		_, err := s.orgStore.GetBySlug(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking slug availability: %w", err)
		}
	}

	return "", fmt.Errorf("unable to find available slug for %q", base)
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
