package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/store"
)

// AccessService resolves what a user may see and do inside an organization.
// Every resolution is fail-closed: a missing or inactive membership is
// indistinguishable from no membership at all.
type AccessService interface {
	// Resolve returns the caller's active membership or ErrForbidden.
	Resolve(ctx context.Context, orgID, userID int64) (*model.TeamMember, error)
	// RequirePermission resolves the membership and checks one permission.
	RequirePermission(ctx context.Context, orgID, userID int64, perm model.Permission) (*model.TeamMember, error)
	// AccessibleBusinessIDs returns the live business IDs the member may act
	// on. Scoped members get their grant list intersected with the
	// organization's live businesses, so stale grants never widen access.
	AccessibleBusinessIDs(ctx context.Context, member *model.TeamMember) ([]int64, error)
	// ResolveBusiness loads a business the member may act on. Businesses in
	// other organizations surface as ErrNotFound, in-organization businesses
	// outside the member's scope as ErrForbidden.
	ResolveBusiness(ctx context.Context, member *model.TeamMember, businessID int64) (*model.Business, error)
}

type accessService struct {
	memberStore   store.TeamMemberStore
	businessStore store.BusinessStore
}

func NewAccessService(memberStore store.TeamMemberStore, businessStore store.BusinessStore) AccessService {
	return &accessService{
		memberStore:   memberStore,
		businessStore: businessStore,
	}
}

func (s *accessService) Resolve(ctx context.Context, orgID, userID int64) (*model.TeamMember, error) {
	member, err := s.memberStore.GetActive(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("resolving membership: %w", err)
	}
	return member, nil
}

func (s *accessService) RequirePermission(ctx context.Context, orgID, userID int64, perm model.Permission) (*model.TeamMember, error) {
	member, err := s.Resolve(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if !member.HasPermission(perm) {
		slog.WarnContext(ctx, "permission denied",
			"organization_id", orgID,
			"user_id", userID,
			"permission", perm,
			"role", member.Role,
		)
		return nil, ErrForbidden
	}
	return member, nil
}

func (s *accessService) AccessibleBusinessIDs(ctx context.Context, member *model.TeamMember) ([]int64, error) {
	if member.CanAccessAllBusinesses() {
		ids, err := s.businessStore.ListIDsByOrganization(ctx, member.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("listing businesses: %w", err)
		}
		return ids, nil
	}

	if len(member.BusinessAccess) == 0 {
		return []int64{}, nil
	}

	live, err := s.businessStore.ListByIDs(ctx, member.OrganizationID, member.BusinessAccess)
	if err != nil {
		return nil, fmt.Errorf("listing granted businesses: %w", err)
	}
	ids := make([]int64, 0, len(live))
	for _, b := range live {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func (s *accessService) ResolveBusiness(ctx context.Context, member *model.TeamMember, businessID int64) (*model.Business, error) {
	biz, err := s.businessStore.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting business: %w", err)
	}

	// A business in another organization must look like it does not exist.
	if biz.OrganizationID != member.OrganizationID {
		return nil, ErrNotFound
	}

	if !member.CanAccessAllBusinesses() && !slices.Contains(member.BusinessAccess, businessID) {
		return nil, ErrForbidden
	}

	return biz, nil
}
