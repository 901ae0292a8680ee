package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
	"github.com/kudihq/kudi/internal/store"
)

var _ = Describe("AccessService", func() {
	var (
		svc      service.AccessService
		members  *mockTeamMemberStore
		bizStore *mockBusinessStore
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		members = &mockTeamMemberStore{}
		bizStore = &mockBusinessStore{}
		svc = service.NewAccessService(members, bizStore)
	})

	Describe("Resolve", func() {
		It("returns the active membership", func() {
			members.getActiveFn = func(_ context.Context, orgID, userID int64) (*model.TeamMember, error) {
				Expect(orgID).To(Equal(int64(1)))
				Expect(userID).To(Equal(int64(7)))
				return &model.TeamMember{OrganizationID: 1, Role: model.RoleAdmin, Status: model.MemberActive}, nil
			}

			member, err := svc.Resolve(ctx, 1, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(member.Role).To(Equal(model.RoleAdmin))
		})

		It("maps a missing membership to forbidden", func() {
			members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
				return nil, store.ErrNotFound
			}

			_, err := svc.Resolve(ctx, 1, 7)
			Expect(err).To(MatchError(service.ErrForbidden))
		})
	})

	Describe("RequirePermission", func() {
		It("grants everything to the owner", func() {
			members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
				return &model.TeamMember{OrganizationID: 1, Role: model.RoleOwner}, nil
			}

			_, err := svc.RequirePermission(ctx, 1, 7, model.PermManageTeam)
			Expect(err).NotTo(HaveOccurred())
		})

		It("denies a viewer write permissions", func() {
			members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
				return &model.TeamMember{OrganizationID: 1, Role: model.RoleViewer}, nil
			}

			_, err := svc.RequirePermission(ctx, 1, 7, model.PermAddTransactions)
			Expect(err).To(MatchError(service.ErrForbidden))
		})

		It("lets an explicit override grant beyond the role", func() {
			members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
				return &model.TeamMember{
					OrganizationID:      1,
					Role:                model.RoleViewer,
					PermissionsOverride: map[model.Permission]bool{model.PermExport: true},
				}, nil
			}

			_, err := svc.RequirePermission(ctx, 1, 7, model.PermExport)
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets an explicit override revoke a role default", func() {
			members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
				return &model.TeamMember{
					OrganizationID:      1,
					Role:                model.RoleAccountant,
					PermissionsOverride: map[model.Permission]bool{model.PermAddTransactions: false},
				}, nil
			}

			_, err := svc.RequirePermission(ctx, 1, 7, model.PermAddTransactions)
			Expect(err).To(MatchError(service.ErrForbidden))
		})
	})

	Describe("AccessibleBusinessIDs", func() {
		It("returns all organization businesses for admins", func() {
			bizStore.listIDsByOrganizationFn = func(_ context.Context, orgID int64) ([]int64, error) {
				Expect(orgID).To(Equal(int64(1)))
				return []int64{10, 11, 12}, nil
			}

			ids, err := svc.AccessibleBusinessIDs(ctx, &model.TeamMember{OrganizationID: 1, Role: model.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]int64{10, 11, 12}))
		})

		It("intersects scoped grants with live businesses", func() {
			bizStore.listByIDsFn = func(_ context.Context, orgID int64, ids []int64) ([]model.Business, error) {
				Expect(ids).To(Equal([]int64{10, 99}))
				// 99 was archived or belongs elsewhere; only 10 survives
				return []model.Business{{ID: 10, OrganizationID: orgID}}, nil
			}

			ids, err := svc.AccessibleBusinessIDs(ctx, &model.TeamMember{
				OrganizationID: 1,
				Role:           model.RoleManager,
				BusinessAccess: []int64{10, 99},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]int64{10}))
		})

		It("returns an empty set for a scoped member without grants", func() {
			ids, err := svc.AccessibleBusinessIDs(ctx, &model.TeamMember{OrganizationID: 1, Role: model.RoleViewer})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})
	})

	Describe("ResolveBusiness", func() {
		It("hides businesses from other organizations as not found", func() {
			bizStore.getByIDFn = func(_ context.Context, id int64) (*model.Business, error) {
				return &model.Business{ID: id, OrganizationID: 2}, nil
			}

			_, err := svc.ResolveBusiness(ctx, &model.TeamMember{OrganizationID: 1, Role: model.RoleOwner}, 10)
			Expect(err).To(MatchError(service.ErrNotFound))
		})

		It("forbids scoped members outside their grant list", func() {
			bizStore.getByIDFn = func(_ context.Context, id int64) (*model.Business, error) {
				return &model.Business{ID: id, OrganizationID: 1}, nil
			}

			_, err := svc.ResolveBusiness(ctx, &model.TeamMember{
				OrganizationID: 1,
				Role:           model.RoleAccountant,
				BusinessAccess: []int64{11},
			}, 10)
			Expect(err).To(MatchError(service.ErrForbidden))
		})

		It("returns the business for a granted scoped member", func() {
			bizStore.getByIDFn = func(_ context.Context, id int64) (*model.Business, error) {
				return &model.Business{ID: id, OrganizationID: 1}, nil
			}

			biz, err := svc.ResolveBusiness(ctx, &model.TeamMember{
				OrganizationID: 1,
				Role:           model.RoleAccountant,
				BusinessAccess: []int64{10},
			}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(biz.ID).To(Equal(int64(10)))
		})
	})
})
