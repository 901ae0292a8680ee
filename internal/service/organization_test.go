package service_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kudihq/kudi/common/id"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
	"github.com/kudihq/kudi/internal/store"
)

var _ = Describe("OrganizationService", func() {
	const (
		orgID  = int64(1)
		userID = int64(7)
	)

	var (
		svc      service.OrganizationService
		orgStore *mockOrganizationStore
		members  *mockTeamMemberStore
		bizStore *mockBusinessStore
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		orgStore = &mockOrganizationStore{}
		members = &mockTeamMemberStore{}
		bizStore = &mockBusinessStore{}

		access := service.NewAccessService(members, bizStore)
		provider := &mockStoreProvider{orgs: orgStore, members: members}
		svc = service.NewOrganizationService(orgStore, members, access, &mockTxRunner{provider: provider}, "https://app.kudi.ng")
	})

	asOwner := func() {
		members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
			return &model.TeamMember{OrganizationID: orgID, Role: model.RoleOwner, Status: model.MemberActive}, nil
		}
	}

	starterOrg := func() *model.Organization {
		return &model.Organization{ID: orgID, SubscriptionTier: model.TierStarter}
	}

	Describe("Create", func() {
		It("creates the organization and its owner membership together", func() {
			var org *model.Organization
			var owner *model.TeamMember
			orgStore.createFn = func(_ context.Context, o *model.Organization) error {
				org = o
				return nil
			}
			members.createFn = func(_ context.Context, m *model.TeamMember) error {
				owner = m
				return nil
			}

			created, err := svc.Create(ctx, "Mama Nkechi Stores", nil, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org).NotTo(BeNil())
			Expect(owner).NotTo(BeNil())
			Expect(owner.OrganizationID).To(Equal(created.ID))
			Expect(owner.Role).To(Equal(model.RoleOwner))
			Expect(owner.Status).To(Equal(model.MemberActive))
			Expect(*owner.UserID).To(Equal(userID))

			Expect(created.Slug).To(Equal("mama-nkechi-stores"))
			Expect(created.SubscriptionTier).To(Equal(model.TierStarter))
			Expect(created.SubscriptionStatus).To(Equal(model.SubscriptionTrialing))
			Expect(created.TrialEndsAt).NotTo(BeNil())
		})

		It("suffixes the slug when taken", func() {
			orgStore.getBySlugFn = func(_ context.Context, slug string) (*model.Organization, error) {
				if slug == "acme" {
					return &model.Organization{}, nil
				}
				return nil, store.ErrNotFound
			}

			created, err := svc.Create(ctx, "Acme", nil, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Slug).To(Equal("acme-1"))
		})
	})

	Describe("Invite", func() {
		BeforeEach(func() {
			asOwner()
			orgStore.getByIDFn = func(_ context.Context, _ int64) (*model.Organization, error) {
				return starterOrg(), nil
			}
		})

		It("creates a pending membership with a tokenized URL", func() {
			var invited *model.TeamMember
			members.createFn = func(_ context.Context, m *model.TeamMember) error {
				invited = m
				return nil
			}

			member, inviteURL, err := svc.Invite(ctx, orgID, userID, service.InviteParams{
				Email: "Ada@Example.COM",
				Role:  model.RoleAccountant,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(invited).NotTo(BeNil())
			Expect(member.Status).To(Equal(model.MemberPending))
			Expect(*member.InvitedEmail).To(Equal("ada@example.com"))
			Expect(member.InvitationToken).NotTo(BeNil())
			Expect(member.InviteExpiresAt).NotTo(BeNil())
			Expect(inviteURL).To(HavePrefix("https://app.kudi.ng/invite?token="))
			Expect(strings.TrimPrefix(inviteURL, "https://app.kudi.ng/invite?token=")).To(Equal(*member.InvitationToken))
		})

		It("refuses to grant the owner role", func() {
			_, _, err := svc.Invite(ctx, orgID, userID, service.InviteParams{
				Email: "ada@example.com",
				Role:  model.RoleOwner,
			})
			Expect(err).To(HaveOccurred())
			Expect(members.createCalls).To(BeZero())
		})

		It("enforces the tier member limit", func() {
			members.countActiveFn = func(_ context.Context, _ int64) (int, error) {
				return starterOrg().Limits().TeamMembers, nil
			}

			_, _, err := svc.Invite(ctx, orgID, userID, service.InviteParams{
				Email: "ada@example.com",
				Role:  model.RoleViewer,
			})
			Expect(err).To(MatchError(service.ErrLimitReached))
		})

		It("rejects emails that already have a live membership", func() {
			members.getLiveByEmailFn = func(_ context.Context, _ int64, email string) (*model.TeamMember, error) {
				return &model.TeamMember{Status: model.MemberActive}, nil
			}

			_, _, err := svc.Invite(ctx, orgID, userID, service.InviteParams{
				Email: "ada@example.com",
				Role:  model.RoleViewer,
			})
			Expect(err).To(MatchError(service.ErrAlreadyMember))
		})

		It("requires the manage_team permission", func() {
			members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
				return &model.TeamMember{OrganizationID: orgID, Role: model.RoleAccountant}, nil
			}

			_, _, err := svc.Invite(ctx, orgID, userID, service.InviteParams{
				Email: "ada@example.com",
				Role:  model.RoleViewer,
			})
			Expect(err).To(MatchError(service.ErrForbidden))
		})
	})

	Describe("AcceptInvite", func() {
		pendingInvite := func(email string, expiresIn time.Duration) *model.TeamMember {
			expires := time.Now().Add(expiresIn)
			return &model.TeamMember{
				ID:              99,
				OrganizationID:  orgID,
				Role:            model.RoleViewer,
				Status:          model.MemberPending,
				InvitedEmail:    &email,
				InviteExpiresAt: &expires,
			}
		}

		It("binds the membership to the accepting user", func() {
			members.getByInviteTokenFn = func(_ context.Context, token string) (*model.TeamMember, error) {
				Expect(token).To(Equal("tok"))
				return pendingInvite("ada@example.com", time.Hour), nil
			}
			members.acceptFn = func(_ context.Context, memberID, uid int64, _ time.Time) (*model.TeamMember, error) {
				Expect(memberID).To(Equal(int64(99)))
				Expect(uid).To(Equal(userID))
				return &model.TeamMember{ID: memberID, OrganizationID: orgID, UserID: &uid, Status: model.MemberActive}, nil
			}

			member, err := svc.AcceptInvite(ctx, "tok", &model.User{ID: userID, Email: "ada@example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(member.Status).To(Equal(model.MemberActive))
		})

		It("accepts regardless of email casing", func() {
			members.getByInviteTokenFn = func(_ context.Context, _ string) (*model.TeamMember, error) {
				return pendingInvite("ada@example.com", time.Hour), nil
			}
			members.acceptFn = func(_ context.Context, memberID, uid int64, _ time.Time) (*model.TeamMember, error) {
				return &model.TeamMember{ID: memberID, OrganizationID: orgID, UserID: &uid, Status: model.MemberActive}, nil
			}

			_, err := svc.AcceptInvite(ctx, "tok", &model.User{ID: userID, Email: "ADA@example.com"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a different email", func() {
			members.getByInviteTokenFn = func(_ context.Context, _ string) (*model.TeamMember, error) {
				return pendingInvite("ada@example.com", time.Hour), nil
			}

			_, err := svc.AcceptInvite(ctx, "tok", &model.User{ID: userID, Email: "eve@example.com"})
			Expect(err).To(MatchError(service.ErrEmailMismatch))
		})

		It("rejects an expired invitation", func() {
			members.getByInviteTokenFn = func(_ context.Context, _ string) (*model.TeamMember, error) {
				return pendingInvite("ada@example.com", -time.Hour), nil
			}

			_, err := svc.AcceptInvite(ctx, "tok", &model.User{ID: userID, Email: "ada@example.com"})
			Expect(err).To(MatchError(service.ErrInviteExpired))
		})

		It("rejects an unknown token", func() {
			_, err := svc.AcceptInvite(ctx, "nope", &model.User{ID: userID, Email: "ada@example.com"})
			Expect(err).To(MatchError(service.ErrInviteNotFound))
		})
	})

	Describe("Delete", func() {
		It("lets the owner soft-delete the organization", func() {
			asOwner()
			var deleted int64
			orgStore.softDeleteFn = func(_ context.Context, oid int64) error {
				deleted = oid
				return nil
			}

			Expect(svc.Delete(ctx, orgID, userID)).To(Succeed())
			Expect(deleted).To(Equal(orgID))
		})

		It("refuses non-owners", func() {
			members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
				return &model.TeamMember{OrganizationID: orgID, Role: model.RoleAdmin, Status: model.MemberActive}, nil
			}

			Expect(svc.Delete(ctx, orgID, userID)).To(MatchError(service.ErrForbidden))
		})
	})

	Describe("UpdateMember", func() {
		BeforeEach(asOwner)

		It("refuses to touch the owner membership", func() {
			members.getByIDFn = func(_ context.Context, memberID int64) (*model.TeamMember, error) {
				return &model.TeamMember{ID: memberID, OrganizationID: orgID, Role: model.RoleOwner}, nil
			}

			viewer := model.RoleViewer
			_, err := svc.UpdateMember(ctx, orgID, userID, 99, service.MemberUpdateParams{Role: &viewer})
			Expect(err).To(HaveOccurred())
		})

		It("refuses to grant ownership", func() {
			members.getByIDFn = func(_ context.Context, memberID int64) (*model.TeamMember, error) {
				return &model.TeamMember{ID: memberID, OrganizationID: orgID, Role: model.RoleViewer}, nil
			}

			owner := model.RoleOwner
			_, err := svc.UpdateMember(ctx, orgID, userID, 99, service.MemberUpdateParams{Role: &owner})
			Expect(err).To(HaveOccurred())
		})

		It("hides members of other organizations", func() {
			members.getByIDFn = func(_ context.Context, memberID int64) (*model.TeamMember, error) {
				return &model.TeamMember{ID: memberID, OrganizationID: orgID + 1, Role: model.RoleViewer}, nil
			}

			viewer := model.RoleViewer
			_, err := svc.UpdateMember(ctx, orgID, userID, 99, service.MemberUpdateParams{Role: &viewer})
			Expect(err).To(MatchError(service.ErrNotFound))
		})
	})

	Describe("RemoveMember", func() {
		BeforeEach(asOwner)

		It("marks the member removed", func() {
			members.getByIDFn = func(_ context.Context, memberID int64) (*model.TeamMember, error) {
				return &model.TeamMember{ID: memberID, OrganizationID: orgID, Role: model.RoleViewer}, nil
			}
			var set model.MemberStatus
			members.setStatusFn = func(_ context.Context, _ int64, status model.MemberStatus) error {
				set = status
				return nil
			}

			Expect(svc.RemoveMember(ctx, orgID, userID, 99)).To(Succeed())
			Expect(set).To(Equal(model.MemberRemoved))
		})

		It("never removes the owner", func() {
			members.getByIDFn = func(_ context.Context, memberID int64) (*model.TeamMember, error) {
				return &model.TeamMember{ID: memberID, OrganizationID: orgID, Role: model.RoleOwner}, nil
			}

			Expect(svc.RemoveMember(ctx, orgID, userID, 99)).NotTo(Succeed())
		})
	})
})
