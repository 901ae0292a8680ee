package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kudihq/kudi/common/id"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
	"github.com/kudihq/kudi/internal/store"
)

var _ = Describe("CategoryService", func() {
	const (
		orgID  = int64(1)
		userID = int64(7)
	)

	var (
		svc      service.CategoryService
		catStore *mockCategoryStore
		members  *mockTeamMemberStore
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())

		catStore = &mockCategoryStore{}
		members = &mockTeamMemberStore{}
		members.getActiveFn = func(_ context.Context, _, _ int64) (*model.TeamMember, error) {
			return &model.TeamMember{OrganizationID: orgID, Role: model.RoleAdmin, Status: model.MemberActive}, nil
		}

		access := service.NewAccessService(members, &mockBusinessStore{})
		svc = service.NewCategoryService(catStore, access)
	})

	Describe("List", func() {
		It("nests subcategories under their parents and drops orphans", func() {
			parentID := int64(1)
			goneID := int64(404)
			catStore.listActiveFn = func(_ context.Context, oid *int64) ([]model.Category, error) {
				Expect(*oid).To(Equal(orgID))
				return []model.Category{
					{ID: parentID, Slug: "sales", Type: model.CategoryIncome},
					{ID: 2, Slug: "retail-sales", Type: model.CategoryIncome, ParentID: &parentID},
					{ID: 3, Slug: "orphan", Type: model.CategoryIncome, ParentID: &goneID},
				}, nil
			}

			tree, err := svc.List(ctx, orgID, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tree).To(HaveLen(1))
			Expect(tree[0].Slug).To(Equal("sales"))
			Expect(tree[0].Subcategories).To(HaveLen(1))
			Expect(tree[0].Subcategories[0].Slug).To(Equal("retail-sales"))
		})
	})

	Describe("Create", func() {
		It("slugifies the name and marks the category custom", func() {
			var created *model.Category
			catStore.createFn = func(_ context.Context, c *model.Category) error {
				created = c
				return nil
			}

			cat, err := svc.Create(ctx, orgID, userID, service.CategoryParams{
				Name: "Okada Fuel & Repairs",
				Type: model.CategoryExpense,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created).NotTo(BeNil())
			Expect(cat.Slug).To(Equal("okada-fuel-repairs"))
			Expect(cat.IsSystem).To(BeFalse())
			Expect(cat.IsActive).To(BeTrue())
			Expect(*cat.OrganizationID).To(Equal(orgID))
		})

		It("rejects a duplicate custom slug", func() {
			existingOrg := orgID
			catStore.getBySlugFn = func(_ context.Context, _ *int64, _ string) (*model.Category, error) {
				return &model.Category{ID: 5, OrganizationID: &existingOrg}, nil
			}

			_, err := svc.Create(ctx, orgID, userID, service.CategoryParams{
				Name: "Sales",
				Type: model.CategoryIncome,
			})
			Expect(err).To(HaveOccurred())
		})

		It("requires the parent to be a top-level category of the same type", func() {
			parentParent := int64(1)
			catStore.getByIDFn = func(_ context.Context, pid int64) (*model.Category, error) {
				return &model.Category{ID: pid, Type: model.CategoryExpense, IsActive: true, ParentID: &parentParent}, nil
			}

			parent := int64(2)
			_, err := svc.Create(ctx, orgID, userID, service.CategoryParams{
				Name:     "Deep",
				Type:     model.CategoryExpense,
				ParentID: &parent,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("renames a custom category without touching its slug", func() {
			existingOrg := orgID
			catStore.getByIDFn = func(_ context.Context, cid int64) (*model.Category, error) {
				return &model.Category{ID: cid, OrganizationID: &existingOrg, Name: "Fuel",
					Slug: "fuel", Type: model.CategoryExpense, IsActive: true}, nil
			}

			name := "Fuel & Diesel"
			cat, err := svc.Update(ctx, orgID, userID, 5, service.CategoryUpdateParams{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(cat.Name).To(Equal("Fuel & Diesel"))
			Expect(cat.Slug).To(Equal("fuel"))
		})

		It("never updates system categories", func() {
			catStore.getByIDFn = func(_ context.Context, cid int64) (*model.Category, error) {
				return &model.Category{ID: cid, Slug: "sales", Type: model.CategoryIncome, IsSystem: true, IsActive: true}, nil
			}

			name := "Mine Now"
			_, err := svc.Update(ctx, orgID, userID, 1, service.CategoryUpdateParams{Name: &name})
			Expect(err).To(MatchError(service.ErrNotFound))
		})
	})

	Describe("Validate", func() {
		BeforeEach(func() {
			salesID := int64(1)
			catStore.getBySlugFn = func(_ context.Context, _ *int64, slug string) (*model.Category, error) {
				switch slug {
				case "sales":
					return &model.Category{ID: salesID, Slug: slug, Type: model.CategoryIncome}, nil
				case "retail-sales":
					return &model.Category{ID: 2, Slug: slug, Type: model.CategoryIncome, ParentID: &salesID}, nil
				case "rent":
					return &model.Category{ID: 3, Slug: slug, Type: model.CategoryExpense}, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("accepts a matching category and subcategory", func() {
			sub := "retail-sales"
			Expect(svc.Validate(ctx, orgID, "sales", &sub, model.TypeIncome)).To(Succeed())
		})

		It("rejects an unknown category", func() {
			Expect(svc.Validate(ctx, orgID, "ghost", nil, model.TypeIncome)).NotTo(Succeed())
		})

		It("rejects a type mismatch", func() {
			Expect(svc.Validate(ctx, orgID, "rent", nil, model.TypeIncome)).NotTo(Succeed())
		})

		It("rejects a subcategory under a different parent", func() {
			sub := "retail-sales"
			Expect(svc.Validate(ctx, orgID, "rent", &sub, model.TypeExpense)).NotTo(Succeed())
		})
	})
})
