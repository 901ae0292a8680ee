package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/dto"
	"github.com/kudihq/kudi/internal/http/middleware"
	"github.com/kudihq/kudi/internal/model"
	"github.com/kudihq/kudi/internal/service"
)

type OrganizationHandler struct {
	orgService service.OrganizationService
}

func NewOrganizationHandler(orgService service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "name is required")
		return
	}

	org, err := h.orgService.Create(ctx, req.Name, req.Slug, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationResponse(org))
}

func (h *OrganizationHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	org, err := h.orgService.Get(ctx, orgID, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationResponse(org))
}

func (h *OrganizationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgs, err := h.orgService.ListForUser(ctx, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.OrganizationResponse, len(orgs))
	for i := range orgs {
		resp[i] = *dto.ToOrganizationResponse(&orgs[i])
	}
	c.JSON(http.StatusOK, gin.H{"organizations": resp})
}

func (h *OrganizationHandler) Invite(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	var req dto.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "email and role are required")
		return
	}

	member, inviteURL, err := h.orgService.Invite(ctx, orgID, user.ID, service.InviteParams{
		Email:               req.Email,
		Role:                model.Role(req.Role),
		BusinessAccess:      req.BusinessAccess,
		PermissionsOverride: toPermissionOverrides(req.PermissionsOverride),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.InviteMemberResponse{
		Member:    dto.ToTeamMemberResponse(member),
		InviteURL: inviteURL,
	})
}

func (h *OrganizationHandler) AcceptInvite(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	var req dto.AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "token is required")
		return
	}

	member, err := h.orgService.AcceptInvite(ctx, req.Token, user)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberResponse(member))
}

func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	members, err := h.orgService.ListMembers(ctx, orgID, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.TeamMemberResponse, len(members))
	for i := range members {
		resp[i] = *dto.ToTeamMemberResponse(&members[i])
	}
	c.JSON(http.StatusOK, gin.H{"members": resp})
}

func (h *OrganizationHandler) UpdateMember(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberID")
	if !ok {
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, "invalid request body")
		return
	}

	params := service.MemberUpdateParams{
		BusinessAccess:      req.BusinessAccess,
		PermissionsOverride: toPermissionOverrides(req.PermissionsOverride),
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		params.Role = &role
	}

	member, err := h.orgService.UpdateMember(ctx, orgID, user.ID, memberID, params)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberResponse(member))
}

func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberID")
	if !ok {
		return
	}

	if err := h.orgService.RemoveMember(ctx, orgID, user.ID, memberID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

func (h *OrganizationHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.GetUser(ctx)

	orgID, ok := parseIDParam(c, "orgID")
	if !ok {
		return
	}

	if err := h.orgService.Delete(ctx, orgID, user.ID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "organization deleted"})
}

func toPermissionOverrides(in map[string]bool) map[model.Permission]bool {
	if in == nil {
		return nil
	}
	out := make(map[model.Permission]bool, len(in))
	for k, v := range in {
		out[model.Permission(k)] = v
	}
	return out
}
