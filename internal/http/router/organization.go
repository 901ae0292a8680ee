package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/handler"
)

func OrganizationRouter(rg *gin.RouterGroup, h *handler.OrganizationHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.POST("/accept-invite", h.AcceptInvite)

	org := rg.Group("/:orgID")
	{
		org.GET("", h.Get)
		org.DELETE("", h.Delete)
		org.GET("/members", h.ListMembers)
		org.POST("/members/invite", h.Invite)
		org.PATCH("/members/:memberID", h.UpdateMember)
		org.DELETE("/members/:memberID", h.RemoveMember)
	}
}
