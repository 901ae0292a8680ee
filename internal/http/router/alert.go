package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/handler"
)

func AlertRouter(org *gin.RouterGroup, h *handler.AlertHandler) {
	rules := org.Group("/alert-rules")
	{
		rules.POST("", h.CreateRule)
		rules.GET("", h.ListRules)
		rules.PUT("/:ruleID", h.UpdateRule)
	}

	alerts := org.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.POST("/:alertID/read", h.MarkRead)
		alerts.POST("/:alertID/dismiss", h.Dismiss)
		alerts.POST("/:alertID/action", h.Action)
	}
}
