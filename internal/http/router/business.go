package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/handler"
)

func BusinessRouter(rg *gin.RouterGroup, h *handler.BusinessHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)

	biz := rg.Group("/:businessID")
	{
		biz.GET("", h.Get)
		biz.PUT("", h.Update)
		biz.POST("/archive", h.Archive)
		biz.POST("/recalculate", h.Recalculate)
		biz.POST("/bank-accounts", h.ConnectBankAccount)
		biz.GET("/bank-accounts", h.ListBankAccounts)
	}
}
