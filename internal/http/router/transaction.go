package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/handler"
)

func TransactionRouter(rg *gin.RouterGroup, h *handler.TransactionHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/summary", h.Summarize)
	rg.POST("/transfer", h.Transfer)

	txn := rg.Group("/:txnID")
	{
		txn.GET("", h.Get)
		txn.PUT("", h.Update)
		txn.POST("/void", h.Void)
	}
}
