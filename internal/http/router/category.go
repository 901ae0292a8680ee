package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/handler"
)

func CategoryRouter(rg *gin.RouterGroup, h *handler.CategoryHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PUT("/:categoryID", h.Update)
}
