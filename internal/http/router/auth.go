package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/handler"
	"github.com/kudihq/kudi/internal/http/middleware"
	"github.com/kudihq/kudi/internal/service"
)

// AuthRouter sets up auth routes. Login and callback are public; the rest
// require a live session.
func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler, authService service.AuthService) {
	rg.GET("/login", h.Login)
	rg.GET("/callback", h.Callback)

	authed := rg.Group("")
	authed.Use(middleware.RequireAuth(authService))
	{
		authed.POST("/logout", h.Logout)
		authed.GET("/me", h.Me)
	}
}
