package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kudihq/kudi/internal/http/handler"
	"github.com/kudihq/kudi/internal/http/middleware"
	"github.com/kudihq/kudi/internal/service"
)

type RouterConfig struct {
	DashboardURL string
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(services.Auth(), services.Organizations(), cfg.DashboardURL, cfg.IsProduction)
	AuthRouter(router.Group("/auth"), authHandler, services.Auth())

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAuth(services.Auth()))
	{
		orgHandler := handler.NewOrganizationHandler(services.Organizations())
		OrganizationRouter(v1.Group("/organizations"), orgHandler)

		org := v1.Group("/organizations/:orgID")
		{
			bizHandler := handler.NewBusinessHandler(services.Businesses())
			BusinessRouter(org.Group("/businesses"), bizHandler)

			txnHandler := handler.NewTransactionHandler(services.Ledger())
			TransactionRouter(org.Group("/transactions"), txnHandler)

			catHandler := handler.NewCategoryHandler(services.Categories())
			CategoryRouter(org.Group("/categories"), catHandler)

			alertHandler := handler.NewAlertHandler(services.Alerts())
			AlertRouter(org, alertHandler)
		}
	}
}
