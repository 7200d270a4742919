package routes

import (
	"time"

	"storefront-admin/handlers"
	"storefront-admin/middleware"
	"storefront-admin/session"
	"storefront-admin/upstream"
	"storefront-admin/views"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, client *upstream.Client, log zerolog.Logger) {
	sessions := session.NewStore()
	list := views.NewPromotionList(client, log)

	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	promotionHandler := &handlers.PromotionHandler{DB: db, Client: client, List: list, Sessions: sessions, Log: log}
	builderHandler := &handlers.BuilderHandler{DB: db, Client: client, Sessions: sessions, Log: log}

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	api := r.Group("/api")
	{
		api.POST("/auth/login", loginLimiter.Middleware(), authHandler.Login)
	}

	// Authenticated routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Promotion list and detail
		admin.GET("/promotions", promotionHandler.ListPromotions)
		admin.PUT("/promotions/:id/archive", promotionHandler.ArchivePromotion)
		admin.GET("/promotions/:id/edit", promotionHandler.EditPromotion)

		// Audit trail
		admin.GET("/audit", promotionHandler.ListAuditEntries)

		// Builder sessions
		admin.POST("/builder", builderHandler.StartSession)
		admin.GET("/builder/:id", builderHandler.GetSession)
		admin.DELETE("/builder/:id", builderHandler.DiscardSession)
		admin.PATCH("/builder/:id", builderHandler.SetFields)
		admin.POST("/builder/:id/submit", builderHandler.Submit)

		// Rule panel
		admin.POST("/builder/:id/rules/open", builderHandler.OpenRulePanel)
		admin.POST("/builder/:id/rules/select", builderHandler.SelectRuleKind)
		admin.POST("/builder/:id/rules/configure", builderHandler.ConfigureRule)
		admin.POST("/builder/:id/rules/save", builderHandler.SaveRule)
		admin.POST("/builder/:id/rules/cancel", builderHandler.CancelRule)
		admin.DELETE("/builder/:id/rules/:ruleID", builderHandler.DeleteRule)

		// Action panel
		admin.POST("/builder/:id/actions/open", builderHandler.OpenActionPanel)
		admin.POST("/builder/:id/actions/select", builderHandler.SelectActionKind)
		admin.POST("/builder/:id/actions/calculator", builderHandler.SelectCalculator)
		admin.POST("/builder/:id/actions/amount", builderHandler.SetAmount)
		admin.POST("/builder/:id/actions/save", builderHandler.SaveAction)
		admin.POST("/builder/:id/actions/cancel", builderHandler.CancelAction)
		admin.DELETE("/builder/:id/actions/:actionID", builderHandler.DeleteAction)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
