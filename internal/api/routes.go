package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/aimguide/internal/admin"
	"github.com/playmatatu/aimguide/internal/api/handlers"
	"github.com/playmatatu/aimguide/internal/config"
	"github.com/playmatatu/aimguide/internal/middleware"
	"github.com/playmatatu/aimguide/internal/profiles"
	"github.com/playmatatu/aimguide/internal/ws"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, repo profiles.Repository, lookup admin.AccountLookup, hub *ws.Hub, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(cfg, rdb))

		// Stateless prediction
		v1.POST("/predict", handlers.Predict)

		// Admin login
		v1.POST("/admin/login", handlers.AdminLogin(lookup, rdb, cfg))

		// Overlay profiles
		profileGroup := v1.Group("/profiles")
		{
			profileGroup.GET("", handlers.ListProfiles(repo))
			profileGroup.GET("/:name", handlers.GetProfile(repo))
			profileGroup.GET("/:name/preview.png", handlers.GetPreview(repo, rdb, cfg))
			profileGroup.GET("/:name/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleProfileWebSocket(hub))

			protected := profileGroup.Group("")
			protected.Use(handlers.AuthMiddleware(cfg))
			{
				protected.PUT("/:name", handlers.PutProfile(repo, hub, rdb))
				protected.POST("/:name/reset", handlers.ResetProfile(repo, hub, rdb))
				protected.DELETE("/:name", handlers.DeleteProfile(repo, hub, rdb))
			}
		}
	}
}
