package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/minigolf/internal/api/handlers"
	"github.com/playmatatu/minigolf/internal/config"
	"github.com/playmatatu/minigolf/internal/game"
	"github.com/playmatatu/minigolf/internal/middleware"
	"github.com/playmatatu/minigolf/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, m *game.SessionManager, hub *ws.Hub, db *sqlx.DB, cfg *config.Config) {
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Next()
		})
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m))
		v1.GET("/leaderboard", handlers.GetLeaderboard(m))

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(m, cfg))
			sessions.GET("/:token", handlers.GetSession(m))
			sessions.GET("/:token/holes", handlers.GetSessionHoles(m))
			sessions.DELETE("/:token", handlers.PlayerAuthMiddleware(cfg), handlers.EndSession(m))
			sessions.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(m, hub, cfg))
		}

		adminGroup := v1.Group("/admin", handlers.AdminAuthMiddleware(db))
		{
			adminGroup.GET("/sessions", handlers.AdminListSessions(m, db))
			adminGroup.GET("/sessions/history", handlers.AdminSessionHistory(m, db))
			adminGroup.DELETE("/sessions/:token", handlers.AdminEndSession(m, db))
			adminGroup.GET("/audit", handlers.AdminAuditLog(db))
		}
	}
}
