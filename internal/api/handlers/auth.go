package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/minigolf/internal/admin"
	"github.com/playmatatu/minigolf/internal/auth"
	"github.com/playmatatu/minigolf/internal/config"
)

// PlayerAuthMiddleware requires a bearer player token issued for the
// session named in the :token path parameter.
func PlayerAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		sessionToken, err := auth.VerifyPlayerToken(cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil || sessionToken != c.Param("token") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("session_token", sessionToken)
		c.Next()
	}
}

// AdminAuthMiddleware checks the X-Admin-User and X-Admin-Token headers
// against the bcrypt hash stored for that admin.
func AdminAuthMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin storage unavailable"})
			return
		}

		username := strings.TrimSpace(c.GetHeader("X-Admin-User"))
		token := strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		if username == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		account, err := admin.ValidateAdminCredentials(db, username, token)
		if err != nil {
			admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "auth",
				map[string]interface{}{"reason": err.Error()}, false)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.Set("admin_username", account.Username)
		c.Next()
	}
}
