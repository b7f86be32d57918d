package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/minigolf/internal/admin"
	"github.com/playmatatu/minigolf/internal/game"
	"github.com/playmatatu/minigolf/internal/logger"
)

// AdminListSessions lists every live session.
func AdminListSessions(m *game.SessionManager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := m.ListSessions()
		admin.LogAdminAction(db, c.GetString("admin_username"), c.ClientIP(), c.FullPath(), "list_sessions",
			map[string]interface{}{"count": len(sessions)}, true)
		c.Header("X-Session-Count", strconv.Itoa(len(sessions)))
		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
	}
}

// AdminEndSession force-ends a session.
func AdminEndSession(m *game.SessionManager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString("admin_username")
		token := c.Param("token")

		err := m.EndSession(token, game.StatusEnded)
		admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "end_session",
			map[string]interface{}{"session": token}, err == nil)
		if err != nil {
			if errors.Is(err, game.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
			return
		}

		log := logger.For("admin")
		log.Info().Str("admin", username).Str("session", token).Msg("session ended by admin")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// AdminSessionHistory lists stored session records, newest first.
func AdminSessionHistory(m *game.SessionManager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit < 1 || limit > 200 {
			limit = 50
		}

		sessions, err := m.RecentSessions(limit)
		admin.LogAdminAction(db, c.GetString("admin_username"), c.ClientIP(), c.FullPath(), "session_history",
			map[string]interface{}{"limit": limit}, err == nil)
		if err != nil {
			log := logger.For("admin")
			log.Error().Err(err).Msg("failed to fetch session history")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "limit": limit})
	}
}

// AdminAuditLog returns recent admin actions
func AdminAuditLog(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit < 1 || limit > 200 {
			limit = 25
		}
		if offset < 0 {
			offset = 0
		}

		entries, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log := logger.For("admin")
			log.Error().Err(err).Msg("failed to fetch audit logs")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": entries, "limit": limit, "offset": offset})
	}
}
