package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/minigolf/internal/auth"
	"github.com/playmatatu/minigolf/internal/config"
	"github.com/playmatatu/minigolf/internal/game"
	"github.com/playmatatu/minigolf/internal/logger"
)

type createSessionRequest struct {
	Seed *int64 `json:"seed"`
}

// CreateSession starts a hosted course and returns the player token that
// opens its websocket.
func CreateSession(m *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.For("http")

		var req createSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		session, err := m.CreateSession(req.Seed)
		if err != nil {
			log.Error().Err(err).Msg("create session failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		ttl := time.Duration(cfg.SessionTokenTTLMinutes) * time.Minute
		if ttl <= 0 {
			ttl = 4 * time.Hour
		}
		playerToken, err := auth.IssuePlayerToken(cfg.JWTSecret, session.Token, ttl)
		if err != nil {
			log.Error().Err(err).Str("session", session.Token).Msg("issue player token failed")
			m.EndSession(session.Token, game.StatusEnded)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"token":        session.Token,
			"seed":         session.Seed,
			"player_token": playerToken,
			"snapshot":     session.Snapshot(),
		})
	}
}

// GetSession returns the live snapshot, or the cached one of a session
// that has already ended.
func GetSession(m *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		if session, err := m.GetSession(token); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"token":    session.Token,
				"status":   session.Status(),
				"snapshot": session.Snapshot(),
			})
			return
		}

		snap, err := m.CachedSnapshot(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, game.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":    token,
			"status":   game.StatusEnded,
			"snapshot": snap,
			"cached":   true,
		})
	}
}

// EndSession stops a session on behalf of its player.
func EndSession(m *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := m.EndSession(token, game.StatusEnded); err != nil {
			if errors.Is(err, game.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GetSessionHoles returns the completed holes of a session.
func GetSessionHoles(m *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		holes, err := m.SessionHistory(c.Param("token"))
		if err != nil {
			log := logger.For("http")
			log.Error().Err(err).Msg("session history failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch holes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"holes": holes})
	}
}
