package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/minigolf/internal/game"
	"github.com/playmatatu/minigolf/internal/logger"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// GetLeaderboard returns sessions ranked by average shots per hole.
func GetLeaderboard(m *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLeaderboardLimit)))
		if err != nil || limit < 1 {
			limit = defaultLeaderboardLimit
		}
		if limit > maxLeaderboardLimit {
			limit = maxLeaderboardLimit
		}

		entries, err := m.Leaderboard(limit)
		if err != nil {
			log := logger.For("http")
			log.Error().Err(err).Msg("leaderboard query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "limit": limit})
	}
}
