package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/minigolf/internal/config"
	"github.com/playmatatu/minigolf/internal/game"
	"github.com/playmatatu/minigolf/internal/ws"
)

// HandleSessionWebSocket handles real-time session communication
func HandleSessionWebSocket(m *game.SessionManager, hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(m, hub, cfg)
}
