package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/minigolf/internal/auth"
	"github.com/playmatatu/minigolf/internal/config"
	"github.com/playmatatu/minigolf/internal/game"
	"github.com/playmatatu/minigolf/internal/logger"
)

// Origins are checked by middleware.WebSocketCORSCheck before the upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionSource is the part of the session manager the socket needs.
type SessionSource interface {
	GetSession(token string) (*game.Session, error)
	Submit(token string, in game.Input) error
}

// PointerData is the payload of aim_start, aim_update and release.
type PointerData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandleWebSocket upgrades a player onto a session. The player token in
// the pt query parameter must have been issued for the session in the path.
func HandleWebSocket(sessions SessionSource, hub *Hub, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.For("ws")
		token := c.Param("token")
		playerToken := c.Query("pt")
		if token == "" || playerToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session token and pt required"})
			return
		}

		bound, err := auth.VerifyPlayerToken(cfg.JWTSecret, playerToken)
		if err != nil || bound != token {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid player token"})
			return
		}

		session, err := sessions.GetSession(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		greeting, err := encode(MsgSnapshot, session.Snapshot())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Str("session", token).Msg("upgrade failed")
			return
		}

		client := &Client{
			hub:          hub,
			conn:         conn,
			sessionToken: token,
			send:         make(chan []byte, sendBufferSize),
			greeting:     greeting,
			closed:       make(chan struct{}),
		}
		if !hub.add(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.watchSession(session)
		go client.readPump(sessions)
	}
}

// watchSession tells the client why its session stopped and disconnects it.
func (c *Client) watchSession(session *game.Session) {
	select {
	case <-c.closed:
		return
	case <-session.Done():
	}

	msgType := MsgSessionEnded
	if session.Status() == game.StatusExpired {
		msgType = MsgSessionExpired
	}
	c.enqueue(msgType, session.Snapshot())
	c.hub.remove(c)
}

// readPump turns pointer frames into session inputs.
func (c *Client) readPump(sessions SessionSource) {
	log := logger.For("ws")
	defer func() {
		close(c.closed)
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("session", c.sessionToken).Msg("unexpected close")
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		if !c.handleMessage(sessions, msg) {
			return
		}
	}
}

// handleMessage reports false once the session can no longer take input.
func (c *Client) handleMessage(sessions SessionSource, msg WSMessage) bool {
	in, err := toInput(msg)
	if err != nil {
		c.sendError(err.Error())
		return true
	}

	switch err := sessions.Submit(c.sessionToken, in); {
	case err == nil:
		return true
	case errors.Is(err, game.ErrInputQueueFull):
		c.sendError(err.Error())
		return true
	default:
		c.sendError(err.Error())
		return false
	}
}

func toInput(msg WSMessage) (game.Input, error) {
	var t game.InputType
	switch game.InputType(msg.Type) {
	case game.InputAimStart, game.InputAimUpdate, game.InputRelease:
		t = game.InputType(msg.Type)
	default:
		return game.Input{}, errors.New("unknown message type: " + msg.Type)
	}

	var p PointerData
	if len(msg.Data) == 0 {
		return game.Input{}, errors.New("missing pointer data")
	}
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		return game.Input{}, errors.New("invalid pointer data")
	}
	point := game.NewVec2(p.X, p.Y)
	if !game.ValidPointer(point) {
		return game.Input{}, game.ErrPointerOutOfRange
	}
	return game.Input{Type: t, Point: point}, nil
}
