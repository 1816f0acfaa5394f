package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"handyghana/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	// TODO: restrict origins once the web client domain is fixed
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RoomAuthorizer decides whether a user may join a named room.
type RoomAuthorizer interface {
	CanJoin(userID int64, role, room string) bool
}

type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	authorizer RoomAuthorizer
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, authorizer RoomAuthorizer) *WSHandler {
	return &WSHandler{hub: hub, jwtService: jwtService, authorizer: authorizer}
}

type clientFrame struct {
	Type string `json:"type"` // join | leave
	Room string `json:"room"`
}

// HandleWebSocket upgrades the connection and serves join/leave frames.
//
// Endpoint: GET /ws?token=JWT_TOKEN
// Auth goes through a query parameter since browsers cannot set headers
// on websocket upgrades.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required. Use ?token=YOUR_JWT_TOKEN"})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed: %v", err)
		return
	}

	cl := h.hub.Register(claims.UserID, conn)
	logrus.Infof("user %d connected via websocket", claims.UserID)

	defer func() {
		h.hub.Unregister(cl)
		logrus.Infof("user %d disconnected from websocket", claims.UserID)
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.readLoop(cl, claims.Role)
}

// readLoop owns every read on the connection. Replies go through the
// hub so they serialize with broadcasts on the write pump.
func (h *WSHandler) readLoop(cl *Client, role string) {
	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				logrus.Warnf("websocket error for user %d: %v", cl.userID, err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.hub.Send(cl, Event{Type: "error", Data: "malformed frame"})
			continue
		}
		frame.Room = strings.TrimSpace(frame.Room)

		switch frame.Type {
		case "join":
			if frame.Room == "" || !h.canJoin(cl.userID, role, frame.Room) {
				h.hub.Send(cl, Event{Type: "error", Data: "room access denied"})
				continue
			}
			h.hub.Join(cl, frame.Room)
			h.hub.Send(cl, Event{Type: "joined", Data: frame.Room})
		case "leave":
			h.hub.Leave(cl, frame.Room)
			h.hub.Send(cl, Event{Type: "left", Data: frame.Room})
		default:
			h.hub.Send(cl, Event{Type: "error", Data: "unknown frame type"})
		}
	}
}

func (h *WSHandler) canJoin(userID int64, role, room string) bool {
	if h.authorizer == nil {
		return true
	}
	return h.authorizer.CanJoin(userID, role, room)
}
