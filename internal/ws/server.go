package ws

import (
	"context"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/sirupsen/logrus"

	"go_releasehub/internal/auth"
	"go_releasehub/internal/model"
)

// Socket.IO event names
const (
	EventConnected            = "connected"
	EventJoinRelease          = "join:release"
	EventRequestNotifications = "request:notifications"
	EventNotification         = "release:notification"
	EventNotifications        = "release:notifications"
	EventError                = "error"
)

const namespace = "/"

// ReleaseRoom is the room every client watching a release joins
func ReleaseRoom(releaseID string) string {
	return "release:" + releaseID
}

// TokenParser verifies handshake tokens
type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// Replayer reads stored notifications for reconnecting clients
type Replayer interface {
	Since(ctx context.Context, releaseID string, lastID int64, limit int) ([]model.Notification, error)
	Latest(ctx context.Context, releaseID string, limit int) ([]model.Notification, error)
}

// Hub owns the Socket.IO server that pushes release notifications
type Hub struct {
	server *socketio.Server
	tokens TokenParser
	replay Replayer
	logger *logrus.Entry
}

// NewHub 创建Socket.IO服务
func NewHub(tokens TokenParser, replay Replayer, logger *logrus.Entry) *Hub {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	allowAll := func(r *http.Request) bool { return true }

	h := &Hub{
		server: socketio.NewServer(&engineio.Options{
			Transports: []transport.Transport{
				&polling.Transport{CheckOrigin: allowAll},
				&websocket.Transport{CheckOrigin: allowAll},
			},
		}),
		tokens: tokens,
		replay: replay,
		logger: logger.WithField("component", "ws"),
	}
	h.registerHandlers()
	return h
}

func (h *Hub) registerHandlers() {
	h.server.OnConnect(namespace, h.onConnect)

	h.server.OnDisconnect(namespace, func(s socketio.Conn, reason string) {
		h.logger.WithFields(logrus.Fields{"conn_id": s.ID(), "reason": reason}).Debug("Client disconnected")
	})

	h.server.OnError(namespace, func(s socketio.Conn, e error) {
		if s == nil {
			h.logger.WithError(e).Warn("Socket.IO error")
			return
		}
		h.logger.WithField("conn_id", s.ID()).WithError(e).Warn("Socket.IO error")
	})

	h.server.OnEvent(namespace, EventJoinRelease, h.handleJoinRelease)
	h.server.OnEvent(namespace, EventRequestNotifications, h.handleRequestNotifications)
}

// Start runs the Socket.IO server loop in the background
func (h *Hub) Start() {
	go func() {
		if err := h.server.Serve(); err != nil {
			h.logger.WithError(err).Error("Socket.IO server stopped")
		}
	}()
	h.logger.Info("Socket.IO server started")
}

// Close stops the server and drops all connections
func (h *Hub) Close() error {
	return h.server.Close()
}

// Handler returns the HTTP handler to mount at /socket.io/
func (h *Hub) Handler() http.Handler {
	return h.wrapWithAuth(h.server)
}

// BroadcastToRoom broadcasts a message to all clients in a room
func (h *Hub) BroadcastToRoom(room, event string, data interface{}) bool {
	return h.server.BroadcastToRoom(namespace, room, event, data)
}

// BroadcastToAll broadcasts a message to all connected clients
func (h *Hub) BroadcastToAll(event string, data interface{}) bool {
	return h.server.BroadcastToNamespace(namespace, event, data)
}
