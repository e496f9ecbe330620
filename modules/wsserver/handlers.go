// Package wsserver serves the chat WebSocket endpoint: it authenticates the
// upgrade, registers the connection and feeds inbound frames to the chat
// module until the peer goes away.
package wsserver

import (
	"context"
	"errors"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	domain "github.com/example/chatroom-playground/domain/chat"
	"github.com/example/chatroom-playground/domain/user"
	"github.com/example/chatroom-playground/modules/hub"
)

const (
	authTimeout  = 5 * time.Second
	drainTimeout = 2 * time.Second
)

// Close reasons sent with policy violation closes.
const (
	ReasonAuthRequired = "Authentication required"
	ReasonAuthFailed   = "Authentication failed"
)

// Sessions is the chat side of a connection's lifetime.
type Sessions interface {
	Connect(transport hub.Transport, identity domain.Identity) (*hub.Connection, error)
	Handle(ctx context.Context, conn *hub.Connection, frame []byte)
	Disconnect(conn *hub.Connection)
}

// Authenticator resolves a bearer token into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.Claims, error)
}

// frameConn is the part of *websocket.Conn a session uses.
type frameConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// transport adapts a WebSocket to hub.Transport. Only the connection's
// writer goroutine calls WriteText.
type transport struct {
	conn frameConn
}

func (t *transport) WriteText(text string) error {
	return t.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (t *transport) Close() error {
	return t.conn.Close()
}

// Handlers contains the WebSocket handlers.
type Handlers struct {
	sessions Sessions
	auth     Authenticator
	logger   types.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(sessions Sessions, auth Authenticator, logger types.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		auth:     auth,
		logger:   logger,
	}
}

// Mount registers the WebSocket endpoint at path. Plain HTTP requests get
// 426 Upgrade Required.
func Mount(router fiber.Router, path string, h *Handlers) {
	router.Use(path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get(path, websocket.New(h.HandleWebSocket))
}

// HandleWebSocket handles one upgraded connection. The token comes from the
// token query parameter.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	h.serve(c, c.Query("token"))
}

func (h *Handlers) serve(c frameConn, token string) {
	identity, ok := h.authenticate(c, token)
	if !ok {
		return
	}

	conn, err := h.sessions.Connect(&transport{conn: c}, identity)
	if err != nil {
		h.logger.Error("Failed to register connection", "userID", identity, "error", err)
		h.closeWith(c, websocket.CloseInternalServerErr, "Registration failed")
		return
	}
	h.logger.Info("WebSocket connected", "connectionID", conn.ID(), "userID", identity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		_, frame, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.logger.Warn("WebSocket read failed", "connectionID", conn.ID(), "error", err)
			}
			break
		}
		h.sessions.Handle(ctx, conn, frame)
	}

	h.sessions.Disconnect(conn)

	// Let queued frames reach the peer before the endpoint closes the socket.
	select {
	case <-conn.Done():
	case <-time.After(drainTimeout):
		h.logger.Warn("Timed out flushing connection", "connectionID", conn.ID())
	}
	h.logger.Info("WebSocket disconnected", "connectionID", conn.ID(), "userID", identity)
}

func (h *Handlers) authenticate(c frameConn, token string) (domain.Identity, bool) {
	if token == "" {
		h.closeWith(c, websocket.ClosePolicyViolation, ReasonAuthRequired)
		return "", false
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	claims, err := h.auth.Authenticate(ctx, token)
	if err == nil && claims.UserID == "" {
		err = errors.New("token has no subject")
	}
	if err != nil {
		h.logger.Info("WebSocket authentication failed", "error", err)
		h.closeWith(c, websocket.ClosePolicyViolation, ReasonAuthFailed)
		return "", false
	}
	return domain.Identity(claims.UserID), true
}

func (h *Handlers) closeWith(c frameConn, code int, reason string) {
	if err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)); err != nil {
		h.logger.Debug("Failed to send close frame", "error", err)
	}
	_ = c.Close()
}
