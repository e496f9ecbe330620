// Package api serves the HTTP surface: the chat WebSocket endpoint, read
// only REST queries and the browser playground.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/chatroom-playground/modules/audit"
	"github.com/example/chatroom-playground/modules/auth"
	"github.com/example/chatroom-playground/modules/chat"
	"github.com/example/chatroom-playground/modules/wsserver"
)

// Config holds HTTP server settings.
type Config struct {
	Port string
	// AllowedOrigins is a comma separated CORS origin list. Empty allows all.
	AllowedOrigins string
}

// Sessions is the part of the chat module the API drives directly.
type Sessions interface {
	wsserver.Sessions
	Health(ctx context.Context) mono.HealthStatus
}

// APIModule is the HTTP API module with WebSocket support.
type APIModule struct {
	app          *fiber.App
	config       Config
	chatAdapter  chat.ChatPort
	authAdapter  auth.AuthPort
	auditAdapter audit.AuditPort
	sessions     Sessions
	logger       types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule.
func NewModule(config Config, logger types.Logger) *APIModule {
	if config.Port == "" {
		config.Port = "3000"
	}
	return &APIModule{
		config: config,
		logger: logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"chat", "auth", "audit"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "chat":
		m.chatAdapter = chat.NewChatAdapter(container)
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "audit":
		m.auditAdapter = audit.NewAuditAdapter(container)
	}
}

// SetSessions sets the live session handler (called from main.go).
func (m *APIModule) SetSessions(sessions Sessions) {
	m.sessions = sessions
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.chatAdapter == nil {
		return errors.New("chat adapter dependency not set")
	}
	if m.authAdapter == nil {
		return errors.New("auth adapter dependency not set")
	}
	if m.auditAdapter == nil {
		return errors.New("audit adapter dependency not set")
	}
	if m.sessions == nil {
		return errors.New("chat sessions dependency not set")
	}

	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(":" + m.config.Port); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "port", m.config.Port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.config.Port,
		},
	}
}

func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(m.loggerMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.allowedOrigins(),
		AllowMethods: "GET,OPTIONS",
	}))

	m.setupRoutes(app)
	return app
}

func (m *APIModule) allowedOrigins() string {
	if m.config.AllowedOrigins == "" {
		return "*"
	}
	return m.config.AllowedOrigins
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   errorCode(code),
		Message: message,
	})
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusUpgradeRequired:
		return "upgrade_required"
	default:
		return "server_error"
	}
}

// loggerMiddleware returns a Fiber middleware for request logging.
func (m *APIModule) loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// WebSocket sessions are logged by the session handler.
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		m.logger.Debug("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}
