package api

import (
	_ "embed"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/chatroom-playground/modules/wsserver"
)

//go:embed playground.html
var playgroundHTML []byte

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	wsserver.Mount(app, "/ws", wsserver.NewHandlers(m.sessions, m.authAdapter, m.logger))

	app.Get("/playground", m.playground)

	api := app.Group("/api/v1")
	api.Get("/rooms", m.listRooms)
	api.Get("/audit-logs", m.listAuditLogs)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	status := m.sessions.Health(c.UserContext())
	if !status.Healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: map[string]any{"message": status.Message},
		})
	}
	return c.JSON(HealthResponse{
		Status:  "healthy",
		Details: status.Details,
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.chatAdapter.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list rooms", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	response := RoomListResponse{
		Rooms: make([]RoomResponse, 0, len(rooms)),
		Total: len(rooms),
	}
	for _, room := range rooms {
		response.Rooms = append(response.Rooms, RoomResponse{
			Name:      room.Name,
			CreatorID: string(room.Creator),
			Members:   room.MemberCount,
			CreatedAt: room.CreatedAt,
		})
	}
	return c.JSON(response)
}

// listAuditLogs handles GET /api/v1/audit-logs?room=<name>&limit=<n>.
func (m *APIModule) listAuditLogs(c *fiber.Ctx) error {
	limit := 0
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "validation_error",
				Message: "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	logs, err := m.auditAdapter.ListAuditLogs(c.UserContext(), c.Query("room"), limit)
	if err != nil {
		m.logger.Error("Failed to list audit logs", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list audit logs",
		})
	}

	response := AuditLogListResponse{
		Logs:  make([]AuditLogResponse, 0, len(logs)),
		Total: len(logs),
	}
	for _, entry := range logs {
		response.Logs = append(response.Logs, AuditLogResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			RoomName:  entry.RoomName,
			UserID:    entry.UserID,
			Details:   entry.Details,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(response)
}

// playground handles GET /playground.
func (m *APIModule) playground(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(playgroundHTML)
}
