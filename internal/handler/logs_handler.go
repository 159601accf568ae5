package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/adapter/store"
)

// LogsHandler handles compliance audit-trail endpoints.
type LogsHandler struct {
	store *store.PostgresStore
}

// NewLogsHandler creates a new logs handler.
func NewLogsHandler(store *store.PostgresStore) *LogsHandler {
	return &LogsHandler{store: store}
}

// Register sets up log routes.
func (h *LogsHandler) Register(router fiber.Router) {
	logs := router.Group("/logs")
	logs.Get("/", h.List)
}

// List returns audit-trail entries with optional filtering.
func (h *LogsHandler) List(c fiber.Ctx) error {
	limitStr := c.Query("limit", "100")
	limit, _ := strconv.Atoi(limitStr)
	action := c.Query("action", "")

	logs, err := h.store.ListAuditLogs(c.Context(), limit, action)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}
