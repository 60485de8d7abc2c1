package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	startedAt time.Time
}

func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth returns status, the current time and uptime in seconds.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	now := time.Now()
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": now.UTC().Format(time.RFC3339Nano),
		"uptime":    now.Sub(h.startedAt).Seconds(),
	})
}
