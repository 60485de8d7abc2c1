package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ecoscan/internal/services"
)

type todayResponse struct {
	Date         string `json:"date"`
	TotalScans   int64  `json:"total_scans"`
	UniqueUsers  int64  `json:"unique_users"`
	RecycleCount int64  `json:"recycle_count"`
	CompostCount int64  `json:"compost_count"`
	TrashCount   int64  `json:"trash_count"`
}

// AnalyticsHandler handles HTTP requests for aggregate statistics.
type AnalyticsHandler struct {
	service *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// RegisterRoutes registers the analytics routes.
func (h *AnalyticsHandler) RegisterRoutes(router fiber.Router, optionalAuth fiber.Handler) {
	analytics := router.Group("/analytics")
	analytics.Get("/today", optionalAuth, h.HandleToday)
	analytics.Get("/global", h.HandleGlobal)
	analytics.Get("/daily", h.HandleDaily)
}

func (h *AnalyticsHandler) HandleToday(c *fiber.Ctx) error {
	stat, err := h.service.Today(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", todayResponse{
		Date:         stat.Date,
		TotalScans:   stat.TotalScans,
		UniqueUsers:  stat.UniqueUsers,
		RecycleCount: stat.RecycleCount,
		CompostCount: stat.CompostCount,
		TrashCount:   stat.TrashCount,
	})
}

func (h *AnalyticsHandler) HandleGlobal(c *fiber.Ctx) error {
	global, err := h.service.Global(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", global)
}

// HandleDaily lists daily rows between ?start_date and ?end_date inclusive.
func (h *AnalyticsHandler) HandleDaily(c *fiber.Ctx) error {
	rows, err := h.service.Daily(c.UserContext(), services.DailyRangeQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"daily_stats": rows})
}
