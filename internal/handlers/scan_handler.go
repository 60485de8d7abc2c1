package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ecoscan/internal/middleware"
	"ecoscan/internal/services"
)

// ScanHandler handles HTTP requests for scans.
type ScanHandler struct {
	service *services.ScanService
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(service *services.ScanService) *ScanHandler {
	return &ScanHandler{service: service}
}

// RegisterRoutes registers the scan routes.
func (h *ScanHandler) RegisterRoutes(router fiber.Router, requireAuth, optionalAuth fiber.Handler) {
	scanRoutes := router.Group("/scans")
	scanRoutes.Post("/", optionalAuth, h.HandleCreateScan)
	scanRoutes.Get("/my-scans", requireAuth, h.HandleMyScans)
	scanRoutes.Get("/stats", requireAuth, h.HandleStats)
}

// HandleCreateScan records a scan, attributed to the caller when authenticated.
func (h *ScanHandler) HandleCreateScan(c *fiber.Ctx) error {
	var req services.ScanInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	var userID *uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = &user.ID
	}
	scan, err := h.service.RecordScan(c.UserContext(), req, userID, middleware.SessionID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Scan recorded successfully", fiber.Map{"scan": scan})
}

// HandleMyScans lists the caller's scans, newest first.
func (h *ScanHandler) HandleMyScans(c *fiber.Ctx) error {
	page, err := h.service.ListUserScans(c.UserContext(), middleware.CurrentUser(c).ID, services.ListScansQuery{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 0),
		Category: c.Query("category"),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", page)
}

// HandleStats returns the caller's scan summary.
func (h *ScanHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.UserStats(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", stats)
}
