package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ecoscan/internal/services"
)

// LeaderboardHandler handles HTTP requests for the leaderboard.
type LeaderboardHandler struct {
	service *services.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(service *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// RegisterRoutes registers the leaderboard routes. writeGuard runs before the
// mutating routes.
func (h *LeaderboardHandler) RegisterRoutes(router fiber.Router, writeGuard fiber.Handler) {
	lb := router.Group("/leaderboard")
	lb.Get("/", h.HandleGetLeaderboard)
	lb.Post("/update", writeGuard, h.HandleUpdate)
	lb.Post("/seed", writeGuard, h.HandleSeed)
}

// HandleGetLeaderboard returns the top entries of ?type= (default school).
func (h *LeaderboardHandler) HandleGetLeaderboard(c *fiber.Ctx) error {
	entries, err := h.service.GetTop(c.UserContext(), c.Query("type", "school"), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"leaderboard": entries})
}

// HandleUpdate creates or patches one entry.
func (h *LeaderboardHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.LeaderboardUpsertInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	entry, created, err := h.service.Upsert(c.UserContext(), req)
	if err != nil {
		return err
	}
	if created {
		return respond(c, fiber.StatusCreated, "Leaderboard entry created", fiber.Map{"entry": entry})
	}
	return respond(c, fiber.StatusOK, "Leaderboard entry updated", fiber.Map{"entry": entry})
}

// HandleSeed installs the example entries.
func (h *LeaderboardHandler) HandleSeed(c *fiber.Ctx) error {
	n, err := h.service.Seed(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Leaderboard seeded successfully", fiber.Map{"entries": n})
}
