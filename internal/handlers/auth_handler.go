package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ecoscan/internal/middleware"
	"ecoscan/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/me", requireAuth, h.HandleMe)
	authRoutes.Delete("/me", requireAuth, h.HandleDeleteMe)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	res, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "User registered successfully", res)
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	res, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Login successful", res)
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", fiber.Map{"user": middleware.CurrentUser(c)})
}

// HandleDeleteMe deletes the authenticated user's account and scans.
func (h *AuthHandler) HandleDeleteMe(c *fiber.Ctx) error {
	if err := h.authService.DeleteAccount(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Account deleted", nil)
}
