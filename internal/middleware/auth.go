package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ecoscan/internal/apperr"
	"ecoscan/internal/models"
	"ecoscan/internal/services"
)

const (
	localUser      = "user"
	localSessionID = "session_id"
)

// TokenVerifier resolves a bearer token to its user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.User, *services.Claims, error)
}

// AuthRequired rejects the request unless it carries a valid bearer token for
// an existing user.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.Unauthorized("No token provided. Authorization required.")
		}

		// Expected format: "Bearer <token>"
		token, ok := bearerToken(authHeader)
		if !ok {
			return apperr.Unauthorized("Authorization header format must be 'Bearer <token>'")
		}

		user, claims, err := verifier.VerifyToken(c.UserContext(), token)
		if err != nil {
			return err
		}
		setIdentity(c, user, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			if user, claims, err := verifier.VerifyToken(c.UserContext(), token); err == nil {
				setIdentity(c, user, claims)
			}
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setIdentity(c *fiber.Ctx, user *models.User, claims *services.Claims) {
	c.Locals(localUser, user)
	if claims != nil && claims.SessionID != "" {
		c.Locals(localSessionID, claims.SessionID)
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// SessionID returns the session id carried by the caller's token, if any.
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(localSessionID).(string)
	return sid
}
