package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ecoscan/internal/apperr"
)

// Envelope is the shape of every API response body.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

func invalidBody(err error) error {
	return &apperr.Error{Kind: apperr.KindValidation, Message: "Invalid request body", Err: err}
}
