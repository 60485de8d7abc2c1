package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"ecoscan/internal/apperr"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindConflict, apperr.KindConstraint:
		return fiber.StatusConflict
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler turns any error returned by a handler or middleware into the
// JSON envelope. Error details are only exposed outside production.
func ErrorHandler(isProduction bool, log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := Envelope{Success: false}
		status := fiber.StatusInternalServerError

		var fe *fiber.Error
		var ae *apperr.Error
		switch {
		case errors.As(err, &fe):
			status = fe.Code
			body.Message = fe.Message
		case errors.As(err, &ae):
			status = statusFor(ae.Kind)
			body.Message = ae.Message
			body.Errors = ae.Fields
		default:
			body.Message = "Internal server error"
		}

		if status >= fiber.StatusInternalServerError {
			log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		} else {
			log.Debugw("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		}

		if !isProduction && body.Message != err.Error() {
			body.Error = err.Error()
		}
		return c.Status(status).JSON(body)
	}
}
