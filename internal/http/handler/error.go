package handler

import (
	"github.com/gofiber/fiber/v2"

	"charkeep/internal/http/middleware"
)

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError renders the error page with a safe, human-readable message
// (no internal details). When no views engine is configured it degrades
// to a plain-text body with the same status.
func writeError(c *fiber.Ctx, status int, message string) error {
	err := c.Status(status).Render("error", fiber.Map{
		"Status":    status,
		"Message":   message,
		"RequestID": requestIDFromCtx(c),
	})
	if err != nil {
		return c.Status(status).SendString(message)
	}
	return nil
}

// ErrorHandler returns a Fiber global error handler that standardizes
// error responses without leaking internal errors.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "character not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "method not allowed")
		default:
			return writeError(c, status, "internal server error")
		}
	}
}
