package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int      `json:"status"`
	Code      string   `json:"code"`    // bad_request, not_found, internal_error
	Message   string   `json:"message"` // Human-readable message
	Fields    []string `json:"fields,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string, fields ...string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		Fields:    fields,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string, fields ...string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg, fields...)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error. The cause is logged, never returned.
func errInternal(c *fiber.Ctx, msg string, cause error) error {
	logging.FromContext(c.UserContext()).Error(msg, "error", cause, "path", c.Path())
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// fromServiceError maps usecase errors onto API errors.
func fromServiceError(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	default:
		return errInternal(c, msg, err)
	}
}
