package response

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope status values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Status is embedded by success payloads so that "status" sits next to the
// payload fields in the JSON body
type Status struct {
	Status string `json:"status"`
}

// OKStatus returns the success marker
func OKStatus() Status {
	return Status{Status: StatusOK}
}

// ErrorResponse is the only body sent on failure
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK returns a 200 response with body, which should embed Status
func OK(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusOK).JSON(body)
}

// Error returns an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(ErrorResponse{
		Status:  StatusError,
		Message: message,
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// NotFound returns a 404 Not Found response
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, message)
}

// PayloadTooLarge returns a 413 response
func PayloadTooLarge(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusRequestEntityTooLarge, message)
}

// UnprocessableEntity returns a 422 response for well-formed uploads that
// yield nothing
func UnprocessableEntity(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnprocessableEntity, message)
}

// InternalServerError returns a 500 Internal Server Error response
func InternalServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, message)
}
