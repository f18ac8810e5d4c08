package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"courseportal/internal/http/middleware"
	"courseportal/internal/logger"
	"courseportal/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool          `json:"success"`
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_INPUT", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string // empty means err.Error()
}

// serviceErrors is checked in order; specific sentinels precede their classes.
var serviceErrors = []errorMapping{
	{service.ErrAccountNotFound, fiber.StatusNotFound, "ACCOUNT_NOT_FOUND", ""},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", ""},
	{service.ErrUnauthorized, fiber.StatusForbidden, "UNAUTHORIZED", ""},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "file not found"},
	{service.ErrPasswordMismatch, fiber.StatusBadRequest, "PASSWORD_MISMATCH", ""},
	{service.ErrTermsNotAccepted, fiber.StatusBadRequest, "TERMS_NOT_ACCEPTED", ""},
	{service.ErrDuplicateEmail, fiber.StatusConflict, "DUPLICATE_EMAIL", ""},
	{service.ErrDuplicateUnit, fiber.StatusConflict, "DUPLICATE_UNIT", ""},
	{service.ErrValidation, fiber.StatusBadRequest, "INVALID_INPUT", ""},
	{service.ErrConflict, fiber.StatusConflict, "CONFLICT", ""},
}

// serviceError translates a service error into the envelope.
// Unknown errors are logged and reported as a generic 500.
func serviceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return writeError(c, m.status, m.code, msg)
		}
	}

	logger.Default().Error("request_failed", err, map[string]any{
		"request_id": middleware.RequestIDFromCtx(c),
		"method":     c.Method(),
		"path":       c.Path(),
	})
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return serviceError(c, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusForbidden:
			return writeError(c, fe.Code, "FORBIDDEN", "forbidden")
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "REQUEST_TOO_LARGE", "request body too large")
		case fiber.StatusServiceUnavailable:
			return writeError(c, fe.Code, "SERVICE_UNAVAILABLE", "dependency unavailable")
		default:
			return writeError(c, fe.Code, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// CSRFErrorHandler renders a failed CSRF check in the standard envelope.
func CSRFErrorHandler(c *fiber.Ctx, _ error) error {
	return writeError(c, fiber.StatusForbidden, "CSRF_FAILED", "CSRF token missing or incorrect")
}
