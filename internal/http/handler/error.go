package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"loanapi/internal/http/middleware"
	"loanapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps domain errors onto the HTTP surface: validation
// failures and domain conflicts are caller-correctable (400), missing
// records are 404, everything else stays a generic 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLoanNotFound):
		return writeError(c, fiber.StatusNotFound, "LOAN_NOT_FOUND", "loan not found")
	case errors.Is(err, service.ErrBookNotFound):
		return writeError(c, fiber.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
	case errors.Is(err, service.ErrAlreadyReturned):
		return writeError(c, fiber.StatusBadRequest, "ALREADY_RETURNED", err.Error())
	case errors.Is(err, service.ErrLoanConflict):
		return writeError(c, fiber.StatusBadRequest, "LOAN_CONFLICT", err.Error())
	case errors.Is(err, service.ErrBookUnavailable):
		return writeError(c, fiber.StatusBadRequest, "BOOK_UNAVAILABLE", err.Error())
	case errors.Is(err, service.ErrBorrowerRequired),
		errors.Is(err, service.ErrBorrowerTooLong),
		errors.Is(err, service.ErrCommentsTooLong),
		errors.Is(err, service.ErrLoanPeriodOutOfRange),
		errors.Is(err, service.ErrDueDateNotAfterLoan),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrISBNRequired):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
