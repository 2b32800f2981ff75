package handlers

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"aaf11/internal/domain"
	applog "aaf11/internal/log"
)

const genericMessage = "Something went wrong. Please try again."

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and answered with a generic 500 so internals never reach the client.
func writeError(c *fiber.Ctx, action string, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "fields": fieldNames(ve)})
		return c.Status(fiber.StatusBadRequest).JSON(errorBody{"validation_failed", "Please correct the highlighted fields.", ve.Fields})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorBody{Error: "not_found", Message: "The requested record does not exist."})
	case errors.Is(err, domain.ErrInsufficientStock):
		applog.Info(c, action+".insufficient_stock", map[string]any{"detail": err.Error()})
		return c.Status(fiber.StatusConflict).JSON(errorBody{Error: "insufficient_stock", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		applog.Security(c, action+".invalid_transition", map[string]any{"detail": err.Error()})
		return c.Status(fiber.StatusConflict).JSON(errorBody{Error: "invalid_transition", Message: err.Error()})
	case errors.Is(err, domain.ErrTotalMismatch):
		applog.Security(c, action+".total_mismatch", map[string]any{"detail": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "total_mismatch", Message: err.Error()})
	case errors.Is(err, domain.ErrDepositTooLow):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "deposit_too_low", Message: err.Error()})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "internal", Message: genericMessage})
}

func fieldNames(ve *domain.ValidationError) []string {
	out := make([]string, 0, len(ve.Fields))
	for k := range ve.Fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ErrorHandler is the app-wide fallback for errors handlers return unhandled,
// including fiber's own (404 route, 405, 413).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(errorBody{Error: errorCode(fe.Code), Message: fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "internal", Message: genericMessage})
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "too_large"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	}
	return "bad_request"
}

// bindJSON decodes the body into dst, reporting decode failures as a
// validation error on "body".
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.FieldError("body", "malformed JSON: "+err.Error())
	}
	return nil
}
