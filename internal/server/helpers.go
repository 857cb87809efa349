package server

import (
	"log/slog"
	"strings"
	"time"

	"findlost/internal/middleware"
	"findlost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// dateLayouts are the accepted forms of lostOrFounddate.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// respondError writes err as a standardized response, logging internal
// failures with their cause.
func respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, appErr)
}

// parseBody decodes the JSON body into out. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// parseDate accepts RFC 3339 timestamps and plain calendar dates.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &models.AppError{
		Code:    models.CodeValidation,
		Message: "lostOrFounddate must be an RFC 3339 timestamp or YYYY-MM-DD date",
		Fields:  []string{"lostOrFounddate"},
	}
}
