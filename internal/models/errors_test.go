package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err      *AppError
		expected int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewMissingFieldsError([]string{"title"}), http.StatusBadRequest},
		{NewUnauthorizedError("no"), http.StatusUnauthorized},
		{NewForbiddenError("no"), http.StatusForbidden},
		{NewNotFoundError("Item", "x"), http.StatusNotFound},
		{NewConflictError("again"), http.StatusConflict},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.HTTPStatus())
		})
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("deleting item: %w", NewForbiddenError("not yours"))
	assert.Equal(t, CodeForbidden, AsAppError(wrapped).Code)

	plain := errors.New("connection reset")
	appErr := AsAppError(plain)
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, plain)
}

func TestRespondWithError_HidesCause(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, errors.New("pq: password authentication failed"))
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return RespondWithError(c, NewMissingFieldsError([]string{"title", "contactInfo.email"}))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "password")
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Internal server error", body.Message)

	resp2, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	var body2 ErrorResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body2))
	assert.Equal(t, []string{"title", "contactInfo.email"}, body2.Fields)
	assert.Equal(t, CodeValidation, body2.Code)
}

func TestPostTypeValid(t *testing.T) {
	assert.True(t, PostTypeLost.Valid())
	assert.True(t, PostTypeFound.Valid())
	assert.False(t, PostType("lost").Valid())
	assert.False(t, PostType("").Valid())
}
