// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"

	"findlost/internal/database"

	"github.com/stretchr/testify/require"
)

// NewSQLiteHandle opens a fresh, migrated in-memory store that is closed when
// the test ends.
func NewSQLiteHandle(t *testing.T) *database.Handle {
	t.Helper()

	h, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(context.Background()) })
	return h
}
