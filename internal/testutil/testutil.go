package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vytor/ankistore/internal/db"
)

// NewTestDB creates an in-memory collection database with the full schema
// applied. The handle is capped at one connection, so the memory database
// lives until Close.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	t.Helper()
	require.NoError(t, closer.Close())
}
