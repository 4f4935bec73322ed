// Package testutil provides test utilities for database setup.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/ferry/internal/cards"
	"github.com/zjrosen/ferry/internal/infrastructure/sqlite"
)

// NewTestDB creates an in-memory database with migrations applied.
// It is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedCards saves the given cards, failing the test on any error.
func SeedCards(t *testing.T, repo cards.Repository, seed ...cards.Card) {
	t.Helper()
	for _, c := range seed {
		require.NoError(t, repo.Save(c))
	}
}
