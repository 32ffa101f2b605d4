package store_test

import (
	"os"
	"testing"

	"github.com/freenote/freenote/internal/store"
	"github.com/stretchr/testify/require"
)

// Set FREENOTE_TEST_POSTGRES_DSN to run against a real server.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("FREENOTE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FREENOTE_TEST_POSTGRES_DSN not set")
	}
	runStoreSuite(t, func(t *testing.T) store.Store {
		s, err := store.OpenPostgres(t.Context(), dsn)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
