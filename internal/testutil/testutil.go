// Package testutil builds throwaway SQLite-backed stores for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bloodbank/bloodbank-api/internal/config"
	"github.com/bloodbank/bloodbank-api/internal/database"
	"github.com/bloodbank/bloodbank-api/internal/store"
	"github.com/stretchr/testify/require"
)

// NewStore returns a migrated GormStore on a fresh SQLite file under t.TempDir.
func NewStore(t testing.TB) *store.GormStore {
	t.Helper()

	cfg := Config(t)
	db, err := database.Connect(cfg)
	require.NoError(t, err)

	s := store.NewGormStore(db)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// Config returns a sqlite configuration with rate limits disabled.
func Config(t testing.TB) *config.Config {
	t.Helper()
	return &config.Config{
		DBDriver:         config.DriverSQLite,
		SQLitePath:       filepath.Join(t.TempDir(), "bloodbank.db"),
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  config.DefaultAccessExpiry,
		JWTRefreshExpiry: config.DefaultRefreshExpiry,
		CORSOrigins:      "*",
	}
}
