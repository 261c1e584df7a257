package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/db"
)

// NewDB opens a private in-memory sqlite database with the full schema applied.
// The pool is pinned to one connection so the memory database lives as long as the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	database, err := db.Open(sqlite.Open("file::memory:"))
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(database))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}
