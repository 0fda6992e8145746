package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/library/internal/db"
)

// NewDB opens a migrated in-memory SQLite database closed at test cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite::memory:")
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
