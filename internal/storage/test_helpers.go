package storage

import (
	"path/filepath"
	"testing"

	"github.com/ramonehamilton/rifty/internal/storage/repository"
)

// setupTestDB opens a migrated database in a temporary directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// setupTestSlots returns a slot repository over a fresh test database.
func setupTestSlots(t *testing.T) (*DB, repository.SlotRepository) {
	t.Helper()
	db := setupTestDB(t)
	return db, repository.NewSlotRepository(db.Conn())
}
