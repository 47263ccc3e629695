package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rifty/internal/storage/repository"
)

func TestBackupManager_BackupAndList(t *testing.T) {
	db, slots := setupTestSlots(t)
	NewCollectionStore(slots).Save(sampleOwned())

	mgr := NewBackupManager(db.Path(), "")
	assert.Equal(t, filepath.Join(filepath.Dir(db.Path()), "backups"), mgr.Dir())

	path, err := mgr.Backup(BackupOptions{Name: "first", Verify: true})
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = mgr.Backup(BackupOptions{Name: "first"})
	assert.Error(t, err, "existing backups are not overwritten")

	backups, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "first.db", backups[0].Name)
	assert.Len(t, backups[0].Checksum, 64)
	assert.Positive(t, backups[0].Size)
}

func TestBackupManager_DefaultName(t *testing.T) {
	db := setupTestDB(t)
	mgr := NewBackupManager(db.Path(), t.TempDir())
	mgr.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

	path, err := mgr.Backup(BackupOptions{})
	require.NoError(t, err)
	assert.Equal(t, "rifty_20250304_050607.db", filepath.Base(path))
}

func TestBackupManager_ListMissingDir(t *testing.T) {
	mgr := NewBackupManager(filepath.Join(t.TempDir(), "x.db"), filepath.Join(t.TempDir(), "none"))

	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestBackupManager_Restore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "rifty.db")
	config := DefaultConfig(dbPath)
	config.AutoMigrate = true

	db, err := Open(config)
	require.NoError(t, err)
	NewCollectionStore(repository.NewSlotRepository(db.Conn())).Save(sampleOwned())

	mgr := NewBackupManager(dbPath, "")
	backupPath, err := mgr.Backup(BackupOptions{Name: "snap", Verify: true})
	require.NoError(t, err)

	NewCollectionStore(repository.NewSlotRepository(db.Conn())).Save(nil)
	require.NoError(t, db.Close())

	require.NoError(t, mgr.Restore(backupPath))

	db, err = Open(DefaultConfig(dbPath))
	require.NoError(t, err)
	defer db.Close()

	items := NewCollectionStore(repository.NewSlotRepository(db.Conn())).Load()
	assert.Len(t, items, 2)

	matches, err := filepath.Glob(dbPath + ".old.*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestBackupManager_RestoreMissing(t *testing.T) {
	mgr := NewBackupManager(filepath.Join(t.TempDir(), "x.db"), "")

	err := mgr.Restore(filepath.Join(t.TempDir(), "nope.db"))
	assert.ErrorIs(t, err, ErrBackupNotFound)
}

func TestVerify_RejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.db")
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0o644))

	assert.Error(t, Verify(path))
}
