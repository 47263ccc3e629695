package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrBackupNotFound is returned by Restore when the backup file is missing.
var ErrBackupNotFound = errors.New("backup not found")

// BackupManager copies the collection database to and from backup files.
type BackupManager struct {
	dbPath string
	dir    string
	now    func() time.Time
}

// NewBackupManager creates a backup manager for dbPath. Backups go to dir,
// or to a "backups" directory next to the database when dir is empty.
func NewBackupManager(dbPath, dir string) *BackupManager {
	if dir == "" {
		dir = filepath.Join(filepath.Dir(dbPath), "backups")
	}
	return &BackupManager{dbPath: dbPath, dir: dir, now: time.Now}
}

// Dir returns the backup directory.
func (bm *BackupManager) Dir() string { return bm.dir }

// BackupOptions controls a single backup.
type BackupOptions struct {
	// Name is the file name without extension. Defaults to a timestamp.
	Name string

	// Verify opens the written file and checks it holds the slots table.
	Verify bool
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modTime"`
	Checksum string    `json:"checksum"`
}

// Backup writes a consistent copy of the database with VACUUM INTO and
// returns its path.
func (bm *BackupManager) Backup(opts BackupOptions) (string, error) {
	if err := os.MkdirAll(bm.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = "rifty_" + bm.now().Format("20060102_150405")
	}
	backupPath := filepath.Join(bm.dir, name+".db")
	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup already exists: %s", backupPath)
	}

	source, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() {
		_ = source.Close()
	}()

	escaped := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := source.Exec("VACUUM INTO '" + escaped + "'"); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if opts.Verify {
		if err := Verify(backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}
	return backupPath, nil
}

// Restore replaces the database with backupPath. The current database is
// kept beside it with an ".old.<timestamp>" suffix. Callers must close
// their connections first.
func (bm *BackupManager) Restore(backupPath string) error {
	if _, err := os.Stat(backupPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrBackupNotFound, backupPath)
	}
	if err := Verify(backupPath); err != nil {
		return fmt.Errorf("backup verification failed: %w", err)
	}

	tempPath := bm.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to stage restore: %w", err)
	}

	if _, err := os.Stat(bm.dbPath); err == nil {
		oldPath := bm.dbPath + ".old." + bm.now().Format("20060102_150405")
		if err := os.Rename(bm.dbPath, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
	}
	// WAL side files belong to the database being replaced.
	_ = os.Remove(bm.dbPath + "-wal")
	_ = os.Remove(bm.dbPath + "-shm")

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

// List returns the backups in the backup directory, newest first.
func (bm *BackupManager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(bm.dir, entry.Name())
		checksum, err := checksumFile(path)
		if err != nil {
			checksum = "unknown"
		}
		backups = append(backups, BackupInfo{
			Path:     path,
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// Verify checks that path is a readable sqlite database with a slots table.
func Verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'slots'").Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("slots table missing")
		}
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
