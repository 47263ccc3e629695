package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// SchemaVersion is the newest migration shipped in migrations/. Version 1
// creates the slots table that holds the persisted collection.
const SchemaVersion uint = 1

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager applies the embedded slots schema to one sqlite file.
// It opens its own connection, so use it before Open or on a closed DB.
type MigrationManager struct {
	migrate *migrate.Migrate
}

// SchemaStatus describes where a database stands against SchemaVersion.
type SchemaStatus struct {
	Version uint `json:"version"`
	Latest  uint `json:"latest"`
	Dirty   bool `json:"dirty"`
}

// Pending reports whether Up would change the database.
func (s SchemaStatus) Pending() bool {
	return s.Version < s.Latest
}

// NewMigrationManager prepares migrations for the database at dbPath.
func NewMigrationManager(dbPath string) (*MigrationManager, error) {
	schema, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded schema: %w", err)
	}

	source, err := iofs.New(schema, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schema: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migrations for %s: %w", dbPath, err)
	}
	return &MigrationManager{migrate: m}, nil
}

// databaseURL turns a file path into a sqlite:// URL. Drive-letter paths
// get a leading slash.
func databaseURL(dbPath string) string {
	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && p[0] != '/' {
		p = "/" + p
	}
	return "sqlite://" + p
}

// Up brings the slots schema to SchemaVersion. An up-to-date database is
// not an error.
func (mm *MigrationManager) Up() error {
	if err := mm.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down drops the slots schema, and with it the persisted collection.
func (mm *MigrationManager) Down() error {
	if err := mm.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

// Version returns the applied version and dirty flag; 0 when nothing is applied.
func (mm *MigrationManager) Version() (uint, bool, error) {
	v, dirty, err := mm.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return v, dirty, nil
}

// Status compares the applied version with SchemaVersion.
func (mm *MigrationManager) Status() (SchemaStatus, error) {
	v, dirty, err := mm.Version()
	if err != nil {
		return SchemaStatus{}, err
	}
	return SchemaStatus{Version: v, Latest: SchemaVersion, Dirty: dirty}, nil
}

// Force records version as applied without running anything. It clears the
// dirty flag left by a failed migration.
func (mm *MigrationManager) Force(version int) error {
	if version < -1 || version > int(SchemaVersion) {
		return fmt.Errorf("version %d outside -1..%d", version, SchemaVersion)
	}
	if err := mm.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the embedded source and the database connection.
func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.migrate.Close()
	return errors.Join(srcErr, dbErr)
}
