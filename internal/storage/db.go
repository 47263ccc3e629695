// Package storage provides the durable local store for the collection: a
// sqlite database holding named key-value slots.
package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB wraps the database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Config holds database configuration settings.
type Config struct {
	// Path is the file path to the SQLite database.
	// Use ":memory:" for an in-memory database (tests only; migrations need a file).
	Path string

	// MaxOpenConns sets the maximum number of open connections.
	// Default: 1, one process writes one slot
	MaxOpenConns int

	// BusyTimeout sets how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode (DELETE, WAL, ...).
	// Default: WAL
	JournalMode string

	// Synchronous sets the SQLite synchronous mode (OFF, NORMAL, FULL).
	// Default: FULL, every write is a user mutation
	Synchronous string

	// AutoMigrate runs pending migrations before the connection is opened.
	AutoMigrate bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:         path,
		MaxOpenConns: 1,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		Synchronous:  "FULL",
	}
}

// Open creates a new database connection with the given configuration.
func Open(config *Config) (*DB, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if config.Path != ":memory:" {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if config.AutoMigrate {
		if err := migrateUp(config.Path); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", dsn(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	}

	if err := conn.Ping(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to close database after ping error: %w (original error: %v)", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn, path: config.Path}, nil
}

func dsn(config *Config) string {
	q := url.Values{}
	if config.BusyTimeout > 0 {
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.BusyTimeout.Milliseconds()))
	}
	if config.JournalMode != "" && config.Path != ":memory:" {
		q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", config.JournalMode))
	}
	if config.Synchronous != "" {
		q.Add("_pragma", fmt.Sprintf("synchronous(%s)", config.Synchronous))
	}
	if len(q) == 0 {
		return config.Path
	}
	return config.Path + "?" + q.Encode()
}

func migrateUp(path string) error {
	mgr, err := NewMigrationManager(path)
	if err != nil {
		return fmt.Errorf("failed to create migration manager: %w", err)
	}

	if err := mgr.Up(); err != nil {
		if closeErr := mgr.Close(); closeErr != nil {
			return fmt.Errorf("failed to close migration manager after error: %w (original error: %v)", closeErr, err)
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := mgr.Close(); err != nil {
		return fmt.Errorf("failed to close migration manager: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
