// Package repository provides table-level access to the sqlite store.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSlotNotFound is returned by Get when no value is stored under a key.
var ErrSlotNotFound = errors.New("slot not found")

// SlotRepository stores raw string values under named keys.
type SlotRepository interface {
	// Get returns the value stored under key, or ErrSlotNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value in one statement.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

type slotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSlotRepository creates a slot repository over db.
func NewSlotRepository(db *sql.DB) SlotRepository {
	return &slotRepository{db: db, now: time.Now}
}

func (r *slotRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrSlotNotFound, key)
		}
		return "", fmt.Errorf("failed to get slot %s: %w", key, err)
	}
	return value, nil
}

func (r *slotRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set slot %s: %w", key, err)
	}
	return nil
}

func (r *slotRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

func (r *slotRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key FROM slots ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan slot key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}
	return keys, nil
}
