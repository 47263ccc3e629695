package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ramonehamilton/rifty/internal/collection"
	"github.com/ramonehamilton/rifty/internal/storage/repository"
)

// DefaultSlotKey is the slot holding the owned card list.
const DefaultSlotKey = "rifty-collection"

// DefaultTimeout bounds each slot read and write.
const DefaultTimeout = 5 * time.Second

// CollectionStore persists the owned card list as a JSON array in one slot.
// It implements collection.Store: failures are logged, never returned.
type CollectionStore struct {
	slots   repository.SlotRepository
	key     string
	timeout time.Duration
	logger  *slog.Logger
}

// StoreOption configures a CollectionStore.
type StoreOption func(*CollectionStore)

// WithSlotKey overrides DefaultSlotKey.
func WithSlotKey(key string) StoreOption {
	return func(s *CollectionStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) StoreOption {
	return func(s *CollectionStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithStoreLogger sets the logger. Defaults to slog.Default().
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *CollectionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCollectionStore creates a store over slots.
func NewCollectionStore(slots repository.SlotRepository, opts ...StoreOption) *CollectionStore {
	s := &CollectionStore{
		slots:   slots,
		key:     DefaultSlotKey,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the slot key the store reads and writes.
func (s *CollectionStore) Key() string { return s.key }

// Load returns the persisted owned cards. A missing slot, an unreadable
// slot or a value that is not a JSON array yields an empty list. Records
// that cannot be decoded or carry no instance id are dropped one by one.
func (s *CollectionStore) Load() []collection.OwnedCard {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	raw, err := s.slots.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return []collection.OwnedCard{}
		}
		s.logger.Warn("failed to read persisted collection", "key", s.key, "error", err)
		return []collection.OwnedCard{}
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warn("malformed persisted collection, starting empty", "key", s.key, "error", err)
		return []collection.OwnedCard{}
	}

	items := make([]collection.OwnedCard, 0, len(records))
	for i, record := range records {
		var item collection.OwnedCard
		if err := json.Unmarshal(record, &item); err != nil {
			s.logger.Warn("dropping malformed persisted record", "key", s.key, "index", i, "error", err)
			continue
		}
		if item.InstanceID == "" {
			s.logger.Warn("dropping persisted record without instance id", "key", s.key, "index", i, "id", item.ID)
			continue
		}
		items = append(items, item)
	}
	return items
}

// Save replaces the slot value with items in a single write. A failed write
// is logged and the caller's in-memory state stays authoritative.
func (s *CollectionStore) Save(items []collection.OwnedCard) {
	if items == nil {
		items = []collection.OwnedCard{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("failed to encode collection", "key", s.key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.slots.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Error("failed to persist collection", "key", s.key, "count", len(items), "error", err)
	}
}
