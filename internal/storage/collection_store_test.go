package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/collection"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func sampleOwned() []collection.OwnedCard {
	return []collection.OwnedCard{
		{
			Card: catalog.Card{
				ID:              "OGN-7a-fury",
				Name:            "Fury Rune (Alternate)",
				Description:     "Gain one fury.",
				Rarity:          catalog.RarityShowcase,
				Category:        catalog.CategoryFury,
				Kind:            catalog.KindRune,
				ImageURL:        "https://example.test/7a.png",
				CollectorNumber: 7,
				SetCode:         "OGN",
				SetName:         "Origins",
				IsAlternate:     true,
			},
			InstanceID: "inst-2",
		},
		{
			Card: catalog.Card{
				ID:              "OGN-1-blaze",
				Name:            "Blaze",
				Rarity:          catalog.RarityCommon,
				Category:        catalog.CategoryFury,
				Kind:            catalog.KindUnit,
				Power:           3,
				Cost:            2,
				CollectorNumber: 1,
				SetCode:         "OGN",
				SetName:         "Origins",
			},
			InstanceID: "inst-1",
		},
	}
}

func TestCollectionStore_LoadMissingSlot(t *testing.T) {
	_, slots := setupTestSlots(t)
	store := NewCollectionStore(slots)

	items := store.Load()

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCollectionStore_RoundTrip(t *testing.T) {
	_, slots := setupTestSlots(t)
	store := NewCollectionStore(slots)
	want := sampleOwned()

	store.Save(want)

	assert.Equal(t, want, store.Load())
}

func TestCollectionStore_WireFormat(t *testing.T) {
	_, slots := setupTestSlots(t)
	store := NewCollectionStore(slots)

	store.Save(sampleOwned()[:1])

	raw, err := slots.Get(context.Background(), DefaultSlotKey)
	require.NoError(t, err)
	for _, key := range []string{
		`"id"`, `"name"`, `"description"`, `"rarity"`, `"category"`, `"kind"`,
		`"power"`, `"cost"`, `"imageUrl"`, `"collectorNumber"`, `"setCode"`,
		`"setName"`, `"isAlternate"`, `"instanceId"`,
	} {
		assert.Contains(t, raw, key)
	}
}

func TestCollectionStore_SaveEmptyWritesArray(t *testing.T) {
	_, slots := setupTestSlots(t)
	store := NewCollectionStore(slots)

	store.Save(nil)

	raw, err := slots.Get(context.Background(), DefaultSlotKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestCollectionStore_CorruptValue(t *testing.T) {
	_, slots := setupTestSlots(t)
	logger, logs := bufferLogger()
	require.NoError(t, slots.Set(context.Background(), DefaultSlotKey, "{not json"))

	store := NewCollectionStore(slots, WithStoreLogger(logger))
	items := store.Load()

	assert.Empty(t, items)
	assert.Contains(t, logs.String(), "malformed persisted collection")
}

func TestCollectionStore_CorruptSlotSeedsEmptyEngine(t *testing.T) {
	_, slots := setupTestSlots(t)
	require.NoError(t, slots.Set(context.Background(), DefaultSlotKey, `{"id": 1}`))
	logger, _ := bufferLogger()

	engine := collection.New(NewCollectionStore(slots, WithStoreLogger(logger)), collection.WithLogger(logger))

	assert.Zero(t, engine.TotalCount())
	assert.Empty(t, engine.VisibleItems())
}

func TestCollectionStore_DropsRecordsWithoutInstanceID(t *testing.T) {
	_, slots := setupTestSlots(t)
	logger, logs := bufferLogger()
	raw := `[
		{"id": "OGN-1-blaze", "name": "Blaze", "instanceId": "keep"},
		{"id": "OGN-2-x", "name": "No id"},
		"garbage",
		{"id": "OGN-3-y", "name": "Empty", "instanceId": ""}
	]`
	require.NoError(t, slots.Set(context.Background(), DefaultSlotKey, raw))

	items := NewCollectionStore(slots, WithStoreLogger(logger)).Load()

	require.Len(t, items, 1)
	assert.Equal(t, "keep", items[0].InstanceID)
	assert.Contains(t, logs.String(), "without instance id")
	assert.Contains(t, logs.String(), "dropping malformed persisted record")
}

func TestCollectionStore_CustomKey(t *testing.T) {
	_, slots := setupTestSlots(t)
	a := NewCollectionStore(slots, WithSlotKey("a"))
	b := NewCollectionStore(slots, WithSlotKey("b"))

	a.Save(sampleOwned())

	assert.Equal(t, "a", a.Key())
	assert.Len(t, a.Load(), 2)
	assert.Empty(t, b.Load())
}

type failingSlots struct{ err error }

func (f failingSlots) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingSlots) Set(context.Context, string, string) error  { return f.err }
func (f failingSlots) Delete(context.Context, string) error       { return f.err }
func (f failingSlots) Keys(context.Context) ([]string, error)     { return nil, f.err }

func TestCollectionStore_WriteFailureIsSwallowed(t *testing.T) {
	logger, logs := bufferLogger()
	store := NewCollectionStore(failingSlots{err: errors.New("disk full")}, WithStoreLogger(logger))

	assert.NotPanics(t, func() { store.Save(sampleOwned()) })
	assert.Contains(t, logs.String(), "failed to persist collection")
	assert.Empty(t, store.Load())
}

func TestCollectionStore_EngineStateSurvivesWriteFailure(t *testing.T) {
	logger, _ := bufferLogger()
	store := NewCollectionStore(failingSlots{err: errors.New("read only")}, WithStoreLogger(logger))
	engine := collection.New(store, collection.WithLogger(logger))

	engine.AddOne(sampleOwned()[1].Card)

	assert.Equal(t, 1, engine.TotalCount())
}

func TestCollectionStore_EnginePersistence(t *testing.T) {
	_, slots := setupTestSlots(t)
	logger, _ := bufferLogger()
	cards := sampleOwned()

	first := collection.New(NewCollectionStore(slots), collection.WithLogger(logger))
	first.AddOne(cards[1].Card)
	first.AddOne(cards[0].Card)

	second := collection.New(NewCollectionStore(slots), collection.WithLogger(logger))

	assert.Equal(t, first.AllOwnedItems(), second.AllOwnedItems())
}
