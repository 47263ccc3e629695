package collection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rifty/internal/catalog"
)

// memStore records every save.
type memStore struct {
	items []OwnedCard
	saves [][]OwnedCard
}

func (s *memStore) Load() []OwnedCard {
	out := make([]OwnedCard, len(s.items))
	copy(out, s.items)
	return out
}

func (s *memStore) Save(items []OwnedCard) {
	s.items = items
	s.saves = append(s.saves, items)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("inst-%d", n)
	}
}

func newTestEngine(t *testing.T, seed ...OwnedCard) (*Engine, *memStore) {
	t.Helper()
	store := &memStore{items: seed}
	return New(store, WithIDGenerator(sequentialIDs())), store
}

var mockCard = catalog.Card{
	ID:              "test-1",
	Name:            "Test Card",
	Description:     "A test card",
	Rarity:          catalog.RarityCommon,
	Category:        catalog.CategoryFury,
	Kind:            catalog.KindUnit,
	Power:           5,
	Cost:            3,
	ImageURL:        "/test.jpg",
	CollectorNumber: 1,
	SetCode:         "TEST",
	SetName:         "Test Set",
}

func withName(c catalog.Card, name string) catalog.Card {
	c.Name = name
	return c
}

func names(items []OwnedCard) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func TestEngine_StartsEmpty(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Zero(t, e.TotalCount())
	assert.Empty(t, e.VisibleItems())
	assert.Equal(t, DefaultFilter(), e.Filter())
	assert.Equal(t, DefaultSort(), e.Sort())
}

func TestEngine_SeededFromStore(t *testing.T) {
	e, _ := newTestEngine(t, OwnedCard{Card: mockCard, InstanceID: "saved"})

	assert.Equal(t, 1, e.TotalCount())
	assert.Equal(t, "saved", e.AllOwnedItems()[0].InstanceID)
}

func TestEngine_AddOne(t *testing.T) {
	e, store := newTestEngine(t)

	first := e.AddOne(mockCard)
	second := e.AddOne(withName(mockCard, "Second"))

	assert.Equal(t, "inst-1", first.InstanceID)
	assert.Equal(t, "inst-2", second.InstanceID)
	assert.Equal(t, mockCard, first.Card)
	assert.Equal(t, 2, e.TotalCount())

	// Newest first.
	assert.Equal(t, []string{"Second", "Test Card"}, names(e.AllOwnedItems()))

	require.Len(t, store.saves, 2)
	assert.Len(t, store.saves[1], 2)
}

func TestEngine_AddOneSameCardTwice(t *testing.T) {
	e, _ := newTestEngine(t)

	a := e.AddOne(mockCard)
	b := e.AddOne(mockCard)

	assert.NotEqual(t, a.InstanceID, b.InstanceID)
	assert.NotEqual(t, mockCard.ID, a.InstanceID)
	assert.Equal(t, 2, e.TotalCount())
}

func TestEngine_DefaultIDsAreUnique(t *testing.T) {
	e := New(&memStore{})

	a := e.AddOne(mockCard)
	b := e.AddOne(mockCard)

	assert.Len(t, a.InstanceID, 36)
	assert.NotEqual(t, a.InstanceID, b.InstanceID)
}

func TestEngine_AddMany(t *testing.T) {
	e, store := newTestEngine(t)
	e.AddOne(withName(mockCard, "Existing"))

	added := e.AddMany([]catalog.Card{
		withName(mockCard, "A"),
		withName(mockCard, "B"),
		withName(mockCard, "C"),
	})

	require.Len(t, added, 3)
	assert.Equal(t, 4, e.TotalCount())
	assert.Equal(t, []string{"A", "B", "C", "Existing"}, names(e.AllOwnedItems()))

	// One save for the existing card, one for the whole batch.
	require.Len(t, store.saves, 2)
	assert.Len(t, store.saves[1], 4)
}

func TestEngine_AddManyAtomic(t *testing.T) {
	var observed []int
	store := &memStore{}
	e := New(store, WithNotifier(NotifierFunc(func(c Change) {
		observed = append(observed, c.TotalCount)
	})))

	e.AddMany([]catalog.Card{mockCard, mockCard, mockCard})

	assert.Equal(t, []int{3}, observed, "no intermediate count is observable")
	require.Len(t, store.saves, 1)
	assert.Len(t, store.saves[0], 3)
}

func TestEngine_AddManyEmpty(t *testing.T) {
	e, store := newTestEngine(t)

	assert.Nil(t, e.AddMany(nil))
	assert.Empty(t, store.saves)
}

func TestEngine_RemoveByInstance(t *testing.T) {
	e, store := newTestEngine(t)
	before := e.TotalCount()

	item := e.AddOne(mockCard)
	assert.True(t, e.RemoveByInstance(item.InstanceID))

	assert.Equal(t, before, e.TotalCount())
	for _, owned := range e.AllOwnedItems() {
		assert.NotEqual(t, item.InstanceID, owned.InstanceID)
	}
	assert.Len(t, store.saves, 2)
}

func TestEngine_RemoveKeepsOtherCopies(t *testing.T) {
	e, _ := newTestEngine(t)
	a := e.AddOne(mockCard)
	b := e.AddOne(mockCard)
	c := e.AddOne(mockCard)

	e.RemoveByInstance(b.InstanceID)

	items := e.AllOwnedItems()
	require.Len(t, items, 2)
	assert.Equal(t, c.InstanceID, items[0].InstanceID)
	assert.Equal(t, a.InstanceID, items[1].InstanceID)
}

func TestEngine_RemoveUnknownIsNoop(t *testing.T) {
	e, store := newTestEngine(t)
	e.AddOne(mockCard)

	assert.False(t, e.RemoveByInstance("missing"))
	assert.Equal(t, 1, e.TotalCount())
	assert.Len(t, store.saves, 1)
}

func TestEngine_NotifierReceivesChanges(t *testing.T) {
	var changes []Change
	e := New(&memStore{}, WithIDGenerator(sequentialIDs()), WithNotifier(NotifierFunc(func(c Change) {
		changes = append(changes, c)
	})))

	item := e.AddOne(mockCard)
	e.RemoveByInstance(item.InstanceID)

	require.Len(t, changes, 2)
	assert.Equal(t, 1, changes[0].TotalCount)
	assert.Equal(t, []OwnedCard{item}, changes[0].Added)
	assert.Equal(t, []string{"inst-1"}, changes[1].Removed)
	assert.Zero(t, changes[1].TotalCount)
}

func TestEngine_AllOwnedItemsIsCopy(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddOne(mockCard)

	items := e.AllOwnedItems()
	items[0].Name = "mutated"

	assert.Equal(t, "Test Card", e.AllOwnedItems()[0].Name)
}
