// Package collection holds the state of the user's card collection: the
// owned cards, the active filter and sort, and the operations that change
// them.
package collection

import (
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/ramonehamilton/rifty/internal/catalog"
)

// OwnedCard is one physical copy of a printing in the collection.
type OwnedCard struct {
	catalog.Card
	InstanceID string `json:"instanceId"`
}

// Store persists the owned card list.
//
// Implementations absorb their own failures: Load returns an empty list when
// nothing usable is stored and Save logs instead of returning errors, so the
// in-memory state stays authoritative.
type Store interface {
	Load() []OwnedCard
	Save(items []OwnedCard)
}

// Change describes a committed mutation of the owned list.
type Change struct {
	Added      []OwnedCard `json:"added,omitempty"`
	Removed    []string    `json:"removed,omitempty"`
	TotalCount int         `json:"totalCount"`
}

// Notifier receives every committed change.
type Notifier interface {
	CollectionChanged(change Change)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Change)

// CollectionChanged calls f(change).
func (f NotifierFunc) CollectionChanged(change Change) { f(change) }

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithNotifier registers a change notifier.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLocale sets the language used to compare names. Defaults to English.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) { e.locale = tag }
}

// WithIDGenerator replaces the instance id generator.
func WithIDGenerator(next func() string) Option {
	return func(e *Engine) { e.newID = next }
}

// Engine owns the collection state. It is synchronous and not safe for
// concurrent use; every method runs to completion and persists inline.
type Engine struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	locale   language.Tag
	newID    func() string

	owned  []OwnedCard
	filter Filter
	sort   Sort
}

// New creates an engine seeded from store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.Default(),
		locale: language.English,
		newID:  uuid.NewString,
		filter: DefaultFilter(),
		sort:   DefaultSort(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.owned = store.Load()
	e.logger.Debug("collection loaded", "count", len(e.owned))
	return e
}

// AddOne adds a copy of card to the front of the collection.
func (e *Engine) AddOne(card catalog.Card) OwnedCard {
	item := OwnedCard{Card: card, InstanceID: e.newID()}
	e.commit(append([]OwnedCard{item}, e.owned...), Change{Added: []OwnedCard{item}})
	return item
}

// AddMany adds a copy of each card to the front of the collection in one
// step, keeping the order of cards. An empty batch does nothing.
func (e *Engine) AddMany(cards []catalog.Card) []OwnedCard {
	if len(cards) == 0 {
		return nil
	}

	batch := make([]OwnedCard, len(cards))
	for i, card := range cards {
		batch[i] = OwnedCard{Card: card, InstanceID: e.newID()}
	}

	next := make([]OwnedCard, 0, len(batch)+len(e.owned))
	next = append(next, batch...)
	next = append(next, e.owned...)

	added := make([]OwnedCard, len(batch))
	copy(added, batch)
	e.commit(next, Change{Added: added})
	return batch
}

// RemoveByInstance removes the copy with the given instance id.
// It reports whether a copy was removed; an unknown id is a no-op.
func (e *Engine) RemoveByInstance(instanceID string) bool {
	for i, item := range e.owned {
		if item.InstanceID != instanceID {
			continue
		}
		next := make([]OwnedCard, 0, len(e.owned)-1)
		next = append(next, e.owned[:i]...)
		next = append(next, e.owned[i+1:]...)
		e.commit(next, Change{Removed: []string{instanceID}})
		return true
	}
	return false
}

// UpdateFilter replaces one field of the filter. The sort is untouched.
func (e *Engine) UpdateFilter(key FilterKey, value string) error {
	next, err := e.filter.With(key, value)
	if err != nil {
		return err
	}
	e.filter = next
	return nil
}

// ResetFilter restores the default filter.
func (e *Engine) ResetFilter() {
	e.filter = DefaultFilter()
}

// UpdateSort selects a sort field, toggling direction when it is already
// selected.
func (e *Engine) UpdateSort(field SortField) error {
	if _, err := ParseSortField(string(field)); err != nil {
		return err
	}
	e.sort = e.sort.Toggle(field)
	return nil
}

// VisibleItems returns the owned cards matching the filter, in sort order.
func (e *Engine) VisibleItems() []OwnedCard {
	visible := make([]OwnedCard, 0, len(e.owned))
	for _, item := range e.owned {
		if e.filter.Matches(item.Card) {
			visible = append(visible, item)
		}
	}
	sortItems(visible, e.sort, e.locale)
	return visible
}

// AllOwnedItems returns every owned card in collection order.
func (e *Engine) AllOwnedItems() []OwnedCard {
	out := make([]OwnedCard, len(e.owned))
	copy(out, e.owned)
	return out
}

// Filter returns the active filter.
func (e *Engine) Filter() Filter { return e.filter }

// Sort returns the active sort.
func (e *Engine) Sort() Sort { return e.sort }

// TotalCount returns the number of owned cards.
func (e *Engine) TotalCount() int { return len(e.owned) }

// DisplayedCount returns the number of visible cards.
func (e *Engine) DisplayedCount() int {
	n := 0
	for _, item := range e.owned {
		if e.filter.Matches(item.Card) {
			n++
		}
	}
	return n
}

// commit swaps in the next owned list, persists it and notifies.
func (e *Engine) commit(next []OwnedCard, change Change) {
	e.owned = next
	e.store.Save(e.AllOwnedItems())

	change.TotalCount = len(e.owned)
	e.logger.Debug("collection changed",
		"added", len(change.Added),
		"removed", len(change.Removed),
		"total", change.TotalCount)

	if e.notifier != nil {
		e.notifier.CollectionChanged(change)
	}
}
