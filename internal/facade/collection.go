// Package facade serializes access to one collection engine so concurrent
// surfaces such as the HTTP server apply operations in call order.
package facade

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/collection"
	"github.com/ramonehamilton/rifty/internal/projection"
)

var (
	// ErrCardNotFound is returned when a catalog id or printing does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrUnknownSet is returned when a bulk add names a set the catalog lacks.
	ErrUnknownSet = errors.New("unknown set")
)

// Snapshot is the visible part of the collection with its counters and
// the active filter and sort.
type Snapshot struct {
	Items          []collection.OwnedCard `json:"items"`
	TotalCount     int                    `json:"totalCount"`
	DisplayedCount int                    `json:"displayedCount"`
	Filter         collection.Filter      `json:"filter"`
	Sort           collection.Sort        `json:"sort"`
}

// Collection guards an engine and the catalog it draws from.
type Collection struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	engine  *collection.Engine
	view    projection.ViewOptions
	logger  *slog.Logger
}

// New creates a facade. A nil logger means slog.Default().
func New(cat *catalog.Catalog, engine *collection.Engine, view projection.ViewOptions, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{catalog: cat, engine: engine, view: view, logger: logger}
}

// Catalog returns the shared read-only catalog.
func (c *Collection) Catalog() *catalog.Catalog { return c.catalog }

// AddByID adds one copy of the printing with catalog id.
func (c *Collection) AddByID(id string) (collection.OwnedCard, error) {
	card, ok := c.catalog.Get(id)
	if !ok {
		return collection.OwnedCard{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.AddOne(card), nil
}

// AddBulk adds every printing named by text within setCode in one step.
func (c *Collection) AddBulk(setCode, text string) (collection.BulkResult, error) {
	if !c.catalog.HasSet(setCode) {
		return collection.BulkResult{}, fmt.Errorf("%w: %s", ErrUnknownSet, setCode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result := c.engine.AddBulk(c.catalog, setCode, text)
	c.logger.Info("bulk add",
		"set", setCode,
		"added", len(result.Added),
		"skipped", len(result.Skipped),
		"unmatched", len(result.Unmatched))
	return result, nil
}

// RemoveByInstance removes the copy with instanceID.
func (c *Collection) RemoveByInstance(instanceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.RemoveByInstance(instanceID)
}

// RemoveOne removes the first owned copy of p and returns its instance id.
func (c *Collection) RemoveOne(p catalog.Printing) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := projection.FindInstance(c.engine.AllOwnedItems(), p)
	if !ok {
		return "", fmt.Errorf("%w: no owned copy of %s #%d", ErrCardNotFound, p.SetCode, p.CollectorNumber)
	}
	c.engine.RemoveByInstance(id)
	return id, nil
}

// UpdateFilter replaces one filter field.
func (c *Collection) UpdateFilter(key collection.FilterKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.UpdateFilter(key, value)
}

// ResetFilter restores the default filter.
func (c *Collection) ResetFilter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.ResetFilter()
}

// UpdateSort selects or toggles the sort field.
func (c *Collection) UpdateSort(field collection.SortField) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.UpdateSort(field)
}

// Snapshot returns the visible items and the state they were derived from.
func (c *Collection) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.engine.VisibleItems()
	return Snapshot{
		Items:          items,
		TotalCount:     c.engine.TotalCount(),
		DisplayedCount: len(items),
		Filter:         c.engine.Filter(),
		Sort:           c.engine.Sort(),
	}
}

// AllOwnedItems returns every owned card, newest first.
func (c *Collection) AllOwnedItems() []collection.OwnedCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.AllOwnedItems()
}

// CatalogView returns the catalog grid filtered by the active filter.
func (c *Collection) CatalogView() projection.CatalogView {
	c.mu.Lock()
	owned := c.engine.AllOwnedItems()
	filter := c.engine.Filter()
	c.mu.Unlock()

	return projection.BuildCatalogView(c.catalog, owned, filter, c.view)
}

// Stats returns unfiltered completion statistics for every displayed set.
func (c *Collection) Stats() []projection.SetStats {
	view := projection.BuildCatalogView(c.catalog, c.AllOwnedItems(), collection.DefaultFilter(), c.view)

	stats := make([]projection.SetStats, len(view.Sets))
	for i, set := range view.Sets {
		stats[i] = set.Stats
	}
	return stats
}

// Search looks up catalog printings by name.
func (c *Collection) Search(query string, limit int) []catalog.SearchResult {
	opts := catalog.DefaultSearchOptions()
	if limit > 0 {
		opts.MaxResults = limit
	}
	return c.catalog.Search(query, opts)
}
