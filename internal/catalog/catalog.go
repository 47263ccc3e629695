// Package catalog provides the immutable reference catalog of card printings.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed data/origins.json
var bundledDataset []byte

// Catalog is the reference set of all known printings, in source order.
// It is never mutated after loading; accessors return copies.
type Catalog struct {
	cards []Card
	byID  map[string]int
}

// New builds a catalog from already-normalized cards.
func New(cards []Card) *Catalog {
	c := &Catalog{
		cards: make([]Card, len(cards)),
		byID:  make(map[string]int, len(cards)),
	}
	copy(c.cards, cards)
	for i, card := range c.cards {
		if _, exists := c.byID[card.ID]; !exists {
			c.byID[card.ID] = i
		}
	}
	return c
}

// Load returns the bundled reference catalog.
func Load() (*Catalog, error) {
	return Parse(bytes.NewReader(bundledDataset))
}

// LoadFile reads a dataset from a JSON file with the bundled layout.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog dataset: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a JSON array of raw records and normalizes each one.
func Parse(r io.Reader) (*Catalog, error) {
	var raw []RawCard
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog dataset: %w", err)
	}

	cards := make([]Card, len(raw))
	for i, rc := range raw {
		cards[i] = Normalize(rc)
	}
	return New(cards), nil
}

// Len returns the number of printings.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// All returns every printing in catalog order.
func (c *Catalog) All() []Card {
	out := make([]Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// Get returns the printing with the given id.
func (c *Catalog) Get(id string) (Card, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// ByCollectorNumber returns every printing with collector number n.
func (c *Catalog) ByCollectorNumber(n int) []Card {
	return c.filter(func(card Card) bool {
		return card.CollectorNumber == n
	})
}

// ByCollectorNumberAndPrinting returns the printings with collector number n
// whose alternate flag equals alternate.
func (c *Catalog) ByCollectorNumberAndPrinting(n int, alternate bool) []Card {
	return c.filter(func(card Card) bool {
		return card.CollectorNumber == n && card.IsAlternate == alternate
	})
}

// InSet returns a catalog restricted to one set.
func (c *Catalog) InSet(setCode string) *Catalog {
	return New(c.filter(func(card Card) bool {
		return card.SetCode == setCode
	}))
}

// Sets returns the distinct sets in first-seen order. The name of a set is
// taken from its last printing, mirroring how the dataset is usually built.
func (c *Catalog) Sets() []Set {
	index := make(map[string]int)
	var sets []Set
	for _, card := range c.cards {
		if card.SetCode == "" {
			continue
		}
		if i, ok := index[card.SetCode]; ok {
			if card.SetName != "" {
				sets[i].Name = card.SetName
			}
			continue
		}
		index[card.SetCode] = len(sets)
		sets = append(sets, Set{Code: card.SetCode, Name: card.SetName})
	}
	return sets
}

// HasSet reports whether any printing belongs to setCode.
func (c *Catalog) HasSet(setCode string) bool {
	for _, card := range c.cards {
		if card.SetCode == setCode {
			return true
		}
	}
	return false
}

func (c *Catalog) filter(keep func(Card) bool) []Card {
	var out []Card
	for _, card := range c.cards {
		if keep(card) {
			out = append(out, card)
		}
	}
	return out
}
