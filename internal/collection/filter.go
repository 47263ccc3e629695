package collection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ramonehamilton/rifty/internal/catalog"
)

// All is the filter value that disables an enumerated criterion.
const All = "All"

var (
	// ErrUnknownFilterKey is returned for a filter key outside FilterKeys.
	ErrUnknownFilterKey = errors.New("unknown filter key")

	// ErrInvalidFilterValue is returned when a value is not All or a member
	// of the key's enumeration.
	ErrInvalidFilterValue = errors.New("invalid filter value")
)

// FilterKey names one field of a Filter.
type FilterKey string

// Filter keys accepted by UpdateFilter.
const (
	FilterSearch   FilterKey = "search"
	FilterRarity   FilterKey = "rarity"
	FilterCategory FilterKey = "category"
	FilterKind     FilterKey = "kind"
)

// FilterKeys lists every filter key.
var FilterKeys = []FilterKey{FilterSearch, FilterRarity, FilterCategory, FilterKind}

// Filter holds the criteria used to derive visible items.
// Empty Rarity, Category or Kind values are equivalent to All.
type Filter struct {
	Search   string           `json:"search"`
	Rarity   catalog.Rarity   `json:"rarity"`
	Category catalog.Category `json:"category"`
	Kind     catalog.Kind     `json:"kind"`
}

// DefaultFilter matches every card.
func DefaultFilter() Filter {
	return Filter{
		Search:   "",
		Rarity:   All,
		Category: All,
		Kind:     All,
	}
}

// With returns a copy of f with one field replaced. The value is validated
// against the key's enumeration; All disables the criterion.
func (f Filter) With(key FilterKey, value string) (Filter, error) {
	switch key {
	case FilterSearch:
		f.Search = value
	case FilterRarity:
		if strings.EqualFold(value, All) {
			f.Rarity = All
			break
		}
		r, ok := catalog.ParseRarity(value)
		if !ok {
			return f, fmt.Errorf("%w: rarity %q", ErrInvalidFilterValue, value)
		}
		f.Rarity = r
	case FilterCategory:
		if strings.EqualFold(value, All) {
			f.Category = All
			break
		}
		c, ok := catalog.ParseCategory(value)
		if !ok {
			return f, fmt.Errorf("%w: category %q", ErrInvalidFilterValue, value)
		}
		f.Category = c
	case FilterKind:
		if strings.EqualFold(value, All) {
			f.Kind = All
			break
		}
		k, ok := catalog.ParseKind(value)
		if !ok {
			return f, fmt.Errorf("%w: kind %q", ErrInvalidFilterValue, value)
		}
		f.Kind = k
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownFilterKey, key)
	}
	return f, nil
}

// Matches reports whether card satisfies every criterion of f.
func (f Filter) Matches(card catalog.Card) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(card.Name), needle) &&
			!strings.Contains(strings.ToLower(card.Description), needle) {
			return false
		}
	}
	if !isAll(string(f.Rarity)) && card.Rarity != f.Rarity {
		return false
	}
	if !isAll(string(f.Category)) && card.Category != f.Category {
		return false
	}
	if !isAll(string(f.Kind)) && card.Kind != f.Kind {
		return false
	}
	return true
}

// Apply returns the cards matching f, preserving order.
func (f Filter) Apply(cards []catalog.Card) []catalog.Card {
	var out []catalog.Card
	for _, card := range cards {
		if f.Matches(card) {
			out = append(out, card)
		}
	}
	return out
}

func isAll(v string) bool {
	return v == "" || v == All
}
