package collection

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrUnknownSortField is returned for a field outside SortFields.
var ErrUnknownSortField = errors.New("unknown sort field")

// SortField names the key visible items are ordered by.
type SortField string

// Sort fields accepted by UpdateSort.
const (
	SortByName   SortField = "name"
	SortByPower  SortField = "power"
	SortByCost   SortField = "cost"
	SortByRarity SortField = "rarity"
)

// SortFields lists every sort field.
var SortFields = []SortField{SortByName, SortByPower, SortByCost, SortByRarity}

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	f := SortField(s)
	if !slices.Contains(SortFields, f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortField, s)
	}
	return f, nil
}

// Direction is the sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort is the ordering applied to visible items.
type Sort struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by name ascending.
func DefaultSort() Sort {
	return Sort{Field: SortByName, Direction: Ascending}
}

// Toggle returns the sort state after selecting field: the same field flips
// the direction, a different field starts ascending.
func (s Sort) Toggle(field SortField) Sort {
	if s.Field == field {
		if s.Direction == Ascending {
			return Sort{Field: field, Direction: Descending}
		}
		return Sort{Field: field, Direction: Ascending}
	}
	return Sort{Field: field, Direction: Ascending}
}

// sortItems orders items in place. Ascending order is a stable sort on the
// field; descending is the exact reverse of it.
func sortItems(items []OwnedCard, s Sort, tag language.Tag) {
	less := lessFunc(s.Field, tag)
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
	if s.Direction == Descending {
		slices.Reverse(items)
	}
}

func lessFunc(field SortField, tag language.Tag) func(a, b OwnedCard) bool {
	switch field {
	case SortByPower:
		return func(a, b OwnedCard) bool { return a.Power < b.Power }
	case SortByCost:
		return func(a, b OwnedCard) bool { return a.Cost < b.Cost }
	case SortByRarity:
		return func(a, b OwnedCard) bool { return a.Rarity.Rank() < b.Rarity.Rank() }
	default:
		col := collate.New(tag)
		return func(a, b OwnedCard) bool { return col.CompareString(a.Name, b.Name) < 0 }
	}
}
