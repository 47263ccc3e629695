// Package projection derives display data from the catalog and the owned
// collection: set groupings, ownership counts and completion statistics.
//
// Everything here is a pure function recomputed on demand.
package projection

import (
	"math"
	"slices"
	"sort"

	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/collection"
)

// DefaultSetOrder is the preferred display order of sets.
var DefaultSetOrder = []string{"OGN", "PG", "SFD"}

// DefaultExcludedSets are hidden from the catalog view.
var DefaultExcludedSets = []string{"SFD"}

// SetGroup is the printings of one set in display order.
type SetGroup struct {
	SetCode string         `json:"setCode"`
	SetName string         `json:"setName"`
	Cards   []catalog.Card `json:"cards"`
}

// Counts maps a printing to the number of owned copies.
type Counts map[catalog.Printing]int

// RarityCount is owned versus total printings of one rarity in a set.
type RarityCount struct {
	Rarity catalog.Rarity `json:"rarity"`
	Owned  int            `json:"owned"`
	Total  int            `json:"total"`
}

// SetStats summarizes completion of one set group.
type SetStats struct {
	SetCode           string        `json:"setCode"`
	SetName           string        `json:"setName"`
	TotalInSet        int           `json:"totalInSet"`
	UniqueOwned       int           `json:"uniqueOwned"`
	DuplicateCount    int           `json:"duplicateCount"`
	CompletionPercent int           `json:"completionPercent"`
	ByRarity          []RarityCount `json:"byRarity"`
}

// Entry is a catalog printing annotated with its owned count.
type Entry struct {
	catalog.Card
	Owned int `json:"owned"`
}

// GroupBySet groups cards by set code. Each group is ordered by collector
// number with the standard printing before the alternate one. Groups follow
// order first, then the remaining sets in first-seen order.
func GroupBySet(cards []catalog.Card, order []string) []SetGroup {
	index := make(map[string]int)
	var groups []SetGroup
	for _, card := range cards {
		i, ok := index[card.SetCode]
		if !ok {
			i = len(groups)
			index[card.SetCode] = i
			groups = append(groups, SetGroup{SetCode: card.SetCode, SetName: card.SetName})
		}
		groups[i].Cards = append(groups[i].Cards, card)
	}

	for i := range groups {
		g := groups[i].Cards
		sort.SliceStable(g, func(a, b int) bool {
			if g[a].CollectorNumber != g[b].CollectorNumber {
				return g[a].CollectorNumber < g[b].CollectorNumber
			}
			return !g[a].IsAlternate && g[b].IsAlternate
		})
	}

	ordered := make([]SetGroup, 0, len(groups))
	placed := make(map[string]bool, len(groups))
	for _, code := range order {
		if i, ok := index[code]; ok && !placed[code] {
			ordered = append(ordered, groups[i])
			placed[code] = true
		}
	}
	for _, g := range groups {
		if !placed[g.SetCode] {
			ordered = append(ordered, g)
		}
	}
	return ordered
}

// OwnershipCounts counts owned copies per printing.
func OwnershipCounts(owned []collection.OwnedCard) Counts {
	counts := make(Counts)
	for _, item := range owned {
		counts[item.Printing()]++
	}
	return counts
}

// SetStatistics computes completion figures for a group.
func SetStatistics(group SetGroup, counts Counts) SetStats {
	stats := SetStats{
		SetCode:    group.SetCode,
		SetName:    group.SetName,
		TotalInSet: len(group.Cards),
		ByRarity:   []RarityCount{},
	}

	byRarity := make(map[catalog.Rarity]*RarityCount)
	for _, card := range group.Cards {
		n := counts[card.Printing()]
		if n >= 1 {
			stats.UniqueOwned++
		}
		stats.DuplicateCount += max(n-1, 0)

		if !card.Rarity.Valid() {
			continue
		}
		rc, ok := byRarity[card.Rarity]
		if !ok {
			rc = &RarityCount{Rarity: card.Rarity}
			byRarity[card.Rarity] = rc
		}
		rc.Total++
		if n >= 1 {
			rc.Owned++
		}
	}

	stats.CompletionPercent = CompletionPercent(stats.UniqueOwned, stats.TotalInSet)

	for _, r := range catalog.Rarities {
		if rc, ok := byRarity[r]; ok {
			stats.ByRarity = append(stats.ByRarity, *rc)
		}
	}
	return stats
}

// CompletionPercent returns round(100*owned/total), or 0 for an empty set.
func CompletionPercent(owned, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(owned) / float64(total)))
}

// Annotate pairs every printing of a group with its owned count.
func Annotate(group SetGroup, counts Counts) []Entry {
	entries := make([]Entry, len(group.Cards))
	for i, card := range group.Cards {
		entries[i] = Entry{Card: card, Owned: counts[card.Printing()]}
	}
	return entries
}

// FindInstance returns the instance id of the first owned copy of p.
func FindInstance(owned []collection.OwnedCard, p catalog.Printing) (string, bool) {
	for _, item := range owned {
		if item.Printing() == p {
			return item.InstanceID, true
		}
	}
	return "", false
}

// ViewOptions controls how the catalog view is built.
type ViewOptions struct {
	SetOrder     []string
	ExcludedSets []string
}

// DefaultViewOptions returns the standard set order and exclusions.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		SetOrder:     slices.Clone(DefaultSetOrder),
		ExcludedSets: slices.Clone(DefaultExcludedSets),
	}
}

// SetView is one set in the catalog view.
type SetView struct {
	SetCode string   `json:"setCode"`
	SetName string   `json:"setName"`
	Entries []Entry  `json:"entries"`
	Stats   SetStats `json:"stats"`
}

// CatalogView is the catalog grid: filtered printings grouped by set with
// owned counts and completion figures.
type CatalogView struct {
	Sets       []SetView `json:"sets"`
	TotalCards int       `json:"totalCards"`
}

// BuildCatalogView filters the catalog with filter, drops excluded sets,
// groups by set and annotates every printing with owned counts. Counts use
// the whole collection, not just the visible part.
func BuildCatalogView(cat *catalog.Catalog, owned []collection.OwnedCard, filter collection.Filter, opts ViewOptions) CatalogView {
	var cards []catalog.Card
	for _, card := range filter.Apply(cat.All()) {
		if slices.Contains(opts.ExcludedSets, card.SetCode) {
			continue
		}
		cards = append(cards, card)
	}

	counts := OwnershipCounts(owned)
	view := CatalogView{Sets: []SetView{}, TotalCards: len(cards)}
	for _, group := range GroupBySet(cards, opts.SetOrder) {
		view.Sets = append(view.Sets, SetView{
			SetCode: group.SetCode,
			SetName: group.SetName,
			Entries: Annotate(group, counts),
			Stats:   SetStatistics(group, counts),
		})
	}
	return view
}
