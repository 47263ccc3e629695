package catalog

import "strings"

// Rarity is the rarity tier of a printing.
type Rarity string

// Known rarities, lowest to highest.
const (
	RarityCommon   Rarity = "Common"
	RarityUncommon Rarity = "Uncommon"
	RarityRare     Rarity = "Rare"
	RarityEpic     Rarity = "Epic"
	RarityShowcase Rarity = "Showcase"
)

// Rarities lists the known rarities in sort order.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityShowcase}

// ParseRarity maps a label to a known rarity. Matching ignores case.
func ParseRarity(label string) (Rarity, bool) {
	for _, r := range Rarities {
		if strings.EqualFold(label, string(r)) {
			return r, true
		}
	}
	return Rarity(label), false
}

// Rank returns the position of r in the rarity order.
// Unrecognized values rank after every known rarity.
func (r Rarity) Rank() int {
	for i, known := range Rarities {
		if r == known {
			return i
		}
	}
	return len(Rarities)
}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	return r.Rank() < len(Rarities)
}

// Category is the domain a card belongs to.
type Category string

// Known categories. CategoryNeutral is used when the source has no domain.
const (
	CategoryFury    Category = "Fury"
	CategoryCalm    Category = "Calm"
	CategoryBody    Category = "Body"
	CategoryChaos   Category = "Chaos"
	CategoryMind    Category = "Mind"
	CategoryNeutral Category = "Neutral"
)

// Categories lists the known categories, Neutral last.
var Categories = []Category{CategoryFury, CategoryCalm, CategoryBody, CategoryChaos, CategoryMind, CategoryNeutral}

// ParseCategory maps a label to a known category. Matching ignores case.
func ParseCategory(label string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(label, string(c)) {
			return c, true
		}
	}
	return CategoryNeutral, false
}

// Kind is the card type.
type Kind string

// Known kinds.
const (
	KindUnit  Kind = "Unit"
	KindSpell Kind = "Spell"
	KindRune  Kind = "Rune"
)

// Kinds lists the known kinds.
var Kinds = []Kind{KindUnit, KindSpell, KindRune}

// ParseKind maps a label to a known kind. Matching ignores case.
func ParseKind(label string) (Kind, bool) {
	for _, k := range Kinds {
		if strings.EqualFold(label, string(k)) {
			return k, true
		}
	}
	return Kind(label), false
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Card is one printing in the reference catalog.
type Card struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Rarity          Rarity   `json:"rarity"`
	Category        Category `json:"category"`
	Kind            Kind     `json:"kind"`
	Power           int      `json:"power"`
	Cost            int      `json:"cost"`
	ImageURL        string   `json:"imageUrl"`
	CollectorNumber int      `json:"collectorNumber"`
	SetCode         string   `json:"setCode"`
	SetName         string   `json:"setName"`
	IsAlternate     bool     `json:"isAlternate"`
}

// Printing identifies a printing within the catalog: set, collector number
// and standard/alternate flag. Unique per card within a set.
type Printing struct {
	SetCode         string `json:"setCode"`
	CollectorNumber int    `json:"collectorNumber"`
	IsAlternate     bool   `json:"isAlternate"`
}

// Printing returns the printing key of c.
func (c Card) Printing() Printing {
	return Printing{SetCode: c.SetCode, CollectorNumber: c.CollectorNumber, IsAlternate: c.IsAlternate}
}

// Set is a set code with its display name.
type Set struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
