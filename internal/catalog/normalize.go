package catalog

import "regexp"

// AlternateSuffix is appended to the name of alternate printings.
const AlternateSuffix = " (Alternate)"

var (
	htmlTagPattern   = regexp.MustCompile(`<[^>]*>?`)
	alternatePattern = regexp.MustCompile(`-\d+a-`)
)

// Label is a nested label field in the raw dataset.
type Label struct {
	Label string `json:"label"`
}

// Image is the raw card image reference.
type Image struct {
	URL string `json:"url"`
}

// RawCard is a record as it appears in the bundled dataset.
type RawCard struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Text            string  `json:"text"`
	Rarity          Label   `json:"rarity"`
	Domains         []Label `json:"domains"`
	CardType        []Label `json:"cardType"`
	Energy          *int    `json:"energy,omitempty"`
	Power           *int    `json:"power,omitempty"`
	CardImage       Image   `json:"cardImage"`
	CollectorNumber int     `json:"collectorNumber"`
	Set             string  `json:"set"`
	SetName         string  `json:"setName"`
}

// Normalize converts a raw dataset record into a Card.
//
// Labels are parsed into their enumerations here and nowhere else; the
// alternate-printing flag is derived from the id once and carried on the Card.
func Normalize(raw RawCard) Card {
	alternate := IsAlternateID(raw.ID)

	name := raw.Name
	if alternate {
		name += AlternateSuffix
	}

	rarity, _ := ParseRarity(raw.Rarity.Label)

	category := CategoryNeutral
	if len(raw.Domains) > 0 {
		category, _ = ParseCategory(raw.Domains[0].Label)
	}

	var kind Kind
	if len(raw.CardType) > 0 {
		kind, _ = ParseKind(raw.CardType[0].Label)
	}

	return Card{
		ID:              raw.ID,
		Name:            name,
		Description:     StripHTML(raw.Text),
		Rarity:          rarity,
		Category:        category,
		Kind:            kind,
		Power:           nonNegative(raw.Power),
		Cost:            nonNegative(raw.Energy),
		ImageURL:        raw.CardImage.URL,
		CollectorNumber: raw.CollectorNumber,
		SetCode:         raw.Set,
		SetName:         raw.SetName,
		IsAlternate:     alternate,
	}
}

// StripHTML removes every <...> sequence from s, including an unterminated
// trailing tag.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return htmlTagPattern.ReplaceAllString(s, "")
}

// IsAlternateID reports whether a printing id marks an alternate printing,
// e.g. "OGN-7a-fury".
func IsAlternateID(id string) bool {
	return alternatePattern.MatchString(id)
}

func nonNegative(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
