package collection

import (
	"strconv"
	"strings"

	"github.com/ramonehamilton/rifty/internal/catalog"
)

// BulkToken is one parsed entry of bulk input.
type BulkToken struct {
	Raw             string `json:"raw"`
	CollectorNumber int    `json:"collectorNumber"`
	IsAlternate     bool   `json:"isAlternate"`
}

// BulkTokens is the result of parsing bulk input.
type BulkTokens struct {
	Valid   []BulkToken
	Skipped []string
}

// BulkResult reports what a bulk add did. A result with no Added cards is a
// no-op, not a failure.
type BulkResult struct {
	SetCode string      `json:"setCode"`
	Added   []OwnedCard `json:"added"`
	// Skipped holds tokens that are neither N nor Na.
	Skipped []string `json:"skipped,omitempty"`
	// Unmatched holds valid tokens with no printing in the set.
	Unmatched []string `json:"unmatched,omitempty"`
	// Duplicates holds tokens that matched more than one printing.
	Duplicates []string `json:"duplicates,omitempty"`
}

// ParseBulkInput splits text on whitespace and parses each token as a
// collector number, optionally followed by "a" for the alternate printing.
// Anything else is skipped.
func ParseBulkInput(text string) BulkTokens {
	var tokens BulkTokens
	for _, field := range strings.Fields(text) {
		token, ok := parseBulkToken(field)
		if !ok {
			tokens.Skipped = append(tokens.Skipped, field)
			continue
		}
		tokens.Valid = append(tokens.Valid, token)
	}
	return tokens
}

func parseBulkToken(s string) (BulkToken, bool) {
	digits, alternate := strings.CutSuffix(s, "a")
	if digits == "" {
		return BulkToken{}, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return BulkToken{}, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return BulkToken{}, false
	}
	return BulkToken{Raw: s, CollectorNumber: n, IsAlternate: alternate}, true
}

// ResolveBulk looks up every token in the given set of cat and returns all
// matches in token order, along with the tokens that matched nothing and the
// tokens that matched more than one printing.
func ResolveBulk(cat *catalog.Catalog, setCode string, tokens []BulkToken) (cards []catalog.Card, unmatched, duplicates []string) {
	inSet := cat.InSet(setCode)
	for _, token := range tokens {
		matches := inSet.ByCollectorNumberAndPrinting(token.CollectorNumber, token.IsAlternate)
		switch {
		case len(matches) == 0:
			unmatched = append(unmatched, token.Raw)
		case len(matches) > 1:
			duplicates = append(duplicates, token.Raw)
		}
		cards = append(cards, matches...)
	}
	return cards, unmatched, duplicates
}

// AddBulk parses text, resolves it against setCode of cat and adds every
// match in a single AddMany.
func (e *Engine) AddBulk(cat *catalog.Catalog, setCode, text string) BulkResult {
	tokens := ParseBulkInput(text)
	cards, unmatched, duplicates := ResolveBulk(cat, setCode, tokens.Valid)

	result := BulkResult{
		SetCode:    setCode,
		Skipped:    tokens.Skipped,
		Unmatched:  unmatched,
		Duplicates: duplicates,
	}

	if len(duplicates) > 0 {
		e.logger.Warn("bulk tokens matched several printings",
			"set", setCode, "tokens", duplicates)
	}
	if len(tokens.Skipped) > 0 {
		e.logger.Debug("bulk tokens skipped", "tokens", tokens.Skipped)
	}

	if len(cards) == 0 {
		result.Added = []OwnedCard{}
		return result
	}

	result.Added = e.AddMany(cards)
	return result
}
