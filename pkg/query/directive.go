package query

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Marker prefixes every sort directive token.
const Marker = "sort:"

// SortValue is one of the sort orders understood by the song index.
type SortValue string

const (
	SortRelevance SortValue = "relevance"
	SortNewest    SortValue = "newest"
	SortOldest    SortValue = "oldest"
	SortArtist    SortValue = "artist"
	SortTitle     SortValue = "title"
)

// DefaultSort is applied when a fresh search carries no directive.
const DefaultSort = SortNewest

// DefaultQuery is the effective query used when the request has no input at all.
const DefaultQuery = Marker + string(DefaultSort)

// SortValues lists the recognised sort values in dropdown order.
var SortValues = []SortValue{
	SortRelevance,
	SortNewest,
	SortOldest,
	SortArtist,
	SortTitle,
}

// ErrMissingDirective is returned when sort options are requested for a query
// that carries no directive. Resolve never produces such a query, so seeing
// this error means a caller skipped resolution.
var ErrMissingDirective = errors.New("query has no sort directive")

// Label returns the human readable dropdown label.
func (v SortValue) Label() string {
	// Casers keep state between calls and must not be shared.
	return cases.Title(language.English).String(string(v))
}

// Valid reports whether v is one of SortValues.
func (v SortValue) Valid() bool {
	for _, s := range SortValues {
		if s == v {
			return true
		}
	}
	return false
}

// Directive is a sort directive found in a query string.
type Directive struct {
	// Index is the position of the token among the whitespace separated tokens.
	Index int
	// Value is everything after the first ':' in the token.
	Value string
}

// SortOption is one dropdown entry.
type SortOption struct {
	Value    SortValue `json:"value"`
	Label    string    `json:"label"`
	Selected bool      `json:"selected"`
}

// FindDirectives returns every sort directive in q, in token order.
func FindDirectives(q string) []Directive {
	var found []Directive
	for i, tok := range strings.Fields(q) {
		if !strings.Contains(tok, Marker) {
			continue
		}
		found = append(found, Directive{Index: i, Value: directiveValue(tok)})
	}
	return found
}

// HasDirective reports whether any token of q contains the sort marker.
func HasDirective(q string) bool {
	return strings.Contains(q, Marker)
}

// Authoritative returns the first directive in q. More than one directive is
// tolerated; callers that care can compare len(FindDirectives(q)).
func Authoritative(q string) (Directive, bool) {
	found := FindDirectives(q)
	if len(found) == 0 {
		return Directive{}, false
	}
	return found[0], true
}

// StripDirectives removes every sort directive token from q and joins the
// remaining tokens with single spaces.
func StripDirectives(q string) string {
	tokens := strings.Fields(q)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !strings.Contains(tok, Marker) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// SortOptions builds the dropdown model for an effective query. Exactly the
// entry matching the first directive is selected; an unknown value selects
// nothing.
func SortOptions(effective string) ([]SortOption, error) {
	d, ok := Authoritative(effective)
	if !ok {
		return nil, ErrMissingDirective
	}

	options := make([]SortOption, 0, len(SortValues))
	for _, v := range SortValues {
		options = append(options, SortOption{
			Value:    v,
			Label:    v.Label(),
			Selected: d.Value == string(v),
		})
	}
	return options, nil
}

// directiveValue extracts the text after the first ':' of a token.
func directiveValue(tok string) string {
	return tok[strings.Index(tok, ":")+1:]
}
