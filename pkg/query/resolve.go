package query

import (
	"github.com/rubiojr/topsongs/pkg/log"
)

// Submit button values sent by the pagination links.
const (
	ButtonPage    = "page"
	ButtonPageMin = "pagemin"
)

// Rule identifies which input control decided the effective query.
type Rule int

const (
	RuleDefault Rule = iota
	RulePagination
	RuleSortSelection
	RuleFacetLink
	RuleSearchButton
)

func (r Rule) String() string {
	switch r {
	case RuleDefault:
		return "default"
	case RulePagination:
		return "pagination"
	case RuleSortSelection:
		return "sort_selection"
	case RuleFacetLink:
		return "facet_link"
	case RuleSearchButton:
		return "search_button"
	}
	return "unknown"
}

// RawInput holds the search form parameters of one request. A nil pointer
// means the parameter was not sent.
type RawInput struct {
	Query        *string
	SubmitButton *string
	SortBy       *string
	// Start is the 1-based offset of the first result on the page.
	Start int
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Query string
	Rule  Rule
}

// String returns a pointer to s, for building RawInput values.
func String(s string) *string {
	return &s
}

var logger = log.ForService("query")

// Resolve decides the effective query for a request. The first matching rule
// wins:
//
//  1. nothing sent: the default query
//  2. an empty query is read as the default query before anything else
//  3. a pagination link keeps the query as is
//  4. a sort dropdown change replaces or inserts the directive
//  5. a facet link keeps the query as is
//  6. the search button keeps an existing directive or inserts the default
//
// Resolve never fails; missing values fall through to defaults.
func Resolve(in RawInput) Resolution {
	button := present(in.SubmitButton)
	sortBy := present(in.SortBy)

	if in.Query == nil && button == nil && sortBy == nil {
		logger.Debugf("no input, using %q", DefaultQuery)
		return Resolution{Query: DefaultQuery, Rule: RuleDefault}
	}

	q := ""
	if in.Query != nil {
		q = *in.Query
		if q == "" {
			q = DefaultQuery
		}
	}

	if button != nil && (*button == ButtonPage || *button == ButtonPageMin) && in.Start > 0 {
		if in.Query == nil {
			q = DefaultQuery
		}
		logger.Debugf("pagination to start=%d, query %q", in.Start, q)
		return Resolution{Query: q, Rule: RulePagination}
	}

	if button == nil && sortBy != nil {
		if HasDirective(q) {
			logger.Debugf("sort changed to %q, replacing directive", *sortBy)
			return Resolution{Query: Replace(q, *sortBy), Rule: RuleSortSelection}
		}
		logger.Debugf("sort changed to %q, inserting directive", *sortBy)
		return Resolution{Query: Insert(q, *sortBy), Rule: RuleSortSelection}
	}

	if button == nil && in.Query != nil {
		logger.Debugf("facet link, query %q", q)
		return Resolution{Query: q, Rule: RuleFacetLink}
	}

	if HasDirective(q) {
		logger.Debugf("search button, keeping directive in %q", q)
		return Resolution{Query: q, Rule: RuleSearchButton}
	}
	logger.Debugf("search button, inserting default sort into %q", q)
	return Resolution{Query: Insert(q, string(DefaultSort)), Rule: RuleSearchButton}
}

// present treats empty strings as absent.
func present(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
