package search

import (
	"context"
	"io"
	"strings"

	"github.com/rubiojr/topsongs/pkg/catalog"
)

// Backend executes effective queries. Queries carry their sort directive;
// backends are responsible for honouring it.
type Backend interface {
	// Search returns the page of results starting at the 1-based offset
	// start. With facetsOnly set, no songs are returned.
	Search(ctx context.Context, q string, start int, facetsOnly bool) (*Results, error)
	Song(ctx context.Context, uri string) (*catalog.Song, error)
	Image(ctx context.Context, uri string) (io.ReadCloser, string, error)
	Close() error
}

// Results is one page of backend results. Cached results are shared between
// requests and must not be modified.
type Results struct {
	Total      int            `json:"total"`
	PageLength int            `json:"page_length"`
	Start      int            `json:"start"`
	Songs      []catalog.Song `json:"songs"`
	Facets     []Facet        `json:"facets"`
}

// Facet groups the result counts for one field.
type Facet struct {
	Name   string       `json:"name"`
	Label  string       `json:"label"`
	Values []FacetValue `json:"values"`
}

// FacetValue is one entry of a facet. Term is ready to be appended to a
// query after "Name:".
type FacetValue struct {
	Label string `json:"label"`
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// FacetLink returns the query a facet link points to: the effective query
// narrowed by field:term. Links for terms already in the query return the
// query unchanged.
func FacetLink(effective, field, term string) string {
	token := field + ":" + term
	if strings.Contains(" "+effective+" ", " "+token+" ") {
		return effective
	}
	effective = strings.TrimSpace(effective)
	if effective == "" {
		return token
	}
	return effective + " " + token
}
