package search

import (
	"context"
	"fmt"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/metrics"
	"github.com/rubiojr/topsongs/pkg/pagination"
	"github.com/rubiojr/topsongs/pkg/query"
)

// Page is everything a results page shows.
type Page struct {
	Query       string                 `json:"query"`
	Rule        string                 `json:"rule"`
	Start       int                    `json:"start"`
	SortOptions []query.SortOption     `json:"sort_options"`
	Results     *Results               `json:"results,omitempty"`
	Pagination  *pagination.Descriptor `json:"pagination,omitempty"`
	// Err is set when the backend failed. The page still carries the query
	// and sort options so the form can be shown again.
	Err error `json:"-"`
}

// DetailPage is a single song with the facet sidebar of the whole catalog.
type DetailPage struct {
	Song   *catalog.Song `json:"song"`
	Facets []Facet       `json:"facets"`
	Err    error         `json:"-"`
}

// Service ties query resolution, the backend and pagination together.
type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

func (s *Service) Backend() Backend {
	return s.backend
}

// Search resolves in and runs the effective query. Backend failures are
// reported through Page.Err; the returned error is reserved for broken
// invariants such as an effective query without a directive.
func (s *Service) Search(ctx context.Context, in query.RawInput) (*Page, error) {
	res := query.Resolve(in)
	metrics.Searches.WithLabelValues(res.Rule.String()).Inc()

	if n := len(query.FindDirectives(res.Query)); n > 1 {
		metrics.DirectiveConflicts.Inc()
		logger.Warnf("query %q has %d sort directives, using the first", res.Query, n)
	}

	options, err := query.SortOptions(res.Query)
	if err != nil {
		return nil, fmt.Errorf("building sort options for %q: %w", res.Query, err)
	}

	page := &Page{
		Query:       res.Query,
		Rule:        res.Rule.String(),
		Start:       max(in.Start, 1),
		SortOptions: options,
	}

	results, err := s.backend.Search(ctx, res.Query, page.Start, false)
	if err != nil {
		metrics.SearchFailures.Inc()
		logger.Errorf("search %q failed: %v", res.Query, err)
		page.Err = err
		return page, nil
	}
	page.Results = results

	desc, err := pagination.Compute(page.Start, results.Total, results.PageLength)
	if err != nil {
		return nil, err
	}
	page.Pagination = &desc
	return page, nil
}

// Detail loads one song. catalog.ErrNotFound is returned for unknown URIs.
func (s *Service) Detail(ctx context.Context, uri string) (*DetailPage, error) {
	song, err := s.backend.Song(ctx, uri)
	if err != nil {
		return nil, err
	}

	page := &DetailPage{Song: song}
	results, err := s.backend.Search(ctx, query.DefaultQuery, 1, true)
	if err != nil {
		metrics.SearchFailures.Inc()
		logger.Errorf("facet search for %s failed: %v", uri, err)
		page.Err = err
		return page, nil
	}
	page.Facets = results.Facets
	return page, nil
}
