package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	bquery "github.com/blevesearch/bleve/v2/search/query"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/log"
	"github.com/rubiojr/topsongs/pkg/metrics"
	"github.com/rubiojr/topsongs/pkg/query"
)

// DefaultPageLength is used when an Index is created with a page length of zero.
const DefaultPageLength = 10

// facetSize caps the number of values returned per facet.
const facetSize = 10

// Facet names. They double as the query fields facet links narrow on.
const (
	FacetGenre  = "genre"
	FacetDecade = "decade"
	FacetArtist = "artist"
)

type facetField struct {
	name  string
	label string
	field string
}

var facetFields = []facetField{
	{name: FacetGenre, label: "Genre", field: "genre"},
	{name: FacetDecade, label: "Decade", field: "decade"},
	{name: FacetArtist, label: "Artist", field: "artist_name"},
}

// ErrIndexClosed is returned by searches on a closed Index.
var ErrIndexClosed = errors.New("search index is closed")

var logger = log.ForService("search")

// Index is an in-memory bleve index over the catalog. Song details and
// images are read from the catalog store.
type Index struct {
	store      *catalog.Store
	pageLength int

	mu  sync.RWMutex
	idx bleve.Index
}

// NewIndex builds the index from every song in store.
func NewIndex(ctx context.Context, store *catalog.Store, pageLength int) (*Index, error) {
	if pageLength <= 0 {
		pageLength = DefaultPageLength
	}
	ix := &Index{store: store, pageLength: pageLength}
	if err := ix.Rebuild(ctx); err != nil {
		return nil, err
	}
	return ix, nil
}

// Rebuild reindexes the catalog. Searches running during a rebuild finish
// against the previous index.
func (ix *Index) Rebuild(ctx context.Context) error {
	songs, err := ix.store.All(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	m, err := newMapping()
	if err != nil {
		return fmt.Errorf("building index mapping: %w", err)
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	batch := idx.NewBatch()
	for _, song := range songs {
		if err := batch.Index(song.URI, document(song)); err != nil {
			idx.Close()
			return fmt.Errorf("indexing %s: %w", song.URI, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return fmt.Errorf("indexing catalog: %w", err)
	}

	ix.mu.Lock()
	old := ix.idx
	ix.idx = idx
	ix.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			logger.Warnf("closing previous index: %v", err)
		}
	}

	metrics.IndexedSongs.Set(float64(len(songs)))
	logger.Infof("indexed %d songs", len(songs))
	return nil
}

func (ix *Index) Search(ctx context.Context, q string, start int, facetsOnly bool) (*Results, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.idx == nil {
		return nil, ErrIndexClosed
	}

	if start < 1 {
		start = 1
	}
	size, from := ix.pageLength, start-1
	if facetsOnly {
		size, from = 0, 0
	}

	// Past the last document no page can have hits. Only the total and
	// facets are fetched, which also keeps from+size away from overflow.
	count, err := ix.idx.DocCount()
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if uint64(from) >= count {
		size, from = 0, 0
	}

	sortBy := query.DefaultSort
	if d, ok := query.Authoritative(q); ok {
		sortBy = query.SortValue(d.Value)
	}

	req := bleve.NewSearchRequestOptions(textQuery(q), size, from, false)
	req.SortBy(sortOrder(sortBy))
	for _, f := range facetFields {
		req.AddFacet(f.name, bleve.NewFacetRequest(f.field, facetSize))
	}

	res, err := ix.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", q, err)
	}

	results := &Results{
		Total:      int(res.Total),
		PageLength: ix.pageLength,
		Start:      start,
		Songs:      make([]catalog.Song, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		song, err := ix.store.Get(ctx, hit.ID)
		if errors.Is(err, catalog.ErrNotFound) {
			logger.Warnf("indexed song %s is not in the catalog", hit.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		results.Songs = append(results.Songs, *song)
	}

	for _, f := range facetFields {
		fr, ok := res.Facets[f.name]
		if !ok || fr == nil || fr.Terms == nil {
			continue
		}
		facet := Facet{Name: f.name, Label: f.label}
		for _, t := range fr.Terms.Terms() {
			facet.Values = append(facet.Values, FacetValue{
				Label: facetLabel(f.name, t.Term),
				Term:  facetTerm(f.name, t.Term),
				Count: t.Count,
			})
		}
		if len(facet.Values) > 0 {
			results.Facets = append(results.Facets, facet)
		}
	}

	logger.Debugf("%q start=%d: %d hits in %s", q, start, results.Total, res.Took)
	return results, nil
}

func (ix *Index) Song(ctx context.Context, uri string) (*catalog.Song, error) {
	return ix.store.Get(ctx, uri)
}

func (ix *Index) Image(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	return ix.store.Image(ctx, uri)
}

// Close releases the index. The catalog store stays open.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.idx == nil {
		return nil
	}
	err := ix.idx.Close()
	ix.idx = nil
	return err
}

// GenreKey normalises a genre name into the term stored in the genre field.
func GenreKey(genre string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(genre)), " ", "_")
}

// textAnalyzer lowercases without dropping stop words, so every query term
// can be required.
const textAnalyzer = "song_text"

func newMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()
	err := m.AddCustomAnalyzer(textAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}
	m.DefaultAnalyzer = textAnalyzer

	text := bleve.NewTextFieldMapping()
	text.Analyzer = textAnalyzer

	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keyword.Name

	sortKey := bleve.NewTextFieldMapping()
	sortKey.Analyzer = keyword.Name
	sortKey.IncludeInAll = false

	released := bleve.NewDateTimeFieldMapping()
	released.IncludeInAll = false

	weeks := bleve.NewNumericFieldMapping()
	weeks.IncludeInAll = false

	song := bleve.NewDocumentMapping()
	song.Dynamic = false
	for _, name := range []string{"title", "artist", "album", "label", "description", "writers", "producers"} {
		song.AddFieldMappingsAt(name, text)
	}
	song.AddFieldMappingsAt("genre", kw)
	song.AddFieldMappingsAt("decade", kw)
	song.AddFieldMappingsAt("year", kw)
	song.AddFieldMappingsAt("artist_name", sortKey)
	song.AddFieldMappingsAt("artist_key", sortKey)
	song.AddFieldMappingsAt("title_key", sortKey)
	song.AddFieldMappingsAt("released", released)
	song.AddFieldMappingsAt("weeks_at_top", weeks)

	m.DefaultMapping = song
	return m, nil
}

func document(s catalog.Song) map[string]any {
	genres := make([]string, 0, len(s.Genres))
	for _, g := range s.Genres {
		genres = append(genres, GenreKey(g))
	}

	doc := map[string]any{
		"title":        s.Title,
		"artist":       s.Artist,
		"album":        s.Album,
		"label":        s.Label,
		"description":  s.Description,
		"writers":      s.Writers,
		"producers":    s.Producers,
		"genre":        genres,
		"artist_name":  s.Artist,
		"artist_key":   strings.ToLower(s.Artist),
		"title_key":    strings.ToLower(s.Title),
		"weeks_at_top": float64(s.WeeksAtTop),
	}
	if !s.Released.IsZero() {
		doc["released"] = s.Released
		doc["year"] = strconv.Itoa(s.Year())
		doc["decade"] = s.Decade()
	}
	return doc
}

// textQuery builds the bleve query for the non-directive part of q. Every
// term must match, so facet links narrow the results.
func textQuery(q string) bquery.Query {
	text := query.StripDirectives(q)
	if text == "" {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewQueryStringQuery(requireAll(text))
}

// requireAll marks each whitespace separated term of a query string as
// required. Quoted phrases stay one term and explicit +/- prefixes are kept.
func requireAll(text string) string {
	var terms []string
	var cur strings.Builder
	quoted := false
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		term := cur.String()
		if term[0] != '+' && term[0] != '-' {
			term = "+" + term
		}
		terms = append(terms, term)
		cur.Reset()
	}
	for _, r := range text {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return strings.Join(terms, " ")
}

// sortOrder maps a sort value to bleve sort keys. Unknown values sort by
// relevance.
func sortOrder(v query.SortValue) []string {
	switch v {
	case query.SortNewest:
		return []string{"-released", "title_key"}
	case query.SortOldest:
		return []string{"released", "title_key"}
	case query.SortArtist:
		return []string{"artist_key", "title_key"}
	case query.SortTitle:
		return []string{"title_key", "artist_key"}
	}
	return []string{"-_score", "_id"}
}

func facetLabel(name, term string) string {
	if name == FacetGenre {
		return cases.Title(language.English).String(strings.ReplaceAll(term, "_", " "))
	}
	return term
}

// facetTerm turns an indexed facet term into a query term for the facet field.
func facetTerm(name, term string) string {
	if name == FacetArtist {
		return strconv.Quote(term)
	}
	return term
}
