package search

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rubiojr/topsongs/pkg/catalog"
)

type searchCall struct {
	query      string
	start      int
	facetsOnly bool
}

// fakeBackend records the searches it receives and answers with a fixed total.
type fakeBackend struct {
	calls      []searchCall
	total      int
	pageLength int
	err        error
	songs      map[string]*catalog.Song
	facets     []Facet
}

func (f *fakeBackend) Search(ctx context.Context, q string, start int, facetsOnly bool) (*Results, error) {
	f.calls = append(f.calls, searchCall{query: q, start: start, facetsOnly: facetsOnly})
	if f.err != nil {
		return nil, f.err
	}
	pageLength := f.pageLength
	if pageLength == 0 {
		pageLength = 10
	}
	return &Results{Total: f.total, PageLength: pageLength, Start: start, Facets: f.facets}, nil
}

func (f *fakeBackend) Song(ctx context.Context, uri string) (*catalog.Song, error) {
	if s, ok := f.songs[uri]; ok {
		return s, nil
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeBackend) Image(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	if _, ok := f.songs[uri]; ok {
		return io.NopCloser(strings.NewReader("img")), "image/png", nil
	}
	return nil, "", catalog.ErrNotFound
}

func (f *fakeBackend) Close() error { return nil }

var errBackendDown = errors.New("backend down")
