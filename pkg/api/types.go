package api

import (
	"time"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/pagination"
	"github.com/rubiojr/topsongs/pkg/query"
	"github.com/rubiojr/topsongs/pkg/search"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SearchResponse struct {
	Query       string                 `json:"query"`
	Rule        string                 `json:"rule"`
	SortOptions []query.SortOption     `json:"sort_options"`
	Songs       []catalog.Song         `json:"songs"`
	Facets      []search.Facet         `json:"facets"`
	Pagination  *pagination.Descriptor `json:"pagination"`
}

type SongResponse struct {
	Song   *catalog.Song  `json:"song"`
	Facets []search.Facet `json:"facets"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
