package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/search"
	"github.com/rubiojr/topsongs/pkg/version"
)

// HandleSearch answers with the same page the HTML front end renders, for
// the same form parameters.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	in := search.ParseRawInput(r.URL.Query())

	page, err := s.service.Search(r.Context(), in)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Invalid query", err.Error())
		return
	}
	if page.Err != nil {
		s.writeError(w, http.StatusInternalServerError, "Search failed", page.Err.Error())
		return
	}

	response := SearchResponse{
		Query:       page.Query,
		Rule:        page.Rule,
		SortOptions: page.SortOptions,
		Songs:       page.Results.Songs,
		Facets:      page.Results.Facets,
		Pagination:  page.Pagination,
	}
	if response.Songs == nil {
		response.Songs = []catalog.Song{}
	}
	if response.Facets == nil {
		response.Facets = []search.Facet{}
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleSong(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		s.writeError(w, http.StatusBadRequest, "Missing uri parameter", "Query parameter 'uri' is required")
		return
	}

	page, err := s.service.Detail(r.Context(), uri)
	if errors.Is(err, catalog.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Song not found", fmt.Sprintf("Song '%s' does not exist", uri))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to load song", err.Error())
		return
	}

	response := SongResponse{Song: page.Song, Facets: page.Facets}
	if response.Facets == nil {
		response.Facets = []search.Facet{}
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
