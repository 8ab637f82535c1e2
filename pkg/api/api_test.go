package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/realtime"
	"github.com/rubiojr/topsongs/pkg/search"
)

func setupTestAPIServer(t *testing.T) *http.ServeMux {
	t.Helper()
	ctx := context.Background()

	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Failed to open catalog: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	songs := []catalog.Song{
		{URI: "/songs/1", Title: "Whale Song", Artist: "The Humpbacks", Genres: []string{"Folk"},
			Released: time.Date(1972, 6, 1, 0, 0, 0, 0, time.UTC)},
		{URI: "/songs/2", Title: "Like a Prayer", Artist: "Madonna", Genres: []string{"Pop"},
			Released: time.Date(1989, 3, 3, 0, 0, 0, 0, time.UTC)},
		{URI: "/songs/3", Title: "Billie Jean", Artist: "Michael Jackson", Genres: []string{"Pop"},
			Released: time.Date(1983, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, s := range songs {
		if err := store.Put(ctx, s); err != nil {
			t.Fatalf("Failed to store %s: %v", s.URI, err)
		}
	}

	ix, err := search.NewIndex(ctx, store, 2)
	if err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	server := NewServer(search.NewService(ix), realtime.NewHub(4))
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	return mux
}

func get(t *testing.T, mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestAPISearch(t *testing.T) {
	mux := setupTestAPIServer(t)

	w := get(t, mux, "/api/search")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	var resp SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Query != "sort:newest" || resp.Rule != "default" {
		t.Errorf("Unexpected query %q rule %q", resp.Query, resp.Rule)
	}
	if len(resp.Songs) != 2 || resp.Songs[0].URI != "/songs/2" {
		t.Errorf("Unexpected songs %+v", resp.Songs)
	}
	if resp.Pagination == nil || resp.Pagination.Total != 3 || resp.Pagination.NextStart != 3 {
		t.Errorf("Unexpected pagination %+v", resp.Pagination)
	}
	if len(resp.Facets) == 0 {
		t.Error("Expected facets")
	}
}

func TestAPISearchSortSelection(t *testing.T) {
	mux := setupTestAPIServer(t)

	params := url.Values{"q": {"pop sort:newest"}, "sortby": {"title"}}
	w := get(t, mux, "/api/search?"+params.Encode())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}

	var resp SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Query != "pop sort:title " {
		t.Errorf("Unexpected query %q", resp.Query)
	}
	selected := 0
	for _, o := range resp.SortOptions {
		if o.Selected {
			selected++
			if o.Value != "title" {
				t.Errorf("Unexpected selected option %+v", o)
			}
		}
	}
	if selected != 1 {
		t.Errorf("Expected exactly one selected option, got %d", selected)
	}
	if len(resp.Songs) != 2 || resp.Songs[0].URI != "/songs/3" {
		t.Errorf("Unexpected songs %+v", resp.Songs)
	}
}

func TestAPISearchMissingDirective(t *testing.T) {
	mux := setupTestAPIServer(t)

	w := get(t, mux, "/api/search?q=whale")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestAPISong(t *testing.T) {
	mux := setupTestAPIServer(t)

	w := get(t, mux, "/api/song?uri=%2Fsongs%2F1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var resp SongResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Song == nil || resp.Song.Title != "Whale Song" {
		t.Errorf("Unexpected song %+v", resp.Song)
	}

	if w := get(t, mux, "/api/song?uri=%2Fsongs%2F9"); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if w := get(t, mux, "/api/song"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestAPIHealth(t *testing.T) {
	mux := setupTestAPIServer(t)

	w := get(t, mux, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}
}

func TestAPIMethodNotAllowed(t *testing.T) {
	mux := setupTestAPIServer(t)

	testCases := []struct {
		method   string
		endpoint string
	}{
		{"POST", "/api/search"},
		{"PUT", "/api/search"},
		{"DELETE", "/api/search"},
		{"POST", "/api/song"},
		{"POST", "/health"},
		{"DELETE", "/health"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+"_"+tc.endpoint, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.endpoint, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected status 405 for %s %s, got %d", tc.method, tc.endpoint, w.Code)
			}
		})
	}
}

func TestCorsMiddleware(t *testing.T) {
	handler := CorsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("OPTIONS", "/api/search", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected preflight status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Missing Access-Control-Allow-Origin header")
	}

	req = httptest.NewRequest("GET", "/api/search", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected request to reach the handler, got %d", w.Code)
	}
}
