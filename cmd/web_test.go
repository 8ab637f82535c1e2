package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/config"
	"github.com/rubiojr/topsongs/pkg/realtime"
	"github.com/rubiojr/topsongs/pkg/search"
)

func setupTestWebServer(t *testing.T) http.Handler {
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
	if err := store.PutImage(ctx, "/songs/2", "image/jpeg", []byte("jpeg-bytes")); err != nil {
		t.Fatalf("Failed to store image: %v", err)
	}

	ix, err := search.NewIndex(ctx, store, 2)
	if err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	ws, err := NewWebServer(&config.Config{}, search.NewService(ix), realtime.NewHub(4))
	if err != nil {
		t.Fatalf("Failed to create web server: %v", err)
	}
	return ws.Handler()
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestWebHomeRedirect(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/")
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status %d, got %d", http.StatusFound, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/search" {
		t.Errorf("Expected redirect to /search, got %q", loc)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("Expected an X-Request-Id header")
	}
}

func TestWebSearchDefault(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/search")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected HTML content type, got %s", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		`value="sort:newest"`,
		`<option value="newest" selected>`,
		"Like a Prayer",
		"Billie Jean",
		"Showing 1 to 2 of 3 songs",
		"start=3",
		"submitbtn=page",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
	if strings.Contains(body, "Whale Song") {
		t.Error("Whale Song belongs on the second page")
	}
}

func TestWebSearchSortChange(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/search?"+url.Values{"q": {"sort:newest"}, "sortby": {"title"}}.Encode())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}

	body := w.Body.String()
	if !strings.Contains(body, `<option value="title" selected>`) {
		t.Error("Expected the title option to be selected")
	}
	if !strings.Contains(body, `value="sort:title`) {
		t.Error("Expected the directive to be replaced in the search box")
	}
	if strings.Index(body, "Billie Jean") > strings.Index(body, "Like a Prayer") {
		t.Error("Expected songs sorted by title")
	}
	if strings.Contains(body, "Whale Song") {
		t.Error("Whale Song belongs on the second page")
	}
}

func TestWebSearchPagination(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/search?"+url.Values{
		"q":         {"sort:newest"},
		"submitbtn": {"page"},
		"start":     {"3"},
	}.Encode())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Whale Song") {
		t.Error("Expected Whale Song on the second page")
	}
	if !strings.Contains(body, "Showing 3 to 3 of 3 songs") {
		t.Error("Expected the second page summary")
	}
	if !strings.Contains(body, "submitbtn=pagemin") {
		t.Error("Expected a previous page link")
	}
}

func TestWebSearchMissingDirective(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/search?q=whale")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.TrimSpace(body) != "Search failed" {
		t.Errorf("Expected a fixed error message, got %q", body)
	}
	if strings.Contains(body, "directive") || strings.Contains(body, "whale") {
		t.Errorf("Internal error details leaked to the client: %q", body)
	}
}

func TestWebSearchHugeStart(t *testing.T) {
	h := setupTestWebServer(t)
	params := url.Values{
		"q":         {"sort:newest"},
		"submitbtn": {"page"},
		"start":     {"9223372036854775807"},
	}.Encode()

	w := doGet(t, h, "/search?"+params)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	if strings.Contains(w.Body.String(), "Next &raquo;") {
		t.Error("A page past the end must not link a next page")
	}

	if w := doGet(t, h, "/api/search?"+params); w.Code != http.StatusOK {
		t.Errorf("Expected API status 200, got %d: %s", w.Code, w.Body)
	}
}

func TestWebDetail(t *testing.T) {
	h := setupTestWebServer(t)

	tests := []struct {
		name   string
		target string
		status int
		want   string
	}{
		{"found", "/search/detail?uri=/songs/3", http.StatusOK, "Billie Jean"},
		{"unknown uri", "/search/detail?uri=/songs/99", http.StatusNotFound, ""},
		{"missing uri", "/search/detail", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(t, h, tt.target)
			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, w.Code)
			}
			if tt.want != "" && !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("Expected body to contain %q", tt.want)
			}
		})
	}
}

func TestWebImage(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/search/image?uri=/songs/2")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", ct)
	}
	data, _ := io.ReadAll(w.Body)
	if string(data) != "jpeg-bytes" {
		t.Errorf("Unexpected image body %q", data)
	}

	if w := doGet(t, h, "/search/image?uri=/songs/1"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a song without image, got %d", w.Code)
	}
}

func TestWebAdvanced(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/search/advanced")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	for _, want := range []string{`<option value="pop">Pop</option>`, `<option value="1980s">1980s</option>`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("Expected the advanced form to offer %s", want)
		}
	}
}

func TestWebAdvancedRunRedirect(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/search/advanced/run?"+url.Values{
		"artist": {"Madonna"},
		"genre":  {"Pop"},
	}.Encode())
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status %d, got %d", http.StatusFound, w.Code)
	}

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Invalid Location header: %v", err)
	}
	if loc.Path != "/search" {
		t.Errorf("Expected redirect to /search, got %s", loc.Path)
	}
	if q := loc.Query().Get("q"); q != `artist:"Madonna" genre:pop` {
		t.Errorf("Unexpected query %q", q)
	}
	if b := loc.Query().Get("submitbtn"); b != "search" {
		t.Errorf("Expected submitbtn=search, got %q", b)
	}
}

func TestWebBirthday(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/search/bday?bday=1983-05-01")
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status %d, got %d", http.StatusFound, w.Code)
	}
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Invalid Location header: %v", err)
	}
	if q := loc.Query().Get("q"); q != "year:1983 sort:newest" {
		t.Errorf("Unexpected query %q", q)
	}

	w = doGet(t, h, loc.String())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Billie Jean") || strings.Contains(body, "Like a Prayer") {
		t.Error("Expected only the 1983 song")
	}

	if w := doGet(t, h, "/search/bday?bday=yesterday"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid birthday, got %d", w.Code)
	}
}

func TestWebStaticAndMetrics(t *testing.T) {
	h := setupTestWebServer(t)

	w := doGet(t, h, "/static/style.css")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/css" {
		t.Errorf("Expected text/css, got %s", ct)
	}
	if w := doGet(t, h, "/static/missing.js"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	doGet(t, h, "/search")
	w = doGet(t, h, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	for _, want := range []string{"topsongs_searches_total", "topsongs_indexed_songs"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("Expected metrics to contain %s", want)
		}
	}
}

func TestWebAPIRoutes(t *testing.T) {
	h := setupTestWebServer(t)

	for _, target := range []string{"/api/search", "/api/song?uri=/songs/1", "/health"} {
		if w := doGet(t, h, target); w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", target, w.Code)
		}
	}
}

func TestWebGzip(t *testing.T) {
	h := setupTestWebServer(t)

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if enc := w.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Errorf("Expected gzip encoding, got %q", enc)
	}
}

func TestFormatSearchError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "took too long"},
		{fmt.Errorf("wrapped: %w", context.Canceled), "took too long"},
		{search.ErrIndexClosed, "being rebuilt"},
		{errors.New("parse error: unexpected token"), "Invalid search syntax"},
		{errors.New("database is locked"), "temporarily busy"},
		{errors.New("boom"), "unexpected error"},
	}

	for _, tt := range tests {
		if got := formatSearchError(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("formatSearchError(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}
