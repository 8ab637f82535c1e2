package integration_tests

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/config"
	"github.com/rubiojr/topsongs/pkg/search"
)

// chartFixture is a small import file covering three decades and two genres.
const chartFixture = `[
  {"uri": "/songs/endless-love", "title": "Endless Love", "artist": "Diana Ross & Lionel Richie",
   "genres": ["Pop", "Soul"], "released": "1981-08-15", "weeks_at_top": 9},
  {"uri": "/songs/whole-lotta-love", "title": "Whole Lotta Love", "artist": "Led Zeppelin",
   "genres": ["Rock"], "released": "1969-11-07"},
  {"uri": "/songs/billie-jean", "title": "Billie Jean", "artist": "Michael Jackson",
   "genres": ["Pop"], "released": "1983-01-02", "weeks_at_top": 7},
  {"uri": "/songs/like-a-prayer", "title": "Like a Prayer", "artist": "Madonna",
   "genres": ["Pop"], "released": "1989-03-03", "weeks_at_top": 3},
  {"uri": "/songs/teen-spirit", "title": "Smells Like Teen Spirit", "artist": "Nirvana",
   "genres": ["Rock"], "released": "1991-09-10"}
]`

// CreateTestConfig writes a config file pointing the catalog at tempDir and
// returns its path.
func CreateTestConfig(t *testing.T, tempDir string, pageLength int) (string, *config.Config) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", tempDir)
	cfg, err := config.GetDefaultConfig()
	if err != nil {
		t.Fatalf("Failed to get default config: %v", err)
	}
	cfg.StorageDir = tempDir
	cfg.Web.PageLength = pageLength

	configPath := filepath.Join(tempDir, "config.toml")
	if err := cfg.SaveConfig(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	return configPath, cfg
}

// WriteSongsFile writes content as an import file under dir.
func WriteSongsFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// OpenImportedCatalog opens the configured catalog and imports the chart
// fixture into it.
func OpenImportedCatalog(t *testing.T, cfg *config.Config) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		t.Fatalf("Failed to open catalog: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	path := WriteSongsFile(t, cfg.StorageDir, "chart.json", chartFixture)
	result, err := catalog.ImportFile(context.Background(), store, path)
	if err != nil {
		t.Fatalf("Failed to import fixture: %v", err)
	}
	if result.Songs != 5 {
		t.Fatalf("Expected 5 imported songs, got %d", result.Songs)
	}
	return store
}

// NewTestService builds the same backend stack the web command uses.
func NewTestService(t *testing.T, cfg *config.Config, store *catalog.Store) (*search.Service, *search.Index, *search.CachedBackend) {
	t.Helper()
	ix, err := search.NewIndex(context.Background(), store, cfg.Web.PageLength)
	if err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	cached, err := search.NewCachedBackend(ix, cfg.Web.CacheSize)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return search.NewService(cached), ix, cached
}

// Submit runs a search the way the browser form would send it.
func Submit(t *testing.T, service *search.Service, values url.Values) *search.Page {
	t.Helper()
	page, err := service.Search(context.Background(), search.ParseRawInput(values))
	if err != nil {
		t.Fatalf("Search(%v) failed: %v", values, err)
	}
	if page.Err != nil {
		t.Fatalf("Search(%v) backend error: %v", values, page.Err)
	}
	return page
}

// URIs lists the song uris of a results page.
func URIs(page *search.Page) []string {
	var out []string
	for _, s := range page.Results.Songs {
		out = append(out, s.URI)
	}
	return out
}

// SelectedSort returns the sort option marked as selected, or "".
func SelectedSort(page *search.Page) string {
	for _, opt := range page.SortOptions {
		if opt.Selected {
			return string(opt.Value)
		}
	}
	return ""
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
