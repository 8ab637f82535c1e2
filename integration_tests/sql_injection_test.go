package integration_tests

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/search"
)

func TestSQLInjectionProtectionIntegration(t *testing.T) {
	_, cfg := CreateTestConfig(t, t.TempDir(), 10)
	store := OpenImportedCatalog(t, cfg)
	service, _, _ := NewTestService(t, cfg, store)
	ctx := context.Background()

	attempts := []string{
		"'; DROP TABLE songs; --",
		"' UNION SELECT * FROM sqlite_master; --",
		"/songs/1' OR '1'='1",
		"\"; DELETE FROM images; --",
	}

	for _, attempt := range attempts {
		t.Run(attempt, func(t *testing.T) {
			if _, err := store.Get(ctx, attempt); !errors.Is(err, catalog.ErrNotFound) {
				t.Errorf("Get(%q) = %v, want ErrNotFound", attempt, err)
			}
			if _, err := service.Detail(ctx, attempt); !errors.Is(err, catalog.ErrNotFound) {
				t.Errorf("Detail(%q) = %v, want ErrNotFound", attempt, err)
			}

			// Query syntax errors surface as a degraded page, never as SQL
			page, err := service.Search(ctx, search.ParseRawInput(url.Values{
				"q":         {attempt},
				"submitbtn": {"search"},
			}))
			if err != nil {
				t.Fatalf("Search(%q) returned %v", attempt, err)
			}
			if page.Results != nil && page.Results.Total == 5 {
				t.Errorf("Search(%q) matched the whole catalog", attempt)
			}
		})
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected the catalog to keep 5 songs, got %d", count)
	}
}

func TestInjectionPayloadStoredVerbatim(t *testing.T) {
	_, cfg := CreateTestConfig(t, t.TempDir(), 10)
	store := OpenImportedCatalog(t, cfg)
	ctx := context.Background()

	payload := catalog.Song{
		URI:    "/songs/bobby-tables",
		Title:  "Robert'); DROP TABLE songs;--",
		Artist: "Little Bobby Tables",
	}
	if err := store.Put(ctx, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, payload.URI)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != payload.Title {
		t.Errorf("Title = %q, want %q", got.Title, payload.Title)
	}
	if count, _ := store.Count(ctx); count != 6 {
		t.Errorf("Expected 6 songs, got %d", count)
	}
}
