package cmd

import (
	"fmt"
	"os"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/config"
)

// openCatalog opens the configured catalog, creating the storage directory
// when needed.
func openCatalog(cfg *config.Config) (*catalog.Store, error) {
	if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	return store, nil
}
