package search

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rubiojr/topsongs/pkg/metrics"
)

type cacheKey struct {
	query      string
	start      int
	facetsOnly bool
}

// CachedBackend keeps the most recent search results of a Backend. Song and
// image lookups go straight to the wrapped backend.
type CachedBackend struct {
	Backend
	cache *lru.Cache[cacheKey, *Results]
}

// NewCachedBackend wraps backend with an LRU cache holding up to size result pages.
func NewCachedBackend(backend Backend, size int) (*CachedBackend, error) {
	cache, err := lru.New[cacheKey, *Results](size)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &CachedBackend{Backend: backend, cache: cache}, nil
}

func (c *CachedBackend) Search(ctx context.Context, q string, start int, facetsOnly bool) (*Results, error) {
	key := cacheKey{query: q, start: start, facetsOnly: facetsOnly}
	if res, ok := c.cache.Get(key); ok {
		metrics.CacheHits.Inc()
		return res, nil
	}

	res, err := c.Backend.Search(ctx, q, start, facetsOnly)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, res)
	return res, nil
}

// Purge drops every cached page. Call it after the backend is reindexed.
func (c *CachedBackend) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached pages.
func (c *CachedBackend) Len() int {
	return c.cache.Len()
}
