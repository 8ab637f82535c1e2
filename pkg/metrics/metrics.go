// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Searches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topsongs_searches_total",
		Help: "Searches processed, by the input control that decided the query",
	}, []string{"rule"})

	SearchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topsongs_search_failures_total",
		Help: "Searches whose backend call failed",
	})

	DirectiveConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topsongs_sort_directive_conflicts_total",
		Help: "Effective queries carrying more than one sort directive",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topsongs_search_cache_hits_total",
		Help: "Search results served from the result cache",
	})

	IndexedSongs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "topsongs_indexed_songs",
		Help: "Songs in the search index",
	})
)
