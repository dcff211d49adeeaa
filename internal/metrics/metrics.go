// Package metrics defines Prometheus metrics for lab-catalog.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "labcat"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Health metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last /readyz probe succeeded (1) or failed (0).",
	})
)

// Backend API metrics.
var (
	APICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_calls_total",
		Help:      "Total backend API calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	APICallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_call_duration_seconds",
		Help:      "Duration of backend API calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// Catalog load metrics.
var (
	CatalogLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_loads_total",
		Help:      "Total catalog loads by result (fresh, cache, failed, superseded).",
	}, []string{"result"})

	CatalogLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_load_duration_seconds",
		Help:      "Duration of catalog loads in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	CatalogEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_entries",
		Help:      "Entries in the published catalog snapshot by source type.",
	}, []string{"source"})

	CatalogRecordsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_records_skipped_total",
		Help:      "Raw records dropped during normalization by reason.",
	}, []string{"reason"})
)

// Cache metrics.
var (
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total fallback reads that found a cached snapshot.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total fallback reads that found no cached snapshot.",
	})

	CacheWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_write_errors_total",
		Help:      "Total failed snapshot cache writes.",
	})
)

// Search metrics.
var (
	SearchQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_queries_total",
		Help:      "Total search index queries executed.",
	})

	SearchQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_query_duration_seconds",
		Help:      "Duration of search index queries in seconds.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})

	SearchSupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_superseded_total",
		Help:      "Total search results discarded because a newer query was issued.",
	})

	SearchIndexRebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_index_rebuilds_total",
		Help:      "Total search index rebuilds.",
	})
)

// Favorites metrics.
var (
	FavoritesToggledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favorites_toggled_total",
		Help:      "Total favorite toggles by resulting state (added, removed).",
	}, []string{"state"})

	FavoritesCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "favorites",
		Help:      "Number of entry ids in the favorites set.",
	})
)
