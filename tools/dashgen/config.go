package main

import "errors"

// KnownMetrics is the set of metric names exported by labcat plus recording
// rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"labcat_http_request_duration_seconds": true,
	"labcat_http_requests_total":           true,

	// Health metrics.
	"labcat_healthz_up": true,
	"labcat_readyz_up":  true,

	// Backend API metrics.
	"labcat_api_calls_total":           true,
	"labcat_api_call_duration_seconds": true,

	// Catalog metrics.
	"labcat_catalog_loads_total":           true,
	"labcat_catalog_load_duration_seconds": true,
	"labcat_catalog_entries":               true,
	"labcat_catalog_records_skipped_total": true,
	"labcat_cache_hits_total":              true,
	"labcat_cache_misses_total":            true,
	"labcat_cache_write_errors_total":      true,

	// Search metrics.
	"labcat_search_queries_total":          true,
	"labcat_search_query_duration_seconds": true,
	"labcat_search_superseded_total":       true,
	"labcat_search_index_rebuilds_total":   true,

	// Favorites metrics.
	"labcat_favorites_toggled_total": true,
	"labcat_favorites":               true,

	// Recording rules.
	"labcat:http_requests:rate5m":        true,
	"labcat:http_errors:rate5m":          true,
	"labcat:api_calls:rate5m":            true,
	"labcat:api_errors:rate5m":           true,
	"labcat:catalog_loads_failed:rate5m": true,
	"labcat:catalog_loads_cache:rate5m":  true,
	"labcat:search_queries:rate5m":       true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
