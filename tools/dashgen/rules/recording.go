package rules

// RecordingRules returns the pre-computed rates used by the dashboards and
// the alert rules.
func RecordingRules() PrometheusRule {
	return New("labcat-recording-rules",
		Group("labcat-recording",
			Recording("http_requests", `sum(rate(labcat_http_requests_total[5m]))`),
			Recording("http_errors", `sum(rate(labcat_http_requests_total{status=~"5.."}[5m]))`),
			Recording("api_calls", `sum(rate(labcat_api_calls_total[5m]))`),
			Recording("api_errors", `sum(rate(labcat_api_calls_total{outcome="error"}[5m]))`),
			Recording("catalog_loads_failed", `sum(rate(labcat_catalog_loads_total{result="failed"}[5m]))`),
			Recording("catalog_loads_cache", `sum(rate(labcat_catalog_loads_total{result="cache"}[5m]))`),
			Recording("search_queries", `sum(rate(labcat_search_queries_total[5m]))`),
		),
	)
}
