package rules

// AlertRules returns the operational alerts for the lab catalog service.
func AlertRules() PrometheusRule {
	return New("labcat-alerts",
		Group("labcat-alerts",
			Alert("LabcatDown",
				`absent(up{job="labcat"})`, "2m", SeverityCritical,
				"Lab catalog service is down",
				"The labcat job has been absent for more than 2 minutes."),
			Alert("LabcatNotReady",
				`labcat_readyz_up == 0`, "5m", SeverityCritical,
				"Lab catalog has no published snapshot",
				"The readiness probe has reported no loaded catalog for more than 5 minutes."),
			Alert("LabcatHighErrorRate",
				RateName("http_errors")+" / "+RateName("http_requests")+" > 0.05", "5m", SeverityWarning,
				"High HTTP error rate on the lab catalog",
				"More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes."),
			Alert("LabcatBackendErrors",
				RateName("api_errors")+" / "+RateName("api_calls")+" > 0.25", "10m", SeverityWarning,
				"Backend API calls are failing",
				"More than 25% of calls to the laboratory backend have failed for 10 minutes."),
			Alert("LabcatCatalogLoadFailing",
				RateName("catalog_loads_failed")+" > 0", "15m", SeverityWarning,
				"Catalog loads are failing without a cache fallback",
				"Catalog loads have failed with no cached snapshot available for more than 15 minutes."),
			Alert("LabcatServingFromCache",
				RateName("catalog_loads_cache")+" > 0", "1h", SeverityInfo,
				"Catalog is being served from the fallback cache",
				"Every catalog load in the last hour fell back to the cached snapshot."),
			Alert("LabcatCacheWriteErrors",
				`increase(labcat_cache_write_errors_total[30m]) > 0`, "0m", SeverityWarning,
				"Snapshot cache writes are failing",
				"Fresh snapshots could not be persisted; a restart during a backend outage would start empty."),
		),
	)
}
