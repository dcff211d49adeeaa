package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/bargauge"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// LoadsByResult returns a bar gauge panel showing catalog loads over the
// last day split by result (fresh, cache, failed, superseded).
func LoadsByResult() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Loads by Result (24h)").
		Description("Catalog loads in the last 24 hours by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`sum(increase(labcat_catalog_loads_total{job="labcat"}[24h])) by (result)`,
			"{{result}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic())
}

// LoadDuration returns a timeseries panel showing the p95 catalog load
// duration.
func LoadDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Load Duration (p95)").
		Description("95th percentile time to fetch and normalize the catalog").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(P95("labcat_catalog_load_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SkippedRecords returns a timeseries panel showing raw records dropped
// during normalization, by reason.
func SkippedRecords() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Skipped Records").
		Description("Raw records dropped during normalization per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`sum(increase(labcat_catalog_records_skipped_total{job="labcat"}[1h])) by (reason)`,
			"{{reason}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("max")).
		Thresholds(ThresholdsGreenYellowRed(1, 50)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CacheActivity returns a timeseries panel showing fallback cache hits,
// misses, and write errors.
func CacheActivity() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Snapshot Cache").
		Description("Fallback reads served from cache, misses, and failed writes per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`increase(labcat_cache_hits_total{job="labcat"}[1h])`, "hits", "A")).
		WithTarget(PromQuery(`increase(labcat_cache_misses_total{job="labcat"}[1h])`, "misses", "B")).
		WithTarget(PromQuery(`increase(labcat_cache_write_errors_total{job="labcat"}[1h])`, "write errors", "C")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// EntriesBySource returns a timeseries panel tracking snapshot size per
// source type over time.
func EntriesBySource() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Entries by Source").
		Description("Published snapshot entries split into tests and bundles").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`labcat_catalog_entries{job="labcat"}`, "{{source}}", "A")).
		FillOpacity(20).
		LineWidth(1).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
