package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SearchRate returns a timeseries panel showing index queries per second and
// the rate of superseded interactive queries.
func SearchRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Search Queries").
		Description("Index queries per second and queries discarded for a newer one").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`labcat:search_queries:rate5m`, "queries/s", "A")).
		WithTarget(PromQuery(`rate(labcat_search_superseded_total{job="labcat"}[5m])`, "superseded/s", "B")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SearchLatency returns a timeseries panel showing p50 and p99 index query
// latency.
func SearchLatency() *timeseries.PanelBuilder {
	const histogram = "labcat_search_query_duration_seconds"
	return timeseries.NewPanelBuilder().
		Title("Search Latency").
		Description("Fuzzy index query duration percentiles").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(Quantile(0.50, histogram), "p50", "A")).
		WithTarget(PromQuery(Quantile(0.99, histogram), "p99", "B")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Thresholds(ThresholdsGreenYellowRed(0.05, 0.25)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// IndexRebuilds returns a stat panel showing index rebuilds in the last day.
func IndexRebuilds() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Index Rebuilds (24h)").
		Description("Search index rebuilds triggered by snapshot publication").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(labcat_search_index_rebuilds_total{job="labcat"}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}
