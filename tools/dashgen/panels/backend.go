package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// BackendCallsRate returns a timeseries panel showing backend API calls per
// second by endpoint.
func BackendCallsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Backend Calls").
		Description("Backend API calls per second by endpoint").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`sum(rate(labcat_api_calls_total{job="labcat"}[5m])) by (endpoint)`,
			"{{endpoint}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// BackendErrorRate returns a timeseries panel showing the share of backend
// calls that failed.
func BackendErrorRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Backend Error %").
		Description("Failed backend API calls as percentage of all calls").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`labcat:api_errors:rate5m / labcat:api_calls:rate5m * 100`,
			"error %", "A",
		)).
		Unit("percent").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(5, 25)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// BackendLatency returns a timeseries panel showing p95 backend latency by
// endpoint.
func BackendLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Backend Latency (p95)").
		Description("95th percentile backend API call duration by endpoint").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(P95("labcat_api_call_duration_seconds", "endpoint"), "{{endpoint}}", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
