package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// FavoritesCount returns a stat panel showing the size of the favorites set.
func FavoritesCount() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Favorites").
		Description("Entry ids currently marked as favorites").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`labcat_favorites{job="labcat"}`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// FavoriteToggles returns a timeseries panel showing favorites added and
// removed per hour.
func FavoriteToggles() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Favorite Toggles").
		Description("Favorites added and removed per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(increase(labcat_favorites_toggled_total{job="labcat"}[1h])) by (state)`,
			"{{state}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
