// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/lab-catalog/tools/dashgen/panels"
)

// Overview dashboard identity.
const (
	OverviewUID   = "labcat-overview"
	OverviewTitle = "Lab Catalog Overview"
)

// BuildOverview constructs the labcat overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder(OverviewTitle).
		Uid(OverviewUID).
		Tags([]string{"labcat", "lab-catalog"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.CatalogEntriesStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()).
		WithPanel(panels.RouteRate()))

	// Row 3: Catalog.
	b.WithRow(dashboard.NewRowBuilder("Catalog").
		WithPanel(panels.LoadsByResult()).
		WithPanel(panels.LoadDuration()).
		WithPanel(panels.SkippedRecords()).
		WithPanel(panels.CacheActivity()).
		WithPanel(panels.EntriesBySource()))

	// Row 4: Backend API.
	b.WithRow(dashboard.NewRowBuilder("Backend API").
		WithPanel(panels.BackendCallsRate()).
		WithPanel(panels.BackendErrorRate()).
		WithPanel(panels.BackendLatency()))

	// Row 5: Search.
	b.WithRow(dashboard.NewRowBuilder("Search").
		WithPanel(panels.SearchRate()).
		WithPanel(panels.SearchLatency()).
		WithPanel(panels.IndexRebuilds()))

	// Row 6: Favorites.
	b.WithRow(dashboard.NewRowBuilder("Favorites").
		WithPanel(panels.FavoritesCount()).
		WithPanel(panels.FavoriteToggles()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
