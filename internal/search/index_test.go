package search

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

func entry(id, name, code string, st domain.StudyType, price float64) domain.CatalogEntry {
	e := domain.CatalogEntry{
		ID:        id,
		Name:      name,
		Code:      code,
		StudyType: st,
		Price:     price,
	}
	if st == domain.StudyBundle {
		e.SourceType = domain.SourceBundle
	} else {
		e.SourceType = domain.SourceTest
	}
	e.RefreshSearchText()
	return e
}

func catalogEntries() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		entry("test-1", "Biometría Hemática", "BH01", domain.StudyIndividualTest, 250),
		entry("test-2", "Glucosa", "GLU", domain.StudyIndividualTest, 80),
		entry("test-3", "Paracetamol en suero", "PCT", domain.StudyIndividualTest, 900),
		entry("bundle-1", "Perfil Tiroideo Completo", "PT3", domain.StudyBundle, 1200),
		entry("bundle-2", "Perfil Lipídico", "PL", domain.StudyBundle, 450),
	}
}

func resultIDs(rs []Result) []string {
	out := make([]string, 0, len(rs))
	for i := range rs {
		out = append(out, rs[i].Entry.ID)
	}
	return out
}

func TestIndex_PrefixRanksFirst(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries())
	results := ix.Search("parac")
	require.NotEmpty(t, results)
	assert.Equal(t, "test-3", results[0].Entry.ID)

	m, ok := results[0].Match(FieldName)
	require.True(t, ok)
	assert.Equal(t, []Span{{Start: 0, End: 5}}, m.Spans)
	assert.Zero(t, m.Score)
}

func TestIndex_ShortQueryReturnsEverything(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries())
	for _, q := range []string{"", " ", "p", "  g  "} {
		results := ix.Search(q)
		require.Len(t, results, 5, "query %q", q)
		for _, r := range results {
			assert.Zero(t, r.Score)
			assert.Empty(t, r.Matches)
		}
		assert.Equal(t, []string{"test-1", "test-2", "test-3", "bundle-1", "bundle-2"}, resultIDs(results))
	}
}

func TestIndex_AccentInsensitiveSpansOnOriginalText(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries())
	results := ix.Search("HEMATICA")
	require.NotEmpty(t, results)
	assert.Equal(t, "test-1", results[0].Entry.ID)

	m, ok := results[0].Match(FieldName)
	require.True(t, ok)
	assert.Equal(t, []Span{{Start: 10, End: 18}}, m.Spans)
	assert.Equal(t, "Hemática", string([]rune(results[0].Entry.Name)[10:18]))
}

func TestIndex_ToleratesTypos(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries())
	results := ix.Search("glucoza")
	require.NotEmpty(t, results)
	assert.Equal(t, "test-2", results[0].Entry.ID)

	m, ok := results[0].Match(FieldName)
	require.True(t, ok)
	assert.InDelta(t, 1.0/7.0, m.Score, 1e-9)
}

func TestIndex_NoMatch(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries())
	assert.Empty(t, ix.Search("zzzzqq"))
}

func TestIndex_ThresholdZeroIsExactOnly(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries(), WithThreshold(0))
	assert.Empty(t, ix.Search("glucoza"))
	assert.Equal(t, []string{"test-2"}, resultIDs(ix.Search("glucosa")))
}

func TestIndex_MultiWordTokens(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries())
	results := ix.Search("tiroideo perfil")
	require.NotEmpty(t, results)
	assert.Equal(t, "bundle-1", results[0].Entry.ID)

	m, ok := results[0].Match(FieldName)
	require.True(t, ok)
	assert.Equal(t, []Span{{Start: 0, End: 6}, {Start: 7, End: 15}}, m.Spans)
}

func TestIndex_NameOutranksCode(t *testing.T) {
	t.Parallel()

	ix := NewIndex([]domain.CatalogEntry{
		entry("test-10", "Zinc", "urea", domain.StudyIndividualTest, 0),
		entry("test-11", "Urea", "UR1", domain.StudyIndividualTest, 0),
	})
	results := ix.Search("urea")
	assert.Equal(t, []string{"test-11", "test-10"}, resultIDs(results))
	assert.Less(t, results[0].Score, results[1].Score)
}

func TestIndex_TiesBreakByNameThenID(t *testing.T) {
	t.Parallel()

	ix := NewIndex([]domain.CatalogEntry{
		entry("test-b", "Urea", "", domain.StudyIndividualTest, 0),
		entry("test-a", "Urea", "", domain.StudyIndividualTest, 0),
	})
	assert.Equal(t, []string{"test-a", "test-b"}, resultIDs(ix.Search("urea")))
}

func TestIndex_StudyTypeField(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries())
	results := ix.Search("bundle/profile")
	assert.ElementsMatch(t, []string{"bundle-1", "bundle-2"}, resultIDs(results))
}

func TestIndex_ZeroWeightFieldIgnored(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	w.Code = 0
	w.SearchText = 0
	ix := NewIndex(catalogEntries(), WithWeights(w))
	assert.Empty(t, ix.Search("pt3"))
}

func TestIndex_LongQueryTruncated(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries())
	q := "glucosa" + strings.Repeat(" x", 200)
	assert.NotPanics(t, func() { _ = ix.Search(q) })
	assert.Equal(t, MaxQueryLength, len([]rune(normalizeQuery(q))))
}

func TestIndex_MemoizedResultsAreIsolated(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries(), WithQueryCacheSize(4))
	first := ix.Search("perfil")
	require.NotEmpty(t, first)
	first[0] = Result{}

	second := ix.Search("perfil")
	assert.NotEmpty(t, second[0].Entry.ID)
	assert.Equal(t, resultIDs(ix.Search("PERFIL")), resultIDs(second))
}

func TestIndex_RecordsQueryLatency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		queries   []string
		wantCount uint64
	}{
		{name: "ranked queries", queries: []string{"glucosa", "perfil"}, wantCount: 2},
		{name: "memoized repeat", queries: []string{"perfil", "PERFIL"}, wantCount: 1},
		{name: "short query skips ranking", queries: []string{"g"}, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reader := sdkmetric.NewManualReader()
			ix := NewIndex(catalogEntries(),
				WithIndexLogger(quietLogger()),
				WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))),
			)
			for _, q := range tt.queries {
				ix.Search(q)
			}

			var rm metricdata.ResourceMetrics
			require.NoError(t, reader.Collect(context.Background(), &rm))

			var got uint64
			for _, sm := range rm.ScopeMetrics {
				for _, m := range sm.Metrics {
					if m.Name != "labcat.search.query.duration" {
						continue
					}
					hist, ok := m.Data.(metricdata.Histogram[float64])
					require.True(t, ok)
					for _, dp := range hist.DataPoints {
						got += dp.Count
					}
				}
			}
			assert.Equal(t, tt.wantCount, got)
		})
	}
}

func TestIndex_DoesNotRetainInput(t *testing.T) {
	t.Parallel()

	in := catalogEntries()
	ix := NewIndex(in)
	in[0].Name = "changed"
	assert.Equal(t, "Biometría Hemática", ix.Entries()[0].Name)
	assert.Equal(t, 5, ix.Len())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
