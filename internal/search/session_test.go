package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/lab-catalog/internal/filter"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

func testSnapshot() *domain.CatalogSnapshot {
	return domain.NewSnapshot(catalogEntries(), nil, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
}

func newTestSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	s := NewSession(append([]SessionOption{
		WithSessionLogger(quietLogger()),
		WithIndexOptions(WithIndexLogger(quietLogger())),
	}, opts...)...)
	t.Cleanup(s.Close)
	s.OnSnapshot(testSnapshot())
	return s
}

func TestSession_DebounceRunsOnlyFinalQuery(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, WithDebounce(30*time.Millisecond))

	var (
		mu    sync.Mutex
		views []View
	)
	s.Subscribe(func(v View) {
		mu.Lock()
		defer mu.Unlock()
		views = append(views, v)
	})

	s.SetQuery("par")
	s.SetQuery("para")
	s.SetQuery("parac")
	assert.Equal(t, "parac", s.View().Query)
	assert.Empty(t, s.View().DebouncedQuery, "nothing dispatched yet")

	require.Eventually(t, func() bool {
		return s.View().DebouncedQuery == "parac"
	}, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, views, 1)
	assert.Equal(t, "parac", views[0].DebouncedQuery)
	assert.Equal(t, uint64(3), views[0].Generation)
	require.NotEmpty(t, views[0].Results)
	assert.Equal(t, "test-3", views[0].Results[0].Entry.ID)
}

func TestSession_SupersededDispatchDiscarded(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, WithDebounce(time.Hour))

	oldGen := s.SetQuery("glucosa")
	s.SetQuery("perfil")

	// The dispatch for the older generation completes late.
	s.dispatch("glucosa", oldGen)
	assert.Empty(t, s.View().DebouncedQuery)

	s.Flush()
	v := s.View()
	assert.Equal(t, "perfil", v.DebouncedQuery)
	assert.ElementsMatch(t, []string{"bundle-1", "bundle-2"}, resultIDs(v.Results))
}

func TestSession_SearchAndFilters(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	v := s.Search("perfil")
	assert.ElementsMatch(t, []string{"bundle-1", "bundle-2"}, resultIDs(v.Results))

	require.NoError(t, s.SetFilter(filter.KeyPrice, "0-500"))
	v = s.View()
	assert.Equal(t, []string{"bundle-2"}, resultIDs(v.Results))
	assert.Equal(t, []filter.KV{{Key: filter.KeyPrice, Value: "0-500"}}, v.Active)
	assert.Equal(t, 1, s.Stats().ActiveFilters)

	require.NoError(t, s.RemoveFilter(filter.KeyPrice))
	assert.ElementsMatch(t, []string{"bundle-1", "bundle-2"}, resultIDs(s.View().Results))

	require.ErrorIs(t, s.SetFilter("color", "red"), filter.ErrUnknownKey)
}

func TestSession_FilterOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	a := newTestSession(t)
	a.Search("")
	require.NoError(t, a.SetFilter(filter.KeyPrice, "0-500"))
	require.NoError(t, a.SetFilter(filter.KeyCategory, string(domain.StudyIndividualTest)))

	b := newTestSession(t)
	b.Search("")
	require.NoError(t, b.SetFilter(filter.KeyCategory, string(domain.StudyIndividualTest)))
	require.NoError(t, b.SetFilter(filter.KeyPrice, "0-500"))

	assert.Equal(t, resultIDs(a.View().Results), resultIDs(b.View().Results))
	assert.Equal(t, []string{"test-1", "test-2"}, resultIDs(a.View().Results))
}

func TestSession_PriceFilterOnEmptyQuery(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SetFilters(filter.Filters{PriceRange: "0-500"})

	v := s.View()
	assert.Equal(t, []string{"test-1", "test-2", "bundle-2"}, resultIDs(v.Results))
	for _, r := range v.Results {
		assert.LessOrEqual(t, r.Entry.Price, 500.0)
	}
}

func TestSession_History(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, WithHistorySize(2))

	s.Search("parac")
	s.Search("g")
	s.Search("glucosa")
	s.Search("parac")
	assert.Equal(t, []string{"parac", "glucosa"}, s.History())

	s.Search("perfil")
	assert.Equal(t, []string{"perfil", "parac"}, s.History())
}

func TestSession_OnSnapshotRerunsQuery(t *testing.T) {
	t.Parallel()

	s := NewSession(WithSessionLogger(quietLogger()))
	t.Cleanup(s.Close)

	v := s.Search("glucosa")
	assert.Empty(t, v.Results)
	assert.Zero(t, v.TotalEntries)

	s.OnSnapshot(testSnapshot())
	v = s.View()
	assert.Equal(t, []string{"test-2"}, resultIDs(v.Results))
	assert.Equal(t, 5, v.TotalEntries)
	assert.Equal(t, 5, s.Index().Len())
}

func TestSession_ClearResetsQueryAndFilters(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.Search("perfil")
	require.NoError(t, s.SetFilter(filter.KeyArea, "Hematología"))

	s.Clear()
	v := s.View()
	assert.Empty(t, v.Query)
	assert.Empty(t, v.Active)
	assert.Len(t, v.Results, 5)

	st := s.Stats()
	assert.Equal(t, SessionStats{TotalResults: 5, TotalEntries: 5, ActiveFilters: 0}, st)
}

func TestSession_Suggestions(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, WithSuggestionLimit(1))
	v := s.Search("prfl")
	require.Len(t, v.Suggestions, 1)
	assert.Contains(t, v.Suggestions[0].Name, "Perfil")
}

func TestQuery_Stateless(t *testing.T) {
	t.Parallel()

	ix := NewIndex(catalogEntries(), WithIndexLogger(quietLogger()))
	got := Query(ix, "perfil", filter.Filters{PriceRange: "1000+"})
	assert.Equal(t, []string{"bundle-1"}, resultIDs(got))
}
