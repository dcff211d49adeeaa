package catalog

import (
	"slices"
	"time"

	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// view bundles a published snapshot with the indexes derived from it.
// Views are immutable once built.
type view struct {
	gen        uint64
	snap       *domain.CatalogSnapshot
	byID       map[string]int
	categories domain.Categories
	tree       map[string][]domain.CatalogEntry
	stats      domain.CatalogStats
}

func newView(gen uint64, snap *domain.CatalogSnapshot) *view {
	v := &view{
		gen:  gen,
		snap: snap,
		byID: make(map[string]int, len(snap.Entries)),
		tree: map[string][]domain.CatalogEntry{
			domain.TreeIndividualTests: {},
			domain.TreeBundles:         {},
		},
	}

	var (
		level1 = map[string]struct{}{}
		level2 = map[string]struct{}{}
		areas  = map[string]struct{}{}
		total  float64
	)
	for i := range snap.Entries {
		e := &snap.Entries[i]
		v.byID[e.ID] = i

		addLabel(level1, e.Level1)
		addLabel(level2, e.Level2)
		addLabel(areas, e.Area)

		switch e.SourceType {
		case domain.SourceTest:
			v.tree[domain.TreeIndividualTests] = append(v.tree[domain.TreeIndividualTests], *e)
		case domain.SourceBundle:
			v.tree[domain.TreeBundles] = append(v.tree[domain.TreeBundles], *e)
		}

		if e.Price > 0 {
			v.stats.EntriesPriced++
			total += e.Price
		}
	}
	for i := range snap.Areas {
		addLabel(areas, snap.Areas[i].Name)
	}

	v.categories = domain.Categories{
		StudyTypes: slices.Clone(domain.StudyTypes),
		Level1:     sortedKeys(level1),
		Level2:     sortedKeys(level2),
		Areas:      sortedKeys(areas),
	}

	v.stats.TotalEntries = snap.TotalEntries
	v.stats.TotalTests = snap.TotalTests
	v.stats.TotalBundles = snap.TotalBundles
	v.stats.StudyTypeCount = len(domain.StudyTypes)
	if v.stats.EntriesPriced > 0 {
		v.stats.AveragePrice = total / float64(v.stats.EntriesPriced)
	}
	return v
}

func addLabel(set map[string]struct{}, label string) {
	if label != "" {
		set[label] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Categories returns the unique category labels of the published snapshot.
func (c *Catalog) Categories() domain.Categories {
	v := c.current.Load()
	if v == nil {
		return domain.Categories{StudyTypes: slices.Clone(domain.StudyTypes)}
	}
	return v.categories
}

// Tree groups the published entries into individual tests and bundles.
func (c *Catalog) Tree() map[string][]domain.CatalogEntry {
	v := c.current.Load()
	if v == nil {
		return map[string][]domain.CatalogEntry{
			domain.TreeIndividualTests: {},
			domain.TreeBundles:         {},
		}
	}
	return v.tree
}

// EntryByID looks up an entry in the published snapshot.
func (c *Catalog) EntryByID(id string) (*domain.CatalogEntry, bool) {
	v := c.current.Load()
	if v == nil {
		return nil, false
	}
	i, ok := v.byID[id]
	if !ok {
		return nil, false
	}
	e := v.snap.Entries[i]
	return &e, true
}

// EntriesByCategory returns the entries whose label at level equals
// category. An empty category or "all" returns every entry; an unknown
// level returns none.
func (c *Catalog) EntriesByCategory(category string, level domain.CategoryLevel) []domain.CatalogEntry {
	v := c.current.Load()
	if v == nil {
		return nil
	}
	if category == "" || category == "all" {
		return slices.Clone(v.snap.Entries)
	}
	if !level.Valid() {
		return nil
	}

	var out []domain.CatalogEntry
	for i := range v.snap.Entries {
		if v.snap.Entries[i].CategoryValue(level) == category {
			out = append(out, v.snap.Entries[i])
		}
	}
	return out
}

// Stats summarizes the published snapshot.
func (c *Catalog) Stats() domain.CatalogStats {
	v := c.current.Load()
	if v == nil {
		return domain.CatalogStats{StudyTypeCount: len(domain.StudyTypes)}
	}
	return v.stats
}

// Status is a point-in-time view of the loader state.
type Status struct {
	Loading    bool      `json:"loading"`
	Ready      bool      `json:"ready"`
	FromCache  bool      `json:"from_cache"`
	Empty      bool      `json:"empty"`
	Error      string    `json:"error,omitempty"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loaded_at,omitzero"`
	CachedAt   time.Time `json:"cached_at,omitzero"`
	Entries    int       `json:"entries"`
}

// Status reports whether a load is running, what is published, and the
// last load error if any.
func (c *Catalog) Status() Status {
	c.mu.Lock()
	st := Status{
		Loading:    c.inflight.Load() > 0,
		FromCache:  c.fromCache,
		Generation: c.publishedGen,
		CachedAt:   c.cachedAt,
	}
	if c.lastErr != nil {
		st.Error = c.lastErr.Error()
	}
	c.mu.Unlock()

	snap := c.Snapshot()
	st.Ready = snap != nil
	st.Empty = snap == nil || snap.TotalEntries == 0
	if snap != nil {
		st.LoadedAt = snap.LoadedAt
		st.Entries = snap.TotalEntries
	}
	return st
}
