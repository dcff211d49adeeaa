// Package domain defines the core catalog types shared by the loader,
// search index, filter engine, and favorites store.
package domain

import (
	"strings"
	"time"
)

// SourceType identifies which backend collection an entry came from.
type SourceType string

// Source type constants.
const (
	SourceTest   SourceType = "test"
	SourceBundle SourceType = "bundle"
)

// StudyType is the display label for the kind of study.
type StudyType string

// Study type constants.
const (
	StudyIndividualTest StudyType = "Individual Test"
	StudyBundle         StudyType = "Bundle/Profile"
)

// StudyTypes lists every study type label in display order.
var StudyTypes = []StudyType{StudyIndividualTest, StudyBundle}

// Tree group labels.
const (
	TreeIndividualTests = "Individual Tests"
	TreeBundles         = "Bundles/Profiles"
)

// CatalogEntry is the normalized, searchable form of a test or bundle.
type CatalogEntry struct {
	ID          string     `json:"id"`
	Code        string     `json:"code,omitempty"`
	Name        string     `json:"name"`
	StudyType   StudyType  `json:"study_type"`
	Level1      string     `json:"level1,omitempty"`
	Level2      string     `json:"level2,omitempty"`
	Level3      string     `json:"level3,omitempty"`
	Price       float64    `json:"price"`
	Description string     `json:"description,omitempty"`
	SearchText  string     `json:"search_text"`
	SourceType  SourceType `json:"source_type"`
	Area        string     `json:"area,omitempty"`
	SampleType  string     `json:"sample_type,omitempty"`
	BundleSize  int        `json:"bundle_size,omitempty"`

	DeliveryTime string `json:"delivery_time,omitempty"`
	Preparation  string `json:"preparation,omitempty"`
}

// BuildSearchText returns the lowercase search blob for the given fields.
// Empty fields contribute an empty string.
func BuildSearchText(name, code, description string) string {
	return strings.ToLower(name + " " + code + " " + description)
}

// RefreshSearchText recomputes SearchText from Name, Code, and Description.
func (e *CatalogEntry) RefreshSearchText() {
	e.SearchText = BuildSearchText(e.Name, e.Code, e.Description)
}

// Hierarchy returns the non-empty hierarchy levels in order.
func (e *CatalogEntry) Hierarchy() []string {
	levels := make([]string, 0, 3)
	for _, l := range []string{e.Level1, e.Level2, e.Level3} {
		if l != "" {
			levels = append(levels, l)
		}
	}
	return levels
}

// CategoryLevel names the entry field a category filter compares against.
type CategoryLevel string

// Category levels.
const (
	LevelStudyType  CategoryLevel = "studyType"
	LevelLevel1     CategoryLevel = "level1"
	LevelLevel2     CategoryLevel = "level2"
	LevelSourceType CategoryLevel = "sourceType"
)

// CategoryLevels lists every supported level.
var CategoryLevels = []CategoryLevel{LevelStudyType, LevelLevel1, LevelLevel2, LevelSourceType}

// Valid reports whether l is a known level.
func (l CategoryLevel) Valid() bool {
	switch l {
	case LevelStudyType, LevelLevel1, LevelLevel2, LevelSourceType:
		return true
	}
	return false
}

// CategoryValue returns the entry's label at the given level. An unknown
// level yields "".
func (e *CatalogEntry) CategoryValue(level CategoryLevel) string {
	switch level {
	case LevelStudyType:
		return string(e.StudyType)
	case LevelLevel1:
		return e.Level1
	case LevelLevel2:
		return e.Level2
	case LevelSourceType:
		return string(e.SourceType)
	default:
		return ""
	}
}

// Area is a laboratory department as reported by the backend.
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogSnapshot is one complete, immutable load of the catalog.
type CatalogSnapshot struct {
	Entries      []CatalogEntry `json:"entries"`
	Areas        []Area         `json:"areas"`
	TotalTests   int            `json:"total_tests"`
	TotalBundles int            `json:"total_bundles"`
	TotalEntries int            `json:"total_entries"`
	LoadedAt     time.Time      `json:"loaded_at"`
}

// NewSnapshot assembles a snapshot and derives its totals from entries.
func NewSnapshot(entries []CatalogEntry, areas []Area, loadedAt time.Time) *CatalogSnapshot {
	s := &CatalogSnapshot{
		Entries:  entries,
		Areas:    areas,
		LoadedAt: loadedAt,
	}
	for i := range entries {
		switch entries[i].SourceType {
		case SourceTest:
			s.TotalTests++
		case SourceBundle:
			s.TotalBundles++
		}
	}
	s.TotalEntries = len(entries)
	return s
}

// Lookup returns the entry with the given id, or nil.
func (s *CatalogSnapshot) Lookup(id string) *CatalogEntry {
	if s == nil {
		return nil
	}
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			return &s.Entries[i]
		}
	}
	return nil
}

// IDs returns every entry id in snapshot order.
func (s *CatalogSnapshot) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.Entries))
	for i := range s.Entries {
		ids[i] = s.Entries[i].ID
	}
	return ids
}

// CachedSnapshot is the persisted fallback copy of the last good snapshot.
type CachedSnapshot struct {
	Snapshot  *CatalogSnapshot `json:"data"`
	Timestamp int64            `json:"timestamp"` // epoch millis
}

// Age returns how long ago the snapshot was cached.
func (c *CachedSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(c.Timestamp))
}

// Categories holds the unique category labels of a snapshot.
type Categories struct {
	StudyTypes []StudyType `json:"study_types"`
	Level1     []string    `json:"level1"`
	Level2     []string    `json:"level2"`
	Areas      []string    `json:"areas"`
}

// CatalogStats summarizes a snapshot.
type CatalogStats struct {
	TotalEntries   int     `json:"total_entries"`
	TotalTests     int     `json:"total_tests"`
	TotalBundles   int     `json:"total_bundles"`
	EntriesPriced  int     `json:"entries_priced"`
	AveragePrice   float64 `json:"average_price"`
	StudyTypeCount int     `json:"study_type_count"`
}

// FavoriteStats summarizes the favorites set against a snapshot.
type FavoriteStats struct {
	Total       int               `json:"total"`
	Resolved    int               `json:"resolved"`
	Unresolved  int               `json:"unresolved"`
	ByStudyType map[StudyType]int `json:"by_study_type"`
}
