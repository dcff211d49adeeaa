package labapi

import (
	"math"

	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// ID prefixes keep test and bundle ids apart within one snapshot.
const (
	testIDPrefix   = "test-"
	bundleIDPrefix = "bundle-"
)

// Fallback level1 labels when a record has no area.
const (
	UncategorizedLabel = "Uncategorized"
	ProfilesLabel      = "Profiles"
)

// TestToEntry converts a raw test record into a catalog entry.
func TestToEntry(t *RawTest) domain.CatalogEntry {
	code := firstNonEmpty(t.Nomenclature.String(), t.Code.String())
	area := t.AreaName.String()

	e := domain.CatalogEntry{
		ID:           testIDPrefix + t.ID.String(),
		Code:         code,
		Name:         t.Name.String(),
		StudyType:    domain.StudyIndividualTest,
		Level1:       firstNonEmpty(area, UncategorizedLabel),
		Level2:       t.SampleTypeName.String(),
		Price:        parsePrice(t.ListPrice, t.Price),
		Description:  t.Description.String(),
		SourceType:   domain.SourceTest,
		Area:         area,
		SampleType:   t.SampleTypeName.String(),
		DeliveryTime: t.DeliveryTime.String(),
		Preparation:  t.Preparation.String(),
	}
	e.RefreshSearchText()
	return e
}

// BundleToEntry converts a raw bundle record into a catalog entry.
func BundleToEntry(b *RawBundle) domain.CatalogEntry {
	code := firstNonEmpty(b.BoxCode.String(), b.Code.String())
	area := b.AreaName.String()

	e := domain.CatalogEntry{
		ID:           bundleIDPrefix + b.ID.String(),
		Code:         code,
		Name:         b.Name.String(),
		StudyType:    domain.StudyBundle,
		Level1:       firstNonEmpty(area, ProfilesLabel),
		Price:        parsePrice(b.ListPrice, b.Price),
		Description:  b.Description.String(),
		SourceType:   domain.SourceBundle,
		Area:         area,
		BundleSize:   bundleSize(b.BundleCount),
		DeliveryTime: b.DeliveryTime.String(),
		Preparation:  b.Preparation.String(),
	}
	e.RefreshSearchText()
	return e
}

// bundleSize converts a member count into a non-negative int. Counts past
// math.MaxInt32 are clamped so a corrupt upstream value cannot overflow.
func bundleSize(n FlexNumber) int {
	if !n.Valid || n.Value <= 0 {
		return 0
	}
	return int(math.Min(math.Floor(n.Value), math.MaxInt32))
}

// TestsToEntries converts raw test records into catalog entries.
func TestsToEntries(tests []RawTest) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(tests))
	for i := range tests {
		entries = append(entries, TestToEntry(&tests[i]))
	}
	return entries
}

// BundlesToEntries converts raw bundle records into catalog entries.
func BundlesToEntries(bundles []RawBundle) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(bundles))
	for i := range bundles {
		entries = append(entries, BundleToEntry(&bundles[i]))
	}
	return entries
}

// ToAreas converts raw area records, dropping records without a name.
func ToAreas(raw []RawArea) []domain.Area {
	areas := make([]domain.Area, 0, len(raw))
	for i := range raw {
		name := raw[i].Name.String()
		if name == "" {
			continue
		}
		areas = append(areas, domain.Area{ID: raw[i].ID.String(), Name: name})
	}
	return areas
}

// parsePrice prefers the list price and falls back to the plain price when
// the list price is missing, unparseable, or zero. The result is never
// negative.
func parsePrice(listPrice, price FlexNumber) float64 {
	for _, n := range []FlexNumber{listPrice, price} {
		if n.Valid && n.Value > 0 && !math.IsInf(n.Value, 0) {
			return n.Value
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
