package labapi_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/lab-catalog/internal/labapi"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

func TestTestToEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  labapi.RawTest
		want domain.CatalogEntry
	}{
		{
			name: "complete record converts all fields",
			raw: labapi.RawTest{
				ID:             "12",
				Name:           "Biometría Hemática",
				Code:           "BH-OLD",
				Nomenclature:   "BH",
				AreaName:       "Hematología",
				SampleTypeName: "Sangre total",
				ListPrice:      labapi.Num(250),
				Price:          labapi.Num(199),
				Description:    "Conteo completo",
				DeliveryTime:   "24 horas",
				Preparation:    "Ayuno 8h",
			},
			want: domain.CatalogEntry{
				ID:           "test-12",
				Code:         "BH",
				Name:         "Biometría Hemática",
				StudyType:    domain.StudyIndividualTest,
				Level1:       "Hematología",
				Level2:       "Sangre total",
				Price:        250,
				Description:  "Conteo completo",
				SearchText:   "biometría hemática bh conteo completo",
				SourceType:   domain.SourceTest,
				Area:         "Hematología",
				SampleType:   "Sangre total",
				DeliveryTime: "24 horas",
				Preparation:  "Ayuno 8h",
			},
		},
		{
			name: "missing optional fields",
			raw: labapi.RawTest{
				ID:   "7",
				Name: "Glucosa",
			},
			want: domain.CatalogEntry{
				ID:         "test-7",
				Name:       "Glucosa",
				StudyType:  domain.StudyIndividualTest,
				Level1:     labapi.UncategorizedLabel,
				SearchText: "glucosa  ",
				SourceType: domain.SourceTest,
			},
		},
		{
			name: "falls back to code and plain price",
			raw: labapi.RawTest{
				ID:    "8",
				Name:  "Urea",
				Code:  "URE",
				Price: labapi.Num(80.5),
			},
			want: domain.CatalogEntry{
				ID:         "test-8",
				Code:       "URE",
				Name:       "Urea",
				StudyType:  domain.StudyIndividualTest,
				Level1:     labapi.UncategorizedLabel,
				Price:      80.5,
				SearchText: "urea ure ",
				SourceType: domain.SourceTest,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := labapi.TestToEntry(&tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBundleToEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  labapi.RawBundle
		want domain.CatalogEntry
	}{
		{
			name: "complete bundle",
			raw: labapi.RawBundle{
				ID:          "3",
				Name:        "Perfil Tiroideo",
				Code:        "PT",
				BoxCode:     "CAJA-PT",
				AreaName:    "Inmunología",
				BundleCount: labapi.Num(5),
				ListPrice:   labapi.Num(1200),
			},
			want: domain.CatalogEntry{
				ID:         "bundle-3",
				Code:       "CAJA-PT",
				Name:       "Perfil Tiroideo",
				StudyType:  domain.StudyBundle,
				Level1:     "Inmunología",
				Price:      1200,
				SearchText: "perfil tiroideo caja-pt ",
				SourceType: domain.SourceBundle,
				Area:       "Inmunología",
				BundleSize: 5,
			},
		},
		{
			name: "bundle without area or count",
			raw: labapi.RawBundle{
				ID:   "4",
				Name: "Check Up",
			},
			want: domain.CatalogEntry{
				ID:         "bundle-4",
				Name:       "Check Up",
				StudyType:  domain.StudyBundle,
				Level1:     labapi.ProfilesLabel,
				SearchText: "check up  ",
				SourceType: domain.SourceBundle,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := labapi.BundleToEntry(&tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceNeverNegative(t *testing.T) {
	t.Parallel()

	payloads := map[string]string{
		"missing":             `{"id": 1, "name": "A"}`,
		"null":                `{"id": 1, "name": "A", "list_price": null, "price": null}`,
		"non-numeric":         `{"id": 1, "name": "A", "list_price": "n/a", "price": "gratis"}`,
		"negative":            `{"id": 1, "name": "A", "list_price": -10}`,
		"empty string":        `{"id": 1, "name": "A", "list_price": ""}`,
		"bad list good price": `{"id": 1, "name": "A", "list_price": "abc", "price": "150.25"}`,
		"object":              `{"id": 1, "name": "A", "price": {"amount": 3}}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var raw labapi.RawTest
			require.NoError(t, json.Unmarshal([]byte(payload), &raw))

			e := labapi.TestToEntry(&raw)
			assert.True(t, strings.HasPrefix(e.ID, "test-"))
			assert.GreaterOrEqual(t, e.Price, 0.0)
			if name == "bad list good price" {
				assert.InDelta(t, 150.25, e.Price, 1e-9)
			} else {
				assert.Zero(t, e.Price)
			}
		})
	}
}

func TestBundleToEntry_Counts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantID  string
		want    int
	}{
		{name: "huge count clamped", payload: `{"id": 7, "bundle_count": 1e20}`, wantID: "bundle-7", want: math.MaxInt32},
		{name: "fractional count floored", payload: `{"id": 7, "bundle_count": 3.9}`, wantID: "bundle-7", want: 3},
		{name: "negative count", payload: `{"id": 7, "bundle_count": -4}`, wantID: "bundle-7", want: 0},
		{name: "exponent id", payload: `{"id": 1e3, "bundle_count": "2"}`, wantID: "bundle-1000", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var raw labapi.RawBundle
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &raw))

			e := labapi.BundleToEntry(&raw)
			assert.Equal(t, tt.wantID, e.ID)
			assert.Equal(t, tt.want, e.BundleSize)
		})
	}
}

func TestBundlesToEntries_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, labapi.BundlesToEntries(nil))
	assert.Empty(t, labapi.TestsToEntries(nil))
}

func TestToAreas(t *testing.T) {
	t.Parallel()

	got := labapi.ToAreas([]labapi.RawArea{
		{ID: "1", Name: "Hematología"},
		{ID: "2", Name: "  "},
		{ID: "3", Name: "Química"},
	})
	assert.Equal(t, []domain.Area{
		{ID: "1", Name: "Hematología"},
		{ID: "3", Name: "Química"},
	}, got)
}
