package handlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"

	"github.com/donaldgifford/lab-catalog/internal/api/handlers"
	"github.com/donaldgifford/lab-catalog/internal/catalog"
	"github.com/donaldgifford/lab-catalog/internal/search"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// fakeCatalog serves a fixed snapshot.
type fakeCatalog struct {
	snap      *domain.CatalogSnapshot
	status    catalog.Status
	reload    *catalog.Result
	reloadErr error
	remote    *catalog.RemoteResult
}

func (f *fakeCatalog) Status() catalog.Status             { return f.status }
func (f *fakeCatalog) Snapshot() *domain.CatalogSnapshot { return f.snap }

func (f *fakeCatalog) Categories() domain.Categories {
	return domain.Categories{
		StudyTypes: domain.StudyTypes,
		Level1:     []string{"Hematología", "Química"},
		Level2:     []string{"Sangre"},
		Areas:      []string{"Hematología", "Química"},
	}
}

func (f *fakeCatalog) Tree() map[string][]domain.CatalogEntry {
	return map[string][]domain.CatalogEntry{
		domain.TreeIndividualTests: f.snap.Entries[:2],
		domain.TreeBundles:         f.snap.Entries[2:],
	}
}

func (f *fakeCatalog) Stats() domain.CatalogStats {
	return domain.CatalogStats{TotalEntries: f.snap.TotalEntries, TotalTests: f.snap.TotalTests}
}

func (f *fakeCatalog) EntryByID(id string) (*domain.CatalogEntry, bool) {
	e := f.snap.Lookup(id)
	return e, e != nil
}

func (f *fakeCatalog) Reload(context.Context) (*catalog.Result, error) {
	return f.reload, f.reloadErr
}

func (f *fakeCatalog) RemoteSearch(context.Context, string) *catalog.RemoteResult {
	return f.remote
}

type staticIndex struct {
	ix *search.Index
}

func (s staticIndex) Index() *search.Index { return s.ix }

func testEntries() []domain.CatalogEntry {
	entries := []domain.CatalogEntry{
		{
			ID: "test-1", Code: "BH01", Name: "Biometría Hemática",
			StudyType: domain.StudyIndividualTest, SourceType: domain.SourceTest,
			Level1: "Hematología", Level2: "Sangre", Area: "Hematología",
			Price: 250, DeliveryTime: "24 horas",
		},
		{
			ID: "test-2", Code: "GLU", Name: "Glucosa",
			StudyType: domain.StudyIndividualTest, SourceType: domain.SourceTest,
			Level1: "Química", Level2: "Sangre", Area: "Química",
			Price: 80, DeliveryTime: "Mismo día",
		},
		{
			ID: "bundle-1", Code: "PT", Name: "Perfil Tiroideo Completo",
			StudyType: domain.StudyBundle, SourceType: domain.SourceBundle,
			Level1: "Profiles", Price: 1200, DeliveryTime: "3 días", BundleSize: 5,
		},
	}
	for i := range entries {
		entries[i].RefreshSearchText()
	}
	return entries
}

func loadedCatalog() *fakeCatalog {
	snap := domain.NewSnapshot(testEntries(), nil, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	return &fakeCatalog{
		snap: snap,
		status: catalog.Status{
			Ready:      true,
			Generation: 1,
			LoadedAt:   snap.LoadedAt,
			Entries:    snap.TotalEntries,
		},
	}
}

func newAPI(t *testing.T, register func(huma.API)) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	register(api)
	return api
}

var errBackend = errors.New("backend down")

var (
	_ handlers.CatalogService = (*fakeCatalog)(nil)
	_ handlers.RemoteSearcher = (*fakeCatalog)(nil)
)
