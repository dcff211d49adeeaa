package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/lab-catalog/internal/catalog"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// CatalogService is the subset of *catalog.Catalog the handlers read from.
type CatalogService interface {
	StatusProvider
	Snapshot() *domain.CatalogSnapshot
	Categories() domain.Categories
	Tree() map[string][]domain.CatalogEntry
	Stats() domain.CatalogStats
	EntryByID(id string) (*domain.CatalogEntry, bool)
	Reload(ctx context.Context) (*catalog.Result, error)
}

// CatalogHandler serves the loader status and derived catalog views.
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(c CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// StatusOutput is the response for GET /api/v1/catalog/status.
type StatusOutput struct {
	Body catalog.Status
}

// ReloadOutput is the response for POST /api/v1/catalog/reload.
type ReloadOutput struct {
	Body struct {
		Generation uint64 `json:"generation"`
		FromCache  bool   `json:"from_cache"`
		Superseded bool   `json:"superseded"`
		Entries    int    `json:"entries"`
		Warning    string `json:"warning,omitempty"`
	}
}

// CategoriesOutput is the response for GET /api/v1/catalog/categories.
type CategoriesOutput struct {
	Body domain.Categories
}

// TreeOutput is the response for GET /api/v1/catalog/tree.
type TreeOutput struct {
	Body map[string][]domain.CatalogEntry
}

// StatsOutput is the response for GET /api/v1/catalog/stats.
type StatsOutput struct {
	Body domain.CatalogStats
}

// GetStatus returns the loader state.
func (h *CatalogHandler) GetStatus(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	return &StatusOutput{Body: h.catalog.Status()}, nil
}

// Reload discards the cached snapshot and fetches the catalog again. A
// fetch failure that fell back to the cache is reported as a warning.
func (h *CatalogHandler) Reload(ctx context.Context, _ *struct{}) (*ReloadOutput, error) {
	res, err := h.catalog.Reload(ctx)
	if err != nil {
		return nil, huma.Error503ServiceUnavailable("catalog reload failed: " + err.Error())
	}

	resp := &ReloadOutput{}
	resp.Body.Generation = res.Generation
	resp.Body.FromCache = res.FromCache
	resp.Body.Superseded = res.Superseded
	if res.Snapshot != nil {
		resp.Body.Entries = res.Snapshot.TotalEntries
	}
	if res.Err != nil {
		resp.Body.Warning = res.Err.Error()
	}
	return resp, nil
}

// GetCategories returns the unique category labels of the published catalog.
func (h *CatalogHandler) GetCategories(_ context.Context, _ *struct{}) (*CategoriesOutput, error) {
	if err := h.requireLoaded(); err != nil {
		return nil, err
	}
	return &CategoriesOutput{Body: h.catalog.Categories()}, nil
}

// GetTree returns the entries grouped by study type.
func (h *CatalogHandler) GetTree(_ context.Context, _ *struct{}) (*TreeOutput, error) {
	if err := h.requireLoaded(); err != nil {
		return nil, err
	}
	return &TreeOutput{Body: h.catalog.Tree()}, nil
}

// GetStats returns catalog totals.
func (h *CatalogHandler) GetStats(_ context.Context, _ *struct{}) (*StatsOutput, error) {
	if err := h.requireLoaded(); err != nil {
		return nil, err
	}
	return &StatsOutput{Body: h.catalog.Stats()}, nil
}

func (h *CatalogHandler) requireLoaded() error {
	if h.catalog.Snapshot() == nil {
		return huma.Error503ServiceUnavailable("catalog not loaded")
	}
	return nil
}

// RegisterCatalogRoutes registers the catalog endpoints on the Huma API.
func RegisterCatalogRoutes(api huma.API, h *CatalogHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-catalog-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/status",
		Summary:     "Get catalog status",
		Description: "Returns whether a load is running, what is published, and the last load error.",
		Tags:        []string{"catalog"},
	}, h.GetStatus)

	huma.Register(api, huma.Operation{
		OperationID: "reload-catalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/reload",
		Summary:     "Reload the catalog",
		Description: "Clears the cached snapshot and fetches tests, bundles, and areas again.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.Reload)

	huma.Register(api, huma.Operation{
		OperationID: "get-catalog-categories",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/categories",
		Summary:     "List categories",
		Description: "Returns the unique study types, level labels, and areas.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.GetCategories)

	huma.Register(api, huma.Operation{
		OperationID: "get-catalog-tree",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/tree",
		Summary:     "Get the catalog tree",
		Description: "Returns entries grouped into individual tests and bundles.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.GetTree)

	huma.Register(api, huma.Operation{
		OperationID: "get-catalog-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/stats",
		Summary:     "Get catalog stats",
		Description: "Returns entry totals and the average price.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.GetStats)
}
