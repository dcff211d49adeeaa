package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/lab-catalog/internal/filter"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

const (
	defaultStudiesLimit = 100
	defaultSearchLimit  = 50
)

// StudiesHandler serves catalog entries.
type StudiesHandler struct {
	catalog CatalogService
}

// NewStudiesHandler creates a StudiesHandler.
func NewStudiesHandler(c CatalogService) *StudiesHandler {
	return &StudiesHandler{catalog: c}
}

// --- Input/Output types ---

// FilterParams are the filter query parameters shared by list and search.
type FilterParams struct {
	Category string `query:"category" doc:"Category label, or all"`
	Level    string `query:"level"    doc:"Field the category is compared against: studyType (default), level1, level2, or sourceType"`
	Price    string `query:"price"    doc:"Price range such as 0-500, 500-1000, or 1000+"`
	Delivery string `query:"delivery" doc:"Delivery bucket (same-day, 24h, 48h, 72h+) or exact label"`
	Area     string `query:"area"     doc:"Laboratory area name"`
}

// Filters converts the parameters. Values that cannot be interpreted stay
// in the result, where they match everything, and are reported as warnings.
func (p *FilterParams) Filters() (filter.Filters, []string) {
	f := filter.Filters{
		Category:      p.Category,
		CategoryLevel: domain.CategoryLevel(p.Level),
		PriceRange:    p.Price,
		DeliveryTime:  p.Delivery,
		Area:          p.Area,
	}
	return f, f.Warnings()
}

// ListStudiesInput is the input for listing entries.
type ListStudiesInput struct {
	FilterParams
	Limit  int `query:"limit"  doc:"Number of results (default 100)" minimum:"0" maximum:"5000"`
	Offset int `query:"offset" doc:"Pagination offset"               minimum:"0"`
}

// ListStudiesOutput is the response for listing entries.
type ListStudiesOutput struct {
	Body struct {
		Studies  []domain.CatalogEntry `json:"studies"`
		Total    int                   `json:"total"`
		Limit    int                   `json:"limit"`
		Offset   int                   `json:"offset"`
		Filters  []filter.KV           `json:"filters"`
		Warnings []string              `json:"warnings,omitempty"`
	}
}

// GetStudyInput is the input for getting a single entry.
type GetStudyInput struct {
	ID string `path:"id" doc:"Entry id, such as test-12 or bundle-3"`
}

// GetStudyOutput is the response for getting a single entry.
type GetStudyOutput struct {
	Body domain.CatalogEntry
}

// --- Handlers ---

// ListStudies returns the published entries that pass the filters.
func (h *StudiesHandler) ListStudies(
	_ context.Context,
	input *ListStudiesInput,
) (*ListStudiesOutput, error) {
	f, warnings := input.Filters()

	snap := h.catalog.Snapshot()
	if snap == nil {
		return nil, huma.Error503ServiceUnavailable("catalog not loaded")
	}

	matched := filter.Apply(snap.Entries, f)

	limit := input.Limit
	if limit == 0 {
		limit = defaultStudiesLimit
	}

	resp := &ListStudiesOutput{}
	resp.Body.Studies = page(matched, input.Offset, limit)
	resp.Body.Total = len(matched)
	resp.Body.Limit = limit
	resp.Body.Offset = input.Offset
	resp.Body.Warnings = warnings
	resp.Body.Filters = f.Active()
	if resp.Body.Filters == nil {
		resp.Body.Filters = []filter.KV{}
	}
	return resp, nil
}

// GetStudy returns a single entry by id.
func (h *StudiesHandler) GetStudy(
	_ context.Context,
	input *GetStudyInput,
) (*GetStudyOutput, error) {
	e, ok := h.catalog.EntryByID(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("study not found")
	}
	return &GetStudyOutput{Body: *e}, nil
}

// page returns items[offset:offset+limit] clipped to the slice, never nil.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// RegisterStudyRoutes registers the entry endpoints on the Huma API.
func RegisterStudyRoutes(api huma.API, h *StudiesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-studies",
		Method:      http.MethodGet,
		Path:        "/api/v1/studies",
		Summary:     "List studies",
		Description: "Returns catalog entries filtered by category, price range, delivery time, and area. Unusable filter values are ignored and listed under warnings.",
		Tags:        []string{"studies"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.ListStudies)

	huma.Register(api, huma.Operation{
		OperationID: "get-study",
		Method:      http.MethodGet,
		Path:        "/api/v1/studies/{id}",
		Summary:     "Get a study by id",
		Description: "Returns a single test or bundle.",
		Tags:        []string{"studies"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetStudy)
}
