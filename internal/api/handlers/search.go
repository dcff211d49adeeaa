package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/lab-catalog/internal/catalog"
	"github.com/donaldgifford/lab-catalog/internal/filter"
	"github.com/donaldgifford/lab-catalog/internal/search"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// IndexSource returns the search index over the published catalog.
type IndexSource interface {
	Index() *search.Index
}

// RemoteSearcher runs a backend search.
type RemoteSearcher interface {
	RemoteSearch(ctx context.Context, query string) *catalog.RemoteResult
}

// SearchHandler serves ranked search, suggestions, and backend search.
// Each request is evaluated on its own; there is no per-client session.
type SearchHandler struct {
	index  IndexSource
	remote RemoteSearcher
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(index IndexSource, remote RemoteSearcher) *SearchHandler {
	return &SearchHandler{index: index, remote: remote}
}

// --- Input/Output types ---

// SearchInput is the input for a ranked search.
type SearchInput struct {
	FilterParams
	Query string `query:"q"     doc:"Search text; fewer than two characters returns every entry" maxLength:"256"`
	Limit int    `query:"limit" doc:"Number of results (default 50)"                              minimum:"0" maximum:"5000"`
}

// SearchOutput is the response for a ranked search.
type SearchOutput struct {
	Body struct {
		Query    string          `json:"query"`
		Results  []search.Result `json:"results"`
		Total    int             `json:"total"`
		Filters  []filter.KV     `json:"filters"`
		Warnings []string        `json:"warnings,omitempty"`
	}
}

// SuggestInput is the input for name suggestions.
type SuggestInput struct {
	Query string `query:"q" doc:"Partial name" maxLength:"256"`
	Limit int    `query:"n" doc:"Number of suggestions (default 5)" minimum:"0" maximum:"50"`
}

// SuggestOutput is the response for name suggestions.
type SuggestOutput struct {
	Body struct {
		Suggestions []search.Suggestion `json:"suggestions"`
	}
}

// RemoteSearchInput is the input for a backend search.
type RemoteSearchInput struct {
	Query string `query:"q" doc:"Search text" maxLength:"256"`
}

// RemoteSearchOutput is the response for a backend search.
type RemoteSearchOutput struct {
	Body struct {
		Studies []domain.CatalogEntry `json:"studies"`
		Total   int                   `json:"total"`
		Local   bool                  `json:"local"`
		Warning string                `json:"warning,omitempty"`
	}
}

// --- Handlers ---

// Search ranks the published entries against the query and applies the
// filters to the ranked list.
func (h *SearchHandler) Search(_ context.Context, input *SearchInput) (*SearchOutput, error) {
	f, warnings := input.Filters()

	results := search.Query(h.index.Index(), input.Query, f)

	limit := input.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}

	resp := &SearchOutput{}
	resp.Body.Query = input.Query
	resp.Body.Results = page(results, 0, limit)
	resp.Body.Total = len(results)
	resp.Body.Warnings = warnings
	resp.Body.Filters = f.Active()
	if resp.Body.Filters == nil {
		resp.Body.Filters = []filter.KV{}
	}
	return resp, nil
}

// Suggest returns entry names that fuzzily contain the query.
func (h *SearchHandler) Suggest(_ context.Context, input *SuggestInput) (*SuggestOutput, error) {
	n := input.Limit
	if n == 0 {
		n = search.DefaultSuggestions
	}

	resp := &SuggestOutput{}
	resp.Body.Suggestions = h.index.Index().Suggest(input.Query, n)
	if resp.Body.Suggestions == nil {
		resp.Body.Suggestions = []search.Suggestion{}
	}
	return resp, nil
}

// RemoteSearch runs the query on the backend, falling back to a local
// substring match when the backend fails.
func (h *SearchHandler) RemoteSearch(ctx context.Context, input *RemoteSearchInput) (*RemoteSearchOutput, error) {
	res := h.remote.RemoteSearch(ctx, input.Query)

	resp := &RemoteSearchOutput{}
	resp.Body.Studies = res.Entries
	if resp.Body.Studies == nil {
		resp.Body.Studies = []domain.CatalogEntry{}
	}
	resp.Body.Total = len(res.Entries)
	resp.Body.Local = res.Local
	if res.Err != nil {
		resp.Body.Warning = res.Err.Error()
	}
	return resp, nil
}

// RegisterSearchRoutes registers the search endpoints on the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-studies",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search studies",
		Description: "Ranks entries by approximate match on name, code, study type, and search text, then applies the filters.",
		Tags:        []string{"search"},
	}, h.Search)

	huma.Register(api, huma.Operation{
		OperationID: "suggest-studies",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/suggest",
		Summary:     "Suggest study names",
		Description: "Returns distinct entry names containing the query characters in order.",
		Tags:        []string{"search"},
	}, h.Suggest)

	huma.Register(api, huma.Operation{
		OperationID: "remote-search-studies",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/remote",
		Summary:     "Search the backend",
		Description: "Runs the query on the laboratory backend. A failed call falls back to a local substring match.",
		Tags:        []string{"search"},
	}, h.RemoteSearch)
}
