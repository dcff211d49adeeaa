package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/lab-catalog/internal/favorites"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// FavoritesService is the subset of *favorites.Store the handlers use.
type FavoritesService interface {
	ToggleKnown(ctx context.Context, id string, known func(string) bool) (bool, error)
	IsFavorite(id string) bool
	Entries(snap *domain.CatalogSnapshot) ([]domain.CatalogEntry, []string)
	Stats(snap *domain.CatalogSnapshot) domain.FavoriteStats
}

// SnapshotSource returns the published snapshot, or nil.
type SnapshotSource interface {
	Snapshot() *domain.CatalogSnapshot
}

// FavoritesHandler serves the favorites set.
type FavoritesHandler struct {
	favorites FavoritesService
	catalog   SnapshotSource
}

// NewFavoritesHandler creates a FavoritesHandler.
func NewFavoritesHandler(f FavoritesService, c SnapshotSource) *FavoritesHandler {
	return &FavoritesHandler{favorites: f, catalog: c}
}

// ListFavoritesOutput is the response for GET /api/v1/favorites.
type ListFavoritesOutput struct {
	Body struct {
		Studies    []domain.CatalogEntry `json:"studies"`
		Unresolved []string              `json:"unresolved"`
	}
}

// ToggleFavoriteInput is the input for PUT /api/v1/favorites/{id}.
type ToggleFavoriteInput struct {
	ID string `path:"id" doc:"Entry id"`
}

// ToggleFavoriteOutput is the response for PUT /api/v1/favorites/{id}.
type ToggleFavoriteOutput struct {
	Body struct {
		ID       string `json:"id"`
		Favorite bool   `json:"favorite"`
	}
}

// FavoriteStatsOutput is the response for GET /api/v1/favorites/stats.
type FavoriteStatsOutput struct {
	Body domain.FavoriteStats
}

// ListFavorites returns the favorite entries resolved against the
// published catalog. Ids missing from the catalog are listed separately.
func (h *FavoritesHandler) ListFavorites(_ context.Context, _ *struct{}) (*ListFavoritesOutput, error) {
	entries, unresolved := h.favorites.Entries(h.catalog.Snapshot())

	resp := &ListFavoritesOutput{}
	resp.Body.Studies = entries
	if resp.Body.Studies == nil {
		resp.Body.Studies = []domain.CatalogEntry{}
	}
	resp.Body.Unresolved = unresolved
	if resp.Body.Unresolved == nil {
		resp.Body.Unresolved = []string{}
	}
	return resp, nil
}

// ToggleFavorite flips the membership of an entry. Unknown ids are
// rejected once a catalog is loaded, except for removing a stale favorite.
func (h *FavoritesHandler) ToggleFavorite(
	ctx context.Context,
	input *ToggleFavoriteInput,
) (*ToggleFavoriteOutput, error) {
	var known func(string) bool
	if snap := h.catalog.Snapshot(); snap != nil {
		known = func(id string) bool { return snap.Lookup(id) != nil }
	}

	on, err := h.favorites.ToggleKnown(ctx, input.ID, known)
	if errors.Is(err, favorites.ErrUnknownID) {
		return nil, huma.Error404NotFound("study not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("toggling favorite: " + err.Error())
	}

	resp := &ToggleFavoriteOutput{}
	resp.Body.ID = input.ID
	resp.Body.Favorite = on
	return resp, nil
}

// GetFavoriteStats returns favorites counts by study type.
func (h *FavoritesHandler) GetFavoriteStats(_ context.Context, _ *struct{}) (*FavoriteStatsOutput, error) {
	return &FavoriteStatsOutput{Body: h.favorites.Stats(h.catalog.Snapshot())}, nil
}

// RegisterFavoriteRoutes registers the favorites endpoints on the Huma API.
func RegisterFavoriteRoutes(api huma.API, h *FavoritesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-favorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites",
		Summary:     "List favorites",
		Description: "Returns the favorite entries and any ids no longer in the catalog.",
		Tags:        []string{"favorites"},
	}, h.ListFavorites)

	huma.Register(api, huma.Operation{
		OperationID: "toggle-favorite",
		Method:      http.MethodPut,
		Path:        "/api/v1/favorites/{id}",
		Summary:     "Toggle a favorite",
		Description: "Adds the entry to favorites, or removes it if already present.",
		Tags:        []string{"favorites"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.ToggleFavorite)

	huma.Register(api, huma.Operation{
		OperationID: "get-favorite-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites/stats",
		Summary:     "Get favorite stats",
		Description: "Returns favorites counts by study type.",
		Tags:        []string{"favorites"},
	}, h.GetFavoriteStats)
}
