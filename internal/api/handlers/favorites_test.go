package handlers_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/lab-catalog/internal/api/handlers"
	"github.com/donaldgifford/lab-catalog/internal/favorites"
	"github.com/donaldgifford/lab-catalog/internal/kv"
)

func newFavoritesAPI(t *testing.T, c *fakeCatalog) (humatest.TestAPI, *favorites.Store) {
	t.Helper()
	store, err := favorites.Open(context.Background(), kv.NewMemoryStore(),
		favorites.WithLogger(quietLogger()))
	require.NoError(t, err)

	api := newAPI(t, func(api huma.API) {
		handlers.RegisterFavoriteRoutes(api, handlers.NewFavoritesHandler(store, c))
	})
	return api, store
}

func TestFavoritesHandler_Toggle(t *testing.T) {
	t.Parallel()

	api, store := newFavoritesAPI(t, loadedCatalog())

	resp := api.Put("/api/v1/favorites/test-1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"favorite":true`)
	assert.True(t, store.IsFavorite("test-1"))

	resp = api.Put("/api/v1/favorites/test-1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"favorite":false`)
	assert.False(t, store.IsFavorite("test-1"))
}

func TestFavoritesHandler_ToggleUnknown(t *testing.T) {
	t.Parallel()

	api, _ := newFavoritesAPI(t, loadedCatalog())

	resp := api.Put("/api/v1/favorites/test-404")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFavoritesHandler_RemoveStale(t *testing.T) {
	t.Parallel()

	// Favorited while the catalog was not loaded, then missing from it.
	c := &fakeCatalog{}
	api, store := newFavoritesAPI(t, c)

	resp := api.Put("/api/v1/favorites/test-404")
	require.Equal(t, http.StatusOK, resp.Code)
	require.True(t, store.IsFavorite("test-404"))

	c.snap = loadedCatalog().snap
	resp = api.Put("/api/v1/favorites/test-404")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, store.IsFavorite("test-404"))
}

func TestFavoritesHandler_ConcurrentStaleRemoval(t *testing.T) {
	t.Parallel()

	c := &fakeCatalog{}
	api, store := newFavoritesAPI(t, c)
	require.Equal(t, http.StatusOK, api.Put("/api/v1/favorites/test-404").Code)
	c.snap = loadedCatalog().snap

	const callers = 6
	codes := make([]int, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = api.Put("/api/v1/favorites/test-404").Code
		}()
	}
	wg.Wait()

	var ok, notFound int
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusNotFound:
			notFound++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, notFound)
	assert.False(t, store.IsFavorite("test-404"))
}

func TestFavoritesHandler_ListAndStats(t *testing.T) {
	t.Parallel()

	c := &fakeCatalog{}
	api, _ := newFavoritesAPI(t, c)

	resp := api.Get("/api/v1/favorites")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"studies":[]`)
	assert.Contains(t, resp.Body.String(), `"unresolved":[]`)

	for _, id := range []string{"bundle-1", "test-2", "test-404"} {
		require.Equal(t, http.StatusOK, api.Put("/api/v1/favorites/"+id).Code)
	}
	c.snap = loadedCatalog().snap

	resp = api.Get("/api/v1/favorites")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"id":"bundle-1"`)
	assert.Contains(t, resp.Body.String(), `"id":"test-2"`)
	assert.Contains(t, resp.Body.String(), `"unresolved":["test-404"]`)

	resp = api.Get("/api/v1/favorites/stats")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total":3`)
	assert.Contains(t, resp.Body.String(), `"resolved":2`)
	assert.Contains(t, resp.Body.String(), `"Bundle/Profile":1`)
}
