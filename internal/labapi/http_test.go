package labapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/lab-catalog/internal/labapi"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *labapi.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return labapi.NewHTTPClient(srv.URL + "/api")
}

func TestHTTPClient_ListTests(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tests", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		assert.Equal(t, "27", r.URL.Query().Get("price_list_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":1,"name":"Glucosa","nomenclature":"GLU","list_price":"95.00"},
			{"id":"2","name":"Urea","price":80}
		]}`))
	})

	tests, err := c.ListTests(context.Background(), labapi.ListParams{PriceListID: "27"})
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, "1", tests[0].ID.String())
	assert.Equal(t, "GLU", tests[0].Nomenclature.String())
	assert.InDelta(t, 95.0, tests[0].ListPrice.Value, 1e-9)
	assert.Equal(t, "2", tests[1].ID.String())
}

func TestHTTPClient_ListBundles_CustomPathAndLimit(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/groups", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":5,"name":"Perfil","bundle_count":4}]}`))
	})
	c = labapi.NewHTTPClient(
		c.BaseURL(),
		labapi.WithPaths("", "/groups", "", ""),
	)

	bundles, err := c.ListBundles(context.Background(), labapi.ListParams{Limit: 50})
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.InDelta(t, 4.0, bundles[0].BundleCount.Value, 1e-9)
}

func TestHTTPClient_ListAreas(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/areas", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":1,"name":"Hematología"}]}`))
	})

	areas, err := c.ListAreas(context.Background())
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "Hematología", areas[0].Name.String())
}

func TestHTTPClient_Search(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "gluc", r.URL.Query().Get("q"))
		assert.Equal(t, "27", r.URL.Query().Get("price_list_id"))
		_, _ = w.Write([]byte(`{"success":true,"data":{
			"tests":[{"id":1,"name":"Glucosa"}],
			"bundles":[{"id":2,"name":"Perfil Glucosa"}]
		}}`))
	})

	res, err := c.Search(context.Background(), labapi.SearchParams{Query: "gluc", PriceListID: "27"})
	require.NoError(t, err)
	assert.Len(t, res.Tests, 1)
	assert.Len(t, res.Bundles, 1)
}

func TestHTTPClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "http error",
			status:  http.StatusInternalServerError,
			body:    `{"error":"boom"}`,
			wantErr: labapi.ErrRequestFailed,
			wantMsg: "HTTP 500",
		},
		{
			name:    "success false",
			status:  http.StatusOK,
			body:    `{"success":false,"message":"price list not found"}`,
			wantErr: labapi.ErrUnsuccessful,
			wantMsg: "price list not found",
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			body:    `{"success":true,"data":[`,
			wantErr: labapi.ErrMalformed,
			wantMsg: "parsing tests response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.ListTests(context.Background(), labapi.ListParams{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestHTTPClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := labapi.NewHTTPClient("http://127.0.0.1:1") // nothing listening
	_, err := c.ListAreas(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, labapi.ErrRequestFailed)
}

func TestHTTPClient_RateLimiterCountsCalls(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	rl := labapi.NewRateLimiter(100, 10)
	c := labapi.NewHTTPClient(srv.URL, labapi.WithRateLimiter(rl))

	for range 3 {
		_, err := c.ListAreas(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), rl.Calls())
}

func TestHTTPClient_RateLimiterHonorsContext(t *testing.T) {
	t.Parallel()

	rl := labapi.NewRateLimiter(0.001, 1)
	c := labapi.NewHTTPClient("http://127.0.0.1:1", labapi.WithRateLimiter(rl))

	// First call drains the burst; the second must wait and sees the canceled context.
	_, _ = c.ListAreas(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListAreas(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, labapi.ErrRequestFailed)
	assert.Contains(t, err.Error(), "rate limit")
}
