package labapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/lab-catalog/internal/metrics"
)

// Default endpoint paths, relative to the base URL.
const (
	DefaultTestsPath   = "/tests"
	DefaultBundlesPath = "/bundles"
	DefaultAreasPath   = "/areas"
	DefaultSearchPath  = "/search"

	defaultLimit = 1000

	// priceListParam is the query parameter that scopes results to one
	// price list on the backend.
	priceListParam = "price_list_id"
)

// Endpoint labels used in metrics.
const (
	endpointTests   = "tests"
	endpointBundles = "bundles"
	endpointAreas   = "areas"
	endpointSearch  = "search"
)

// HTTPClient implements CatalogAPI against the backend JSON API.
type HTTPClient struct {
	baseURL     string
	testsPath   string
	bundlesPath string
	areasPath   string
	searchPath  string
	client      *http.Client
	rateLimiter *RateLimiter
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithPaths overrides the endpoint paths. Empty values keep the default.
func WithPaths(tests, bundles, areas, search string) Option {
	return func(c *HTTPClient) {
		if tests != "" {
			c.testsPath = tests
		}
		if bundles != "" {
			c.bundlesPath = bundles
		}
		if areas != "" {
			c.areasPath = areas
		}
		if search != "" {
			c.searchPath = search
		}
	}
}

// WithRateLimiter injects a rate limiter. When set, every request goes
// through Wait() first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// NewHTTPClient creates a backend API client targeting baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		testsPath:   DefaultTestsPath,
		bundlesPath: DefaultBundlesPath,
		areasPath:   DefaultAreasPath,
		searchPath:  DefaultSearchPath,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTests implements CatalogAPI.ListTests.
func (c *HTTPClient) ListTests(ctx context.Context, params ListParams) ([]RawTest, error) {
	var env envelope[[]RawTest]
	if err := c.get(ctx, endpointTests, c.testsPath, listQuery(params), &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, unsuccessful(endpointTests, env.Message, env.Error)
	}
	return env.Data, nil
}

// ListBundles implements CatalogAPI.ListBundles.
func (c *HTTPClient) ListBundles(ctx context.Context, params ListParams) ([]RawBundle, error) {
	var env envelope[[]RawBundle]
	if err := c.get(ctx, endpointBundles, c.bundlesPath, listQuery(params), &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, unsuccessful(endpointBundles, env.Message, env.Error)
	}
	return env.Data, nil
}

// ListAreas implements CatalogAPI.ListAreas.
func (c *HTTPClient) ListAreas(ctx context.Context) ([]RawArea, error) {
	var env envelope[[]RawArea]
	if err := c.get(ctx, endpointAreas, c.areasPath, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, unsuccessful(endpointAreas, env.Message, env.Error)
	}
	return env.Data, nil
}

// Search implements CatalogAPI.Search using the backend search endpoint.
func (c *HTTPClient) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", params.Query)
	if params.PriceListID != "" {
		q.Set(priceListParam, params.PriceListID)
	}

	var env envelope[searchData]
	if err := c.get(ctx, endpointSearch, c.searchPath, q, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, unsuccessful(endpointSearch, env.Message, env.Error)
	}
	return &SearchResult{Tests: env.Data.Tests, Bundles: env.Data.Bundles}, nil
}

func listQuery(params ListParams) url.Values {
	q := url.Values{}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	if params.PriceListID != "" {
		q.Set(priceListParam, params.PriceListID)
	}
	return q
}

// get performs a GET request and decodes the JSON response into dst.
func (c *HTTPClient) get(
	ctx context.Context,
	endpoint, path string,
	query url.Values,
	dst any,
) (err error) {
	start := time.Now()
	defer func() {
		metrics.APICallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		metrics.APICallsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
	}()

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s: rate limit: %w", ErrRequestFailed, endpoint, err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: creating %s request: %w", ErrRequestFailed, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return fmt.Errorf("%w: backend not reachable at %s", ErrRequestFailed, c.baseURL)
		}
		return fmt.Errorf("%w: executing %s request: %w", ErrRequestFailed, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response body: %w", ErrRequestFailed, endpoint, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf(
			"%w: %s API error (HTTP %d): %s",
			ErrRequestFailed,
			endpoint,
			resp.StatusCode,
			truncate(string(body), 200),
		)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: parsing %s response: %w", ErrMalformed, endpoint, err)
	}

	return nil
}

func unsuccessful(endpoint, message, errText string) error {
	detail := message
	if detail == "" {
		detail = errText
	}
	if detail == "" {
		return fmt.Errorf("%w: %s", ErrUnsuccessful, endpoint)
	}
	return fmt.Errorf("%w: %s: %s", ErrUnsuccessful, endpoint, detail)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// BaseURL returns the normalized base URL the client targets.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}
