// Package labapi provides a client for the laboratory catalog backend API
// abstracted behind an interface for testability, plus the normalizer that
// turns its raw records into domain catalog entries.
package labapi

import (
	"context"
	"errors"
)

// Errors returned by CatalogAPI implementations. Callers classify failures
// with errors.Is.
var (
	// ErrRequestFailed covers transport failures and non-2xx HTTP statuses.
	ErrRequestFailed = errors.New("backend request failed")
	// ErrUnsuccessful is returned when the payload reports success=false.
	ErrUnsuccessful = errors.New("backend reported failure")
	// ErrMalformed is returned when the payload cannot be decoded.
	ErrMalformed = errors.New("malformed backend response")
)

// ListParams scopes a tests or bundles listing.
type ListParams struct {
	Limit       int
	PriceListID string
}

// SearchParams defines a server-side search.
type SearchParams struct {
	Query       string
	PriceListID string
}

// SearchResult holds the raw records returned by the search endpoint.
type SearchResult struct {
	Tests   []RawTest
	Bundles []RawBundle
}

// CatalogAPI defines the backend operations the catalog loader depends on.
type CatalogAPI interface {
	ListTests(ctx context.Context, params ListParams) ([]RawTest, error)
	ListBundles(ctx context.Context, params ListParams) ([]RawBundle, error)
	ListAreas(ctx context.Context) ([]RawArea, error)
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
}
