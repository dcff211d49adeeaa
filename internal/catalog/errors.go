package catalog

import (
	"errors"
	"fmt"

	"github.com/donaldgifford/lab-catalog/internal/labapi"
)

// Load error taxonomy. Every failed Load wraps ErrLoadFailed together with
// the more specific cause.
var (
	ErrFetchFailed     = errors.New("fetch failed")
	ErrInvalidResponse = errors.New("invalid response")
	ErrCacheMiss       = errors.New("cache miss")
	ErrLoadFailed      = errors.New("catalog load failed")

	// ErrNotLoaded is returned by operations that need a published snapshot.
	ErrNotLoaded = errors.New("catalog not loaded")
)

// classify maps a labapi error onto the load taxonomy.
func classify(endpoint string, err error) error {
	switch {
	case errors.Is(err, labapi.ErrUnsuccessful), errors.Is(err, labapi.ErrMalformed):
		return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, endpoint, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, endpoint, err)
	}
}
