// Package kv defines the key/value persistence abstraction used for the
// snapshot cache and the favorites set. Callers depend on the Store
// interface only; backends are chosen by configuration.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a durable string-keyed byte store with overwrite semantics.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
