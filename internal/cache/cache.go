// Package cache persists the last good catalog snapshot so a failed load
// can fall back to it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/donaldgifford/lab-catalog/internal/kv"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// Key is the storage key of the cached snapshot.
const Key = "labdata_cache"

// ErrMiss is returned by Load when nothing usable is cached.
var ErrMiss = errors.New("no cached snapshot")

// SnapshotCache reads and writes the CachedSnapshot record on a kv.Store.
type SnapshotCache struct {
	store kv.Store
	now   func() time.Time
}

// Option configures a SnapshotCache.
type Option func(*SnapshotCache)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *SnapshotCache) {
		c.now = now
	}
}

// New creates a SnapshotCache backed by store.
func New(store kv.Store, opts ...Option) *SnapshotCache {
	c := &SnapshotCache{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save overwrites the cached snapshot, stamped with the current time.
func (c *SnapshotCache) Save(ctx context.Context, snap *domain.CatalogSnapshot) error {
	data, err := json.Marshal(domain.CachedSnapshot{
		Snapshot:  snap,
		Timestamp: c.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encoding cached snapshot: %w", err)
	}
	if err := c.store.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("writing cached snapshot: %w", err)
	}
	return nil
}

// Load returns the cached snapshot. An absent or undecodable record is
// reported as ErrMiss.
func (c *SnapshotCache) Load(ctx context.Context) (*domain.CachedSnapshot, error) {
	data, err := c.store.Get(ctx, Key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached snapshot: %w", err)
	}

	var cached domain.CachedSnapshot
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("%w: decoding: %w", ErrMiss, err)
	}
	if cached.Snapshot == nil {
		return nil, fmt.Errorf("%w: record has no data", ErrMiss)
	}
	return &cached, nil
}

// Clear removes the cached snapshot.
func (c *SnapshotCache) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clearing cached snapshot: %w", err)
	}
	return nil
}
