// Package favorites keeps the set of entry ids a user has starred,
// persisted on a kv.Store under a single key.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/donaldgifford/lab-catalog/internal/kv"
	"github.com/donaldgifford/lab-catalog/internal/metrics"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// Key is the storage key of the favorites record.
const Key = "favorites"

// ErrUnknownID is returned by ToggleKnown when adding an id the catalog
// does not contain.
var ErrUnknownID = errors.New("unknown catalog id")

// record is the persisted form of the set.
type record struct {
	IDs       []string `json:"ids"`
	UpdatedAt int64    `json:"updated_at"` // epoch millis
}

// Store is the favorites set. Ids are kept even when they no longer
// resolve to an entry in the current catalog.
type Store struct {
	kv  kv.Store
	log *slog.Logger
	now func() time.Time

	mu  sync.RWMutex
	ids map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open loads the persisted set from store. A missing record yields an
// empty set; an unreadable one is logged and treated as empty.
func Open(ctx context.Context, store kv.Store, opts ...Option) (*Store, error) {
	s := &Store{
		kv:  store,
		log: slog.Default(),
		now: time.Now,
		ids: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := store.Get(ctx, Key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading favorites: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Warn("ignoring unreadable favorites record", "error", err)
		return s, nil
	}
	for _, id := range rec.IDs {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	metrics.FavoritesCount.Set(float64(len(s.ids)))
	return s, nil
}

// Toggle adds id if absent or removes it if present, persists the set, and
// returns the new membership. On a write failure the change is rolled back.
func (s *Store) Toggle(ctx context.Context, id string) (bool, error) {
	return s.ToggleKnown(ctx, id, nil)
}

// ToggleKnown is Toggle restricted to ids known reports as present. A
// favorite that is no longer known can still be removed. The membership
// check and the change happen under one lock. A nil known accepts every id.
func (s *Store) ToggleKnown(ctx context.Context, id string, known func(string) bool) (bool, error) {
	if id == "" {
		return false, errors.New("favorite id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, had := s.ids[id]
	if !had && known != nil && !known(id) {
		return false, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	if had {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}

	if err := s.persistLocked(ctx); err != nil {
		if had {
			s.ids[id] = struct{}{}
		} else {
			delete(s.ids, id)
		}
		return had, err
	}

	state := "added"
	if had {
		state = "removed"
	}
	metrics.FavoritesToggledTotal.WithLabelValues(state).Inc()
	metrics.FavoritesCount.Set(float64(len(s.ids)))
	s.log.Debug("favorite toggled", "id", id, "state", state)
	return !had, nil
}

// IsFavorite reports whether id is in the set.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of ids in the set.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// List returns the ids in sorted order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Entries resolves the set against snap. Ids with no matching entry are
// returned separately.
func (s *Store) Entries(snap *domain.CatalogSnapshot) (entries []domain.CatalogEntry, unresolved []string) {
	index := entryIndex(snap)
	for _, id := range s.List() {
		if e, ok := index[id]; ok {
			entries = append(entries, *e)
			continue
		}
		unresolved = append(unresolved, id)
	}
	return entries, unresolved
}

// Stats counts the set and its resolved entries by study type.
func (s *Store) Stats(snap *domain.CatalogSnapshot) domain.FavoriteStats {
	entries, unresolved := s.Entries(snap)
	st := domain.FavoriteStats{
		Total:       len(entries) + len(unresolved),
		Resolved:    len(entries),
		Unresolved:  len(unresolved),
		ByStudyType: make(map[domain.StudyType]int, len(domain.StudyTypes)),
	}
	for _, t := range domain.StudyTypes {
		st.ByStudyType[t] = 0
	}
	for i := range entries {
		st.ByStudyType[entries[i].StudyType]++
	}
	return st
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(record{
		IDs:       s.sortedLocked(),
		UpdatedAt: s.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}
	if err := s.kv.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("writing favorites: %w", err)
	}
	return nil
}

func (s *Store) sortedLocked() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func entryIndex(snap *domain.CatalogSnapshot) map[string]*domain.CatalogEntry {
	if snap == nil {
		return nil
	}
	index := make(map[string]*domain.CatalogEntry, len(snap.Entries))
	for i := range snap.Entries {
		index[snap.Entries[i].ID] = &snap.Entries[i]
	}
	return index
}
