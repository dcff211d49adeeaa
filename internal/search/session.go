package search

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/donaldgifford/lab-catalog/internal/filter"
	"github.com/donaldgifford/lab-catalog/internal/metrics"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// Session defaults.
const (
	DefaultHistorySize = 10
	DefaultSuggestions = 5
)

// View is a consistent copy of the session state.
type View struct {
	// Query is the latest input, which may still be waiting on the debounce.
	Query string `json:"query"`
	// DebouncedQuery is the query the results belong to.
	DebouncedQuery string         `json:"debounced_query"`
	Generation     uint64         `json:"generation"`
	Filters        filter.Filters `json:"filters"`
	Active         []filter.KV    `json:"active_filters"`
	Results        []Result       `json:"results"`
	Suggestions    []Suggestion   `json:"suggestions"`
	History        []string       `json:"history"`
	TotalEntries   int            `json:"total_entries"`
}

// SessionStats summarizes the current results.
type SessionStats struct {
	TotalResults  int `json:"total_results"`
	TotalEntries  int `json:"total_entries"`
	ActiveFilters int `json:"active_filters"`
}

// Session holds one user's search state: the query, its debounced
// results, the active filters, suggestions, and recent queries. Results
// are published last-write-wins by generation.
type Session struct {
	log         *slog.Logger
	indexOpts   []IndexOption
	debounce    time.Duration
	historySize int
	suggestions int

	debouncer *Debouncer

	mu         sync.RWMutex
	index      *Index
	query      string
	applied    string
	appliedGen uint64
	filters    filter.Filters
	canonical  []Result
	results    []Result
	suggest    []Suggestion
	history    []string

	listenersMu sync.Mutex
	listeners   []func(View)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithIndexOptions sets the options used every time the index is rebuilt.
func WithIndexOptions(opts ...IndexOption) SessionOption {
	return func(s *Session) {
		s.indexOpts = append(s.indexOpts, opts...)
	}
}

// WithDebounce sets the quiet period before a query runs.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		s.debounce = d
	}
}

// WithHistorySize bounds the recent-query history.
func WithHistorySize(n int) SessionOption {
	return func(s *Session) {
		s.historySize = n
	}
}

// WithSuggestionLimit sets how many name suggestions accompany results.
func WithSuggestionLimit(n int) SessionOption {
	return func(s *Session) {
		s.suggestions = n
	}
}

// WithSessionLogger sets a custom logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.log = l
	}
}

// NewSession creates a Session over an empty index. Feed it snapshots
// with OnSnapshot.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		log:         slog.Default(),
		debounce:    DefaultDebounce,
		historySize: DefaultHistorySize,
		suggestions: DefaultSuggestions,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.index = NewIndex(nil, s.indexOpts...)
	s.canonical = s.index.Search("")
	s.results = s.canonical
	s.debouncer = NewDebouncer(s.debounce, s.dispatch)
	return s
}

// OnSnapshot rebuilds the index from snap and re-runs the current query
// against it. Matches the catalog.Catalog.Subscribe callback signature.
func (s *Session) OnSnapshot(snap *domain.CatalogSnapshot) {
	var entries []domain.CatalogEntry
	if snap != nil {
		entries = snap.Entries
	}
	idx := NewIndex(entries, s.indexOpts...)

	s.mu.Lock()
	s.index = idx
	s.canonical = idx.Search(s.applied)
	s.suggest = idx.Suggest(s.applied, s.suggestions)
	s.results = s.applyFilters()
	v := s.viewLocked()
	s.mu.Unlock()

	s.log.Debug("search index rebuilt", "entries", idx.Len())
	s.notify(v)
}

// SetQuery records query and schedules it to run after the debounce
// interval. It returns the query's generation.
func (s *Session) SetQuery(query string) uint64 {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
	return s.debouncer.Submit(query)
}

// Search sets the query and runs it immediately, skipping the debounce.
func (s *Session) Search(query string) View {
	s.SetQuery(query)
	s.debouncer.Flush()
	return s.View()
}

// Flush runs a pending debounced query now.
func (s *Session) Flush() {
	s.debouncer.Flush()
}

// SetFilter sets one filter and re-filters the current results without
// re-running the query.
func (s *Session) SetFilter(key, value string) error {
	return s.updateFilters(func(f *filter.Filters) error {
		return f.Set(key, value)
	})
}

// RemoveFilter clears one filter.
func (s *Session) RemoveFilter(key string) error {
	return s.updateFilters(func(f *filter.Filters) error {
		return f.Remove(key)
	})
}

// SetFilters replaces every filter.
func (s *Session) SetFilters(f filter.Filters) {
	_ = s.updateFilters(func(cur *filter.Filters) error {
		*cur = f
		return nil
	})
}

// ClearFilters removes every filter.
func (s *Session) ClearFilters() {
	s.SetFilters(filter.Filters{})
}

// Clear resets the query and the filters.
func (s *Session) Clear() {
	s.mu.Lock()
	s.filters = filter.Filters{}
	s.mu.Unlock()
	s.Search("")
}

// View returns a copy of the current state.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Stats summarizes the current results.
func (s *Session) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionStats{
		TotalResults:  len(s.results),
		TotalEntries:  s.index.Len(),
		ActiveFilters: len(s.filters.Active()),
	}
}

// Index returns the current index.
func (s *Session) Index() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// History returns recent queries, most recent first.
func (s *Session) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// Subscribe registers fn to receive every published view.
func (s *Session) Subscribe(fn func(View)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Close stops pending dispatches.
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) dispatch(query string, gen uint64) {
	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()

	canonical := idx.Search(query)
	suggestions := idx.Suggest(query, s.suggestions)

	s.mu.Lock()
	if gen != s.debouncer.Generation() {
		s.mu.Unlock()
		metrics.SearchSupersededTotal.Inc()
		s.log.Debug("discarding superseded search", "query", query, "generation", gen)
		return
	}
	if idx != s.index {
		canonical = s.index.Search(query)
		suggestions = s.index.Suggest(query, s.suggestions)
	}
	s.applied = query
	s.appliedGen = gen
	s.canonical = canonical
	s.suggest = suggestions
	s.results = s.applyFilters()
	s.recordLocked(query)
	v := s.viewLocked()
	s.mu.Unlock()

	s.notify(v)
}

func (s *Session) updateFilters(fn func(*filter.Filters) error) error {
	s.mu.Lock()
	f := s.filters
	if err := fn(&f); err != nil {
		s.mu.Unlock()
		return err
	}
	s.filters = f
	s.results = s.applyFilters()
	v := s.viewLocked()
	s.mu.Unlock()

	s.notify(v)
	return nil
}

// applyFilters filters the canonical results. Callers hold s.mu.
func (s *Session) applyFilters() []Result {
	return FilterResults(s.canonical, s.filters)
}

// recordLocked adds query to the front of the history.
func (s *Session) recordLocked(query string) {
	q := strings.TrimSpace(query)
	if s.historySize <= 0 || utf8.RuneCountInString(q) < s.index.minQuery {
		return
	}
	s.history = slices.DeleteFunc(s.history, func(h string) bool {
		return strings.EqualFold(h, q)
	})
	s.history = slices.Insert(s.history, 0, q)
	if len(s.history) > s.historySize {
		s.history = s.history[:s.historySize]
	}
}

func (s *Session) viewLocked() View {
	return View{
		Query:          s.query,
		DebouncedQuery: s.applied,
		Generation:     s.appliedGen,
		Filters:        s.filters,
		Active:         s.filters.Active(),
		Results:        slices.Clone(s.results),
		Suggestions:    slices.Clone(s.suggest),
		History:        slices.Clone(s.history),
		TotalEntries:   s.index.Len(),
	}
}

func (s *Session) notify(v View) {
	s.listenersMu.Lock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}

// FilterResults returns the results whose entries pass f, keeping order.
// The input is not modified.
func FilterResults(results []Result, f filter.Filters) []Result {
	if f.IsZero() {
		return results
	}
	match := f.Predicate()
	out := make([]Result, 0, len(results))
	for i := range results {
		if match(&results[i].Entry) {
			out = append(out, results[i])
		}
	}
	return out
}

// Query runs query against ix and filters the results with f, without
// any session state.
func Query(ix *Index, query string, f filter.Filters) []Result {
	return FilterResults(ix.Search(query), f)
}
