// Package search implements the approximate multi-field catalog matcher,
// name suggestions, and the debounced search session that combines query
// results with the active filters.
package search

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/donaldgifford/lab-catalog/internal/metrics"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// Defaults for an Index.
const (
	DefaultThreshold      = 0.3
	DefaultMinQueryLength = 2
	DefaultQueryCacheSize = 256
	// MaxQueryLength bounds the pattern length in runes; longer queries
	// are truncated.
	MaxQueryLength = 64

	// minFieldScore keeps exact matches from zeroing the product score.
	minFieldScore = 0.001

	meterName = "github.com/donaldgifford/lab-catalog/internal/search"
)

// Field names an indexed entry field.
type Field string

// Indexed fields.
const (
	FieldName       Field = "name"
	FieldCode       Field = "code"
	FieldStudyType  Field = "study_type"
	FieldSearchText Field = "search_text"
)

// Weights sets how much each field contributes to an entry's score.
type Weights struct {
	Name       float64
	Code       float64
	StudyType  float64
	SearchText float64
}

// DefaultWeights ranks the name highest and the study type lowest.
func DefaultWeights() Weights {
	return Weights{Name: 1.0, Code: 0.6, StudyType: 0.3, SearchText: 0.5}
}

// Span is a half-open rune range [Start, End) of a field's original text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FieldMatch records where the query matched within one field.
type FieldMatch struct {
	Field Field   `json:"field"`
	Score float64 `json:"score"`
	Spans []Span  `json:"spans"`
}

// Result is one ranked entry. Lower scores are better; 0 is a perfect match.
type Result struct {
	Entry   domain.CatalogEntry `json:"entry"`
	Score   float64             `json:"score"`
	Matches []FieldMatch        `json:"matches,omitempty"`
}

// Match returns the match for field, if any.
func (r *Result) Match(field Field) (FieldMatch, bool) {
	for _, m := range r.Matches {
		if m.Field == field {
			return m, true
		}
	}
	return FieldMatch{}, false
}

type indexedField struct {
	field  Field
	weight float64
	text   folded
}

type document struct {
	fields []indexedField
}

// Index is an immutable search index over one entry collection. It is
// safe for concurrent use.
type Index struct {
	entries   []domain.CatalogEntry
	docs      []document
	weights   Weights
	threshold float64
	minQuery  int
	cacheSize int
	memo      *lru.Cache[string, []Result]
	log       *slog.Logger
	meter     metric.MeterProvider
	latency   metric.Float64Histogram
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithWeights sets the field weights.
func WithWeights(w Weights) IndexOption {
	return func(ix *Index) {
		ix.weights = w
	}
}

// WithThreshold sets the maximum normalized field score that still counts
// as a match, between 0 (exact only) and 1 (anything).
func WithThreshold(t float64) IndexOption {
	return func(ix *Index) {
		ix.threshold = t
	}
}

// WithMinQueryLength sets the query length, in runes, below which every
// entry is returned unranked.
func WithMinQueryLength(n int) IndexOption {
	return func(ix *Index) {
		ix.minQuery = n
	}
}

// WithQueryCacheSize sets how many query results are memoized. Zero or
// less disables memoization.
func WithQueryCacheSize(n int) IndexOption {
	return func(ix *Index) {
		ix.cacheSize = n
	}
}

// WithIndexLogger sets a custom logger.
func WithIndexLogger(l *slog.Logger) IndexOption {
	return func(ix *Index) {
		ix.log = l
	}
}

// WithMeterProvider sets the provider for the OpenTelemetry query latency
// histogram. The global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) IndexOption {
	return func(ix *Index) {
		ix.meter = mp
	}
}

// NewIndex builds an index over entries. The slice is not retained by
// reference; later changes to it do not affect the index.
func NewIndex(entries []domain.CatalogEntry, opts ...IndexOption) *Index {
	ix := &Index{
		entries:   slices.Clone(entries),
		weights:   DefaultWeights(),
		threshold: DefaultThreshold,
		minQuery:  DefaultMinQueryLength,
		cacheSize: DefaultQueryCacheSize,
		log:       slog.Default(),
		meter:     otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(ix)
	}

	latency, err := ix.meter.Meter(meterName).Float64Histogram("labcat.search.query.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of ranked searches that missed the query cache."),
	)
	if err != nil {
		ix.log.Warn("search latency histogram unavailable", "error", err)
	} else {
		ix.latency = latency
	}

	if ix.cacheSize > 0 {
		memo, err := lru.New[string, []Result](ix.cacheSize)
		if err != nil {
			ix.log.Warn("query cache disabled", "error", err)
		} else {
			ix.memo = memo
		}
	}

	ix.docs = make([]document, len(ix.entries))
	for i := range ix.entries {
		e := &ix.entries[i]
		ix.docs[i] = document{fields: []indexedField{
			{field: FieldName, weight: ix.weights.Name, text: fold(e.Name)},
			{field: FieldCode, weight: ix.weights.Code, text: fold(e.Code)},
			{field: FieldStudyType, weight: ix.weights.StudyType, text: fold(string(e.StudyType))},
			{field: FieldSearchText, weight: ix.weights.SearchText, text: fold(e.SearchText)},
		}}
	}
	metrics.SearchIndexRebuildsTotal.Inc()
	return ix
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entries returns a copy of the indexed entries.
func (ix *Index) Entries() []domain.CatalogEntry {
	return slices.Clone(ix.entries)
}

// Search ranks the entries that approximately match query, best first.
// Queries shorter than the minimum length return every entry with score
// 0 and no matches, in index order.
func (ix *Index) Search(query string) []Result {
	q := foldString(normalizeQuery(query))
	if utf8.RuneCountInString(q) < ix.minQuery {
		return ix.all()
	}

	if ix.memo != nil {
		if cached, ok := ix.memo.Get(q); ok {
			return slices.Clone(cached)
		}
	}

	start := time.Now()
	results := ix.search(q)
	elapsed := time.Since(start).Seconds()
	metrics.SearchQueriesTotal.Inc()
	metrics.SearchQueryDuration.Observe(elapsed)
	if ix.latency != nil {
		ix.latency.Record(context.Background(), elapsed)
	}

	if ix.memo != nil {
		ix.memo.Add(q, results)
	}
	return slices.Clone(results)
}

func (ix *Index) all() []Result {
	out := make([]Result, len(ix.entries))
	for i := range ix.entries {
		out[i] = Result{Entry: ix.entries[i]}
	}
	return out
}

func (ix *Index) search(q string) []Result {
	whole := fold(q).runes
	var tokens [][]rune
	if words := strings.Fields(q); len(words) > 1 {
		tokens = make([][]rune, len(words))
		for i, w := range words {
			tokens[i] = fold(w).runes
		}
	}

	var results []Result
	for i := range ix.docs {
		score := 1.0
		var matches []FieldMatch
		for _, f := range ix.docs[i].fields {
			fm, ok := ix.matchField(f, whole, tokens)
			if !ok {
				continue
			}
			matches = append(matches, fm)
			score *= math.Pow(max(fm.Score, minFieldScore), f.weight)
		}
		if len(matches) == 0 {
			continue
		}
		results = append(results, Result{
			Entry:   ix.entries[i],
			Score:   min(max(score, 0), 1),
			Matches: matches,
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Or(
			cmp.Compare(a.Score, b.Score),
			strings.Compare(a.Entry.Name, b.Entry.Name),
			strings.Compare(a.Entry.ID, b.Entry.ID),
		)
	})
	return results
}

// matchField matches the whole query against the field and, for
// multi-word queries, each word separately, keeping the better outcome.
func (ix *Index) matchField(f indexedField, whole []rune, tokens [][]rune) (FieldMatch, bool) {
	if f.weight <= 0 || len(f.text.runes) == 0 {
		return FieldMatch{}, false
	}

	best := FieldMatch{Field: f.field, Score: math.Inf(1)}

	m := approxFind(whole, f.text.runes)
	if s := float64(m.distance) / float64(len(whole)); s <= ix.threshold {
		best.Score = s
		best.Spans = []Span{f.text.span(m.start, m.end)}
	}

	if len(tokens) > 0 {
		var (
			sum   float64
			spans []Span
			ok    = true
		)
		for _, tok := range tokens {
			tm := approxFind(tok, f.text.runes)
			s := float64(tm.distance) / float64(len(tok))
			if s > ix.threshold {
				ok = false
				break
			}
			sum += s
			spans = append(spans, f.text.span(tm.start, tm.end))
		}
		if ok {
			if s := sum / float64(len(tokens)); s < best.Score {
				best.Score = s
				best.Spans = mergeSpans(spans)
			}
		}
	}

	if math.IsInf(best.Score, 1) {
		return FieldMatch{}, false
	}
	return best, true
}

// normalizeQuery trims the query and caps it at MaxQueryLength runes.
func normalizeQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if utf8.RuneCountInString(q) <= MaxQueryLength {
		return q
	}
	return string([]rune(q)[:MaxQueryLength])
}

// mergeSpans sorts spans and merges overlapping or touching ones.
func mergeSpans(spans []Span) []Span {
	spans = slices.DeleteFunc(slices.Clone(spans), func(s Span) bool { return s.End <= s.Start })
	if len(spans) == 0 {
		return nil
	}
	slices.SortFunc(spans, func(a, b Span) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	out := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			last.End = max(last.End, s.End)
			continue
		}
		out = append(out, s)
	}
	return out
}
