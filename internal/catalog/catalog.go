// Package catalog loads the laboratory catalog from the backend, falls back
// to the cached snapshot when the backend is unreachable, and publishes
// snapshots under a generation counter so the newest load always wins.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/lab-catalog/internal/cache"
	"github.com/donaldgifford/lab-catalog/internal/labapi"
	"github.com/donaldgifford/lab-catalog/internal/metrics"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

const (
	defaultLimit       = 1000
	defaultPriceListID = "27"

	tracerName = "github.com/donaldgifford/lab-catalog/internal/catalog"
	meterName  = tracerName
)

// Load results as reported to metrics.
const (
	resultFresh      = "fresh"
	resultCache      = "cache"
	resultFailed     = "failed"
	resultSuperseded = "superseded"
)

// Result describes the outcome of one Load.
type Result struct {
	Snapshot   *domain.CatalogSnapshot
	Generation uint64
	// FromCache is set when the fetch failed and the cached snapshot was used.
	FromCache bool
	CachedAt  time.Time
	// Err holds the fetch error when the snapshot came from the cache.
	Err error
	// Superseded is set when a newer load published first; Snapshot was
	// not published.
	Superseded bool
}

// Catalog owns the published snapshot and everything derived from it.
type Catalog struct {
	api    labapi.CatalogAPI
	cache  *cache.SnapshotCache
	params labapi.ListParams
	log    *slog.Logger
	tracer trace.Tracer
	meter  metric.MeterProvider
	now    func() time.Time

	loadDuration metric.Float64Histogram

	nextGen  atomic.Uint64
	inflight atomic.Int32
	current  atomic.Pointer[view]

	mu           sync.Mutex
	publishedGen uint64
	lastErr      error
	fromCache    bool
	cachedAt     time.Time

	cacheMu   sync.Mutex
	cachedGen uint64

	notifyMu    sync.Mutex
	subscribers []func(*domain.CatalogSnapshot)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		c.log = l
	}
}

// WithCache enables the snapshot cache. Without it, loads never write or
// fall back to a cached snapshot.
func WithCache(sc *cache.SnapshotCache) Option {
	return func(c *Catalog) {
		c.cache = sc
	}
}

// WithListParams sets the listing limit and price-list scope.
func WithListParams(limit int, priceListID string) Option {
	return func(c *Catalog) {
		if limit > 0 {
			c.params.Limit = limit
		}
		if priceListID != "" {
			c.params.PriceListID = priceListID
		}
	}
}

// WithTracer sets the tracer used for load spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Catalog) {
		c.tracer = t
	}
}

// WithMeterProvider sets the provider for the OpenTelemetry load
// instruments. The global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Catalog) {
		c.meter = mp
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// New creates a Catalog that fetches from api.
func New(api labapi.CatalogAPI, opts ...Option) *Catalog {
	c := &Catalog{
		api: api,
		params: labapi.ListParams{
			Limit:       defaultLimit,
			PriceListID: defaultPriceListID,
		},
		log:    slog.Default(),
		tracer: otel.Tracer(tracerName),
		meter:  otel.GetMeterProvider(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	hist, err := c.meter.Meter(meterName).Float64Histogram("labcat.catalog.load.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of catalog loads by outcome."),
	)
	if err != nil {
		c.log.Warn("catalog load histogram unavailable", "error", err)
	}
	c.loadDuration = hist
	return c
}

// Subscribe registers fn to be called with every newly published snapshot.
func (c *Catalog) Subscribe(fn func(*domain.CatalogSnapshot)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Load fetches tests, bundles, and areas concurrently, normalizes them, and
// publishes the resulting snapshot. When the fetch fails the cached
// snapshot is published instead; when nothing is cached the returned error
// wraps ErrLoadFailed.
func (c *Catalog) Load(ctx context.Context) (*Result, error) {
	gen := c.nextGen.Add(1)
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	start := time.Now()
	outcome := resultFailed
	defer func() {
		elapsed := time.Since(start).Seconds()
		metrics.CatalogLoadDuration.Observe(elapsed)
		metrics.CatalogLoadsTotal.WithLabelValues(outcome).Inc()
		if c.loadDuration != nil {
			c.loadDuration.Record(ctx, elapsed, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}()

	ctx, span := c.tracer.Start(ctx, "catalog.Load")
	defer span.End()

	span.SetAttributes(attribute.String("catalog.generation", strconv.FormatUint(gen, 10)))
	c.log.Info("loading catalog", "generation", gen, "price_list_id", c.params.PriceListID)

	snap, fetchErr := c.fetch(ctx)
	if fetchErr == nil {
		span.SetAttributes(attribute.Int("catalog.entries", snap.TotalEntries))

		res := &Result{Snapshot: snap, Generation: gen}
		if !c.publish(gen, snap, nil, false, time.Time{}) {
			res.Superseded = true
			outcome = resultSuperseded
			return res, nil
		}
		c.writeCache(ctx, gen, snap)
		outcome = resultFresh
		c.log.Info("catalog loaded",
			"generation", gen,
			"tests", snap.TotalTests,
			"bundles", snap.TotalBundles,
			"areas", len(snap.Areas),
		)
		return res, nil
	}

	span.RecordError(fetchErr)
	c.log.Warn("catalog fetch failed", "generation", gen, "error", fetchErr)

	cached, cacheErr := c.readCache(ctx)
	if cacheErr == nil {
		cachedAt := time.UnixMilli(cached.Timestamp).UTC()
		res := &Result{
			Snapshot:   cached.Snapshot,
			Generation: gen,
			FromCache:  true,
			CachedAt:   cachedAt,
			Err:        fetchErr,
		}
		if !c.publish(gen, cached.Snapshot, fetchErr, true, cachedAt) {
			res.Superseded = true
			outcome = resultSuperseded
			return res, nil
		}
		outcome = resultCache
		c.log.Warn("serving cached catalog",
			"generation", gen,
			"entries", cached.Snapshot.TotalEntries,
			"age", cached.Age(c.now()).Round(time.Second),
		)
		return res, nil
	}

	err := fmt.Errorf("%w: %w", ErrLoadFailed, errors.Join(fetchErr, cacheErr))
	span.SetStatus(codes.Error, err.Error())
	res := &Result{Generation: gen, Err: err}
	if !c.fail(gen, err) {
		res.Superseded = true
		outcome = resultSuperseded
		return res, err
	}
	c.log.Error("catalog load failed", "generation", gen, "error", err)
	return res, err
}

// Reload discards the cached snapshot and loads again.
func (c *Catalog) Reload(ctx context.Context) (*Result, error) {
	if c.cache != nil {
		if err := c.cache.Clear(ctx); err != nil {
			c.log.Warn("clearing snapshot cache", "error", err)
		}
	}
	return c.Load(ctx)
}

// Snapshot returns the published snapshot, or nil before the first
// successful load.
func (c *Catalog) Snapshot() *domain.CatalogSnapshot {
	if v := c.current.Load(); v != nil {
		return v.snap
	}
	return nil
}

// Export writes the published snapshot as indented JSON.
func (c *Catalog) Export(w io.Writer) error {
	snap := c.Snapshot()
	if snap == nil {
		return ErrNotLoaded
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

func (c *Catalog) fetch(ctx context.Context) (*domain.CatalogSnapshot, error) {
	var (
		tests   []labapi.RawTest
		bundles []labapi.RawBundle
		areas   []labapi.RawArea
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if tests, err = c.api.ListTests(gctx, c.params); err != nil {
			return classify("tests", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if bundles, err = c.api.ListBundles(gctx, c.params); err != nil {
			return classify("bundles", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if areas, err = c.api.ListAreas(gctx); err != nil {
			// Areas only feed the category index; the load goes on without them.
			c.log.Warn("fetching areas", "error", err)
			areas = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]domain.CatalogEntry, 0, len(tests)+len(bundles))
	seen := make(map[string]struct{}, cap(entries))
	entries = appendValid(entries, seen, testEntries(tests))
	entries = appendValid(entries, seen, bundleEntries(bundles))

	snap := domain.NewSnapshot(entries, labapi.ToAreas(areas), c.now())
	metrics.CatalogEntries.WithLabelValues(string(domain.SourceTest)).Set(float64(snap.TotalTests))
	metrics.CatalogEntries.WithLabelValues(string(domain.SourceBundle)).Set(float64(snap.TotalBundles))
	return snap, nil
}

// candidate pairs a normalized entry with whether its raw record had an id.
type candidate struct {
	entry domain.CatalogEntry
	hasID bool
}

func testEntries(raw []labapi.RawTest) []candidate {
	out := make([]candidate, len(raw))
	for i := range raw {
		out[i] = candidate{entry: labapi.TestToEntry(&raw[i]), hasID: raw[i].ID.String() != ""}
	}
	return out
}

func bundleEntries(raw []labapi.RawBundle) []candidate {
	out := make([]candidate, len(raw))
	for i := range raw {
		out[i] = candidate{entry: labapi.BundleToEntry(&raw[i]), hasID: raw[i].ID.String() != ""}
	}
	return out
}

// appendValid appends candidates that have an id and a name and whose id
// has not been seen yet.
func appendValid(
	dst []domain.CatalogEntry,
	seen map[string]struct{},
	cands []candidate,
) []domain.CatalogEntry {
	for i := range cands {
		cand := &cands[i]
		switch {
		case !cand.hasID:
			metrics.CatalogRecordsSkippedTotal.WithLabelValues("missing_id").Inc()
			continue
		case cand.entry.Name == "":
			metrics.CatalogRecordsSkippedTotal.WithLabelValues("missing_name").Inc()
			continue
		}
		if _, dup := seen[cand.entry.ID]; dup {
			metrics.CatalogRecordsSkippedTotal.WithLabelValues("duplicate").Inc()
			continue
		}
		seen[cand.entry.ID] = struct{}{}
		dst = append(dst, cand.entry)
	}
	return dst
}

// writeCache persists snap for generation gen. The write is skipped once a
// newer generation has published or been cached, so the cache never moves
// back to older data than what is being served.
func (c *Catalog) writeCache(ctx context.Context, gen uint64, snap *domain.CatalogSnapshot) {
	if c.cache == nil {
		return
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.mu.Lock()
	current := c.publishedGen
	c.mu.Unlock()
	if gen != current || gen <= c.cachedGen {
		c.log.Debug("skipping cache write for superseded load", "generation", gen, "published", current)
		return
	}

	if err := c.cache.Save(ctx, snap); err != nil {
		metrics.CacheWriteErrorsTotal.Inc()
		c.log.Warn("writing snapshot cache", "error", err)
		return
	}
	c.cachedGen = gen
}

func (c *Catalog) readCache(ctx context.Context) (*domain.CachedSnapshot, error) {
	if c.cache == nil {
		return nil, ErrCacheMiss
	}
	cached, err := c.cache.Load(ctx)
	if err != nil {
		metrics.CacheMissesTotal.Inc()
		return nil, fmt.Errorf("%w: %w", ErrCacheMiss, err)
	}
	metrics.CacheHitsTotal.Inc()
	return cached, nil
}

// publish installs snap if gen is newer than the last published
// generation. It reports whether the snapshot was installed.
func (c *Catalog) publish(gen uint64, snap *domain.CatalogSnapshot, loadErr error, fromCache bool, cachedAt time.Time) bool {
	v := newView(gen, snap)

	c.mu.Lock()
	if gen <= c.publishedGen {
		c.mu.Unlock()
		c.log.Debug("discarding superseded load", "generation", gen, "published", c.publishedGen)
		return false
	}
	c.publishedGen = gen
	c.lastErr = loadErr
	c.fromCache = fromCache
	c.cachedAt = cachedAt
	c.current.Store(v)
	c.mu.Unlock()

	c.notify(v)
	return true
}

// fail records a load failure with no fallback. The previously published
// snapshot, if any, stays in place.
func (c *Catalog) fail(gen uint64, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen <= c.publishedGen {
		return false
	}
	c.publishedGen = gen
	c.lastErr = err
	return true
}

func (c *Catalog) notify(v *view) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	// A newer view may have been stored while waiting for the lock.
	if c.current.Load() != v {
		return
	}
	for _, fn := range c.subscribers {
		fn(v.snap)
	}
}
