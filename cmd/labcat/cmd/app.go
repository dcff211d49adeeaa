package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/viper"

	"github.com/donaldgifford/lab-catalog/internal/cache"
	"github.com/donaldgifford/lab-catalog/internal/catalog"
	"github.com/donaldgifford/lab-catalog/internal/config"
	"github.com/donaldgifford/lab-catalog/internal/favorites"
	"github.com/donaldgifford/lab-catalog/internal/kv"
	"github.com/donaldgifford/lab-catalog/internal/labapi"
	"github.com/donaldgifford/lab-catalog/internal/search"
	"github.com/donaldgifford/lab-catalog/pkg/logger"
)

// app wires the catalog components for one command invocation.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	store     kv.Store
	catalog   *catalog.Catalog
	session   *search.Session
	favorites *favorites.Store
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	if v := viper.GetString("api-url"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	return buildApp(ctx, cfg, log)
}

func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	store, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}

	api := labapi.NewHTTPClient(cfg.API.BaseURL,
		labapi.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		labapi.WithPaths(cfg.API.TestsPath, cfg.API.BundlesPath, cfg.API.AreasPath, cfg.API.SearchPath),
		labapi.WithRateLimiter(labapi.NewRateLimiter(cfg.API.RateLimit.PerSecond, cfg.API.RateLimit.Burst)),
	)

	opts := []catalog.Option{
		catalog.WithLogger(log),
		catalog.WithListParams(cfg.API.Limit, cfg.API.PriceListID),
	}
	if cfg.Catalog.UseCache {
		opts = append(opts, catalog.WithCache(cache.New(store)))
	}
	cat := catalog.New(api, opts...)

	s := cfg.Search
	session := search.NewSession(
		search.WithIndexOptions(
			search.WithWeights(search.Weights{
				Name:       s.Weights.Name,
				Code:       s.Weights.Code,
				StudyType:  s.Weights.StudyType,
				SearchText: s.Weights.SearchText,
			}),
			search.WithThreshold(s.MatchThreshold()),
			search.WithMinQueryLength(s.MinQueryLength),
			search.WithQueryCacheSize(s.QueryCacheSize),
			search.WithIndexLogger(log),
		),
		search.WithDebounce(s.Debounce),
		search.WithHistorySize(s.HistorySize),
		search.WithSuggestionLimit(s.Suggestions),
		search.WithSessionLogger(log),
	)
	cat.Subscribe(session.OnSnapshot)

	favs, err := favorites.Open(ctx, store, favorites.WithLogger(log))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		log:       log,
		store:     store,
		catalog:   cat,
		session:   session,
		favorites: favs,
	}, nil
}

// load fetches the catalog, falling back to the cache. Cache fallbacks are
// reported as warnings, not errors.
func (a *app) load(ctx context.Context, reload bool) (*catalog.Result, error) {
	var (
		res *catalog.Result
		err error
	)
	if reload {
		res, err = a.catalog.Reload(ctx)
	} else {
		res, err = a.catalog.Load(ctx)
	}
	if err != nil {
		return res, err
	}
	if res.FromCache {
		a.log.Warn("backend unavailable, using cached catalog",
			"cached_at", res.CachedAt, "error", res.Err)
	}
	return res, nil
}

// mustLoad loads the catalog if nothing is published yet.
func (a *app) mustLoad(ctx context.Context) error {
	if a.catalog.Snapshot() != nil {
		return nil
	}
	_, err := a.load(ctx, false)
	return err
}

func (a *app) Close() error {
	a.session.Close()
	return a.store.Close()
}

// withApp runs fn with a wired app and closes it afterwards.
func withApp(ctx context.Context, fn func(*app) error) (err error) {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return fn(a)
}
