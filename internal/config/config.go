// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config is the top-level application configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Search    SearchConfig    `yaml:"search"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig defines the laboratory backend API settings.
type APIConfig struct {
	BaseURL     string          `yaml:"base_url"`
	TestsPath   string          `yaml:"tests_path"`
	BundlesPath string          `yaml:"bundles_path"`
	AreasPath   string          `yaml:"areas_path"`
	SearchPath  string          `yaml:"search_path"`
	PriceListID string          `yaml:"price_list_id"`
	Limit       int             `yaml:"limit"`
	Timeout     time.Duration   `yaml:"timeout"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines backend API rate limiting settings.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// CatalogConfig defines loader behavior.
type CatalogConfig struct {
	UseCache        bool          `yaml:"use_cache"`
	AutoLoad        bool          `yaml:"auto_load"`
	RefreshInterval time.Duration `yaml:"refresh_interval"` // 0 disables periodic refresh
}

// SearchConfig defines search index and session settings.
type SearchConfig struct {
	// Threshold is nil when unset; an explicit 0 selects exact-only matching.
	Threshold      *float64      `yaml:"threshold"`
	MinQueryLength int           `yaml:"min_query_length"`
	Debounce       time.Duration `yaml:"debounce"`
	HistorySize    int           `yaml:"history_size"`
	Suggestions    int           `yaml:"suggestions"`
	QueryCacheSize int           `yaml:"query_cache_size"`
	Weights        SearchWeights `yaml:"weights"`
}

// DefaultThreshold is the match threshold used when none is configured.
const DefaultThreshold = 0.3

// MatchThreshold returns the configured threshold or DefaultThreshold.
func (s SearchConfig) MatchThreshold() float64 {
	if s.Threshold == nil {
		return DefaultThreshold
	}
	return *s.Threshold
}

// SearchWeights defines the relative weight of each indexed field.
type SearchWeights struct {
	Name       float64 `yaml:"name"`
	Code       float64 `yaml:"code"`
	StudyType  float64 `yaml:"study_type"`
	SearchText float64 `yaml:"search_text"`
}

// StorageConfig defines where the snapshot cache and favorites are kept.
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, file, sqlite, postgres
	Dir     string `yaml:"dir"`     // file backend
	Path    string `yaml:"path"`    // sqlite backend
	DSN     string `yaml:"dsn"`     // postgres backend
}

// ServerConfig defines the local HTTP query surface.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, pretty
}

// TelemetryConfig defines OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse parses YAML config content, performing environment variable
// substitution, defaulting, and validation.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{
		Catalog: CatalogConfig{UseCache: true, AutoLoad: true},
	}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a fully defaulted configuration pointing at a local backend.
func Default() *Config {
	cfg := &Config{
		Catalog: CatalogConfig{UseCache: true, AutoLoad: true},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyAPIDefaults(&cfg.API)
	applySearchDefaults(&cfg.Search)
	applyStorageDefaults(&cfg.Storage)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyAPIDefaults(a *APIConfig) {
	if a.BaseURL == "" {
		a.BaseURL = "http://localhost:3001/api"
	}
	if a.TestsPath == "" {
		a.TestsPath = "/tests"
	}
	if a.BundlesPath == "" {
		a.BundlesPath = "/bundles"
	}
	if a.AreasPath == "" {
		a.AreasPath = "/areas"
	}
	if a.SearchPath == "" {
		a.SearchPath = "/search"
	}
	if a.PriceListID == "" {
		a.PriceListID = "27"
	}
	if a.Limit == 0 {
		a.Limit = 1000
	}
	if a.Timeout == 0 {
		a.Timeout = 30 * time.Second
	}
	if a.RateLimit.PerSecond == 0 {
		a.RateLimit.PerSecond = 10
	}
	if a.RateLimit.Burst == 0 {
		a.RateLimit.Burst = 5
	}
}

func applySearchDefaults(s *SearchConfig) {
	if s.Threshold == nil {
		t := DefaultThreshold
		s.Threshold = &t
	}
	if s.MinQueryLength == 0 {
		s.MinQueryLength = 2
	}
	if s.Debounce == 0 {
		s.Debounce = 300 * time.Millisecond
	}
	if s.HistorySize == 0 {
		s.HistorySize = 10
	}
	if s.Suggestions == 0 {
		s.Suggestions = 5
	}
	if s.QueryCacheSize == 0 {
		s.QueryCacheSize = 256
	}
	w := &s.Weights
	if w.Name == 0 {
		w.Name = 1.0
	}
	if w.Code == 0 {
		w.Code = 0.6
	}
	if w.StudyType == 0 {
		w.StudyType = 0.3
	}
	if w.SearchText == 0 {
		w.SearchText = 0.5
	}
}

func applyStorageDefaults(s *StorageConfig) {
	if s.Backend == "" {
		s.Backend = BackendFile
	}
	if s.Dir == "" {
		s.Dir = defaultDataDir()
	}
	if s.Path == "" {
		s.Path = s.Dir + "/labcat.db"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "labcat"
	}
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/labcat"
	}
	return ".labcat"
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("api.base_url is required"))
	}
	if cfg.API.Limit < 0 {
		errs = append(errs, fmt.Errorf("api.limit must not be negative"))
	}

	if t := cfg.Search.MatchThreshold(); t < 0 || t > 1 {
		errs = append(
			errs,
			fmt.Errorf("search.threshold must be between 0 and 1 (got %v)", t),
		)
	}
	if cfg.Search.Weights.Name < cfg.Search.Weights.Code ||
		cfg.Search.Weights.Name < cfg.Search.Weights.SearchText {
		errs = append(
			errs,
			fmt.Errorf("search.weights.name must be >= search.weights.code and search.weights.search_text"),
		)
	}

	switch cfg.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendPostgres:
		if cfg.Storage.DSN == "" {
			errs = append(
				errs,
				fmt.Errorf("storage.dsn is required when backend is postgres"),
			)
		}
	default:
		errs = append(
			errs,
			fmt.Errorf(
				"storage.backend must be one of: memory, file, sqlite, postgres (got %q)",
				cfg.Storage.Backend,
			),
		)
	}

	if cfg.Catalog.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("catalog.refresh_interval must not be negative"))
	}

	return errors.Join(errs...)
}
