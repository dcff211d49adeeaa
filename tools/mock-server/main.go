// Package main implements a mock laboratory backend for local development.
// It serves the tests, bundles, areas, and search endpoints from a JSON
// fixture, and can be told to fail so the cache fallback can be exercised.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// fixture holds the raw records served by each endpoint.
type fixture struct {
	Tests   []json.RawMessage `json:"tests"`
	Bundles []json.RawMessage `json:"bundles"`
	Areas   []json.RawMessage `json:"areas"`
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type namedRecord struct {
	Name string `json:"name"`
}

// server serves one fixture. failing switches every endpoint to a
// success=false payload.
type server struct {
	log     *slog.Logger
	fixture *fixture
	latency time.Duration
	failing atomic.Bool
}

func main() {
	port := flag.Int("port", 3001, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/catalog.json", "path to catalog fixture")
	latency := flag.Duration("latency", 0, "artificial delay added to every response")
	fail := flag.Bool("fail", false, "start in failure mode (toggle with POST /admin/fail)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "tests", len(fx.Tests), "bundles", len(fx.Bundles), "areas", len(fx.Areas))

	s := &server{log: logger, fixture: fx, latency: *latency}
	s.failing.Store(*fail)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock lab backend", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, s.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tests", s.listHandler("tests", s.fixture.Tests))
	mux.HandleFunc("GET /api/bundles", s.listHandler("bundles", s.fixture.Bundles))
	mux.HandleFunc("GET /api/areas", s.listHandler("areas", s.fixture.Areas))
	mux.HandleFunc("GET /api/search", s.searchHandler())
	mux.HandleFunc("POST /admin/fail", s.toggleFailHandler())
	return mux
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fx, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func (s *server) write(w http.ResponseWriter, resp envelope) {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(resp)
}

func (s *server) listHandler(name string, records []json.RawMessage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.failing.Load() {
			s.write(w, envelope{Success: false, Message: "mock backend in failure mode"})
			return
		}

		out := records
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 0 && limit < len(out) {
			out = out[:limit]
		}
		if out == nil {
			out = []json.RawMessage{}
		}

		s.write(w, envelope{Success: true, Data: out})
		s.log.Info("list", "endpoint", name, "returned", len(out),
			"price_list_id", r.URL.Query().Get("price_list_id"))
	}
}

func (s *server) searchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.failing.Load() {
			s.write(w, envelope{Success: false, Message: "mock backend in failure mode"})
			return
		}

		q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
		data := map[string][]json.RawMessage{
			"tests":   matchByName(s.fixture.Tests, q),
			"bundles": matchByName(s.fixture.Bundles, q),
		}

		s.write(w, envelope{Success: true, Data: data})
		s.log.Info("search", "query", q, "tests", len(data["tests"]), "bundles", len(data["bundles"]))
	}
}

func (s *server) toggleFailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		failing := !s.failing.Load()
		s.failing.Store(failing)
		s.log.Info("failure mode toggled", "failing", failing)
		s.write(w, envelope{Success: true, Data: map[string]bool{"failing": failing}})
	}
}

// matchByName returns the records whose name contains q, case-insensitively.
func matchByName(records []json.RawMessage, q string) []json.RawMessage {
	matched := []json.RawMessage{}
	for _, raw := range records {
		var rec namedRecord
		//nolint:errcheck,gosec // fixture data is trusted; name extraction is best-effort
		json.Unmarshal(raw, &rec)
		if q == "" || strings.Contains(strings.ToLower(rec.Name), q) {
			matched = append(matched, raw)
		}
	}
	return matched
}
