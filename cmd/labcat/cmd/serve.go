package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/donaldgifford/lab-catalog/internal/api/handlers"
	mw "github.com/donaldgifford/lab-catalog/internal/api/middleware"
	"github.com/donaldgifford/lab-catalog/internal/catalog"
	"github.com/donaldgifford/lab-catalog/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over a local HTTP API",
		Long: "Start an HTTP server exposing search, filtering, favorites, and\n" +
			"catalog status. The catalog is loaded at startup when auto_load is\n" +
			"set and refreshed on catalog.refresh_interval.",
		Example: `  labcat serve --port 8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if host != "" {
					a.cfg.Server.Host = host
				}
				if port != 0 {
					a.cfg.Server.Port = port
				}
				return runServe(cmd.Context(), a)
			})
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")

	return cmd
}

func runServe(ctx context.Context, a *app) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, a.cfg.Telemetry, Version, a.log)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			a.log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	if a.cfg.Catalog.AutoLoad {
		// Serve even if the first load fails; /readyz reports it and the
		// scheduler or a reload can recover.
		if _, err := a.load(ctx, false); err != nil {
			a.log.Error("initial catalog load failed", "error", err)
		}
	}

	if interval := a.cfg.Catalog.RefreshInterval; interval > 0 {
		sched, err := catalog.NewScheduler(a.catalog, interval, a.log)
		if err != nil {
			return fmt.Errorf("creating refresh scheduler: %w", err)
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	e := newServer(a)

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", "addr", addr)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	a.log.Info("server stopped")
	return nil
}

func newServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		mw.Recovery(a.log),
		mw.Tracing(otel.Tracer("github.com/donaldgifford/lab-catalog/api")),
		mw.RequestLog(a.log),
		mw.Metrics(),
	)

	health := handlers.NewHealthHandler(a.catalog)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cfg := huma.DefaultConfig("labcat", Version)
	cfg.Info.Description = "Search, filter, and favorite laboratory catalog studies."
	api := humaecho.New(e, cfg)

	handlers.RegisterCatalogRoutes(api, handlers.NewCatalogHandler(a.catalog))
	handlers.RegisterStudyRoutes(api, handlers.NewStudiesHandler(a.catalog))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(a.session, a.catalog))
	handlers.RegisterFavoriteRoutes(api, handlers.NewFavoritesHandler(a.favorites, a.catalog))

	return e
}
