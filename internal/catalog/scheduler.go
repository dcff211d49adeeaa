package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler reloads the catalog on a fixed interval.
type Scheduler struct {
	cron    *cron.Cron
	catalog *Catalog
	log     *slog.Logger
}

// NewScheduler creates a Scheduler that calls Load every interval.
func NewScheduler(c *Catalog, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	cr := cron.New()

	s := &Scheduler{
		cron:    cr,
		catalog: c,
		log:     log,
	}

	if _, err := cr.AddFunc("@every "+interval.String(), s.runRefresh); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled refreshes.
func (s *Scheduler) Start() {
	s.log.Info("catalog refresh scheduler started")
	s.cron.Start()
}

// Stop stops the scheduler. The returned context is done once a running
// refresh finishes.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("catalog refresh scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runRefresh() {
	ctx := context.Background()
	s.log.Info("scheduled catalog refresh starting")
	if _, err := s.catalog.Load(ctx); err != nil {
		s.log.Error("scheduled catalog refresh failed", "error", err)
	}
}
