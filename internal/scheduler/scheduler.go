// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/PaulSssar/yamdb-final/internal/store"
)

// Scheduler handles background jobs like purging stale registrations.
type Scheduler struct {
	db       *sql.DB
	cron     *cron.Cron
	logger   *slog.Logger
	staleTTL time.Duration
}

// New creates a new scheduler instance. staleTTL is how long a signed-up
// account may sit without a completed login before it is purged.
func New(db *sql.DB, logger *slog.Logger, staleTTL time.Duration) *Scheduler {
	return &Scheduler{
		db:       db,
		cron:     cron.New(),
		logger:   logger,
		staleTTL: staleTTL,
	}
}

// Start begins the scheduler with an hourly purge of stale registrations.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.PurgeStaleRegistrations(context.Background()); err != nil {
			s.logger.Error("failed to purge stale registrations", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PurgeStaleRegistrations removes accounts that signed up but never
// exchanged a confirmation code within the TTL. Superusers and accounts
// with elevated roles are never purged.
func (s *Scheduler) PurgeStaleRegistrations(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.staleTTL)

	purged, err := store.New(s.db).DeleteStaleRegistrations(ctx, cutoff)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.logger.Info("purged stale registrations", "count", purged, "cutoff", cutoff)
	}
	return nil
}
