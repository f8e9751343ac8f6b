// Package scheduler runs the background loops that keep the sync engine
// healthy without operator involvement: the auto-sync scheduler fires
// due jobs on their configured interval, and the janitor fails runs a
// crashed process left RUNNING.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appsync "github.com/brickdesk/backend/internal/application/sync"
	"github.com/brickdesk/backend/internal/domain/sync"
)

// AutoSyncScheduler polls for due cursors and triggers their jobs
type AutoSyncScheduler struct {
	service      *appsync.Service
	cursors      sync.CursorRepository
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewAutoSyncScheduler creates an auto-sync scheduler
func NewAutoSyncScheduler(service *appsync.Service, cursors sync.CursorRepository, pollInterval time.Duration, logger *zap.Logger) *AutoSyncScheduler {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &AutoSyncScheduler{
		service:      service,
		cursors:      cursors,
		pollInterval: pollInterval,
		logger:       logger.Named("autosync"),
	}
}

// Run polls until the context is cancelled. Each due job is triggered
// in its own goroutine; the RUNNING-row lock makes a double trigger
// harmless, so overlap with a manual run just logs and moves on.
func (s *AutoSyncScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.logger.Info("auto-sync scheduler started", zap.Duration("poll_interval", s.pollInterval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("auto-sync scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *AutoSyncScheduler) tick(ctx context.Context) {
	due, err := s.cursors.FindDue(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to query due jobs", zap.Error(err))
		return
	}

	for _, cursor := range due {
		cursor := cursor
		go func() {
			run, err := s.service.RunSync(ctx, cursor.UserID, cursor.JobType, appsync.Options{})
			switch {
			case errors.Is(err, sync.ErrSyncAlreadyRunning):
				s.logger.Info("scheduled sync skipped, job already running",
					zap.String("job_type", string(cursor.JobType)))
			case err != nil:
				s.logger.Warn("scheduled sync failed",
					zap.String("job_type", string(cursor.JobType)),
					zap.Error(err))
			default:
				s.logger.Info("scheduled sync completed",
					zap.String("job_type", string(cursor.JobType)),
					zap.String("run_id", run.ID.String()),
					zap.Int("processed", run.Counts.Processed))
			}
		}()
	}
}

// Janitor fails abandoned RUNNING runs so a crashed process never
// blocks future syncs
type Janitor struct {
	runs      sync.RunRepository
	period    time.Duration
	threshold time.Duration
	logger    *zap.Logger
}

// NewJanitor creates a stale-run janitor
func NewJanitor(runs sync.RunRepository, period, threshold time.Duration, logger *zap.Logger) *Janitor {
	if period <= 0 {
		period = 10 * time.Minute
	}
	if threshold <= 0 {
		threshold = 6 * time.Hour
	}
	return &Janitor{
		runs:      runs,
		period:    period,
		threshold: threshold,
		logger:    logger.Named("janitor"),
	}
}

// Run sweeps on startup and then on the period until the context is
// cancelled. The startup sweep releases locks held by a previous
// process that crashed mid-run.
func (j *Janitor) Run(ctx context.Context) {
	j.sweep(ctx)

	ticker := time.NewTicker(j.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.threshold)
	failed, err := j.runs.FailAbandoned(ctx, cutoff, "Run abandoned: process terminated before completion")
	if err != nil {
		j.logger.Error("stale run sweep failed", zap.Error(err))
		return
	}
	if failed > 0 {
		j.logger.Warn("failed abandoned runs", zap.Int64("count", failed))
	}
}
