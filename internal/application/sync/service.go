package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/sync"
)

// Status is the queryable sync state for one (user, jobType) pair. It
// is computed from the run ledger and cursor tables, never from
// in-process state, so every service instance sees the same answer.
type Status struct {
	JobType   sync.JobType `json:"job_type"`
	IsRunning bool         `json:"is_running"`
	LastRun   *sync.Run    `json:"last_run,omitempty"`
	Cursor    *sync.Cursor `json:"cursor,omitempty"`
}

// Service is the application facade over the sync engine, consumed by
// the HTTP layer and the scheduler
type Service struct {
	coordinator *Coordinator
	runs        sync.RunRepository
	cursors     sync.CursorRepository
	logger      *zap.Logger
}

// NewService creates the sync application service
func NewService(coordinator *Coordinator, runs sync.RunRepository, cursors sync.CursorRepository, logger *zap.Logger) *Service {
	return &Service{
		coordinator: coordinator,
		runs:        runs,
		cursors:     cursors,
		logger:      logger,
	}
}

// Trigger starts a run and executes it in the background, returning the
// RUNNING ledger row immediately for enqueue-and-poll callers. The lock
// is taken synchronously, so a concurrent duplicate gets
// ErrSyncAlreadyRunning here, not later.
func (s *Service) Trigger(ctx context.Context, userID uuid.UUID, jobType sync.JobType, opts Options) (*sync.Run, error) {
	started, err := s.coordinator.Begin(ctx, userID, jobType, opts)
	if err != nil {
		return nil, err
	}

	go func() {
		// The run outlives the HTTP request that triggered it.
		runCtx, cancel := context.WithTimeout(context.Background(), maxRunDuration(started.run.Mode))
		defer cancel()
		if _, err := s.coordinator.Execute(runCtx, started); err != nil {
			s.logger.Warn("Background sync run finished with error",
				zap.String("run_id", started.run.ID.String()),
				zap.Error(err),
			)
		}
	}()

	return started.run, nil
}

// RunSync executes a run synchronously; used by the scheduler
func (s *Service) RunSync(ctx context.Context, userID uuid.UUID, jobType sync.JobType, opts Options) (*sync.Run, error) {
	return s.coordinator.RunSync(ctx, userID, jobType, opts)
}

// maxRunDuration is the wall-clock budget per run mode. Historical
// backfills are expected to run long.
func maxRunDuration(mode sync.Mode) time.Duration {
	if mode == sync.ModeHistorical {
		return 4 * time.Hour
	}
	return 30 * time.Minute
}

// GetStatus returns the current sync state for a job
func (s *Service) GetStatus(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*Status, error) {
	status := &Status{JobType: jobType}

	running, err := s.runs.FindRunning(ctx, userID, jobType)
	switch {
	case err == nil:
		status.IsRunning = true
		status.LastRun = running
	case errors.Is(err, sync.ErrRunNotFound):
		last, err := s.runs.FindLatest(ctx, userID, jobType)
		if err != nil && !errors.Is(err, sync.ErrRunNotFound) {
			return nil, err
		}
		status.LastRun = last
	default:
		return nil, err
	}

	cursor, err := s.cursors.Find(ctx, userID, jobType)
	if err != nil && !errors.Is(err, sync.ErrCursorNotFound) {
		return nil, err
	}
	status.Cursor = cursor
	return status, nil
}

// ListRuns returns paged run history for a job
func (s *Service) ListRuns(ctx context.Context, userID uuid.UUID, jobType sync.JobType, filter sync.RunFilter) ([]sync.Run, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return s.runs.List(ctx, userID, jobType, filter)
}

// UpdateAutoSync updates a job's auto-sync configuration
func (s *Service) UpdateAutoSync(ctx context.Context, userID uuid.UUID, jobType sync.JobType, enabled bool, intervalHours int) (*sync.Cursor, error) {
	cursor, err := s.cursors.Find(ctx, userID, jobType)
	if err != nil {
		if !errors.Is(err, sync.ErrCursorNotFound) {
			return nil, err
		}
		cursor = sync.NewCursor(userID, jobType)
	}
	cursor.AutoSyncEnabled = enabled
	cursor.AutoSyncIntervalHours = intervalHours
	cursor.ScheduleNext(time.Now())
	if err := s.cursors.Save(ctx, cursor); err != nil {
		return nil, err
	}
	return cursor, nil
}
