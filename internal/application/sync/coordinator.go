package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/sync"
)

// Options controls one sync run
type Options struct {
	// FullSync forces a FULL run, ignoring the stored cursor
	FullSync bool
	// FromDate/ToDate select a HISTORICAL window when both are set
	FromDate *time.Time
	ToDate   *time.Time
}

// Coordinator orchestrates one sync run for one (user, jobType) pair:
// it acquires the run lock, resolves mode and cursor, drives the
// platform source in batches, normalizes, and reconciles batch by batch
// so partial progress is durable.
type Coordinator struct {
	registry *Registry
	runs     sync.RunRepository
	cursors  sync.CursorRepository
	creds    platform.CredentialRepository
	logger   *zap.Logger
}

// NewCoordinator creates a sync coordinator
func NewCoordinator(
	registry *Registry,
	runs sync.RunRepository,
	cursors sync.CursorRepository,
	creds platform.CredentialRepository,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		registry: registry,
		runs:     runs,
		cursors:  cursors,
		creds:    creds,
		logger:   logger,
	}
}

// StartedRun carries the state established by Begin for execution
type StartedRun struct {
	run    *sync.Run
	job    *Job
	cursor *sync.Cursor
	window platform.TimeWindow
}

// RunSync executes one sync run to completion and returns its ledger
// row. The returned run is always terminal; on failure the error
// explains why and the stored cursor is left untouched.
func (c *Coordinator) RunSync(ctx context.Context, userID uuid.UUID, jobType sync.JobType, opts Options) (*sync.Run, error) {
	started, err := c.Begin(ctx, userID, jobType, opts)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, started)
}

// Begin acquires the run lock and creates the RUNNING ledger row. The
// insert itself is the lock: a partial unique index on
// (user_id, job_type) WHERE status = 'RUNNING' makes the check and the
// write one atomic operation, so two concurrent callers cannot both
// win. Callers that receive a *StartedRun must Execute it.
func (c *Coordinator) Begin(ctx context.Context, userID uuid.UUID, jobType sync.JobType, opts Options) (*StartedRun, error) {
	job, err := c.registry.Get(jobType)
	if err != nil {
		return nil, err
	}

	cursor, err := c.cursors.Find(ctx, userID, jobType)
	if err != nil {
		if !errors.Is(err, sync.ErrCursorNotFound) {
			return nil, fmt.Errorf("sync: loading cursor: %w", err)
		}
		cursor = sync.NewCursor(userID, jobType)
	}

	mode, window, err := resolveMode(cursor, opts, job.FullWindow, job.CursorOverlap)
	if err != nil {
		return nil, err
	}

	run := sync.NewRun(userID, jobType, mode, cursor.LastCursorValue)
	if err := c.runs.TryStart(ctx, run); err != nil {
		return nil, err
	}

	c.logger.Info("Sync run started",
		zap.String("run_id", run.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("job_type", string(jobType)),
		zap.String("mode", string(mode)),
		zap.Time("window_from", window.From),
		zap.Time("window_to", window.To),
	)

	return &StartedRun{run: run, job: job, cursor: cursor, window: window}, nil
}

// resolveMode picks the run mode and fetch window. Explicit dates win,
// then the full-sync flag; otherwise the run is INCREMENTAL from the
// stored cursor, degrading to FULL on a cold start.
func resolveMode(cursor *sync.Cursor, opts Options, fullWindow, overlap time.Duration) (sync.Mode, platform.TimeWindow, error) {
	now := time.Now()

	if opts.FromDate != nil || opts.ToDate != nil {
		if opts.FromDate == nil || opts.ToDate == nil {
			return "", platform.TimeWindow{}, fmt.Errorf("sync: historical runs need both from and to dates")
		}
		if opts.ToDate.Before(*opts.FromDate) {
			return "", platform.TimeWindow{}, fmt.Errorf("sync: historical window end precedes start")
		}
		return sync.ModeHistorical, platform.TimeWindow{From: *opts.FromDate, To: *opts.ToDate}, nil
	}

	if opts.FullSync || !cursor.HasValue() {
		return sync.ModeFull, platform.TimeWindow{From: now.Add(-fullWindow), To: now}, nil
	}

	from := cursor.Time()
	if from.IsZero() {
		// Cursor present but unparseable; re-cover the full window
		// rather than guessing.
		return sync.ModeFull, platform.TimeWindow{From: now.Add(-fullWindow), To: now}, nil
	}
	return sync.ModeIncremental, platform.TimeWindow{From: from.Add(-overlap), To: now}, nil
}

// Execute drives a started run to its terminal state
func (c *Coordinator) Execute(ctx context.Context, s *StartedRun) (*sync.Run, error) {
	run, job := s.run, s.job
	log := c.logger.With(
		zap.String("run_id", run.ID.String()),
		zap.String("job_type", string(run.JobType)),
	)

	cred, err := c.creds.FindByUserAndPlatform(ctx, run.UserID, run.JobType.Platform())
	if err != nil {
		return c.fail(ctx, run, sync.Counts{}, fmt.Errorf("%w for %s", platform.ErrCredentialsMissing, run.JobType.Platform()))
	}
	if cred.IsExpired(time.Now()) {
		return c.fail(ctx, run, sync.Counts{}, fmt.Errorf("%w for %s", platform.ErrCredentialsExpired, run.JobType.Platform()))
	}

	var (
		counts      sync.Counts
		maxObserved time.Time
		pageToken   string
		batches     int
	)

	for {
		// Cancellation is checked between batches, never mid-batch, so
		// a cancelled run keeps the same resumability guarantee as a
		// network failure.
		select {
		case <-ctx.Done():
			return c.fail(ctx, run, counts, sync.ErrRunCancelled)
		default:
		}

		page, err := job.Source.FetchPage(ctx, cred, s.window, pageToken, job.PageSize)
		if err != nil {
			return c.fail(ctx, run, counts, fmt.Errorf("fetching page %d: %w", batches+1, err))
		}
		batches++

		batchCounts, batchMax, err := c.processBatch(ctx, job, run.UserID, page.Records, log)
		counts.Add(batchCounts)
		if err != nil {
			// Persistence failure aborts the run without advancing the
			// cursor; the whole batch is retried on the next run.
			return c.fail(ctx, run, counts, fmt.Errorf("reconciling batch %d: %w", batches, err))
		}
		if batchMax.After(maxObserved) {
			maxObserved = batchMax
		}

		if !page.HasMore {
			break
		}
		pageToken = page.NextPageToken

		if job.InterBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return c.fail(ctx, run, counts, sync.ErrRunCancelled)
			case <-time.After(job.InterBatchDelay):
			}
		}
	}

	if err := c.complete(ctx, s, counts, maxObserved); err != nil {
		return c.fail(ctx, run, counts, err)
	}

	log.Info("Sync run completed",
		zap.Int("batches", batches),
		zap.Int("processed", counts.Processed),
		zap.Int("created", counts.Created),
		zap.Int("updated", counts.Updated),
		zap.Int("skipped", counts.Skipped),
		zap.Duration("duration", run.Duration()),
	)
	return run, nil
}

// processBatch normalizes one page and hands it to the reconciler.
// Normalization anomalies never abort the run; the record is dropped,
// counted as skipped, and logged with enough context to investigate.
func (c *Coordinator) processBatch(ctx context.Context, job *Job, userID uuid.UUID, raw []platform.RawRecord, log *zap.Logger) (sync.Counts, time.Time, error) {
	counts := sync.Counts{Processed: len(raw)}
	var maxObserved time.Time

	records := make([]platform.CanonicalRecord, 0, len(raw))
	for _, r := range raw {
		rec, err := job.Normalizer.Normalize(r)
		if err != nil || rec == nil {
			counts.Skipped++
			fields := []zap.Field{
				zap.String("platform", string(r.Platform)),
				zap.String("kind", string(r.Kind)),
				zap.Int("payload_bytes", len(r.Payload)),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Warn("Dropped unnormalizable record", fields...)
			continue
		}
		if t := rec.ObservedAt(); t.After(maxObserved) {
			maxObserved = t
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return counts, maxObserved, nil
	}

	recCounts, err := job.Reconciler.Reconcile(ctx, userID, records)
	counts.Created += recCounts.Created
	counts.Updated += recCounts.Updated
	counts.Skipped += recCounts.Skipped
	if err != nil {
		return counts, maxObserved, err
	}
	return counts, maxObserved, nil
}

// complete persists the advanced cursor, then flips the run to
// COMPLETED. The cursor only moves after every batch has durably
// committed.
func (c *Coordinator) complete(ctx context.Context, s *StartedRun, counts sync.Counts, maxObserved time.Time) error {
	run, job, cursor := s.run, s.job, s.cursor

	next := maxObserved
	if next.IsZero() {
		// An empty window still advances the cursor to its end so the
		// next incremental run does not re-cover it forever.
		next = s.window.To
	}
	next = next.Add(-job.CursorOverlap)

	switch run.Mode {
	case sync.ModeHistorical:
		cursor.MarkHistoricalComplete()
		// A backfill of an old window must not drag the live cursor
		// backwards.
		if next.After(cursor.Time()) {
			cursor.Advance(next)
		}
	default:
		cursor.Advance(next)
	}
	cursor.ScheduleNext(time.Now())

	if err := c.cursors.Save(ctx, cursor); err != nil {
		return fmt.Errorf("persisting cursor: %w", err)
	}

	run.Complete(counts, cursor.LastCursorValue)
	if err := c.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	return nil
}

// fail records the terminal FAILED state with the partial counts. The
// stored cursor is untouched, so the next incremental run re-covers the
// failed window.
func (c *Coordinator) fail(ctx context.Context, run *sync.Run, counts sync.Counts, cause error) (*sync.Run, error) {
	run.Fail(cause.Error(), counts)
	if err := c.runs.Update(ctx, run); err != nil {
		c.logger.Error("Failed to persist failed run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}
	c.logger.Warn("Sync run failed",
		zap.String("run_id", run.ID.String()),
		zap.String("job_type", string(run.JobType)),
		zap.Int("processed", counts.Processed),
		zap.Error(cause),
	)
	return run, cause
}
