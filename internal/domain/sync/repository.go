package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunFilter defines filter criteria for run history queries
type RunFilter struct {
	// Status filters by run status (optional)
	Status *RunStatus
	// Mode filters by run mode (optional)
	Mode *Mode
	// Page number (1-indexed)
	Page int
	// Page size
	PageSize int
}

// RunRepository persists the sync run ledger
type RunRepository interface {
	// TryStart inserts a RUNNING run iff no RUNNING run exists for the
	// same (user, jobType). The check and the insert are one
	// conditional write; a lost race returns ErrSyncAlreadyRunning.
	TryStart(ctx context.Context, run *Run) error

	// Update persists the run's terminal state (counts, status, error)
	Update(ctx context.Context, run *Run) error

	// FindByID returns a run by id
	FindByID(ctx context.Context, id uuid.UUID) (*Run, error)

	// FindRunning returns the RUNNING run for a job, or ErrRunNotFound
	FindRunning(ctx context.Context, userID uuid.UUID, jobType JobType) (*Run, error)

	// FindLatest returns the most recently started run for a job
	FindLatest(ctx context.Context, userID uuid.UUID, jobType JobType) (*Run, error)

	// List returns run history for a job, newest first
	List(ctx context.Context, userID uuid.UUID, jobType JobType, filter RunFilter) ([]Run, int64, error)

	// FailAbandoned marks RUNNING runs started before the deadline as
	// FAILED so a crashed process never blocks future runs. Returns the
	// number of runs failed.
	FailAbandoned(ctx context.Context, startedBefore time.Time, message string) (int64, error)
}

// CursorRepository persists per-job cursor state and auto-sync config
type CursorRepository interface {
	// Find returns the cursor for a job, or ErrCursorNotFound
	Find(ctx context.Context, userID uuid.UUID, jobType JobType) (*Cursor, error)

	// Save upserts the cursor keyed on (user, jobType)
	Save(ctx context.Context, cursor *Cursor) error

	// FindDue returns cursors with auto-sync enabled whose NextRunAt is
	// at or before now
	FindDue(ctx context.Context, now time.Time) ([]Cursor, error)
}
