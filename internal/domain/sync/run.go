package sync

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSyncAlreadyRunning means a run is already RUNNING for the
	// (user, jobType) pair; the caller must wait or poll, never retry
	ErrSyncAlreadyRunning = errors.New("sync: a sync is already running for this job")
	// ErrRunNotFound means no run matched the query
	ErrRunNotFound = errors.New("sync: run not found")
	// ErrCursorNotFound means no cursor row exists for the job yet
	ErrCursorNotFound = errors.New("sync: cursor not found")
	// ErrRunCancelled means the run was cancelled at a batch boundary
	ErrRunCancelled = errors.New("sync: run cancelled")
)

// ---------------------------------------------------------------------------
// Mode and status
// ---------------------------------------------------------------------------

// Mode represents how a run chooses its fetch window
type Mode string

const (
	// ModeFull re-fetches the platform's full retention window
	ModeFull Mode = "FULL"
	// ModeIncremental fetches from the stored cursor forward
	ModeIncremental Mode = "INCREMENTAL"
	// ModeHistorical fetches an explicit caller-provided date window
	ModeHistorical Mode = "HISTORICAL"
)

// IsValid returns true if the mode is valid
func (m Mode) IsValid() bool {
	switch m {
	case ModeFull, ModeIncremental, ModeHistorical:
		return true
	default:
		return false
	}
}

// RunStatus represents the lifecycle status of a sync run
type RunStatus string

const (
	// RunStatusRunning indicates the run holds the job lock
	RunStatusRunning RunStatus = "RUNNING"
	// RunStatusCompleted indicates the run finished successfully
	RunStatusCompleted RunStatus = "COMPLETED"
	// RunStatusFailed indicates the run failed or was abandoned
	RunStatusFailed RunStatus = "FAILED"
)

// IsValid returns true if the run status is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the run has released the job lock
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// Counts holds per-run reconciliation accounting
type Counts struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// Add accumulates another batch's counts
func (c *Counts) Add(other Counts) {
	c.Processed += other.Processed
	c.Created += other.Created
	c.Updated += other.Updated
	c.Skipped += other.Skipped
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

// Run is one execution of the sync coordinator for one (user, jobType)
// pair. The RUNNING row is itself the concurrency lock: at most one run
// per pair may be RUNNING at any time.
type Run struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	JobType     JobType
	Mode        Mode
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	// FromCursor is the cursor value the run started from, "" for FULL
	FromCursor string
	// ToCursor is the cursor value persisted on success
	ToCursor string
	Counts   Counts
	// ErrorMessage holds the failure reason for FAILED runs
	ErrorMessage string
}

// NewRun creates a RUNNING run ready for the conditional insert that
// enforces the single-RUNNING invariant
func NewRun(userID uuid.UUID, jobType JobType, mode Mode, fromCursor string) *Run {
	return &Run{
		ID:         uuid.New(),
		UserID:     userID,
		JobType:    jobType,
		Mode:       mode,
		Status:     RunStatusRunning,
		StartedAt:  time.Now(),
		FromCursor: fromCursor,
	}
}

// Complete marks the run COMPLETED with its final counts and cursor
func (r *Run) Complete(counts Counts, toCursor string) {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
	r.Counts = counts
	r.ToCursor = toCursor
}

// Fail marks the run FAILED, keeping the partial counts accumulated so
// far. The stored cursor is never advanced for a failed run.
func (r *Run) Fail(message string, counts Counts) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.CompletedAt = &now
	r.Counts = counts
	r.ErrorMessage = message
}

// Duration returns the wall-clock duration of a finished run
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
