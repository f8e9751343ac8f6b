package sync

import (
	"time"

	"github.com/google/uuid"
)

// cursorTimeLayout is the wire format for time-based cursor values
const cursorTimeLayout = time.RFC3339

// Cursor holds per-(user, jobType) sync progress and auto-sync
// configuration. It survives across runs and is updated only on
// successful run completion; the RUNNING-row lock guarantees a single
// writer.
type Cursor struct {
	UserID  uuid.UUID
	JobType JobType
	// LastCursorValue is the opaque progress marker, "" before the
	// first successful run (cold start)
	LastCursorValue string
	// AutoSyncEnabled turns the scheduler on for this job
	AutoSyncEnabled bool
	// AutoSyncIntervalHours is the scheduler interval
	AutoSyncIntervalHours int
	// NextRunAt is when the scheduler should next trigger this job
	NextRunAt *time.Time
	// HistoricalImportCompletedAt is set once a HISTORICAL backfill has
	// finished; mode selection never infers this from the cursor value
	HistoricalImportCompletedAt *time.Time
	UpdatedAt                   time.Time
}

// NewCursor creates an empty cursor for a job
func NewCursor(userID uuid.UUID, jobType JobType) *Cursor {
	return &Cursor{
		UserID:    userID,
		JobType:   jobType,
		UpdatedAt: time.Now(),
	}
}

// HasValue returns true once a cursor value has been persisted
func (c *Cursor) HasValue() bool {
	return c.LastCursorValue != ""
}

// Time parses the cursor value as a timestamp. Returns the zero time
// for an empty or non-time cursor.
func (c *Cursor) Time() time.Time {
	if c.LastCursorValue == "" {
		return time.Time{}
	}
	t, err := time.Parse(cursorTimeLayout, c.LastCursorValue)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Advance sets the cursor value from a timestamp
func (c *Cursor) Advance(t time.Time) {
	c.LastCursorValue = t.UTC().Format(cursorTimeLayout)
	c.UpdatedAt = time.Now()
}

// MarkHistoricalComplete records that a historical backfill finished
func (c *Cursor) MarkHistoricalComplete() {
	now := time.Now()
	c.HistoricalImportCompletedAt = &now
	c.UpdatedAt = now
}

// ScheduleNext computes the next auto-sync time from the interval
func (c *Cursor) ScheduleNext(from time.Time) {
	if !c.AutoSyncEnabled || c.AutoSyncIntervalHours <= 0 {
		c.NextRunAt = nil
		return
	}
	next := from.Add(time.Duration(c.AutoSyncIntervalHours) * time.Hour)
	c.NextRunAt = &next
	c.UpdatedAt = time.Now()
}

// FormatCursorTime renders a timestamp in the cursor wire format
func FormatCursorTime(t time.Time) string {
	return t.UTC().Format(cursorTimeLayout)
}
