package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brickdesk/backend/internal/domain/sync"
)

// SyncRunModel is the persistence model for one sync run. The partial
// unique index on (user_id, job_type) where status = 'RUNNING' is what
// enforces the single-RUNNING invariant; it lives in the migrations
// because GORM tags cannot express partial indexes.
type SyncRunModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_sync_runs_user_job,priority:1"`
	JobType      string    `gorm:"type:varchar(40);not null;index:idx_sync_runs_user_job,priority:2"`
	Mode         string    `gorm:"type:varchar(20);not null"`
	Status       string    `gorm:"type:varchar(20);not null"`
	StartedAt    time.Time `gorm:"not null;index"`
	CompletedAt  *time.Time
	FromCursor   string `gorm:"type:varchar(100)"`
	ToCursor     string `gorm:"type:varchar(100)"`
	Processed    int    `gorm:"not null;default:0"`
	Created      int    `gorm:"not null;default:0"`
	Updated      int    `gorm:"not null;default:0"`
	Skipped      int    `gorm:"not null;default:0"`
	ErrorMessage string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SyncRunModel) TableName() string {
	return "sync_runs"
}

// ToDomain converts the persistence model to a domain Run
func (m *SyncRunModel) ToDomain() *sync.Run {
	return &sync.Run{
		ID:          m.ID,
		UserID:      m.UserID,
		JobType:     sync.JobType(m.JobType),
		Mode:        sync.Mode(m.Mode),
		Status:      sync.RunStatus(m.Status),
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		FromCursor:  m.FromCursor,
		ToCursor:    m.ToCursor,
		Counts: sync.Counts{
			Processed: m.Processed,
			Created:   m.Created,
			Updated:   m.Updated,
			Skipped:   m.Skipped,
		},
		ErrorMessage: m.ErrorMessage,
	}
}

// FromDomain populates the persistence model from a domain Run
func (m *SyncRunModel) FromDomain(r *sync.Run) {
	m.ID = r.ID
	m.UserID = r.UserID
	m.JobType = string(r.JobType)
	m.Mode = string(r.Mode)
	m.Status = string(r.Status)
	m.StartedAt = r.StartedAt
	m.CompletedAt = r.CompletedAt
	m.FromCursor = r.FromCursor
	m.ToCursor = r.ToCursor
	m.Processed = r.Counts.Processed
	m.Created = r.Counts.Created
	m.Updated = r.Counts.Updated
	m.Skipped = r.Counts.Skipped
	m.ErrorMessage = r.ErrorMessage
}

// SyncCursorModel is the persistence model for per-job cursor state and
// auto-sync configuration, keyed on (user_id, job_type)
type SyncCursorModel struct {
	UserID                      uuid.UUID  `gorm:"type:uuid;primary_key"`
	JobType                     string     `gorm:"type:varchar(40);primary_key"`
	LastCursorValue             string     `gorm:"type:varchar(100)"`
	AutoSyncEnabled             bool       `gorm:"not null;default:false"`
	AutoSyncIntervalHours       int        `gorm:"not null;default:0"`
	NextRunAt                   *time.Time `gorm:"index"`
	HistoricalImportCompletedAt *time.Time
	UpdatedAt                   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncCursorModel) TableName() string {
	return "sync_cursors"
}

// ToDomain converts the persistence model to a domain Cursor
func (m *SyncCursorModel) ToDomain() *sync.Cursor {
	return &sync.Cursor{
		UserID:                      m.UserID,
		JobType:                     sync.JobType(m.JobType),
		LastCursorValue:             m.LastCursorValue,
		AutoSyncEnabled:             m.AutoSyncEnabled,
		AutoSyncIntervalHours:       m.AutoSyncIntervalHours,
		NextRunAt:                   m.NextRunAt,
		HistoricalImportCompletedAt: m.HistoricalImportCompletedAt,
		UpdatedAt:                   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Cursor
func (m *SyncCursorModel) FromDomain(c *sync.Cursor) {
	m.UserID = c.UserID
	m.JobType = string(c.JobType)
	m.LastCursorValue = c.LastCursorValue
	m.AutoSyncEnabled = c.AutoSyncEnabled
	m.AutoSyncIntervalHours = c.AutoSyncIntervalHours
	m.NextRunAt = c.NextRunAt
	m.HistoricalImportCompletedAt = c.HistoricalImportCompletedAt
	m.UpdatedAt = c.UpdatedAt
}
