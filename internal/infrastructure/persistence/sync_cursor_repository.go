package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brickdesk/backend/internal/domain/sync"
	"github.com/brickdesk/backend/internal/infrastructure/persistence/models"
)

// GormSyncCursorRepository implements sync.CursorRepository using GORM
type GormSyncCursorRepository struct {
	db *gorm.DB
}

var _ sync.CursorRepository = (*GormSyncCursorRepository)(nil)

// NewGormSyncCursorRepository creates a new GormSyncCursorRepository
func NewGormSyncCursorRepository(db *gorm.DB) *GormSyncCursorRepository {
	return &GormSyncCursorRepository{db: db}
}

// Find returns the cursor for a job
func (r *GormSyncCursorRepository) Find(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Cursor, error) {
	var model models.SyncCursorModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND job_type = ?", userID, string(jobType)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrCursorNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the cursor keyed on (user_id, job_type)
func (r *GormSyncCursorRepository) Save(ctx context.Context, cursor *sync.Cursor) error {
	var model models.SyncCursorModel
	model.FromDomain(cursor)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "job_type"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}

// FindDue returns cursors with auto-sync enabled whose next run time
// has passed
func (r *GormSyncCursorRepository) FindDue(ctx context.Context, now time.Time) ([]sync.Cursor, error) {
	var rows []models.SyncCursorModel
	if err := r.db.WithContext(ctx).
		Where("auto_sync_enabled = ? AND next_run_at IS NOT NULL AND next_run_at <= ?", true, now).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	cursors := make([]sync.Cursor, len(rows))
	for i := range rows {
		cursors[i] = *rows[i].ToDomain()
	}
	return cursors, nil
}
