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

// GormSyncRunRepository implements sync.RunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

var _ sync.RunRepository = (*GormSyncRunRepository)(nil)

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// TryStart inserts a RUNNING run. The partial unique index on
// (user_id, job_type) WHERE status = 'RUNNING' makes the insert and
// the single-RUNNING check one atomic statement: a conflicting insert
// affects zero rows and maps to ErrSyncAlreadyRunning. There is no
// separate existence check, so two concurrent triggers cannot both win.
func (r *GormSyncRunRepository) TryStart(ctx context.Context, run *sync.Run) error {
	var model models.SyncRunModel
	model.FromDomain(run)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sync.ErrSyncAlreadyRunning
	}
	return nil
}

// Update persists the run's current state
func (r *GormSyncRunRepository) Update(ctx context.Context, run *sync.Run) error {
	var model models.SyncRunModel
	model.FromDomain(run)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByID returns a run by id
func (r *GormSyncRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.Run, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrRunNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRunning returns the RUNNING run for a job
func (r *GormSyncRunRepository) FindRunning(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Run, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND job_type = ? AND status = ?", userID, string(jobType), string(sync.RunStatusRunning)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrRunNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatest returns the most recently started run for a job
func (r *GormSyncRunRepository) FindLatest(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Run, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND job_type = ?", userID, string(jobType)).
		Order("started_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrRunNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns run history for a job, newest first, with the total count
func (r *GormSyncRunRepository) List(ctx context.Context, userID uuid.UUID, jobType sync.JobType, filter sync.RunFilter) ([]sync.Run, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncRunModel{}).
		Where("user_id = ? AND job_type = ?", userID, string(jobType))
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Mode != nil {
		query = query.Where("mode = ?", string(*filter.Mode))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var rows []models.SyncRunModel
	if err := query.
		Order("started_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	runs := make([]sync.Run, len(rows))
	for i := range rows {
		runs[i] = *rows[i].ToDomain()
	}
	return runs, total, nil
}

// FailAbandoned marks stale RUNNING runs as FAILED in one statement so
// a crashed process never holds the job lock forever
func (r *GormSyncRunRepository) FailAbandoned(ctx context.Context, startedBefore time.Time, message string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.SyncRunModel{}).
		Where("status = ? AND started_at < ?", string(sync.RunStatusRunning), startedBefore).
		Updates(map[string]interface{}{
			"status":        string(sync.RunStatusFailed),
			"completed_at":  now,
			"error_message": message,
		})
	return result.RowsAffected, result.Error
}
