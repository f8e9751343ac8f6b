package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/infrastructure/persistence/models"
)

// GormPriceSnapshotRepository implements platform.PriceSnapshotRepository
// using GORM
type GormPriceSnapshotRepository struct {
	db *gorm.DB
}

var _ platform.PriceSnapshotRepository = (*GormPriceSnapshotRepository)(nil)

// NewGormPriceSnapshotRepository creates a new GormPriceSnapshotRepository
func NewGormPriceSnapshotRepository(db *gorm.DB) *GormPriceSnapshotRepository {
	return &GormPriceSnapshotRepository{db: db}
}

// FindByNaturalKeys returns existing snapshots for a batch of
// "ASIN:date" keys in one query. The query matches on ASIN and filters
// the exact (asin, date) pairs in memory.
func (r *GormPriceSnapshotRepository) FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*platform.PriceSnapshot, error) {
	result := make(map[string]*platform.PriceSnapshot, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	wanted := make(map[string]bool, len(keys))
	asins := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		wanted[key] = true
		asin, _, found := strings.Cut(key, ":")
		if !found || seen[asin] {
			continue
		}
		seen[asin] = true
		asins = append(asins, asin)
	}

	var rows []models.PriceSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND asin IN ?", userID, asins).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		s := rows[i].ToDomain()
		if wanted[s.NaturalKey()] {
			result[s.NaturalKey()] = s
		}
	}
	return result, nil
}

// UpsertBatch writes a batch atomically, keyed on
// (user_id, asin, snapshot_date)
func (r *GormPriceSnapshotRepository) UpsertBatch(ctx context.Context, userID uuid.UUID, records []*platform.PriceSnapshot) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]models.PriceSnapshotModel, len(records))
	for i, s := range records {
		rows[i].FromDomain(userID, s)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "asin"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"platform", "list_price", "buy_box_price", "sales_rank",
				"offer_count", "currency", "raw_data", "updated_at",
			}),
		}).
		Create(&rows).Error
}
