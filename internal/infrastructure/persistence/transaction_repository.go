package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/infrastructure/persistence/models"
)

// GormTransactionRepository implements platform.TransactionRepository
// using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

var _ platform.TransactionRepository = (*GormTransactionRepository)(nil)

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByNaturalKeys returns existing transactions for a batch of
// external ids in one query
func (r *GormTransactionRepository) FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*platform.Transaction, error) {
	result := make(map[string]*platform.Transaction, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND external_id IN ?", userID, keys).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		t := rows[i].ToDomain()
		result[t.NaturalKey()] = t
	}
	return result, nil
}

// UpsertBatch writes a batch atomically, keyed on (user_id, external_id)
func (r *GormTransactionRepository) UpsertBatch(ctx context.Context, userID uuid.UUID, records []*platform.Transaction) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]models.TransactionModel, len(records))
	for i, t := range records {
		rows[i].FromDomain(userID, t)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"type", "status", "gross_amount", "fee_amount", "net_amount",
				"currency", "counterparty_email", "subject", "initiated_at",
				"raw_data", "updated_at",
			}),
		}).
		Create(&rows).Error
}
