package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/infrastructure/persistence/models"
)

// GormCredentialRepository implements platform.CredentialRepository
// using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

var _ platform.CredentialRepository = (*GormCredentialRepository)(nil)

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// FindByUserAndPlatform returns the active credential for a
// (user, platform) pair
func (r *GormCredentialRepository) FindByUserAndPlatform(ctx context.Context, userID uuid.UUID, code platform.Code) (*platform.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, string(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platform.ErrCredentialsMissing
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or replaces the credential for its (user, platform) pair
func (r *GormCredentialRepository) Save(ctx context.Context, cred *platform.Credential) error {
	var model models.CredentialModel
	model.FromDomain(cred)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}
