package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/shared"
	"github.com/brickdesk/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

var _ order.Repository = (*GormOrderRepository)(nil)

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID returns an order with its history loaded, oldest entry first
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByNaturalKeys returns existing orders for a batch of
// "PLATFORM:platformOrderID" keys in one query
func (r *GormOrderRepository) FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*order.Order, error) {
	result := make(map[string]*order.Order, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	wanted := make(map[string]bool, len(keys))
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		wanted[key] = true
		_, id, found := strings.Cut(key, ":")
		if found {
			ids = append(ids, id)
		}
	}

	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC")
		}).
		Where("user_id = ? AND platform_order_id IN ?", userID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		o, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		key := string(o.Platform) + ":" + o.PlatformOrderID
		if wanted[key] {
			result[key] = o
		}
	}
	return result, nil
}

// Update upserts the order keyed on (user_id, platform,
// platform_order_id) and appends new history rows. First-seen orders
// insert through the same upsert, so two concurrent syncs racing on
// one order converge on a single row instead of one of them failing.
// History inserts ignore conflicts on the entry id so already-persisted
// entries are never duplicated; rows are append-only and never
// rewritten.
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	var model models.OrderModel
	if err := model.FromDomain(o); err != nil {
		return err
	}
	history := model.History
	model.History = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}, {Name: "platform_order_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"platform_status", "internal_status_override", "buyer_name",
					"grand_total", "shipping_cost", "currency", "items",
					"shipping_address", "ordered_at", "platform_updated_at",
					"raw_data", "updated_at",
				}),
			}).
			Create(&model).Error; err != nil {
			return err
		}
		if len(history) == 0 {
			return nil
		}
		return tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&history).Error
	})
}

// ListByStatus returns orders whose effective status matches. The
// effective status is the operator override when present, else the
// platform-reported status.
func (r *GormOrderRepository) ListByStatus(ctx context.Context, userID uuid.UUID, code platform.Code, status order.Status) ([]order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND COALESCE(internal_status_override, platform_status) = ?", userID, string(status))
	if code != "" {
		query = query.Where("platform = ?", string(code))
	}

	var rows []models.OrderModel
	if err := query.Order("ordered_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(rows))
	for i := range rows {
		o, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		orders[i] = *o
	}
	return orders, nil
}

// History returns the append-only status history for an order, oldest
// first
func (r *GormOrderRepository) History(ctx context.Context, orderID uuid.UUID) ([]order.StatusHistoryEntry, error) {
	var rows []models.OrderStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]order.StatusHistoryEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}
