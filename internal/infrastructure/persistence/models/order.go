package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
)

// OrderModel is the persistence model for mirrored marketplace orders,
// unique on (user_id, platform, platform_order_id). Line items and the
// shipping address are stored as JSON documents: they are replaced
// wholesale on every sync and never queried relationally.
type OrderModel struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID                 uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_orders_user_platform_ext,priority:1"`
	Platform               string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_orders_user_platform_ext,priority:2"`
	PlatformOrderID        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_user_platform_ext,priority:3"`
	PlatformStatus         string          `gorm:"type:varchar(20);not null"`
	InternalStatusOverride *string         `gorm:"type:varchar(20)"`
	BuyerName              string          `gorm:"type:varchar(200)"`
	GrandTotal             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency               string          `gorm:"type:varchar(10)"`
	Items                  string          `gorm:"type:jsonb"`
	ShippingAddress        *string         `gorm:"type:jsonb"`
	OrderedAt              time.Time       `gorm:"not null;index"`
	PlatformUpdatedAt      time.Time       `gorm:"index"`
	RawData                string          `gorm:"type:jsonb"`
	CreatedAt              time.Time       `gorm:"not null"`
	UpdatedAt              time.Time       `gorm:"not null"`

	History []OrderStatusHistoryModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() (*order.Order, error) {
	o := &order.Order{
		ID:                m.ID,
		UserID:            m.UserID,
		Platform:          platform.Code(m.Platform),
		PlatformOrderID:   m.PlatformOrderID,
		PlatformStatus:    order.Status(m.PlatformStatus),
		BuyerName:         m.BuyerName,
		GrandTotal:        m.GrandTotal,
		ShippingCost:      m.ShippingCost,
		Currency:          m.Currency,
		OrderedAt:         m.OrderedAt,
		PlatformUpdatedAt: m.PlatformUpdatedAt,
		RawData:           m.RawData,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.InternalStatusOverride != nil {
		s := order.Status(*m.InternalStatusOverride)
		o.InternalStatusOverride = &s
	}
	if m.Items != "" {
		if err := json.Unmarshal([]byte(m.Items), &o.Items); err != nil {
			return nil, err
		}
	}
	if m.ShippingAddress != nil && *m.ShippingAddress != "" {
		var addr order.Address
		if err := json.Unmarshal([]byte(*m.ShippingAddress), &addr); err != nil {
			return nil, err
		}
		o.ShippingAddress = &addr
	}
	o.History = make([]order.StatusHistoryEntry, len(m.History))
	for i, h := range m.History {
		o.History[i] = *h.ToDomain()
	}
	return o, nil
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) error {
	m.ID = o.ID
	m.UserID = o.UserID
	m.Platform = string(o.Platform)
	m.PlatformOrderID = o.PlatformOrderID
	m.PlatformStatus = string(o.PlatformStatus)
	m.InternalStatusOverride = nil
	if o.InternalStatusOverride != nil {
		s := string(*o.InternalStatusOverride)
		m.InternalStatusOverride = &s
	}
	m.BuyerName = o.BuyerName
	m.GrandTotal = o.GrandTotal
	m.ShippingCost = o.ShippingCost
	m.Currency = o.Currency
	m.OrderedAt = o.OrderedAt
	m.PlatformUpdatedAt = o.PlatformUpdatedAt
	m.RawData = o.RawData
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt

	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	m.Items = string(items)

	m.ShippingAddress = nil
	if o.ShippingAddress != nil {
		addr, err := json.Marshal(o.ShippingAddress)
		if err != nil {
			return err
		}
		s := string(addr)
		m.ShippingAddress = &s
	}

	m.History = make([]OrderStatusHistoryModel, len(o.History))
	for i, h := range o.History {
		m.History[i].FromDomain(&h)
	}
	return nil
}

// OrderStatusHistoryModel is the persistence model for one accepted
// status transition. Rows are append-only.
type OrderStatusHistoryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus string    `gorm:"type:varchar(20);not null"`
	ToStatus   string    `gorm:"type:varchar(20);not null"`
	ChangedAt  time.Time `gorm:"not null;index"`
	ChangedBy  string    `gorm:"type:varchar(20);not null"`
	Notes      string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderStatusHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts the persistence model to a domain history entry
func (m *OrderStatusHistoryModel) ToDomain() *order.StatusHistoryEntry {
	return &order.StatusHistoryEntry{
		ID:         m.ID,
		OrderID:    m.OrderID,
		FromStatus: order.Status(m.FromStatus),
		ToStatus:   order.Status(m.ToStatus),
		ChangedAt:  m.ChangedAt,
		ChangedBy:  order.TransitionSource(m.ChangedBy),
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain history entry
func (m *OrderStatusHistoryModel) FromDomain(h *order.StatusHistoryEntry) {
	m.ID = h.ID
	m.OrderID = h.OrderID
	m.FromStatus = string(h.FromStatus)
	m.ToStatus = string(h.ToStatus)
	m.ChangedAt = h.ChangedAt
	m.ChangedBy = string(h.ChangedBy)
	m.Notes = h.Notes
}
