package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// PlatformOrder is the canonical, platform-agnostic order shape a
// normalizer produces from one marketplace payload. It is never mutated
// after creation; a later batch may produce a newer PlatformOrder with
// the same natural key, which supersedes the earlier one.
type PlatformOrder struct {
	Platform        platform.Code
	PlatformOrderID string
	Status          Status
	BuyerName       string
	GrandTotal      decimal.Decimal
	ShippingCost    decimal.Decimal
	Currency        string
	Items           []Item
	ShippingAddress *Address
	OrderedAt       time.Time
	// UpdatedAt is the platform's last-modified time for the order
	UpdatedAt time.Time
	// RawData is the platform payload preserved for audit
	RawData string
}

// NaturalKey combines platform and platform order id
func (p *PlatformOrder) NaturalKey() string {
	return string(p.Platform) + ":" + p.PlatformOrderID
}

// ObservedAt returns the platform's last-modified time, falling back to
// the order time when the platform does not report one
func (p *PlatformOrder) ObservedAt() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.OrderedAt
}

var _ platform.CanonicalRecord = (*PlatformOrder)(nil)
