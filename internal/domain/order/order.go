package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/shared"
)

// TransitionSource identifies who requested a status transition
type TransitionSource string

const (
	// SourceSync marks transitions driven by platform-reported status
	SourceSync TransitionSource = "SYNC"
	// SourceOperator marks manual operator transitions
	SourceOperator TransitionSource = "OPERATOR"
)

// StatusHistoryEntry records one accepted status transition.
// Append-only, owned by the order.
type StatusHistoryEntry struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	FromStatus Status
	ToStatus   Status
	ChangedAt  time.Time
	ChangedBy  TransitionSource
	Notes      string
}

// Item is one line of a marketplace order
type Item struct {
	// SKU is the platform SKU or part/set number
	SKU string
	// Name is the listing title
	Name string
	// Condition is the platform condition code (N/U for bricks)
	Condition string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Address is the buyer's shipping address
type Address struct {
	Name        string
	AddressLine string
	City        string
	Region      string
	PostalCode  string
	CountryCode string
}

// Order mirrors one marketplace order. Created on first sync, updated
// on every later sync and on manual transitions, never deleted.
type Order struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Platform platform.Code
	// PlatformOrderID is the order id on the platform; together with
	// Platform and UserID it forms the natural key
	PlatformOrderID string
	// PlatformStatus reflects the platform's reported state
	PlatformStatus Status
	// InternalStatusOverride lets the operator diverge from the
	// platform-reported status; nil when not set
	InternalStatusOverride *Status
	BuyerName              string
	GrandTotal             decimal.Decimal
	ShippingCost           decimal.Decimal
	Currency               string
	Items                  []Item
	ShippingAddress        *Address
	// OrderedAt is when the order was placed on the platform
	OrderedAt time.Time
	// PlatformUpdatedAt is the platform's last-modified time, used for
	// cursor advancement
	PlatformUpdatedAt time.Time
	// RawData is the platform payload from the most recent sync
	RawData   string
	History   []StatusHistoryEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveStatus returns the status business logic acts on: the
// operator override if present, else the platform-reported status
func (o *Order) EffectiveStatus() Status {
	if o.InternalStatusOverride != nil {
		return *o.InternalStatusOverride
	}
	return o.PlatformStatus
}

// TransitionRequest carries one requested status change
type TransitionRequest struct {
	Status Status
	Source TransitionSource
	// Force bypasses the adjacency table; operator only
	Force bool
	Notes string
}

// Transition validates and applies a status change against the current
// effective status. SYNC transitions touch only the platform status and
// never overwrite a present override; OPERATOR transitions set the
// override. Every accepted transition appends exactly one history
// entry; rejections leave the order and its history untouched.
func (o *Order) Transition(req TransitionRequest) error {
	if !req.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", req.Status))
	}
	if req.Force && req.Source != SourceOperator {
		return shared.NewDomainError("FORCE_NOT_ALLOWED", "Only operator transitions may force")
	}

	from := o.EffectiveStatus()
	if req.Status == from {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Order is already %s", from))
	}
	if !req.Force && !from.CanTransitionTo(req.Status) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot transition order from %s to %s", from, req.Status))
	}

	now := time.Now()
	switch req.Source {
	case SourceSync:
		o.PlatformStatus = req.Status
	case SourceOperator:
		s := req.Status
		o.InternalStatusOverride = &s
	default:
		return shared.NewDomainError("INVALID_TRANSITION_SOURCE",
			fmt.Sprintf("Unknown transition source %q", req.Source))
	}

	o.History = append(o.History, StatusHistoryEntry{
		ID:         uuid.New(),
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   req.Status,
		ChangedAt:  now,
		ChangedBy:  req.Source,
		Notes:      req.Notes,
	})
	o.UpdatedAt = now
	return nil
}

// ClearOverride removes the operator override so the platform status
// becomes effective again
func (o *Order) ClearOverride() {
	o.InternalStatusOverride = nil
	o.UpdatedAt = time.Now()
}
