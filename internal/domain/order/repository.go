package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// Repository persists mirrored orders and their status history
type Repository interface {
	// FindByID returns an order with its history loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNaturalKeys returns existing orders for a batch of natural
	// keys ("PLATFORM:platformOrderID") in one query, keyed by natural key
	FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*Order, error)

	// Update persists order fields and appends any new history entries.
	// The write is an upsert keyed on (user, platform, platformOrderID),
	// never a separate exists-check-then-write; first-seen orders insert
	// through the same path.
	Update(ctx context.Context, o *Order) error

	// ListByStatus returns orders whose effective status matches
	ListByStatus(ctx context.Context, userID uuid.UUID, code platform.Code, status Status) ([]Order, error)

	// History returns the append-only status history for an order,
	// oldest first
	History(ctx context.Context, orderID uuid.UUID) ([]StatusHistoryEntry, error)
}
