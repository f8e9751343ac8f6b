package platform

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository persists normalized processor transactions
type TransactionRepository interface {
	// FindByNaturalKeys returns existing transactions for a batch of
	// natural keys in one query, keyed by natural key
	FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*Transaction, error)

	// UpsertBatch writes a batch atomically, keyed on (user, natural
	// key). Re-writing an identical record is a no-op at the store.
	UpsertBatch(ctx context.Context, userID uuid.UUID, records []*Transaction) error
}

// PriceSnapshotRepository persists normalized pricing observations
type PriceSnapshotRepository interface {
	// FindByNaturalKeys returns existing snapshots for a batch of
	// natural keys in one query, keyed by natural key
	FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*PriceSnapshot, error)

	// UpsertBatch writes a batch atomically, keyed on (user, natural key)
	UpsertBatch(ctx context.Context, userID uuid.UUID, records []*PriceSnapshot) error
}
