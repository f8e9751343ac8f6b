package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/sync"
)

// SnapshotReconciler upserts pricing observations. Policy: a re-synced
// snapshot for an existing (ASIN, date) always overwrites and counts as
// updated, because the platform revises intraday values until the day
// closes.
type SnapshotReconciler struct {
	repo   platform.PriceSnapshotRepository
	logger *zap.Logger
}

// NewSnapshotReconciler creates a price snapshot reconciler
func NewSnapshotReconciler(repo platform.PriceSnapshotRepository, logger *zap.Logger) *SnapshotReconciler {
	return &SnapshotReconciler{repo: repo, logger: logger}
}

// Kind returns the record kind this reconciler handles
func (r *SnapshotReconciler) Kind() platform.RecordKind {
	return platform.RecordKindPriceSnapshot
}

// Reconcile deduplicates, classifies and upserts one batch
func (r *SnapshotReconciler) Reconcile(ctx context.Context, userID uuid.UUID, records []platform.CanonicalRecord) (sync.Counts, error) {
	var counts sync.Counts

	deduped := dedupeByNaturalKey(records)
	counts.Skipped += len(records) - len(deduped)
	if len(deduped) == 0 {
		return counts, nil
	}

	snapshots := make([]*platform.PriceSnapshot, len(deduped))
	for i, rec := range deduped {
		snap, ok := rec.(*platform.PriceSnapshot)
		if !ok {
			return counts, fmt.Errorf("sync: snapshot reconciler got %T", rec)
		}
		snapshots[i] = snap
	}

	existing, err := r.repo.FindByNaturalKeys(ctx, userID, naturalKeys(deduped))
	if err != nil {
		return counts, fmt.Errorf("sync: looking up snapshots: %w", err)
	}

	var created, updated int
	for _, snap := range snapshots {
		if _, found := existing[snap.NaturalKey()]; found {
			updated++
		} else {
			created++
		}
	}

	if err := r.repo.UpsertBatch(ctx, userID, snapshots); err != nil {
		return counts, fmt.Errorf("sync: upserting snapshots: %w", err)
	}
	counts.Created += created
	counts.Updated += updated

	r.logger.Debug("Reconciled snapshot batch",
		zap.String("user_id", userID.String()),
		zap.Int("batch", len(records)),
		zap.Int("created", counts.Created),
		zap.Int("updated", counts.Updated),
		zap.Int("skipped", counts.Skipped),
	)
	return counts, nil
}

var _ Reconciler = (*SnapshotReconciler)(nil)
