package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/sync"
)

// TransactionReconciler upserts processor transactions. Policy: only
// transactions carrying a non-zero fee are persisted (the fee ledger is
// what the dashboard reports on); fee-less transactions are skipped
// explicitly, never silently dropped. A re-synced transaction counts as
// updated only when its fee amount or status changed.
type TransactionReconciler struct {
	repo   platform.TransactionRepository
	logger *zap.Logger
}

// NewTransactionReconciler creates a transaction reconciler
func NewTransactionReconciler(repo platform.TransactionRepository, logger *zap.Logger) *TransactionReconciler {
	return &TransactionReconciler{repo: repo, logger: logger}
}

// Kind returns the record kind this reconciler handles
func (r *TransactionReconciler) Kind() platform.RecordKind {
	return platform.RecordKindTransaction
}

// filterZeroFee is the named persistence filter: transactions whose fee
// is zero are excluded and reflected in the skipped count
func filterZeroFee(records []platform.CanonicalRecord) (kept []*platform.Transaction, skipped int, err error) {
	kept = make([]*platform.Transaction, 0, len(records))
	for _, rec := range records {
		tx, ok := rec.(*platform.Transaction)
		if !ok {
			return nil, 0, fmt.Errorf("sync: transaction reconciler got %T", rec)
		}
		if tx.FeeAmount.IsZero() {
			skipped++
			continue
		}
		kept = append(kept, tx)
	}
	return kept, skipped, nil
}

// Reconcile deduplicates, filters, classifies and upserts one batch
func (r *TransactionReconciler) Reconcile(ctx context.Context, userID uuid.UUID, records []platform.CanonicalRecord) (sync.Counts, error) {
	var counts sync.Counts

	deduped := dedupeByNaturalKey(records)
	counts.Skipped += len(records) - len(deduped)

	kept, zeroFee, err := filterZeroFee(deduped)
	counts.Skipped += zeroFee
	if err != nil {
		return counts, err
	}
	if len(kept) == 0 {
		return counts, nil
	}

	keys := make([]string, len(kept))
	for i, tx := range kept {
		keys[i] = tx.NaturalKey()
	}
	existing, err := r.repo.FindByNaturalKeys(ctx, userID, keys)
	if err != nil {
		return counts, fmt.Errorf("sync: looking up transactions: %w", err)
	}

	toWrite := make([]*platform.Transaction, 0, len(kept))
	var created, updated int
	for _, tx := range kept {
		prev, found := existing[tx.NaturalKey()]
		switch {
		case !found:
			created++
			toWrite = append(toWrite, tx)
		case !prev.FeeAmount.Equal(tx.FeeAmount) || prev.Status != tx.Status:
			updated++
			toWrite = append(toWrite, tx)
		default:
			// Identical content; the upsert would be a no-op, so the
			// record is counted as skipped and not rewritten.
			counts.Skipped++
		}
	}

	if len(toWrite) > 0 {
		if err := r.repo.UpsertBatch(ctx, userID, toWrite); err != nil {
			return counts, fmt.Errorf("sync: upserting transactions: %w", err)
		}
	}
	counts.Created += created
	counts.Updated += updated

	r.logger.Debug("Reconciled transaction batch",
		zap.String("user_id", userID.String()),
		zap.Int("batch", len(records)),
		zap.Int("created", counts.Created),
		zap.Int("updated", counts.Updated),
		zap.Int("skipped", counts.Skipped),
	)
	return counts, nil
}

var _ Reconciler = (*TransactionReconciler)(nil)
