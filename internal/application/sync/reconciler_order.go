package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/sync"
)

// OrderReconciler mirrors marketplace orders. A changed platform
// status goes through the order status machine rather than a raw field
// overwrite; rejected transitions (backward corrections from the
// platform) are logged and the rest of the order still updates. Policy:
// a re-synced order counts as updated when its platform status, totals
// or item count changed, otherwise skipped.
type OrderReconciler struct {
	repo   order.Repository
	logger *zap.Logger
}

// NewOrderReconciler creates an order reconciler
func NewOrderReconciler(repo order.Repository, logger *zap.Logger) *OrderReconciler {
	return &OrderReconciler{repo: repo, logger: logger}
}

// Kind returns the record kind this reconciler handles
func (r *OrderReconciler) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// Reconcile deduplicates, classifies and upserts one batch of orders
func (r *OrderReconciler) Reconcile(ctx context.Context, userID uuid.UUID, records []platform.CanonicalRecord) (sync.Counts, error) {
	var counts sync.Counts

	deduped := dedupeByNaturalKey(records)
	counts.Skipped += len(records) - len(deduped)
	if len(deduped) == 0 {
		return counts, nil
	}

	incoming := make([]*order.PlatformOrder, len(deduped))
	for i, rec := range deduped {
		po, ok := rec.(*order.PlatformOrder)
		if !ok {
			return counts, fmt.Errorf("sync: order reconciler got %T", rec)
		}
		incoming[i] = po
	}

	existing, err := r.repo.FindByNaturalKeys(ctx, userID, naturalKeys(deduped))
	if err != nil {
		return counts, fmt.Errorf("sync: looking up orders: %w", err)
	}

	for _, po := range incoming {
		if prev, found := existing[po.NaturalKey()]; found {
			changed, err := r.applyUpdate(ctx, prev, po)
			if err != nil {
				return counts, err
			}
			if changed {
				counts.Updated++
			} else {
				counts.Skipped++
			}
			continue
		}

		if err := r.repo.Update(ctx, newOrderFromPlatform(userID, po)); err != nil {
			return counts, fmt.Errorf("sync: creating order %s: %w", po.NaturalKey(), err)
		}
		counts.Created++
	}

	r.logger.Debug("Reconciled order batch",
		zap.String("user_id", userID.String()),
		zap.Int("batch", len(records)),
		zap.Int("created", counts.Created),
		zap.Int("updated", counts.Updated),
		zap.Int("skipped", counts.Skipped),
	)
	return counts, nil
}

// applyUpdate folds a newer platform payload into an existing order.
// Returns whether anything meaningful changed.
func (r *OrderReconciler) applyUpdate(ctx context.Context, o *order.Order, po *order.PlatformOrder) (bool, error) {
	changed := !o.GrandTotal.Equal(po.GrandTotal) || len(o.Items) != len(po.Items)

	if po.Status != o.PlatformStatus {
		err := o.Transition(order.TransitionRequest{
			Status: po.Status,
			Source: order.SourceSync,
		})
		if err != nil {
			// Backward or conflicting platform statuses almost always
			// mean an upstream correction; keep our status and record
			// the anomaly for investigation.
			r.logger.Warn("Platform status change rejected by status machine",
				zap.String("natural_key", po.NaturalKey()),
				zap.String("current", string(o.EffectiveStatus())),
				zap.String("reported", string(po.Status)),
				zap.Error(err),
			)
		} else {
			changed = true
		}
	}

	o.BuyerName = po.BuyerName
	o.GrandTotal = po.GrandTotal
	o.ShippingCost = po.ShippingCost
	o.Currency = po.Currency
	o.Items = po.Items
	o.ShippingAddress = po.ShippingAddress
	o.PlatformUpdatedAt = po.ObservedAt()
	o.RawData = po.RawData

	if !changed {
		return false, nil
	}
	if err := r.repo.Update(ctx, o); err != nil {
		return false, fmt.Errorf("sync: updating order %s: %w", po.NaturalKey(), err)
	}
	return true, nil
}

// newOrderFromPlatform builds the mirrored order for a first-seen
// platform order
func newOrderFromPlatform(userID uuid.UUID, po *order.PlatformOrder) *order.Order {
	now := time.Now()
	return &order.Order{
		ID:                uuid.New(),
		UserID:            userID,
		Platform:          po.Platform,
		PlatformOrderID:   po.PlatformOrderID,
		PlatformStatus:    po.Status,
		BuyerName:         po.BuyerName,
		GrandTotal:        po.GrandTotal,
		ShippingCost:      po.ShippingCost,
		Currency:          po.Currency,
		Items:             po.Items,
		ShippingAddress:   po.ShippingAddress,
		OrderedAt:         po.OrderedAt,
		PlatformUpdatedAt: po.ObservedAt(),
		RawData:           po.RawData,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

var _ Reconciler = (*OrderReconciler)(nil)
