package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
)

func testSnapshot(asin string) *platform.PriceSnapshot {
	return &platform.PriceSnapshot{
		ASIN:         asin,
		Platform:     platform.CodeAmazon,
		SnapshotDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		ListPrice:    decimal.NewFromFloat(19.99),
		Currency:     "USD",
	}
}

func TestSnapshotReconciler_ExistingSnapshotAlwaysOverwritten(t *testing.T) {
	repo := new(MockSnapshotRepository)
	r := NewSnapshotReconciler(repo, zap.NewNop())
	userID := uuid.New()

	fresh := testSnapshot("B00A1B2C3")
	seen := testSnapshot("B00X9Y8Z7")

	repo.On("FindByNaturalKeys", mock.Anything, userID, mock.Anything).
		Return(map[string]*platform.PriceSnapshot{seen.NaturalKey(): testSnapshot("B00X9Y8Z7")}, nil)

	var written []*platform.PriceSnapshot
	repo.On("UpsertBatch", mock.Anything, userID, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(2).([]*platform.PriceSnapshot) }).
		Return(nil)

	counts, err := r.Reconcile(context.Background(), userID,
		[]platform.CanonicalRecord{fresh, seen})
	require.NoError(t, err)

	assert.Equal(t, 1, counts.Created)
	// Intraday values are revised until the day closes, so the known
	// snapshot is rewritten, not skipped.
	assert.Equal(t, 1, counts.Updated)
	assert.Len(t, written, 2)
}

func TestSnapshotReconciler_EmptyBatch(t *testing.T) {
	repo := new(MockSnapshotRepository)
	r := NewSnapshotReconciler(repo, zap.NewNop())

	counts, err := r.Reconcile(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, counts)
	repo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything, mock.Anything)
}
