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

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
)

func testPlatformOrder(id string, status order.Status, total float64) *order.PlatformOrder {
	return &order.PlatformOrder{
		Platform:        platform.CodeBrickLink,
		PlatformOrderID: id,
		Status:          status,
		BuyerName:       "brickfan42",
		GrandTotal:      decimal.NewFromFloat(total),
		Currency:        "EUR",
		OrderedAt:       time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
	}
}

func existingOrder(userID uuid.UUID, po *order.PlatformOrder) *order.Order {
	return &order.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Platform:        po.Platform,
		PlatformOrderID: po.PlatformOrderID,
		PlatformStatus:  po.Status,
		GrandTotal:      po.GrandTotal,
		Currency:        po.Currency,
		OrderedAt:       po.OrderedAt,
	}
}

func TestOrderReconciler_CreatesNewOrders(t *testing.T) {
	repo := new(MockOrderRepository)
	r := NewOrderReconciler(repo, zap.NewNop())
	userID := uuid.New()

	repo.On("FindByNaturalKeys", mock.Anything, userID, mock.Anything).
		Return(map[string]*order.Order{}, nil)

	var created []*order.Order
	repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(*order.Order)) }).
		Return(nil)

	counts, err := r.Reconcile(context.Background(), userID, []platform.CanonicalRecord{
		testPlatformOrder("100", order.StatusPending, 25),
		testPlatformOrder("101", order.StatusPaid, 50),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, counts.Created)
	require.Len(t, created, 2)
	assert.Equal(t, userID, created[0].UserID)
	assert.Equal(t, "100", created[0].PlatformOrderID)
	assert.Equal(t, order.StatusPending, created[0].PlatformStatus)
}

func TestOrderReconciler_StatusChangeGoesThroughStatusMachine(t *testing.T) {
	repo := new(MockOrderRepository)
	r := NewOrderReconciler(repo, zap.NewNop())
	userID := uuid.New()

	prev := existingOrder(userID, testPlatformOrder("100", order.StatusPending, 25))

	repo.On("FindByNaturalKeys", mock.Anything, userID, mock.Anything).
		Return(map[string]*order.Order{"BRICKLINK:100": prev}, nil)

	var updatedOrder *order.Order
	repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).
		Run(func(args mock.Arguments) { updatedOrder = args.Get(1).(*order.Order) }).
		Return(nil)

	counts, err := r.Reconcile(context.Background(), userID, []platform.CanonicalRecord{
		testPlatformOrder("100", order.StatusPaid, 25),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, counts.Updated)
	require.NotNil(t, updatedOrder)
	assert.Equal(t, order.StatusPaid, updatedOrder.PlatformStatus)
	// The accepted transition produced exactly one history entry.
	require.Len(t, updatedOrder.History, 1)
	assert.Equal(t, order.SourceSync, updatedOrder.History[0].ChangedBy)
	assert.Equal(t, order.StatusPending, updatedOrder.History[0].FromStatus)
	assert.Equal(t, order.StatusPaid, updatedOrder.History[0].ToStatus)
}

func TestOrderReconciler_BackwardStatusRejectedOrderStillUpdates(t *testing.T) {
	repo := new(MockOrderRepository)
	r := NewOrderReconciler(repo, zap.NewNop())
	userID := uuid.New()

	prev := existingOrder(userID, testPlatformOrder("100", order.StatusShipped, 25))

	repo.On("FindByNaturalKeys", mock.Anything, userID, mock.Anything).
		Return(map[string]*order.Order{"BRICKLINK:100": prev}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	// Platform regresses the status but also changes the total.
	po := testPlatformOrder("100", order.StatusPending, 30)
	counts, err := r.Reconcile(context.Background(), userID, []platform.CanonicalRecord{po})
	require.NoError(t, err)

	assert.Equal(t, 1, counts.Updated)
	// The rejected transition left the status and history alone.
	assert.Equal(t, order.StatusShipped, prev.PlatformStatus)
	assert.Empty(t, prev.History)
	// The rest of the payload still applied.
	assert.True(t, prev.GrandTotal.Equal(decimal.NewFromFloat(30)))
}

func TestOrderReconciler_UnchangedOrderSkipped(t *testing.T) {
	repo := new(MockOrderRepository)
	r := NewOrderReconciler(repo, zap.NewNop())
	userID := uuid.New()

	po := testPlatformOrder("100", order.StatusPaid, 25)
	prev := existingOrder(userID, po)

	repo.On("FindByNaturalKeys", mock.Anything, userID, mock.Anything).
		Return(map[string]*order.Order{"BRICKLINK:100": prev}, nil)

	counts, err := r.Reconcile(context.Background(), userID, []platform.CanonicalRecord{po})
	require.NoError(t, err)

	assert.Equal(t, 0, counts.Created)
	assert.Equal(t, 0, counts.Updated)
	assert.Equal(t, 1, counts.Skipped)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOrderReconciler_DeduplicatesAcrossPages(t *testing.T) {
	repo := new(MockOrderRepository)
	r := NewOrderReconciler(repo, zap.NewNop())
	userID := uuid.New()

	repo.On("FindByNaturalKeys", mock.Anything, userID, []string{"BRICKLINK:100"}).
		Return(map[string]*order.Order{}, nil)

	var created []*order.Order
	repo.On("Update", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(*order.Order)) }).
		Return(nil)

	counts, err := r.Reconcile(context.Background(), userID, []platform.CanonicalRecord{
		testPlatformOrder("100", order.StatusPending, 25),
		testPlatformOrder("100", order.StatusPaid, 25), // last one wins
	})
	require.NoError(t, err)

	assert.Equal(t, 1, counts.Created)
	assert.Equal(t, 1, counts.Skipped)
	require.Len(t, created, 1)
	assert.Equal(t, order.StatusPaid, created[0].PlatformStatus)
}
