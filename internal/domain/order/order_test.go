package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/shared"
)

func createTestOrder(status Status) *Order {
	return &Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Platform:        platform.CodeBrickLink,
		PlatformOrderID: "12345678",
		PlatformStatus:  status,
		GrandTotal:      decimal.NewFromFloat(42.50),
		Currency:        "EUR",
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  Status
		isValid bool
	}{
		{StatusPending, true},
		{StatusPaid, true},
		{StatusPacked, true},
		{StatusShipped, true},
		{StatusCompleted, true},
		{StatusCancelled, true},
		{Status("SHIPPING"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		canTrans bool
	}{
		// Forward chain
		{StatusPending, StatusPaid, true},
		{StatusPaid, StatusPacked, true},
		{StatusPacked, StatusShipped, true},
		{StatusShipped, StatusCompleted, true},
		// No skipping
		{StatusPending, StatusPacked, false},
		{StatusPending, StatusShipped, false},
		{StatusPaid, StatusShipped, false},
		{StatusPaid, StatusCompleted, false},
		// No going backward
		{StatusPaid, StatusPending, false},
		{StatusShipped, StatusPacked, false},
		// Cancellation from any non-terminal state
		{StatusPending, StatusCancelled, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPacked, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},
		// Terminal states are final
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_EffectiveStatus(t *testing.T) {
	o := createTestOrder(StatusPaid)
	assert.Equal(t, StatusPaid, o.EffectiveStatus())

	override := StatusPacked
	o.InternalStatusOverride = &override
	assert.Equal(t, StatusPacked, o.EffectiveStatus())

	o.ClearOverride()
	assert.Equal(t, StatusPaid, o.EffectiveStatus())
}

func TestOrder_Transition_Operator(t *testing.T) {
	o := createTestOrder(StatusPaid)

	err := o.Transition(TransitionRequest{
		Status: StatusPacked,
		Source: SourceOperator,
		Notes:  "packed by hand",
	})
	require.NoError(t, err)

	// The operator transition sets the override, not the platform
	// status.
	assert.Equal(t, StatusPaid, o.PlatformStatus)
	require.NotNil(t, o.InternalStatusOverride)
	assert.Equal(t, StatusPacked, *o.InternalStatusOverride)
	assert.Equal(t, StatusPacked, o.EffectiveStatus())

	require.Len(t, o.History, 1)
	entry := o.History[0]
	assert.Equal(t, StatusPaid, entry.FromStatus)
	assert.Equal(t, StatusPacked, entry.ToStatus)
	assert.Equal(t, SourceOperator, entry.ChangedBy)
	assert.Equal(t, "packed by hand", entry.Notes)
	assert.Equal(t, o.ID, entry.OrderID)
}

func TestOrder_Transition_Sync(t *testing.T) {
	o := createTestOrder(StatusPending)

	err := o.Transition(TransitionRequest{Status: StatusPaid, Source: SourceSync})
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, o.PlatformStatus)
	assert.Nil(t, o.InternalStatusOverride)
	require.Len(t, o.History, 1)
	assert.Equal(t, SourceSync, o.History[0].ChangedBy)
}

func TestOrder_Transition_RejectsNonAdjacent(t *testing.T) {
	o := createTestOrder(StatusPending)

	err := o.Transition(TransitionRequest{Status: StatusShipped, Source: SourceOperator})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", domainErr.Code)

	// Rejection leaves the order untouched.
	assert.Equal(t, StatusPending, o.EffectiveStatus())
	assert.Empty(t, o.History)
}

func TestOrder_Transition_RejectsSameStatus(t *testing.T) {
	o := createTestOrder(StatusPaid)

	err := o.Transition(TransitionRequest{Status: StatusPaid, Source: SourceOperator})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", domainErr.Code)
	assert.Empty(t, o.History)
}

func TestOrder_Transition_RejectsUnknownStatus(t *testing.T) {
	o := createTestOrder(StatusPaid)

	err := o.Transition(TransitionRequest{Status: Status("BROKEN"), Source: SourceOperator})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
}

func TestOrder_Transition_ForceBypassesAdjacency(t *testing.T) {
	o := createTestOrder(StatusPending)

	err := o.Transition(TransitionRequest{
		Status: StatusShipped,
		Source: SourceOperator,
		Force:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.EffectiveStatus())
	require.Len(t, o.History, 1)
}

func TestOrder_Transition_ForceIsOperatorOnly(t *testing.T) {
	o := createTestOrder(StatusPending)

	err := o.Transition(TransitionRequest{
		Status: StatusShipped,
		Source: SourceSync,
		Force:  true,
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORCE_NOT_ALLOWED", domainErr.Code)
	assert.Empty(t, o.History)
}

func TestOrder_Transition_SyncDoesNotClobberOverride(t *testing.T) {
	o := createTestOrder(StatusPaid)
	require.NoError(t, o.Transition(TransitionRequest{Status: StatusPacked, Source: SourceOperator}))

	// Platform reports SHIPPED; the effective status follows the chain
	// from the override, the override itself stays.
	err := o.Transition(TransitionRequest{Status: StatusShipped, Source: SourceSync})
	require.NoError(t, err)

	assert.Equal(t, StatusShipped, o.PlatformStatus)
	require.NotNil(t, o.InternalStatusOverride)
	assert.Equal(t, StatusPacked, *o.InternalStatusOverride)
	assert.Equal(t, StatusPacked, o.EffectiveStatus())
	assert.Len(t, o.History, 2)
}

func TestPlatformOrder_NaturalKey(t *testing.T) {
	p := &PlatformOrder{Platform: platform.CodeEbay, PlatformOrderID: "11-22-33"}
	assert.Equal(t, "EBAY:11-22-33", p.NaturalKey())
}
