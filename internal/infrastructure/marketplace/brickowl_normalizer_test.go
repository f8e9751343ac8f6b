package marketplace

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
)

const brickOwlOrderPayload = `{
	"order_id": "8845123",
	"order_time": "1749541800",
	"processed_time": "1749628200",
	"status": "Shipped",
	"base_currency": "eur",
	"base_order_total": "32.75",
	"base_shipping_cost": "5.25",
	"ship_first_name": "Marie",
	"ship_last_name": "Dubois",
	"ship_street_1": "12 Rue de la Paix",
	"ship_city": "Lyon",
	"ship_post_code": "69001",
	"ship_country_code": "FR",
	"items": [
		{
			"name": "Plate 1 x 2",
			"condition": "New",
			"ordered_quantity": "40",
			"base_price": "0.05",
			"lot_id": "55512",
			"boids": ["3023-50"]
		}
	]
}`

func TestBrickOwlNormalizer_Normalize(t *testing.T) {
	n := NewBrickOwlNormalizer(zap.NewNop())
	assert.Equal(t, platform.RecordKindOrder, n.Kind())

	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(brickOwlOrderPayload)})
	require.NoError(t, err)
	po := rec.(*order.PlatformOrder)

	assert.Equal(t, platform.CodeBrickOwl, po.Platform)
	assert.Equal(t, "8845123", po.PlatformOrderID)
	assert.Equal(t, order.StatusShipped, po.Status)
	assert.Equal(t, "Marie Dubois", po.BuyerName)
	assert.Equal(t, "EUR", po.Currency)
	assert.True(t, po.GrandTotal.Equal(decimal.RequireFromString("32.75")))
	assert.True(t, po.ShippingCost.Equal(decimal.RequireFromString("5.25")))
	assert.Equal(t, time.Unix(1749541800, 0).UTC(), po.OrderedAt.UTC())

	require.Len(t, po.Items, 1)
	assert.Equal(t, "3023-50", po.Items[0].SKU, "BOID should win over lot id")
	assert.Equal(t, 40, po.Items[0].Quantity)
	assert.True(t, po.Items[0].UnitPrice.Equal(decimal.RequireFromString("0.05")))

	require.NotNil(t, po.ShippingAddress)
	assert.Equal(t, "Marie Dubois", po.ShippingAddress.Name)
	assert.Equal(t, "12 Rue de la Paix", po.ShippingAddress.AddressLine)
	assert.Equal(t, "FR", po.ShippingAddress.CountryCode)
}

func TestBrickOwlNormalizer_StatusMapping(t *testing.T) {
	tests := []struct {
		owlStatus string
		want      order.Status
	}{
		{"Pending", order.StatusPending},
		{"Payment Sent", order.StatusPending},
		{"Paid", order.StatusPaid},
		{"Processing", order.StatusPaid},
		{"Processed", order.StatusPacked},
		{"Packed", order.StatusPacked},
		{"Shipped", order.StatusShipped},
		{"Received", order.StatusCompleted},
		{"Cancelled", order.StatusCancelled},
		{"On Hold", order.StatusPending},
	}

	n := NewBrickOwlNormalizer(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.owlStatus, func(t *testing.T) {
			payload := `{"order_id": "1", "status": "` + tt.owlStatus + `"}`
			rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.(*order.PlatformOrder).Status)
		})
	}
}

func TestBrickOwlNormalizer_DropsOrderWithoutID(t *testing.T) {
	n := NewBrickOwlNormalizer(zap.NewNop())

	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(`{"status": "Paid"}`)})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestBrickOwlNormalizer_MissingQuantityDefaultsToOne(t *testing.T) {
	n := NewBrickOwlNormalizer(zap.NewNop())

	payload := `{
		"order_id": "3",
		"status": "Paid",
		"items": [{"name": "Plate 1 x 2", "base_price": "0.10", "lot_id": "90002"}]
	}`
	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
	require.NoError(t, err)
	po := rec.(*order.PlatformOrder)
	require.Len(t, po.Items, 1)
	assert.Equal(t, 1, po.Items[0].Quantity)
}

func TestBrickOwlNormalizer_LotIDWhenNoBOID(t *testing.T) {
	n := NewBrickOwlNormalizer(zap.NewNop())

	payload := `{
		"order_id": "2",
		"status": "Paid",
		"items": [{"name": "Tile 2 x 2", "ordered_quantity": "3", "base_price": "0.20", "lot_id": "90001"}]
	}`
	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
	require.NoError(t, err)
	po := rec.(*order.PlatformOrder)
	require.Len(t, po.Items, 1)
	assert.Equal(t, "90001", po.Items[0].SKU)
}
