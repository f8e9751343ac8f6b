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

const brickLinkOrderPayload = `{
	"order_id": 1234567,
	"date_ordered": "2025-06-10T08:30:00.000Z",
	"date_status_changed": "2025-06-11T12:00:00.000Z",
	"buyer_name": "brickfan42",
	"status": "PAID",
	"total_count": 12,
	"unique_count": 2,
	"cost": {
		"currency_code": "EUR",
		"subtotal": "38.50",
		"grand_total": "45.9000",
		"shipping": "7.40"
	},
	"shipping": {
		"method": "Registered Mail",
		"address": {
			"name": {"full": "Jan de Vries"},
			"address1": "Keizersgracht 1",
			"address2": "Apt 3",
			"city": "Amsterdam",
			"state": "NH",
			"postal_code": "1015 CC",
			"country_code": "NL"
		}
	},
	"items": [
		{
			"inventory_id": 99,
			"item": {"no": "3001", "name": "Brick 2 x 4", "type": "PART"},
			"color_name": "Red",
			"quantity": 10,
			"new_or_used": "N",
			"unit_price": "0.1200"
		},
		{
			"inventory_id": 100,
			"item": {"no": "sw0001a", "name": "Battle Droid", "type": "MINIFIG"},
			"quantity": 2,
			"new_or_used": "U",
			"unit_price": "18.65"
		}
	]
}`

func TestBrickLinkNormalizer_Normalize(t *testing.T) {
	n := NewBrickLinkNormalizer(zap.NewNop())
	assert.Equal(t, platform.RecordKindOrder, n.Kind())

	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(brickLinkOrderPayload)})
	require.NoError(t, err)
	po, ok := rec.(*order.PlatformOrder)
	require.True(t, ok)

	assert.Equal(t, platform.CodeBrickLink, po.Platform)
	assert.Equal(t, "1234567", po.PlatformOrderID)
	assert.Equal(t, order.StatusPaid, po.Status)
	assert.Equal(t, "brickfan42", po.BuyerName)
	assert.True(t, po.GrandTotal.Equal(decimal.RequireFromString("45.90")))
	assert.True(t, po.ShippingCost.Equal(decimal.RequireFromString("7.40")))
	assert.Equal(t, "EUR", po.Currency)
	assert.Equal(t, time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC), po.OrderedAt)
	assert.Equal(t, time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC), po.UpdatedAt)

	require.Len(t, po.Items, 2)
	assert.Equal(t, "3001", po.Items[0].SKU)
	assert.Equal(t, "Brick 2 x 4", po.Items[0].Name)
	assert.Equal(t, "N", po.Items[0].Condition)
	assert.Equal(t, 10, po.Items[0].Quantity)
	assert.True(t, po.Items[0].UnitPrice.Equal(decimal.RequireFromString("0.12")))

	require.NotNil(t, po.ShippingAddress)
	assert.Equal(t, "Jan de Vries", po.ShippingAddress.Name)
	assert.Equal(t, "Keizersgracht 1, Apt 3", po.ShippingAddress.AddressLine)
	assert.Equal(t, "Amsterdam", po.ShippingAddress.City)
	assert.Equal(t, "NL", po.ShippingAddress.CountryCode)

	assert.JSONEq(t, brickLinkOrderPayload, po.RawData)
}

func TestBrickLinkNormalizer_StatusMapping(t *testing.T) {
	tests := []struct {
		blStatus string
		want     order.Status
	}{
		{"PENDING", order.StatusPending},
		{"UPDATED", order.StatusPending},
		{"PROCESSING", order.StatusPaid},
		{"READY", order.StatusPaid},
		{"PAID", order.StatusPaid},
		{"PACKED", order.StatusPacked},
		{"SHIPPED", order.StatusShipped},
		{"RECEIVED", order.StatusCompleted},
		{"COMPLETED", order.StatusCompleted},
		{"CANCELLED", order.StatusCancelled},
		{"PURGED", order.StatusCancelled},
		{"NPB", order.StatusPending},
		{"NSS", order.StatusPending},
		{"OCR", order.StatusPending},
		{"SOME_FUTURE_STATUS", order.StatusPending},
	}

	n := NewBrickLinkNormalizer(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.blStatus, func(t *testing.T) {
			payload := `{"order_id": 1, "status": "` + tt.blStatus + `"}`
			rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.(*order.PlatformOrder).Status)
		})
	}
}

func TestBrickLinkNormalizer_DropsOrderWithoutID(t *testing.T) {
	n := NewBrickLinkNormalizer(zap.NewNop())

	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(`{"status": "PAID"}`)})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestBrickLinkNormalizer_MalformedPayload(t *testing.T) {
	n := NewBrickLinkNormalizer(zap.NewNop())

	_, err := n.Normalize(platform.RawRecord{Payload: []byte(`{"order_id": "not-a-number"}`)})
	assert.Error(t, err)
}

func TestBrickLinkNormalizer_MissingQuantityDefaultsToOne(t *testing.T) {
	n := NewBrickLinkNormalizer(zap.NewNop())

	payload := `{"order_id": 3, "status": "PAID", "items": [{"item": {"no": "3001", "name": "Brick 2 x 4"}, "unit_price": "0.15"}]}`
	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
	require.NoError(t, err)

	items := rec.(*order.PlatformOrder).Items
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestBrickLinkNormalizer_NoAddressWhenEmpty(t *testing.T) {
	n := NewBrickLinkNormalizer(zap.NewNop())

	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(`{"order_id": 2, "status": "PENDING"}`)})
	require.NoError(t, err)
	assert.Nil(t, rec.(*order.PlatformOrder).ShippingAddress)
}
