package marketplace

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
)

const ebayOrderPayload = `{
	"orderId": "11-22222-33333",
	"creationDate": "2025-07-01T09:15:00.000Z",
	"lastModifiedDate": "2025-07-02T18:00:00.000Z",
	"orderFulfillmentStatus": "NOT_STARTED",
	"orderPaymentStatus": "PAID",
	"cancelStatus": {"cancelState": "NONE_REQUESTED"},
	"buyer": {"username": "lego_hunter"},
	"pricingSummary": {
		"deliveryCost": {"value": "4.95", "currency": "GBP"},
		"total": {"value": "54.95", "currency": "GBP"}
	},
	"lineItems": [
		{
			"lineItemId": "li-1",
			"sku": "SET-75192",
			"title": "Millennium Falcon",
			"quantity": 2,
			"lineItemCost": {"value": "50.00", "currency": "GBP"}
		}
	],
	"fulfillmentStartInstructions": [
		{
			"shippingStep": {
				"shipTo": {
					"fullName": "Sam Carter",
					"contactAddress": {
						"addressLine1": "10 High Street",
						"city": "Leeds",
						"stateOrProvince": "West Yorkshire",
						"postalCode": "LS1 1AA",
						"countryCode": "GB"
					}
				}
			}
		}
	]
}`

func TestEbayNormalizer_Normalize(t *testing.T) {
	n := NewEbayNormalizer(zap.NewNop())
	assert.Equal(t, platform.RecordKindOrder, n.Kind())

	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(ebayOrderPayload)})
	require.NoError(t, err)
	po := rec.(*order.PlatformOrder)

	assert.Equal(t, platform.CodeEbay, po.Platform)
	assert.Equal(t, "11-22222-33333", po.PlatformOrderID)
	assert.Equal(t, order.StatusPaid, po.Status)
	assert.Equal(t, "lego_hunter", po.BuyerName)
	assert.True(t, po.GrandTotal.Equal(decimal.RequireFromString("54.95")))
	assert.True(t, po.ShippingCost.Equal(decimal.RequireFromString("4.95")))
	assert.Equal(t, "GBP", po.Currency)

	require.Len(t, po.Items, 1)
	assert.Equal(t, "SET-75192", po.Items[0].SKU)
	assert.Equal(t, 2, po.Items[0].Quantity)
	assert.True(t, po.Items[0].UnitPrice.Equal(decimal.RequireFromString("25.00")),
		"unit price should be line cost divided by quantity, got %s", po.Items[0].UnitPrice)

	require.NotNil(t, po.ShippingAddress)
	assert.Equal(t, "Sam Carter", po.ShippingAddress.Name)
	assert.Equal(t, "10 High Street", po.ShippingAddress.AddressLine)
	assert.Equal(t, "GB", po.ShippingAddress.CountryCode)
}

func TestEbayNormalizer_StatusDerivation(t *testing.T) {
	tests := []struct {
		name        string
		cancelState string
		fulfillment string
		payment     string
		want        order.Status
	}{
		{"cancelled wins over everything", "CANCELED", "FULFILLED", "PAID", order.StatusCancelled},
		{"fulfilled maps to shipped", "NONE_REQUESTED", "FULFILLED", "PAID", order.StatusShipped},
		{"in progress maps to packed", "NONE_REQUESTED", "IN_PROGRESS", "PAID", order.StatusPacked},
		{"paid not started", "NONE_REQUESTED", "NOT_STARTED", "PAID", order.StatusPaid},
		{"awaiting payment", "NONE_REQUESTED", "NOT_STARTED", "PENDING", order.StatusPending},
	}

	n := NewEbayNormalizer(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `{
				"orderId": "1",
				"cancelStatus": {"cancelState": "` + tt.cancelState + `"},
				"orderFulfillmentStatus": "` + tt.fulfillment + `",
				"orderPaymentStatus": "` + tt.payment + `"
			}`
			rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.(*order.PlatformOrder).Status)
		})
	}
}

func TestEbayNormalizer_DropsOrderWithoutID(t *testing.T) {
	n := NewEbayNormalizer(zap.NewNop())

	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(`{"orderPaymentStatus": "PAID"}`)})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestEbayNormalizer_MissingQuantityDefaultsToOne(t *testing.T) {
	n := NewEbayNormalizer(zap.NewNop())

	payload := `{
		"orderId": "2",
		"lineItems": [{"sku": "3001-blue", "title": "Brick 2 x 4", "lineItemCost": {"value": "0.30", "currency": "GBP"}}]
	}`
	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
	require.NoError(t, err)

	items := rec.(*order.PlatformOrder).Items
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("0.30")))
}
