package marketplace

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickdesk/backend/internal/domain/platform"
)

const amazonPriceObservationPayload = `{
	"asin": "B07F9Y2K4M",
	"sellerSku": "LEGO-10265",
	"productName": "Ford Mustang",
	"snapshotDate": "2025-08-01",
	"currency": "USD",
	"listPrice": "149.99",
	"offers": {
		"TotalOfferCount": 14,
		"BuyBoxPrices": [
			{"condition": "New", "LandedPrice": {"CurrencyCode": "USD", "Amount": 139.95}}
		],
		"SalesRankings": [
			{"ProductCategoryId": "toys_display_on_website", "Rank": 1871}
		]
	}
}`

func TestAmazonPricingNormalizer_Normalize(t *testing.T) {
	n := NewAmazonPricingNormalizer()
	assert.Equal(t, platform.RecordKindPriceSnapshot, n.Kind())

	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(amazonPriceObservationPayload)})
	require.NoError(t, err)
	snap, ok := rec.(*platform.PriceSnapshot)
	require.True(t, ok)

	assert.Equal(t, "B07F9Y2K4M", snap.ASIN)
	assert.Equal(t, platform.CodeAmazon, snap.Platform)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), snap.SnapshotDate)
	assert.True(t, snap.ListPrice.Equal(decimal.RequireFromString("149.99")))
	assert.Equal(t, "USD", snap.Currency)
	assert.Equal(t, 14, snap.OfferCount)
	require.NotNil(t, snap.BuyBoxPrice)
	assert.True(t, snap.BuyBoxPrice.Equal(decimal.RequireFromString("139.95")))
	assert.Equal(t, int64(1871), snap.SalesRank)
}

func TestAmazonPricingNormalizer_NoOffers(t *testing.T) {
	n := NewAmazonPricingNormalizer()

	payload := `{"asin": "B000TEST00", "snapshotDate": "2025-08-01", "listPrice": "9.99", "currency": "EUR"}`
	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
	require.NoError(t, err)
	snap := rec.(*platform.PriceSnapshot)

	assert.Nil(t, snap.BuyBoxPrice)
	assert.Zero(t, snap.OfferCount)
	assert.Zero(t, snap.SalesRank)
}

func TestAmazonPricingNormalizer_DropsInvalidRecords(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing asin", `{"snapshotDate": "2025-08-01"}`},
		{"missing date", `{"asin": "B000TEST00"}`},
		{"unparseable date", `{"asin": "B000TEST00", "snapshotDate": "01/08/2025"}`},
	}

	n := NewAmazonPricingNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := n.Normalize(platform.RawRecord{Payload: []byte(tt.payload)})
			require.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestAmazonPricingNormalizer_CurrencyFallsBackToBuyBox(t *testing.T) {
	n := NewAmazonPricingNormalizer()

	payload := `{
		"asin": "B000TEST01",
		"snapshotDate": "2025-08-02",
		"offers": {
			"TotalOfferCount": 3,
			"BuyBoxPrices": [
				{"condition": "New", "LandedPrice": {"CurrencyCode": "GBP", "Amount": 24.5}}
			]
		}
	}`
	rec, err := n.Normalize(platform.RawRecord{Payload: []byte(payload)})
	require.NoError(t, err)
	assert.Equal(t, "GBP", rec.(*platform.PriceSnapshot).Currency)
}
