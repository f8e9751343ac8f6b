package marketplace

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// AmazonPricingNormalizer converts Amazon price observations to
// canonical price snapshots
type AmazonPricingNormalizer struct{}

var _ platform.Normalizer = (*AmazonPricingNormalizer)(nil)

// NewAmazonPricingNormalizer creates an Amazon pricing normalizer
func NewAmazonPricingNormalizer() *AmazonPricingNormalizer {
	return &AmazonPricingNormalizer{}
}

// Kind returns the record kind this normalizer accepts
func (n *AmazonPricingNormalizer) Kind() platform.RecordKind {
	return platform.RecordKindPriceSnapshot
}

// Normalize converts one raw price observation into a canonical
// snapshot. Observations without an ASIN or snapshot date are dropped.
func (n *AmazonPricingNormalizer) Normalize(raw platform.RawRecord) (platform.CanonicalRecord, error) {
	var src AmazonPriceObservation
	if err := json.Unmarshal(raw.Payload, &src); err != nil {
		return nil, fmt.Errorf("decode amazon price observation: %w", err)
	}
	if src.ASIN == "" {
		return nil, nil
	}
	snapshotDate, err := time.Parse("2006-01-02", src.SnapshotDate)
	if err != nil {
		return nil, nil
	}

	snapshot := &platform.PriceSnapshot{
		ASIN:         src.ASIN,
		Platform:     platform.CodeAmazon,
		SnapshotDate: snapshotDate.UTC(),
		ListPrice:    ParseDecimal(src.ListPrice),
		Currency:     src.Currency,
		RawData:      string(raw.Payload),
	}

	if src.Offers != nil {
		snapshot.OfferCount = src.Offers.TotalOfferCount
		if len(src.Offers.BuyBoxPrices) > 0 {
			price := decimal.NewFromFloat(src.Offers.BuyBoxPrices[0].LandedPrice.Amount)
			snapshot.BuyBoxPrice = &price
			if snapshot.Currency == "" {
				snapshot.Currency = src.Offers.BuyBoxPrices[0].LandedPrice.CurrencyCode
			}
		}
		if len(src.Offers.SalesRankings) > 0 {
			snapshot.SalesRank = src.Offers.SalesRankings[0].Rank
		}
	}
	return snapshot, nil
}
