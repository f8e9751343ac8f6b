package marketplace

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
)

// EbayNormalizer converts eBay order payloads to canonical orders
type EbayNormalizer struct {
	logger *zap.Logger
}

var _ platform.Normalizer = (*EbayNormalizer)(nil)

// NewEbayNormalizer creates an eBay order normalizer
func NewEbayNormalizer(logger *zap.Logger) *EbayNormalizer {
	return &EbayNormalizer{logger: logger}
}

// Kind returns the record kind this normalizer accepts
func (n *EbayNormalizer) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// Normalize converts one raw eBay order into a canonical order. Orders
// without an id are dropped.
func (n *EbayNormalizer) Normalize(raw platform.RawRecord) (platform.CanonicalRecord, error) {
	var src EbayOrder
	if err := json.Unmarshal(raw.Payload, &src); err != nil {
		return nil, fmt.Errorf("decode ebay order: %w", err)
	}
	if src.OrderID == "" {
		return nil, nil
	}

	items := make([]order.Item, 0, len(src.LineItems))
	for _, li := range src.LineItems {
		items = append(items, order.Item{
			SKU:       li.SKU,
			Name:      li.Title,
			Quantity:  defaultQuantity(li.Quantity),
			UnitPrice: ebayUnitPrice(li),
		})
	}

	var addr *order.Address
	if len(src.FulfillmentStartInstructions) > 0 {
		shipTo := src.FulfillmentStartInstructions[0].ShippingStep.ShipTo
		if shipTo.ContactAddress.CountryCode != "" || shipTo.ContactAddress.AddressLine1 != "" {
			addr = &order.Address{
				Name:        shipTo.FullName,
				AddressLine: joinAddressLines(shipTo.ContactAddress.AddressLine1, shipTo.ContactAddress.AddressLine2),
				City:        shipTo.ContactAddress.City,
				Region:      shipTo.ContactAddress.StateOrProvince,
				PostalCode:  shipTo.ContactAddress.PostalCode,
				CountryCode: shipTo.ContactAddress.CountryCode,
			}
		}
	}

	return &order.PlatformOrder{
		Platform:        platform.CodeEbay,
		PlatformOrderID: src.OrderID,
		Status:          ebayStatus(src),
		BuyerName:       src.Buyer.Username,
		GrandTotal:      ParseDecimal(src.PricingSummary.Total.Value),
		ShippingCost:    ParseDecimal(src.PricingSummary.DeliveryCost.Value),
		Currency:        src.PricingSummary.Total.Currency,
		Items:           items,
		ShippingAddress: addr,
		OrderedAt:       parseEbayTime(src.CreationDate),
		UpdatedAt:       parseEbayTime(src.LastModifiedDate),
		RawData:         string(raw.Payload),
	}, nil
}

// ebayStatus derives the internal status from cancellation, payment and
// fulfillment state. eBay never reports buyer receipt, so fulfilled
// orders stay shipped until the operator completes them.
func ebayStatus(src EbayOrder) order.Status {
	if src.CancelStatus.CancelState == "CANCELED" {
		return order.StatusCancelled
	}
	switch src.OrderFulfillmentStatus {
	case "FULFILLED":
		return order.StatusShipped
	case "IN_PROGRESS":
		return order.StatusPacked
	}
	if src.OrderPaymentStatus == "PAID" {
		return order.StatusPaid
	}
	return order.StatusPending
}

// ebayUnitPrice divides the line cost by quantity
func ebayUnitPrice(li EbayLineItem) decimal.Decimal {
	cost := ParseDecimal(li.LineItemCost.Value)
	if li.Quantity <= 1 {
		return cost
	}
	return cost.Div(decimal.NewFromInt(int64(li.Quantity))).Round(4)
}

func parseEbayTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(ebayTimeLayout, s); err == nil {
		return t
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
