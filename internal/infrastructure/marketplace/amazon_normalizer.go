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

// amazonStatusMap maps Amazon order statuses to internal statuses.
// Amazon has no packed or received signal, so paid orders jump straight
// to shipped when Amazon reports shipment.
var amazonStatusMap = map[string]order.Status{
	"Pending":             order.StatusPending,
	"PendingAvailability": order.StatusPending,
	"Unshipped":           order.StatusPaid,
	"PartiallyShipped":    order.StatusPaid,
	"InvoiceUnconfirmed":  order.StatusPaid,
	"Shipped":             order.StatusShipped,
	"Canceled":            order.StatusCancelled,
	"Unfulfillable":       order.StatusCancelled,
}

// AmazonOrderNormalizer converts Amazon order payloads to canonical
// orders
type AmazonOrderNormalizer struct {
	logger *zap.Logger
}

var _ platform.Normalizer = (*AmazonOrderNormalizer)(nil)

// NewAmazonOrderNormalizer creates an Amazon order normalizer
func NewAmazonOrderNormalizer(logger *zap.Logger) *AmazonOrderNormalizer {
	return &AmazonOrderNormalizer{logger: logger}
}

// Kind returns the record kind this normalizer accepts
func (n *AmazonOrderNormalizer) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// Normalize converts one raw Amazon order into a canonical order.
// Orders without an id are dropped.
func (n *AmazonOrderNormalizer) Normalize(raw platform.RawRecord) (platform.CanonicalRecord, error) {
	var src AmazonOrder
	if err := json.Unmarshal(raw.Payload, &src); err != nil {
		return nil, fmt.Errorf("decode amazon order: %w", err)
	}
	if src.AmazonOrderID == "" {
		return nil, nil
	}

	status, ok := amazonStatusMap[src.OrderStatus]
	if !ok {
		n.logger.Warn("unknown amazon order status, treating as pending",
			zap.String("order_id", src.AmazonOrderID),
			zap.String("status", src.OrderStatus))
		status = order.StatusPending
	}

	items := make([]order.Item, 0, len(src.OrderItems))
	for _, it := range src.OrderItems {
		qty := defaultQuantity(it.QuantityOrdered)
		unit := order.Item{
			SKU:       it.SellerSKU,
			Name:      it.Title,
			Condition: it.ConditionID,
			Quantity:  qty,
		}
		if unit.SKU == "" {
			unit.SKU = it.ASIN
		}
		if it.ItemPrice != nil {
			unit.UnitPrice = ParseDecimal(it.ItemPrice.Amount).
				Div(decimal.NewFromInt(int64(qty))).Round(4)
		}
		items = append(items, unit)
	}

	var buyer string
	if src.BuyerInfo != nil {
		buyer = src.BuyerInfo.BuyerName
	}

	var addr *order.Address
	if src.ShippingAddress != nil {
		addr = &order.Address{
			Name:        src.ShippingAddress.Name,
			AddressLine: joinAddressLines(src.ShippingAddress.AddressLine1, src.ShippingAddress.AddressLine2),
			City:        src.ShippingAddress.City,
			Region:      src.ShippingAddress.StateOrRegion,
			PostalCode:  src.ShippingAddress.PostalCode,
			CountryCode: src.ShippingAddress.CountryCode,
		}
	}

	result := &order.PlatformOrder{
		Platform:        platform.CodeAmazon,
		PlatformOrderID: src.AmazonOrderID,
		Status:          status,
		BuyerName:       buyer,
		Items:           items,
		ShippingAddress: addr,
		OrderedAt:       parseAmazonTime(src.PurchaseDate),
		UpdatedAt:       parseAmazonTime(src.LastUpdateDate),
		RawData:         string(raw.Payload),
	}
	if src.OrderTotal != nil {
		result.GrandTotal = ParseDecimal(src.OrderTotal.Amount)
		result.Currency = src.OrderTotal.CurrencyCode
	}
	return result, nil
}

func parseAmazonTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
