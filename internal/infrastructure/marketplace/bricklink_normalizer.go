package marketplace

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
)

// brickLinkStatusMap maps BrickLink order statuses to internal statuses.
// BrickLink's workflow maps almost one to one; problem states (NPB, NPX,
// NRS, NSS, OCR) stay pending until resolved or cancelled.
var brickLinkStatusMap = map[string]order.Status{
	"PENDING":    order.StatusPending,
	"UPDATED":    order.StatusPending,
	"PROCESSING": order.StatusPaid,
	"READY":      order.StatusPaid,
	"PAID":       order.StatusPaid,
	"PACKED":     order.StatusPacked,
	"SHIPPED":    order.StatusShipped,
	"RECEIVED":   order.StatusCompleted,
	"COMPLETED":  order.StatusCompleted,
	"CANCELLED":  order.StatusCancelled,
	"PURGED":     order.StatusCancelled,
	"OCR":        order.StatusPending,
	"NPB":        order.StatusPending,
	"NPX":        order.StatusPending,
	"NRS":        order.StatusPending,
	"NSS":        order.StatusPending,
}

// BrickLinkNormalizer converts BrickLink order payloads to canonical
// orders
type BrickLinkNormalizer struct {
	logger *zap.Logger
}

var _ platform.Normalizer = (*BrickLinkNormalizer)(nil)

// NewBrickLinkNormalizer creates a BrickLink order normalizer
func NewBrickLinkNormalizer(logger *zap.Logger) *BrickLinkNormalizer {
	return &BrickLinkNormalizer{logger: logger}
}

// Kind returns the record kind this normalizer accepts
func (n *BrickLinkNormalizer) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// Normalize converts one raw BrickLink order into a canonical order.
// Orders without an id are dropped.
func (n *BrickLinkNormalizer) Normalize(raw platform.RawRecord) (platform.CanonicalRecord, error) {
	var src BrickLinkOrder
	if err := json.Unmarshal(raw.Payload, &src); err != nil {
		return nil, fmt.Errorf("decode bricklink order: %w", err)
	}
	if src.OrderID == 0 {
		return nil, nil
	}

	status, ok := brickLinkStatusMap[src.Status]
	if !ok {
		n.logger.Warn("unknown bricklink order status, treating as pending",
			zap.Int("order_id", src.OrderID),
			zap.String("status", src.Status))
		status = order.StatusPending
	}

	items := make([]order.Item, 0, len(src.Items))
	for _, it := range src.Items {
		items = append(items, order.Item{
			SKU:       it.Item.No,
			Name:      it.Item.Name,
			Condition: it.NewOrUsed,
			Quantity:  defaultQuantity(it.Quantity),
			UnitPrice: ParseDecimal(it.UnitPrice),
		})
	}

	var addr *order.Address
	if src.Shipping.Address.CountryCode != "" || src.Shipping.Address.Address1 != "" {
		addr = &order.Address{
			Name:        src.Shipping.Address.Name.Full,
			AddressLine: joinAddressLines(src.Shipping.Address.Address1, src.Shipping.Address.Address2),
			City:        src.Shipping.Address.City,
			Region:      src.Shipping.Address.State,
			PostalCode:  src.Shipping.Address.PostalCode,
			CountryCode: src.Shipping.Address.CountryCode,
		}
	}

	return &order.PlatformOrder{
		Platform:        platform.CodeBrickLink,
		PlatformOrderID: strconv.Itoa(src.OrderID),
		Status:          status,
		BuyerName:       src.BuyerName,
		GrandTotal:      ParseDecimal(src.Cost.GrandTotal),
		ShippingCost:    ParseDecimal(src.Cost.Shipping),
		Currency:        src.Cost.CurrencyCode,
		Items:           items,
		ShippingAddress: addr,
		OrderedAt:       parseBrickLinkTime(src.DateOrdered),
		UpdatedAt:       parseBrickLinkTime(src.DateStatusChanged),
		RawData:         string(raw.Payload),
	}, nil
}

func joinAddressLines(a, b string) string {
	if b == "" {
		return a
	}
	if a == "" {
		return b
	}
	return a + ", " + b
}
