package marketplace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
)

// brickOwlStatusMap maps BrickOwl order statuses to internal statuses
var brickOwlStatusMap = map[string]order.Status{
	"pending":      order.StatusPending,
	"payment sent": order.StatusPending,
	"paid":         order.StatusPaid,
	"processing":   order.StatusPaid,
	"processed":    order.StatusPacked,
	"packed":       order.StatusPacked,
	"shipped":      order.StatusShipped,
	"received":     order.StatusCompleted,
	"cancelled":    order.StatusCancelled,
}

// BrickOwlNormalizer converts BrickOwl order payloads to canonical
// orders
type BrickOwlNormalizer struct {
	logger *zap.Logger
}

var _ platform.Normalizer = (*BrickOwlNormalizer)(nil)

// NewBrickOwlNormalizer creates a BrickOwl order normalizer
func NewBrickOwlNormalizer(logger *zap.Logger) *BrickOwlNormalizer {
	return &BrickOwlNormalizer{logger: logger}
}

// Kind returns the record kind this normalizer accepts
func (n *BrickOwlNormalizer) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// Normalize converts one raw BrickOwl order into a canonical order.
// Orders without an id are dropped.
func (n *BrickOwlNormalizer) Normalize(raw platform.RawRecord) (platform.CanonicalRecord, error) {
	var src BrickOwlOrderView
	if err := json.Unmarshal(raw.Payload, &src); err != nil {
		return nil, fmt.Errorf("decode brickowl order: %w", err)
	}
	if src.OrderID == "" {
		return nil, nil
	}

	status, ok := brickOwlStatusMap[strings.ToLower(src.Status)]
	if !ok {
		n.logger.Warn("unknown brickowl order status, treating as pending",
			zap.String("order_id", src.OrderID),
			zap.String("status", src.Status))
		status = order.StatusPending
	}

	items := make([]order.Item, 0, len(src.Items))
	for _, it := range src.Items {
		qty, _ := strconv.Atoi(it.OrderedQuantity)
		sku := it.LotID
		if len(it.BOIDs) > 0 {
			sku = it.BOIDs[0]
		}
		items = append(items, order.Item{
			SKU:       sku,
			Name:      it.Name,
			Condition: it.Condition,
			Quantity:  defaultQuantity(qty),
			UnitPrice: ParseDecimal(it.BasePrice),
		})
	}

	buyer := src.BuyerName
	if buyer == "" {
		buyer = strings.TrimSpace(src.ShipFirstName + " " + src.ShipLastName)
	}

	var addr *order.Address
	if src.ShipCountryCode != "" || src.ShipStreet1 != "" {
		addr = &order.Address{
			Name:        strings.TrimSpace(src.ShipFirstName + " " + src.ShipLastName),
			AddressLine: joinAddressLines(src.ShipStreet1, src.ShipStreet2),
			City:        src.ShipCity,
			Region:      src.ShipRegion,
			PostalCode:  src.ShipPostCode,
			CountryCode: src.ShipCountryCode,
		}
	}

	return &order.PlatformOrder{
		Platform:        platform.CodeBrickOwl,
		PlatformOrderID: src.OrderID,
		Status:          status,
		BuyerName:       buyer,
		GrandTotal:      ParseDecimal(src.BaseOrderTotal),
		ShippingCost:    ParseDecimal(src.BaseShippingCost),
		Currency:        strings.ToUpper(src.BaseCurrency),
		Items:           items,
		ShippingAddress: addr,
		OrderedAt:       parseBrickOwlTime(src.OrderTime),
		UpdatedAt:       parseBrickOwlTime(src.ProcessedTime),
		RawData:         string(raw.Payload),
	}, nil
}
