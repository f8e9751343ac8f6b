package marketplace

import "encoding/json"

// BrickLinkMeta is the metadata envelope on every store API response
type BrickLinkMeta struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// BrickLinkEnvelope is the standard response envelope
type BrickLinkEnvelope struct {
	Meta BrickLinkMeta   `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// BrickLinkCost holds the monetary breakdown of an order
type BrickLinkCost struct {
	CurrencyCode string `json:"currency_code"`
	Subtotal     string `json:"subtotal"`
	GrandTotal   string `json:"grand_total"`
	Shipping     string `json:"shipping"`
	Credit       string `json:"credit"`
	Coupon       string `json:"coupon"`
	VATAmount    string `json:"vat_amount"`
}

// BrickLinkName is the buyer display name
type BrickLinkName struct {
	Full string `json:"full"`
}

// BrickLinkAddress is the shipping address of an order
type BrickLinkAddress struct {
	Name        BrickLinkName `json:"name"`
	Full        string        `json:"full"`
	Address1    string        `json:"address1"`
	Address2    string        `json:"address2"`
	City        string        `json:"city"`
	State       string        `json:"state"`
	PostalCode  string        `json:"postal_code"`
	CountryCode string        `json:"country_code"`
}

// BrickLinkShipping holds shipping details of an order
type BrickLinkShipping struct {
	MethodID     int              `json:"method_id"`
	Method       string           `json:"method"`
	TrackingNo   string           `json:"tracking_no"`
	TrackingLink string           `json:"tracking_link"`
	DateShipped  string           `json:"date_shipped"`
	Address      BrickLinkAddress `json:"address"`
}

// BrickLinkOrder is one order as returned by GET /orders
type BrickLinkOrder struct {
	OrderID           int               `json:"order_id"`
	DateOrdered       string            `json:"date_ordered"`
	DateStatusChanged string            `json:"date_status_changed"`
	SellerName        string            `json:"seller_name"`
	StoreName         string            `json:"store_name"`
	BuyerName         string            `json:"buyer_name"`
	BuyerEmail        string            `json:"buyer_email"`
	Status            string            `json:"status"`
	TotalCount        int               `json:"total_count"`
	UniqueCount       int               `json:"unique_count"`
	PaymentStatus     string            `json:"payment_status,omitempty"`
	Cost              BrickLinkCost     `json:"cost"`
	Shipping          BrickLinkShipping `json:"shipping"`

	// Items is populated by a follow-up call, not by the list endpoint
	Items []BrickLinkOrderItem `json:"items,omitempty"`
}

// BrickLinkItem identifies a catalog item
type BrickLinkItem struct {
	No   string `json:"no"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// BrickLinkOrderItem is one lot within an order
type BrickLinkOrderItem struct {
	InventoryID int           `json:"inventory_id"`
	Item        BrickLinkItem `json:"item"`
	ColorName   string        `json:"color_name"`
	Quantity    int           `json:"quantity"`
	NewOrUsed   string        `json:"new_or_used"`
	UnitPrice   string        `json:"unit_price"`
	Description string        `json:"description"`
	Remarks     string        `json:"remarks"`
}
