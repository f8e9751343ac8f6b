package marketplace

// BrickOwlOrderSummary is one entry from the order list endpoint. The
// list endpoint returns a compact shape; full details come from the
// order view endpoint.
type BrickOwlOrderSummary struct {
	OrderID        string `json:"order_id"`
	OrderDate      string `json:"order_date"`
	OrderTime      string `json:"order_time"`
	Status         string `json:"status"`
	StatusID       string `json:"status_id"`
	TotalQuantity  string `json:"total_quantity"`
	TotalLots      string `json:"total_lots"`
	BaseOrderTotal string `json:"base_order_total"`
}

// BrickOwlOrderView is the full order detail
type BrickOwlOrderView struct {
	OrderID          string `json:"order_id"`
	OrderTime        string `json:"order_time"`
	ProcessedTime    string `json:"processed_time"`
	Status           string `json:"status"`
	StatusID         string `json:"status_id"`
	BuyerName        string `json:"buyer_name"`
	TotalQuantity    string `json:"total_quantity"`
	TotalLots        string `json:"total_lots"`
	BaseCurrency     string `json:"base_currency"`
	BaseOrderTotal   string `json:"base_order_total"`
	BaseShippingCost string `json:"base_shipping_cost"`
	ShipFirstName    string `json:"ship_first_name"`
	ShipLastName     string `json:"ship_last_name"`
	ShipStreet1      string `json:"ship_street_1"`
	ShipStreet2      string `json:"ship_street_2"`
	ShipCity         string `json:"ship_city"`
	ShipRegion       string `json:"ship_region"`
	ShipPostCode     string `json:"ship_post_code"`
	ShipCountryCode  string `json:"ship_country_code"`

	// Items is populated by a follow-up call
	Items []BrickOwlOrderItem `json:"items,omitempty"`
}

// BrickOwlOrderItem is one lot within an order
type BrickOwlOrderItem struct {
	Name            string   `json:"name"`
	Condition       string   `json:"condition"`
	OrderedQuantity string   `json:"ordered_quantity"`
	BasePrice       string   `json:"base_price"`
	LotID           string   `json:"lot_id"`
	BOIDs           []string `json:"boids,omitempty"`
	PublicNote      string   `json:"public_note"`
}
