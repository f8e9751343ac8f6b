package marketplace

// EbayTokenResponse is the OAuth2 token endpoint response
type EbayTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// EbayAmount is a monetary value with currency
type EbayAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// EbayBuyer identifies the purchasing account
type EbayBuyer struct {
	Username string `json:"username"`
}

// EbayPricingSummary is the order's monetary breakdown
type EbayPricingSummary struct {
	PriceSubtotal EbayAmount `json:"priceSubtotal"`
	DeliveryCost  EbayAmount `json:"deliveryCost"`
	Total         EbayAmount `json:"total"`
}

// EbayCancelStatus holds cancellation state for an order
type EbayCancelStatus struct {
	CancelState string `json:"cancelState"`
}

// EbayLineItem is one line of an order
type EbayLineItem struct {
	LineItemID   string     `json:"lineItemId"`
	SKU          string     `json:"sku"`
	Title        string     `json:"title"`
	Quantity     int        `json:"quantity"`
	LineItemCost EbayAmount `json:"lineItemCost"`
}

// EbayContactAddress is a postal address
type EbayContactAddress struct {
	AddressLine1    string `json:"addressLine1"`
	AddressLine2    string `json:"addressLine2"`
	City            string `json:"city"`
	StateOrProvince string `json:"stateOrProvince"`
	PostalCode      string `json:"postalCode"`
	CountryCode     string `json:"countryCode"`
}

// EbayShipTo is the delivery destination
type EbayShipTo struct {
	FullName       string             `json:"fullName"`
	ContactAddress EbayContactAddress `json:"contactAddress"`
}

// EbayShippingStep wraps the destination within fulfillment instructions
type EbayShippingStep struct {
	ShipTo EbayShipTo `json:"shipTo"`
}

// EbayFulfillmentInstruction describes how an order ships
type EbayFulfillmentInstruction struct {
	ShippingStep EbayShippingStep `json:"shippingStep"`
}

// EbayOrder is one order from the fulfillment API
type EbayOrder struct {
	OrderID                      string                       `json:"orderId"`
	CreationDate                 string                       `json:"creationDate"`
	LastModifiedDate             string                       `json:"lastModifiedDate"`
	OrderFulfillmentStatus       string                       `json:"orderFulfillmentStatus"`
	OrderPaymentStatus           string                       `json:"orderPaymentStatus"`
	CancelStatus                 EbayCancelStatus             `json:"cancelStatus"`
	Buyer                        EbayBuyer                    `json:"buyer"`
	PricingSummary               EbayPricingSummary           `json:"pricingSummary"`
	LineItems                    []EbayLineItem               `json:"lineItems"`
	FulfillmentStartInstructions []EbayFulfillmentInstruction `json:"fulfillmentStartInstructions"`
}

// EbayOrderSearchResponse is the paginated order listing
type EbayOrderSearchResponse struct {
	Orders []EbayOrder `json:"orders"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Next   string      `json:"next"`
}
