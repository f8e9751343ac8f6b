package marketplace

import "encoding/json"

// AmazonTokenResponse is the LWA token endpoint response
type AmazonTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AmazonPayload is the standard selling partner response envelope
type AmazonPayload struct {
	Payload json.RawMessage `json:"payload"`
	Errors  []AmazonError   `json:"errors,omitempty"`
}

// AmazonError is one error entry from the selling partner API
type AmazonError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// AmazonMoney is a monetary value with currency
type AmazonMoney struct {
	CurrencyCode string `json:"CurrencyCode"`
	Amount       string `json:"Amount"`
}

// AmazonBuyerInfo holds buyer details on an order
type AmazonBuyerInfo struct {
	BuyerEmail string `json:"BuyerEmail"`
	BuyerName  string `json:"BuyerName"`
}

// AmazonShippingAddress is the delivery destination of an order
type AmazonShippingAddress struct {
	Name          string `json:"Name"`
	AddressLine1  string `json:"AddressLine1"`
	AddressLine2  string `json:"AddressLine2"`
	City          string `json:"City"`
	StateOrRegion string `json:"StateOrRegion"`
	PostalCode    string `json:"PostalCode"`
	CountryCode   string `json:"CountryCode"`
}

// AmazonOrder is one order from the orders API
type AmazonOrder struct {
	AmazonOrderID          string                 `json:"AmazonOrderId"`
	PurchaseDate           string                 `json:"PurchaseDate"`
	LastUpdateDate         string                 `json:"LastUpdateDate"`
	OrderStatus            string                 `json:"OrderStatus"`
	FulfillmentChannel     string                 `json:"FulfillmentChannel"`
	NumberOfItemsShipped   int                    `json:"NumberOfItemsShipped"`
	NumberOfItemsUnshipped int                    `json:"NumberOfItemsUnshipped"`
	OrderTotal             *AmazonMoney           `json:"OrderTotal,omitempty"`
	BuyerInfo              *AmazonBuyerInfo       `json:"BuyerInfo,omitempty"`
	ShippingAddress        *AmazonShippingAddress `json:"ShippingAddress,omitempty"`

	// OrderItems is populated by a follow-up call
	OrderItems []AmazonOrderItem `json:"OrderItems,omitempty"`
}

// AmazonOrdersResponse is the order listing payload
type AmazonOrdersResponse struct {
	Orders    []AmazonOrder `json:"Orders"`
	NextToken string        `json:"NextToken"`
}

// AmazonOrderItem is one line of an order
type AmazonOrderItem struct {
	ASIN            string       `json:"ASIN"`
	SellerSKU       string       `json:"SellerSKU"`
	OrderItemID     string       `json:"OrderItemId"`
	Title           string       `json:"Title"`
	QuantityOrdered int          `json:"QuantityOrdered"`
	ItemPrice       *AmazonMoney `json:"ItemPrice,omitempty"`
	ConditionID     string       `json:"ConditionId"`
}

// AmazonOrderItemsResponse is the order items payload
type AmazonOrderItemsResponse struct {
	OrderItems []AmazonOrderItem `json:"OrderItems"`
	NextToken  string            `json:"NextToken"`
}

// AmazonInventorySummary is one listed SKU from the FBA inventory API
type AmazonInventorySummary struct {
	ASIN            string `json:"asin"`
	SellerSKU       string `json:"sellerSku"`
	ProductName     string `json:"productName"`
	Condition       string `json:"condition"`
	TotalQuantity   int    `json:"totalQuantity"`
	LastUpdatedTime string `json:"lastUpdatedTime"`
}

// AmazonInventoryPagination carries the inventory listing's next token
type AmazonInventoryPagination struct {
	NextToken string `json:"nextToken"`
}

// AmazonInventoryResponse is the full inventory summaries response
type AmazonInventoryResponse struct {
	Payload struct {
		InventorySummaries []AmazonInventorySummary `json:"inventorySummaries"`
	} `json:"payload"`
	Pagination *AmazonInventoryPagination `json:"pagination,omitempty"`
	Errors     []AmazonError              `json:"errors,omitempty"`
}

// AmazonOfferPrice is a listing/landed price pair within an offer
type AmazonOfferPrice struct {
	CurrencyCode string  `json:"CurrencyCode"`
	Amount       float64 `json:"Amount"`
}

// AmazonOfferSummary aggregates competitive data for one ASIN
type AmazonOfferSummary struct {
	TotalOfferCount int `json:"TotalOfferCount"`
	BuyBoxPrices    []struct {
		Condition    string           `json:"condition"`
		LandedPrice  AmazonOfferPrice `json:"LandedPrice"`
		ListingPrice AmazonOfferPrice `json:"ListingPrice"`
	} `json:"BuyBoxPrices"`
	SalesRankings []struct {
		ProductCategoryID string `json:"ProductCategoryId"`
		Rank              int64  `json:"Rank"`
	} `json:"SalesRankings"`
	LowestPrices []struct {
		Condition    string           `json:"condition"`
		LandedPrice  AmazonOfferPrice `json:"LandedPrice"`
		ListingPrice AmazonOfferPrice `json:"ListingPrice"`
	} `json:"LowestPrices"`
}

// AmazonItemOffersResponse is the competitive pricing payload for one
// ASIN
type AmazonItemOffersResponse struct {
	Payload struct {
		ASIN    string              `json:"ASIN"`
		Summary *AmazonOfferSummary `json:"Summary,omitempty"`
	} `json:"payload"`
	Errors []AmazonError `json:"errors,omitempty"`
}

// AmazonPriceProduct holds the seller's own offer pricing for one ASIN
type AmazonPriceProduct struct {
	Offers []struct {
		BuyingPrice struct {
			ListingPrice AmazonOfferPrice `json:"ListingPrice"`
			LandedPrice  AmazonOfferPrice `json:"LandedPrice"`
		} `json:"BuyingPrice"`
		RegularPrice  AmazonOfferPrice `json:"RegularPrice"`
		ItemCondition string           `json:"itemCondition"`
	} `json:"Offers"`
}

// AmazonGetPricingResponse is the batch own-price lookup payload
type AmazonGetPricingResponse struct {
	Payload []struct {
		ASIN    string              `json:"ASIN"`
		Status  string              `json:"status"`
		Product *AmazonPriceProduct `json:"Product,omitempty"`
	} `json:"payload"`
	Errors []AmazonError `json:"errors,omitempty"`
}

// AmazonPriceObservation is the composite payload an Amazon pricing
// page emits per ASIN. It merges the inventory summary with the
// best-effort offer enrichment so the normalizer sees one record.
type AmazonPriceObservation struct {
	ASIN         string              `json:"asin"`
	SellerSKU    string              `json:"sellerSku"`
	ProductName  string              `json:"productName"`
	SnapshotDate string              `json:"snapshotDate"`
	Currency     string              `json:"currency"`
	ListPrice    string              `json:"listPrice"`
	Offers       *AmazonOfferSummary `json:"offers,omitempty"`
}
