package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
)

const amazonPricingMaxPageSize = 20

// AmazonPricingAdapter produces daily price observations for the
// seller's listed ASINs. Each page walks the FBA inventory summaries
// with Amazon's nextToken, resolves the seller's own listing price for
// the page's ASINs in one batch pricing call, then enriches each ASIN
// with competitive offer data. Offer enrichment is best effort: a
// failed offers call still yields an observation without buy box data.
type AmazonPricingAdapter struct {
	*amazonClient
	clock func() time.Time
}

var _ platform.Source = (*AmazonPricingAdapter)(nil)

// NewAmazonPricingAdapter creates an Amazon price snapshot source
func NewAmazonPricingAdapter(config *AmazonConfig, tokenCache platform.TokenCache, logger *zap.Logger) (*AmazonPricingAdapter, error) {
	client, err := newAmazonClient(config, tokenCache, logger)
	if err != nil {
		return nil, err
	}
	return &AmazonPricingAdapter{amazonClient: client, clock: time.Now}, nil
}

// Platform returns the platform this source serves
func (a *AmazonPricingAdapter) Platform() platform.Code {
	return platform.CodeAmazon
}

// Kind returns the record kind this source produces
func (a *AmazonPricingAdapter) Kind() platform.RecordKind {
	return platform.RecordKindPriceSnapshot
}

// MaxPageSize returns the batch pricing API's ASIN limit
func (a *AmazonPricingAdapter) MaxPageSize() int {
	return amazonPricingMaxPageSize
}

// FetchPage fetches one page of price observations. The window is not
// applied: pricing is a point-in-time observation of the current
// inventory, stamped with today's date. The page token is Amazon's
// inventory nextToken.
func (a *AmazonPricingAdapter) FetchPage(ctx context.Context, cred *platform.Credential, _ platform.TimeWindow, pageToken string, pageSize int) (*platform.Page, error) {
	if pageSize <= 0 || pageSize > amazonPricingMaxPageSize {
		pageSize = amazonPricingMaxPageSize
	}

	summaries, nextToken, err := a.listInventory(ctx, cred, pageToken)
	if err != nil {
		return nil, err
	}
	if len(summaries) > pageSize {
		// The inventory API ignores small page sizes; truncation here
		// would lose ASINs, so oversized pages are carried through and
		// split across batch pricing calls below.
		pageSize = len(summaries)
	}

	asins := make([]string, 0, len(summaries))
	seen := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		if s.ASIN == "" || seen[s.ASIN] {
			continue
		}
		seen[s.ASIN] = true
		asins = append(asins, s.ASIN)
	}

	ownPrices := a.ownPrices(ctx, cred, asins)
	snapshotDate := a.clock().UTC().Format("2006-01-02")

	result := &platform.Page{Records: make([]platform.RawRecord, 0, len(summaries))}
	emitted := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		if s.ASIN == "" || emitted[s.ASIN] {
			continue
		}
		emitted[s.ASIN] = true

		obs := AmazonPriceObservation{
			ASIN:         s.ASIN,
			SellerSKU:    s.SellerSKU,
			ProductName:  s.ProductName,
			SnapshotDate: snapshotDate,
		}
		if own, ok := ownPrices[s.ASIN]; ok {
			obs.ListPrice = own.amount
			obs.Currency = own.currency
		}
		obs.Offers = a.itemOffers(ctx, cred, s.ASIN)

		payload, err := json.Marshal(&obs)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal observation %s: %v", platform.ErrPlatformInvalidResponse, s.ASIN, err)
		}
		result.Records = append(result.Records, platform.RawRecord{
			Platform: platform.CodeAmazon,
			Kind:     platform.RecordKindPriceSnapshot,
			Payload:  payload,
		})
	}

	if nextToken != "" {
		result.HasMore = true
		result.NextPageToken = nextToken
	}
	return result, nil
}

// listInventory fetches one page of FBA inventory summaries
func (a *AmazonPricingAdapter) listInventory(ctx context.Context, cred *platform.Credential, pageToken string) ([]AmazonInventorySummary, string, error) {
	query := url.Values{}
	query.Set("granularityType", "Marketplace")
	query.Set("granularityId", a.config.MarketplaceID)
	query.Set("marketplaceIds", a.config.MarketplaceID)
	if pageToken != "" {
		query.Set("nextToken", pageToken)
	}

	body, err := a.get(ctx, cred, "/fba/inventory/v1/summaries", query)
	if err != nil {
		return nil, "", err
	}

	var resp AmazonInventoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("%w: decode inventory: %v", platform.ErrPlatformInvalidResponse, err)
	}
	if len(resp.Errors) > 0 {
		return nil, "", fmt.Errorf("%w: %s: %s", platform.ErrPlatformRequestFailed,
			resp.Errors[0].Code, resp.Errors[0].Message)
	}

	next := ""
	if resp.Pagination != nil {
		next = resp.Pagination.NextToken
	}
	return resp.Payload.InventorySummaries, next, nil
}

type amazonOwnPrice struct {
	amount   string
	currency string
}

// ownPrices resolves the seller's own listing price for a batch of
// ASINs. Failures degrade to observations without a list price.
func (a *AmazonPricingAdapter) ownPrices(ctx context.Context, cred *platform.Credential, asins []string) map[string]amazonOwnPrice {
	prices := make(map[string]amazonOwnPrice, len(asins))
	for start := 0; start < len(asins); start += amazonPricingMaxPageSize {
		end := start + amazonPricingMaxPageSize
		if end > len(asins) {
			end = len(asins)
		}

		query := url.Values{}
		query.Set("MarketplaceId", a.config.MarketplaceID)
		query.Set("ItemType", "Asin")
		query.Set("Asins", strings.Join(asins[start:end], ","))

		body, err := a.get(ctx, cred, "/products/pricing/v0/price", query)
		if err != nil {
			a.logger.Warn("amazon own price lookup failed",
				zap.Int("asin_count", end-start),
				zap.Error(err))
			continue
		}

		var resp AmazonGetPricingResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			a.logger.Warn("amazon own price decode failed", zap.Error(err))
			continue
		}
		for _, entry := range resp.Payload {
			if entry.Product == nil || len(entry.Product.Offers) == 0 {
				continue
			}
			price := entry.Product.Offers[0].BuyingPrice.ListingPrice
			prices[entry.ASIN] = amazonOwnPrice{
				amount:   strconv.FormatFloat(price.Amount, 'f', 2, 64),
				currency: price.CurrencyCode,
			}
		}
	}
	return prices
}

// itemOffers loads competitive offer data for one ASIN, nil on failure
func (a *AmazonPricingAdapter) itemOffers(ctx context.Context, cred *platform.Credential, asin string) *AmazonOfferSummary {
	query := url.Values{}
	query.Set("MarketplaceId", a.config.MarketplaceID)
	query.Set("ItemCondition", "New")

	body, err := a.get(ctx, cred, "/products/pricing/v0/items/"+asin+"/offers", query)
	if err != nil {
		a.logger.Warn("amazon offer enrichment failed",
			zap.String("asin", asin),
			zap.Error(err))
		return nil
	}

	var resp AmazonItemOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		a.logger.Warn("amazon offer decode failed",
			zap.String("asin", asin),
			zap.Error(err))
		return nil
	}
	return resp.Payload.Summary
}
