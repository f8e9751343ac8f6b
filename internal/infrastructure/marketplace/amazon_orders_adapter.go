package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
)

const amazonOrdersMaxPageSize = 100

// AmazonOrdersAdapter fetches seller orders from the Amazon selling
// partner orders API. Orders are filtered server-side by last update
// date and paged with NextToken. Each order in a page is enriched with
// its order items; enrichment failures keep the order without items.
type AmazonOrdersAdapter struct {
	*amazonClient
}

var _ platform.Source = (*AmazonOrdersAdapter)(nil)

// NewAmazonOrdersAdapter creates an Amazon order source
func NewAmazonOrdersAdapter(config *AmazonConfig, tokenCache platform.TokenCache, logger *zap.Logger) (*AmazonOrdersAdapter, error) {
	client, err := newAmazonClient(config, tokenCache, logger)
	if err != nil {
		return nil, err
	}
	return &AmazonOrdersAdapter{amazonClient: client}, nil
}

// Platform returns the platform this source serves
func (a *AmazonOrdersAdapter) Platform() platform.Code {
	return platform.CodeAmazon
}

// Kind returns the record kind this source produces
func (a *AmazonOrdersAdapter) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// MaxPageSize returns the largest page the orders API serves
func (a *AmazonOrdersAdapter) MaxPageSize() int {
	return amazonOrdersMaxPageSize
}

// FetchPage fetches one page of orders updated within the window. The
// page token is Amazon's opaque NextToken.
func (a *AmazonOrdersAdapter) FetchPage(ctx context.Context, cred *platform.Credential, window platform.TimeWindow, pageToken string, pageSize int) (*platform.Page, error) {
	if pageSize <= 0 || pageSize > amazonOrdersMaxPageSize {
		pageSize = amazonOrdersMaxPageSize
	}

	query := url.Values{}
	query.Set("MarketplaceIds", a.config.MarketplaceID)
	query.Set("MaxResultsPerPage", strconv.Itoa(pageSize))
	if pageToken != "" {
		query.Set("NextToken", pageToken)
	} else {
		query.Set("LastUpdatedAfter", window.From.UTC().Format(time.RFC3339))
		query.Set("LastUpdatedBefore", window.To.UTC().Format(time.RFC3339))
	}

	body, err := a.get(ctx, cred, "/orders/v0/orders", query)
	if err != nil {
		return nil, err
	}

	var envelope AmazonPayload
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", platform.ErrPlatformInvalidResponse, err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", platform.ErrPlatformRequestFailed,
			envelope.Errors[0].Code, envelope.Errors[0].Message)
	}

	var resp AmazonOrdersResponse
	if err := json.Unmarshal(envelope.Payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode order list: %v", platform.ErrPlatformInvalidResponse, err)
	}

	result := &platform.Page{Records: make([]platform.RawRecord, 0, len(resp.Orders))}
	for i := range resp.Orders {
		a.enrichOrderItems(ctx, cred, &resp.Orders[i])
		payload, err := json.Marshal(&resp.Orders[i])
		if err != nil {
			return nil, fmt.Errorf("%w: marshal order %s: %v", platform.ErrPlatformInvalidResponse, resp.Orders[i].AmazonOrderID, err)
		}
		result.Records = append(result.Records, platform.RawRecord{
			Platform: platform.CodeAmazon,
			Kind:     platform.RecordKindOrder,
			Payload:  payload,
		})
	}

	if resp.NextToken != "" {
		result.HasMore = true
		result.NextPageToken = resp.NextToken
	}
	return result, nil
}

// enrichOrderItems loads the order's line items. Failures are logged
// and the order is kept without items rather than failing the page.
func (a *AmazonOrdersAdapter) enrichOrderItems(ctx context.Context, cred *platform.Credential, order *AmazonOrder) {
	body, err := a.get(ctx, cred, "/orders/v0/orders/"+order.AmazonOrderID+"/orderItems", nil)
	if err != nil {
		a.logger.Warn("amazon order item enrichment failed",
			zap.String("order_id", order.AmazonOrderID),
			zap.Error(err))
		return
	}

	var envelope AmazonPayload
	if err := json.Unmarshal(body, &envelope); err != nil {
		a.logger.Warn("amazon order item decode failed",
			zap.String("order_id", order.AmazonOrderID),
			zap.Error(err))
		return
	}
	var items AmazonOrderItemsResponse
	if err := json.Unmarshal(envelope.Payload, &items); err != nil {
		a.logger.Warn("amazon order item decode failed",
			zap.String("order_id", order.AmazonOrderID),
			zap.Error(err))
		return
	}
	order.OrderItems = items.OrderItems
}
