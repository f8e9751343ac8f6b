package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
)

const (
	brickLinkDefaultPageSize = 50
	brickLinkTimeLayout      = "2006-01-02T15:04:05.000Z"
)

// BrickLinkAdapter fetches received orders from the BrickLink store API.
// The list endpoint is not paginated server-side, so the adapter fetches
// the full order list, filters it by the requested window and pages
// through the filtered slice locally. Item enrichment is performed per
// order and only for the orders in the current page, which keeps the
// per-batch call count bounded.
type BrickLinkAdapter struct {
	config *BrickLinkConfig
	client *apiClient
	logger *zap.Logger
}

var _ platform.Source = (*BrickLinkAdapter)(nil)

// NewBrickLinkAdapter creates a BrickLink order source
func NewBrickLinkAdapter(config *BrickLinkConfig, logger *zap.Logger) (*BrickLinkAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &BrickLinkAdapter{
		config: config,
		client: newAPIClient(time.Duration(config.TimeoutSeconds)*time.Second, logger),
		logger: logger,
	}, nil
}

// Platform returns the platform this source serves
func (a *BrickLinkAdapter) Platform() platform.Code {
	return platform.CodeBrickLink
}

// Kind returns the record kind this source produces
func (a *BrickLinkAdapter) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// MaxPageSize returns the largest page this source will serve
func (a *BrickLinkAdapter) MaxPageSize() int {
	return brickLinkDefaultPageSize
}

// FetchPage returns one page of orders within the window. The page
// token is the integer offset into the window-filtered order list.
func (a *BrickLinkAdapter) FetchPage(ctx context.Context, cred *platform.Credential, window platform.TimeWindow, pageToken string, pageSize int) (*platform.Page, error) {
	if pageSize <= 0 || pageSize > brickLinkDefaultPageSize {
		pageSize = brickLinkDefaultPageSize
	}
	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid page token %q", platform.ErrPlatformInvalidResponse, pageToken)
		}
		offset = n
	}

	orders, err := a.listOrders(ctx, cred)
	if err != nil {
		return nil, err
	}

	filtered := filterBrickLinkOrders(orders, window)
	if offset >= len(filtered) {
		return &platform.Page{Records: nil, HasMore: false}, nil
	}

	end := offset + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	page := filtered[offset:end]

	records := make([]platform.RawRecord, 0, len(page))
	for i := range page {
		a.enrichItems(ctx, cred, &page[i])
		payload, err := json.Marshal(&page[i])
		if err != nil {
			return nil, fmt.Errorf("%w: marshal order %d: %v", platform.ErrPlatformInvalidResponse, page[i].OrderID, err)
		}
		records = append(records, platform.RawRecord{
			Platform: platform.CodeBrickLink,
			Kind:     platform.RecordKindOrder,
			Payload:  payload,
		})
	}

	result := &platform.Page{Records: records, HasMore: end < len(filtered)}
	if result.HasMore {
		result.NextPageToken = strconv.Itoa(end)
	}
	return result, nil
}

// listOrders fetches all received orders from the store
func (a *BrickLinkAdapter) listOrders(ctx context.Context, cred *platform.Credential) ([]BrickLinkOrder, error) {
	query := url.Values{}
	query.Set("direction", "in")
	query.Set("filed", "false")

	data, err := a.get(ctx, cred, "/orders", query)
	if err != nil {
		return nil, err
	}

	var orders []BrickLinkOrder
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("%w: decode order list: %v", platform.ErrPlatformInvalidResponse, err)
	}
	return orders, nil
}

// enrichItems loads the order's lots. Enrichment failures are logged
// and the order is kept without items rather than failing the page.
func (a *BrickLinkAdapter) enrichItems(ctx context.Context, cred *platform.Credential, order *BrickLinkOrder) {
	data, err := a.get(ctx, cred, fmt.Sprintf("/orders/%d/items", order.OrderID), nil)
	if err != nil {
		a.logger.Warn("bricklink order item enrichment failed",
			zap.Int("order_id", order.OrderID),
			zap.Error(err))
		return
	}

	// Items come back grouped into batches
	var batches [][]BrickLinkOrderItem
	if err := json.Unmarshal(data, &batches); err != nil {
		a.logger.Warn("bricklink order item decode failed",
			zap.Int("order_id", order.OrderID),
			zap.Error(err))
		return
	}
	for _, batch := range batches {
		order.Items = append(order.Items, batch...)
	}
}

// get performs one signed GET against the store API and unwraps the
// response envelope
func (a *BrickLinkAdapter) get(ctx context.Context, cred *platform.Credential, path string, query url.Values) (json.RawMessage, error) {
	endpoint := a.config.APIBaseURL + path

	body, err := a.client.do(ctx, func() (*http.Request, error) {
		oauth, err := signBrickLinkRequest(cred, http.MethodGet, endpoint, query)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrCredentialsMissing, err)
		}
		full := url.Values{}
		for k, vs := range query {
			full[k] = vs
		}
		for k, vs := range oauth {
			full[k] = vs
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+full.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var envelope BrickLinkEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", platform.ErrPlatformInvalidResponse, err)
	}
	if envelope.Meta.Code >= 300 {
		if envelope.Meta.Code == 401 || envelope.Meta.Code == 403 {
			return nil, fmt.Errorf("%w: %s", platform.ErrPlatformAuthFailed, envelope.Meta.Message)
		}
		return nil, fmt.Errorf("%w: %d %s: %s", platform.ErrPlatformRequestFailed,
			envelope.Meta.Code, envelope.Meta.Message, envelope.Meta.Description)
	}
	return envelope.Data, nil
}

// filterBrickLinkOrders keeps orders whose last activity falls in the
// window, ordered oldest first
func filterBrickLinkOrders(orders []BrickLinkOrder, window platform.TimeWindow) []BrickLinkOrder {
	filtered := make([]BrickLinkOrder, 0, len(orders))
	for _, o := range orders {
		t := brickLinkOrderTime(o)
		if t.IsZero() {
			continue
		}
		if t.Before(window.From) || t.After(window.To) {
			continue
		}
		filtered = append(filtered, o)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return brickLinkOrderTime(filtered[i]).Before(brickLinkOrderTime(filtered[j]))
	})
	return filtered
}

// brickLinkOrderTime is the order's last activity timestamp
func brickLinkOrderTime(o BrickLinkOrder) time.Time {
	if t := parseBrickLinkTime(o.DateStatusChanged); !t.IsZero() {
		return t
	}
	return parseBrickLinkTime(o.DateOrdered)
}

func parseBrickLinkTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(brickLinkTimeLayout, s); err == nil {
		return t
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
