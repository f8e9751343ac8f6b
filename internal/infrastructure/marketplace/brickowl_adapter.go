package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// BrickOwlAPIBaseURL is the BrickOwl API endpoint
const BrickOwlAPIBaseURL = "https://api.brickowl.com/v1"

const brickOwlDefaultPageSize = 50

// ErrBrickOwlConfigMissingBaseURL indicates an empty base URL
var ErrBrickOwlConfigMissingBaseURL = errors.New("brickowl: base URL is required")

// BrickOwlConfig holds configuration for the BrickOwl API
type BrickOwlConfig struct {
	APIBaseURL     string
	TimeoutSeconds int
}

// NewBrickOwlConfig creates a BrickOwl configuration with defaults
func NewBrickOwlConfig() *BrickOwlConfig {
	return &BrickOwlConfig{APIBaseURL: BrickOwlAPIBaseURL, TimeoutSeconds: 30}
}

// Validate validates the BrickOwl configuration
func (c *BrickOwlConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrBrickOwlConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// BrickOwlAdapter fetches store orders from the BrickOwl API. BrickOwl
// authenticates with a single API key passed as a query parameter, held
// in the credential's AccessToken. The list endpoint returns compact
// summaries, so each order in the current page is enriched with a view
// call plus an items call.
type BrickOwlAdapter struct {
	config *BrickOwlConfig
	client *apiClient
	logger *zap.Logger
}

var _ platform.Source = (*BrickOwlAdapter)(nil)

// NewBrickOwlAdapter creates a BrickOwl order source
func NewBrickOwlAdapter(config *BrickOwlConfig, logger *zap.Logger) (*BrickOwlAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &BrickOwlAdapter{
		config: config,
		client: newAPIClient(time.Duration(config.TimeoutSeconds)*time.Second, logger),
		logger: logger,
	}, nil
}

// Platform returns the platform this source serves
func (a *BrickOwlAdapter) Platform() platform.Code {
	return platform.CodeBrickOwl
}

// Kind returns the record kind this source produces
func (a *BrickOwlAdapter) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// MaxPageSize returns the largest page this source will serve
func (a *BrickOwlAdapter) MaxPageSize() int {
	return brickOwlDefaultPageSize
}

// FetchPage returns one page of orders within the window. The page
// token is the integer offset into the window-filtered order list.
func (a *BrickOwlAdapter) FetchPage(ctx context.Context, cred *platform.Credential, window platform.TimeWindow, pageToken string, pageSize int) (*platform.Page, error) {
	if cred.AccessToken == "" {
		return nil, fmt.Errorf("%w: brickowl api key", platform.ErrCredentialsMissing)
	}
	if pageSize <= 0 || pageSize > brickOwlDefaultPageSize {
		pageSize = brickOwlDefaultPageSize
	}
	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid page token %q", platform.ErrPlatformInvalidResponse, pageToken)
		}
		offset = n
	}

	summaries, err := a.listOrders(ctx, cred)
	if err != nil {
		return nil, err
	}

	filtered := filterBrickOwlOrders(summaries, window)
	if offset >= len(filtered) {
		return &platform.Page{Records: nil, HasMore: false}, nil
	}

	end := offset + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	records := make([]platform.RawRecord, 0, end-offset)
	for _, summary := range filtered[offset:end] {
		view, err := a.viewOrder(ctx, cred, summary.OrderID)
		if err != nil {
			return nil, err
		}
		a.enrichItems(ctx, cred, view)
		payload, err := json.Marshal(view)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal order %s: %v", platform.ErrPlatformInvalidResponse, summary.OrderID, err)
		}
		records = append(records, platform.RawRecord{
			Platform: platform.CodeBrickOwl,
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

// listOrders fetches the compact order list for the store
func (a *BrickOwlAdapter) listOrders(ctx context.Context, cred *platform.Credential) ([]BrickOwlOrderSummary, error) {
	query := url.Values{}
	query.Set("key", cred.AccessToken)
	query.Set("list_type", "store")

	body, err := a.get(ctx, "/order/list", query)
	if err != nil {
		return nil, err
	}

	var summaries []BrickOwlOrderSummary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, fmt.Errorf("%w: decode order list: %v", platform.ErrPlatformInvalidResponse, err)
	}
	return summaries, nil
}

// viewOrder fetches full details for one order
func (a *BrickOwlAdapter) viewOrder(ctx context.Context, cred *platform.Credential, orderID string) (*BrickOwlOrderView, error) {
	query := url.Values{}
	query.Set("key", cred.AccessToken)
	query.Set("order_id", orderID)

	body, err := a.get(ctx, "/order/view", query)
	if err != nil {
		return nil, err
	}

	var view BrickOwlOrderView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("%w: decode order %s: %v", platform.ErrPlatformInvalidResponse, orderID, err)
	}
	if view.OrderID == "" {
		view.OrderID = orderID
	}
	return &view, nil
}

// enrichItems loads the order's lots. Failures keep the order without
// items rather than failing the page.
func (a *BrickOwlAdapter) enrichItems(ctx context.Context, cred *platform.Credential, view *BrickOwlOrderView) {
	query := url.Values{}
	query.Set("key", cred.AccessToken)
	query.Set("order_id", view.OrderID)

	body, err := a.get(ctx, "/order/items", query)
	if err != nil {
		a.logger.Warn("brickowl order item enrichment failed",
			zap.String("order_id", view.OrderID),
			zap.Error(err))
		return
	}
	var items []BrickOwlOrderItem
	if err := json.Unmarshal(body, &items); err != nil {
		a.logger.Warn("brickowl order item decode failed",
			zap.String("order_id", view.OrderID),
			zap.Error(err))
		return
	}
	view.Items = items
}

func (a *BrickOwlAdapter) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := a.config.APIBaseURL + path + "?" + query.Encode()
	return a.client.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
}

// filterBrickOwlOrders keeps orders whose order time falls in the
// window, ordered oldest first
func filterBrickOwlOrders(summaries []BrickOwlOrderSummary, window platform.TimeWindow) []BrickOwlOrderSummary {
	filtered := make([]BrickOwlOrderSummary, 0, len(summaries))
	for _, s := range summaries {
		t := parseBrickOwlTime(s.OrderTime)
		if t.IsZero() {
			continue
		}
		if t.Before(window.From) || t.After(window.To) {
			continue
		}
		filtered = append(filtered, s)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return parseBrickOwlTime(filtered[i].OrderTime).Before(parseBrickOwlTime(filtered[j].OrderTime))
	})
	return filtered
}

// parseBrickOwlTime parses BrickOwl's unix timestamp strings
func parseBrickOwlTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
