package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
)

const (
	// PayPalProductionAPIURL is the production API endpoint
	PayPalProductionAPIURL = "https://api-m.paypal.com"
	// PayPalSandboxAPIURL is the sandbox API endpoint
	PayPalSandboxAPIURL = "https://api-m.sandbox.paypal.com"

	// paypalMaxPageSize is the transaction search page size limit
	paypalMaxPageSize = 100
	// paypalMaxWindow is the widest date range one search accepts;
	// wider run windows are sliced transparently via the page token
	paypalMaxWindow = 31 * 24 * time.Hour
)

// Errors for PayPal configuration
var (
	ErrPayPalConfigMissingBaseURL = errors.New("paypal: base URL is required")
)

// PayPalConfig holds configuration for the PayPal reporting API
type PayPalConfig struct {
	APIBaseURL        string
	SandboxAPIBaseURL string
	TimeoutSeconds    int
}

// NewPayPalConfig creates a PayPal configuration with defaults
func NewPayPalConfig() *PayPalConfig {
	return &PayPalConfig{
		APIBaseURL:        PayPalProductionAPIURL,
		SandboxAPIBaseURL: PayPalSandboxAPIURL,
		TimeoutSeconds:    30,
	}
}

// Validate validates the PayPal configuration
func (c *PayPalConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrPayPalConfigMissingBaseURL
	}
	if c.SandboxAPIBaseURL == "" {
		c.SandboxAPIBaseURL = PayPalSandboxAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// PayPalAdapter fetches transactions from the PayPal reporting API
type PayPalAdapter struct {
	config *PayPalConfig
	client *apiClient
	tokens *tokenProvider
	logger *zap.Logger
}

// NewPayPalAdapter creates a PayPal adapter
func NewPayPalAdapter(config *PayPalConfig, tokenCache platform.TokenCache, logger *zap.Logger) (*PayPalAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PayPalAdapter{
		config: config,
		client: newAPIClient(time.Duration(config.TimeoutSeconds)*time.Second, logger),
		tokens: &tokenProvider{cache: tokenCache, logger: logger},
		logger: logger,
	}, nil
}

// Platform returns the platform code this adapter handles
func (a *PayPalAdapter) Platform() platform.Code { return platform.CodePayPal }

// Kind returns the record kind this adapter produces
func (a *PayPalAdapter) Kind() platform.RecordKind { return platform.RecordKindTransaction }

// MaxPageSize returns the search page size limit
func (a *PayPalAdapter) MaxPageSize() int { return paypalMaxPageSize }

// paypalPageToken encodes the position inside a sliced window as
// "<sliceStartRFC3339>|<page>"
func paypalPageToken(sliceStart time.Time, page int) string {
	return sliceStart.UTC().Format(time.RFC3339) + "|" + strconv.Itoa(page)
}

func parsePayPalPageToken(token string, window platform.TimeWindow) (time.Time, int, error) {
	if token == "" {
		return window.From, 1, nil
	}
	parts := strings.SplitN(token, "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("paypal: malformed page token %q", token)
	}
	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("paypal: malformed page token %q", token)
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 1 {
		return time.Time{}, 0, fmt.Errorf("paypal: malformed page token %q", token)
	}
	return start, page, nil
}

// FetchPage fetches one page of transactions. PayPal caps each search
// at a 31-day range, so wide windows advance slice by slice through the
// page token once a slice's pages are exhausted.
func (a *PayPalAdapter) FetchPage(ctx context.Context, cred *platform.Credential, window platform.TimeWindow, pageToken string, pageSize int) (*platform.Page, error) {
	sliceStart, page, err := parsePayPalPageToken(pageToken, window)
	if err != nil {
		return nil, err
	}
	sliceEnd := sliceStart.Add(paypalMaxWindow)
	if sliceEnd.After(window.To) {
		sliceEnd = window.To
	}
	if pageSize <= 0 || pageSize > paypalMaxPageSize {
		pageSize = paypalMaxPageSize
	}

	token, err := a.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("start_date", sliceStart.UTC().Format(time.RFC3339))
	query.Set("end_date", sliceEnd.UTC().Format(time.RFC3339))
	query.Set("fields", "transaction_info,payer_info")
	query.Set("page_size", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page))

	endpoint := a.baseURL(cred) + "/v1/reporting/transactions?" + query.Encode()
	body, err := a.client.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		if errors.Is(err, platform.ErrPlatformAuthFailed) {
			a.tokens.invalidate(ctx, cred.UserID, platform.CodePayPal)
		}
		return nil, err
	}

	var resp PayPalTransactionSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrPlatformInvalidResponse, err)
	}

	result := &platform.Page{Records: make([]platform.RawRecord, 0, len(resp.TransactionDetails))}
	for _, detail := range resp.TransactionDetails {
		payload, err := json.Marshal(detail)
		if err != nil {
			return nil, fmt.Errorf("%w: re-encoding detail: %v", platform.ErrPlatformInvalidResponse, err)
		}
		result.Records = append(result.Records, platform.RawRecord{
			Platform: platform.CodePayPal,
			Kind:     platform.RecordKindTransaction,
			Payload:  payload,
		})
	}

	switch {
	case page < resp.TotalPages:
		result.HasMore = true
		result.NextPageToken = paypalPageToken(sliceStart, page+1)
	case sliceEnd.Before(window.To):
		result.HasMore = true
		result.NextPageToken = paypalPageToken(sliceEnd, 1)
	}
	return result, nil
}

// accessToken resolves a cached OAuth2 token, exchanging the client
// credentials when the cache is cold
func (a *PayPalAdapter) accessToken(ctx context.Context, cred *platform.Credential) (string, error) {
	return a.tokens.token(ctx, cred.UserID, platform.CodePayPal, func(ctx context.Context) (string, time.Duration, error) {
		body, err := a.client.do(ctx, func() (*http.Request, error) {
			form := strings.NewReader("grant_type=client_credentials")
			req, err := http.NewRequest(http.MethodPost, a.baseURL(cred)+"/v1/oauth2/token", form)
			if err != nil {
				return nil, err
			}
			req.SetBasicAuth(cred.ClientID, cred.ClientSecret)
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req, nil
		})
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", platform.ErrPlatformAuthFailed, err)
		}

		var tok PayPalTokenResponse
		if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
			return "", 0, fmt.Errorf("%w: token response unreadable", platform.ErrPlatformAuthFailed)
		}
		return tok.AccessToken, time.Duration(tok.ExpiresIn) * time.Second, nil
	})
}

func (a *PayPalAdapter) baseURL(cred *platform.Credential) string {
	if cred.Sandbox {
		return a.config.SandboxAPIBaseURL
	}
	return a.config.APIBaseURL
}

var _ platform.Source = (*PayPalAdapter)(nil)
