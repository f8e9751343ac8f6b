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

// eBay API endpoints
const (
	EbayAPIBaseURL        = "https://api.ebay.com"
	EbaySandboxAPIBaseURL = "https://api.sandbox.ebay.com"
)

const (
	ebayMaxPageSize = 200
	ebayTimeLayout  = "2006-01-02T15:04:05.000Z"
)

// Errors for eBay configuration
var ErrEbayConfigMissingBaseURL = errors.New("ebay: base URL is required")

// EbayConfig holds configuration for the eBay sell APIs
type EbayConfig struct {
	APIBaseURL        string
	SandboxAPIBaseURL string
	TimeoutSeconds    int
}

// NewEbayConfig creates an eBay configuration with defaults
func NewEbayConfig() *EbayConfig {
	return &EbayConfig{
		APIBaseURL:        EbayAPIBaseURL,
		SandboxAPIBaseURL: EbaySandboxAPIBaseURL,
		TimeoutSeconds:    30,
	}
}

// Validate validates the eBay configuration
func (c *EbayConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrEbayConfigMissingBaseURL
	}
	if c.SandboxAPIBaseURL == "" {
		c.SandboxAPIBaseURL = EbaySandboxAPIBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// EbayAdapter fetches seller orders from the eBay fulfillment API.
// Orders are filtered server-side by last modified date and paged with
// limit and offset. Access tokens are minted from the stored refresh
// token and cached until shortly before expiry.
type EbayAdapter struct {
	config *EbayConfig
	client *apiClient
	tokens *tokenProvider
	logger *zap.Logger
}

var _ platform.Source = (*EbayAdapter)(nil)

// NewEbayAdapter creates an eBay order source
func NewEbayAdapter(config *EbayConfig, tokenCache platform.TokenCache, logger *zap.Logger) (*EbayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &EbayAdapter{
		config: config,
		client: newAPIClient(time.Duration(config.TimeoutSeconds)*time.Second, logger),
		tokens: &tokenProvider{cache: tokenCache, logger: logger},
		logger: logger,
	}, nil
}

// Platform returns the platform this source serves
func (a *EbayAdapter) Platform() platform.Code {
	return platform.CodeEbay
}

// Kind returns the record kind this source produces
func (a *EbayAdapter) Kind() platform.RecordKind {
	return platform.RecordKindOrder
}

// MaxPageSize returns the largest page the fulfillment API serves
func (a *EbayAdapter) MaxPageSize() int {
	return ebayMaxPageSize
}

// FetchPage fetches one page of orders modified within the window. The
// page token is the integer offset into the server-side result set.
func (a *EbayAdapter) FetchPage(ctx context.Context, cred *platform.Credential, window platform.TimeWindow, pageToken string, pageSize int) (*platform.Page, error) {
	if pageSize <= 0 || pageSize > ebayMaxPageSize {
		pageSize = ebayMaxPageSize
	}
	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid page token %q", platform.ErrPlatformInvalidResponse, pageToken)
		}
		offset = n
	}

	token, err := a.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	filter := fmt.Sprintf("lastmodifieddate:[%s..%s]",
		window.From.UTC().Format(ebayTimeLayout),
		window.To.UTC().Format(ebayTimeLayout))

	query := url.Values{}
	query.Set("filter", filter)
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("offset", strconv.Itoa(offset))

	endpoint := a.baseURL(cred) + "/sell/fulfillment/v1/order?" + query.Encode()
	body, err := a.client.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		if errors.Is(err, platform.ErrPlatformAuthFailed) {
			a.tokens.invalidate(ctx, cred.UserID, platform.CodeEbay)
		}
		return nil, err
	}

	var resp EbayOrderSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode order search: %v", platform.ErrPlatformInvalidResponse, err)
	}

	result := &platform.Page{Records: make([]platform.RawRecord, 0, len(resp.Orders))}
	for _, o := range resp.Orders {
		payload, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal order %s: %v", platform.ErrPlatformInvalidResponse, o.OrderID, err)
		}
		result.Records = append(result.Records, platform.RawRecord{
			Platform: platform.CodeEbay,
			Kind:     platform.RecordKindOrder,
			Payload:  payload,
		})
	}

	next := offset + len(resp.Orders)
	if resp.Next != "" || (resp.Total > 0 && next < resp.Total) {
		result.HasMore = true
		result.NextPageToken = strconv.Itoa(next)
	}
	return result, nil
}

// accessToken resolves a cached user access token, minting a fresh one
// from the stored refresh token when the cache is cold
func (a *EbayAdapter) accessToken(ctx context.Context, cred *platform.Credential) (string, error) {
	if cred.RefreshToken == "" {
		return "", fmt.Errorf("%w: ebay refresh token", platform.ErrCredentialsMissing)
	}
	return a.tokens.token(ctx, cred.UserID, platform.CodeEbay, func(ctx context.Context) (string, time.Duration, error) {
		form := url.Values{}
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", cred.RefreshToken)

		body, err := a.client.do(ctx, func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				a.baseURL(cred)+"/identity/v1/oauth2/token", strings.NewReader(form.Encode()))
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

		var tok EbayTokenResponse
		if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
			return "", 0, fmt.Errorf("%w: token response unreadable", platform.ErrPlatformAuthFailed)
		}
		return tok.AccessToken, time.Duration(tok.ExpiresIn) * time.Second, nil
	})
}

func (a *EbayAdapter) baseURL(cred *platform.Credential) string {
	if cred.Sandbox {
		return a.config.SandboxAPIBaseURL
	}
	return a.config.APIBaseURL
}
