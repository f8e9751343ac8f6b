package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// Amazon selling partner endpoints (North America)
const (
	AmazonAPIBaseURL        = "https://sellingpartnerapi-na.amazon.com"
	AmazonSandboxAPIBaseURL = "https://sandbox.sellingpartnerapi-na.amazon.com"
	AmazonLWATokenURL       = "https://api.amazon.com/auth/o2/token"

	// AmazonDefaultMarketplaceID is the US marketplace
	AmazonDefaultMarketplaceID = "ATVPDKIKX0DER"
)

// Errors for Amazon configuration
var (
	ErrAmazonConfigMissingBaseURL     = errors.New("amazon: base URL is required")
	ErrAmazonConfigMissingMarketplace = errors.New("amazon: marketplace id is required")
)

// AmazonConfig holds configuration for the Amazon selling partner API
type AmazonConfig struct {
	APIBaseURL        string
	SandboxAPIBaseURL string
	TokenURL          string
	MarketplaceID     string
	TimeoutSeconds    int
}

// NewAmazonConfig creates an Amazon configuration with defaults
func NewAmazonConfig() *AmazonConfig {
	return &AmazonConfig{
		APIBaseURL:        AmazonAPIBaseURL,
		SandboxAPIBaseURL: AmazonSandboxAPIBaseURL,
		TokenURL:          AmazonLWATokenURL,
		MarketplaceID:     AmazonDefaultMarketplaceID,
		TimeoutSeconds:    30,
	}
}

// Validate validates the Amazon configuration
func (c *AmazonConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrAmazonConfigMissingBaseURL
	}
	if c.MarketplaceID == "" {
		return ErrAmazonConfigMissingMarketplace
	}
	if c.SandboxAPIBaseURL == "" {
		c.SandboxAPIBaseURL = AmazonSandboxAPIBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = AmazonLWATokenURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// amazonClient is the shared transport for the selling partner API,
// used by both the orders source and the pricing source. Access tokens
// are minted from the stored LWA refresh token and cached.
type amazonClient struct {
	config *AmazonConfig
	client *apiClient
	tokens *tokenProvider
	logger *zap.Logger
}

func newAmazonClient(config *AmazonConfig, tokenCache platform.TokenCache, logger *zap.Logger) (*amazonClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &amazonClient{
		config: config,
		client: newAPIClient(time.Duration(config.TimeoutSeconds)*time.Second, logger),
		tokens: &tokenProvider{cache: tokenCache, logger: logger},
		logger: logger,
	}, nil
}

// get performs one authenticated GET against the selling partner API
func (c *amazonClient) get(ctx context.Context, cred *platform.Credential, path string, query url.Values) ([]byte, error) {
	token, err := c.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL(cred) + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	body, err := c.client.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-amz-access-token", token)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		if errors.Is(err, platform.ErrPlatformAuthFailed) {
			c.tokens.invalidate(ctx, cred.UserID, platform.CodeAmazon)
		}
		return nil, err
	}
	return body, nil
}

// accessToken resolves a cached LWA access token, minting a fresh one
// from the stored refresh token when the cache is cold
func (c *amazonClient) accessToken(ctx context.Context, cred *platform.Credential) (string, error) {
	if cred.RefreshToken == "" {
		return "", fmt.Errorf("%w: amazon refresh token", platform.ErrCredentialsMissing)
	}
	return c.tokens.token(ctx, cred.UserID, platform.CodeAmazon, func(ctx context.Context) (string, time.Duration, error) {
		form := url.Values{}
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", cred.RefreshToken)
		form.Set("client_id", cred.ClientID)
		form.Set("client_secret", cred.ClientSecret)

		body, err := c.client.do(ctx, func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req, nil
		})
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", platform.ErrPlatformAuthFailed, err)
		}

		var tok AmazonTokenResponse
		if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
			return "", 0, fmt.Errorf("%w: token response unreadable", platform.ErrPlatformAuthFailed)
		}
		return tok.AccessToken, time.Duration(tok.ExpiresIn) * time.Second, nil
	})
}

func (c *amazonClient) baseURL(cred *platform.Credential) string {
	if cred.Sandbox {
		return c.config.SandboxAPIBaseURL
	}
	return c.config.APIBaseURL
}
