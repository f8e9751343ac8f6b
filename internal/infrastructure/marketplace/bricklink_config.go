package marketplace

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// BrickLinkAPIBaseURL is the store API endpoint
const BrickLinkAPIBaseURL = "https://api.bricklink.com/api/store/v1"

// Errors for BrickLink configuration
var (
	ErrBrickLinkConfigMissingBaseURL = errors.New("bricklink: base URL is required")
	ErrBrickLinkMissingConsumerKey   = errors.New("bricklink: consumer key and secret are required")
	ErrBrickLinkMissingToken         = errors.New("bricklink: access token and secret are required")
)

// BrickLinkConfig holds configuration for the BrickLink store API
type BrickLinkConfig struct {
	// APIBaseURL is the base URL for the store API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewBrickLinkConfig creates a BrickLink configuration with defaults
func NewBrickLinkConfig() *BrickLinkConfig {
	return &BrickLinkConfig{APIBaseURL: BrickLinkAPIBaseURL, TimeoutSeconds: 30}
}

// Validate validates the BrickLink configuration
func (c *BrickLinkConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrBrickLinkConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// signBrickLinkRequest produces the OAuth1 authorization parameters for
// one request. BrickLink uses OAuth 1.0a with HMAC-SHA1 and a
// pre-issued token, so every request is signed individually and no
// token refresh flow exists.
func signBrickLinkRequest(cred *platform.Credential, method, rawURL string, query url.Values) (url.Values, error) {
	if cred.ClientID == "" || cred.ClientSecret == "" {
		return nil, ErrBrickLinkMissingConsumerKey
	}
	if cred.AccessToken == "" || cred.TokenSecret == "" {
		return nil, ErrBrickLinkMissingToken
	}

	oauth := url.Values{}
	oauth.Set("oauth_consumer_key", cred.ClientID)
	oauth.Set("oauth_token", cred.AccessToken)
	oauth.Set("oauth_signature_method", "HMAC-SHA1")
	oauth.Set("oauth_timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	oauth.Set("oauth_nonce", oauthNonce())
	oauth.Set("oauth_version", "1.0")

	// Signature base string: METHOD & encoded URL & encoded sorted params
	all := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			all.Add(k, v)
		}
	}
	for k, vs := range oauth {
		for _, v := range vs {
			all.Add(k, v)
		}
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		vs := all[k]
		sort.Strings(vs)
		for _, v := range vs {
			pairs = append(pairs, oauthEscape(k)+"="+oauthEscape(v))
		}
	}
	base := strings.ToUpper(method) + "&" + oauthEscape(rawURL) + "&" + oauthEscape(strings.Join(pairs, "&"))

	signingKey := oauthEscape(cred.ClientSecret) + "&" + oauthEscape(cred.TokenSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(base))
	oauth.Set("oauth_signature", base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	return oauth, nil
}

// oauthNonce returns a random nonce for one signed request
func oauthNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(b)
}

// oauthEscape is RFC 3986 percent-encoding as OAuth1 requires
func oauthEscape(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return escaped
}
