package platform

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	// Platform errors
	ErrPlatformNotConfigured    = errors.New("platform: not configured")
	ErrPlatformUnavailable      = errors.New("platform: temporarily unavailable")
	ErrPlatformRequestFailed    = errors.New("platform: request failed")
	ErrPlatformInvalidResponse  = errors.New("platform: invalid response")
	ErrPlatformAuthFailed       = errors.New("platform: authentication failed")
	ErrPlatformRateLimited      = errors.New("platform: rate limited")
	ErrPlatformPermissionDenied = errors.New("platform: permission denied")

	// Credential errors
	ErrCredentialsMissing = errors.New("platform: credentials missing")
	ErrCredentialsExpired = errors.New("platform: credentials expired")
)

// ---------------------------------------------------------------------------
// Code represents an external platform the business sells or settles on
// ---------------------------------------------------------------------------

// Code represents an external platform
type Code string

const (
	// CodeBrickLink represents the BrickLink marketplace
	CodeBrickLink Code = "BRICKLINK"
	// CodeBrickOwl represents the Brick Owl storefront
	CodeBrickOwl Code = "BRICKOWL"
	// CodeAmazon represents Amazon marketplace (orders and pricing)
	CodeAmazon Code = "AMAZON"
	// CodeEbay represents the eBay marketplace
	CodeEbay Code = "EBAY"
	// CodePayPal represents the PayPal payment processor
	CodePayPal Code = "PAYPAL"
)

// IsValid returns true if the platform code is valid
func (c Code) IsValid() bool {
	switch c {
	case CodeBrickLink, CodeBrickOwl, CodeAmazon, CodeEbay, CodePayPal:
		return true
	default:
		return false
	}
}

// String returns the string representation of Code
func (c Code) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the platform
func (c Code) DisplayName() string {
	switch c {
	case CodeBrickLink:
		return "BrickLink"
	case CodeBrickOwl:
		return "Brick Owl"
	case CodeAmazon:
		return "Amazon"
	case CodeEbay:
		return "eBay"
	case CodePayPal:
		return "PayPal"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// Credential
// ---------------------------------------------------------------------------

// Credential holds per-user secret material for one platform connection.
// At most one active credential exists per (user, platform); the
// connection-setup flow owns mutation, the sync engine only reads.
type Credential struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Platform Code
	// ClientID is the API key / app id / OAuth client id
	ClientID string
	// ClientSecret is the API secret / OAuth client secret
	ClientSecret string
	// AccessToken is the long-lived token for platforms that issue one
	// at connection time (e.g. BrickLink OAuth1 tokens)
	AccessToken string
	// TokenSecret is the OAuth1 token secret where applicable
	TokenSecret string
	// RefreshToken is the OAuth2 refresh token where applicable
	RefreshToken string
	// Sandbox indicates the platform's sandbox environment
	Sandbox bool
	// ExpiresAt is when the stored secret material expires, if it does
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired returns true if the credential has an expiry in the past
func (c *Credential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// CredentialRepository defines read access to stored platform credentials
type CredentialRepository interface {
	// FindByUserAndPlatform returns the active credential for a
	// (user, platform) pair, or ErrCredentialsMissing
	FindByUserAndPlatform(ctx context.Context, userID uuid.UUID, code Code) (*Credential, error)

	// Save creates or replaces the credential for its (user, platform) pair
	Save(ctx context.Context, cred *Credential) error
}

// ---------------------------------------------------------------------------
// TokenCache
// ---------------------------------------------------------------------------

// TokenCache caches short-lived platform access tokens. Refresh must be
// guarded by the per-(user, platform) lock so concurrent job types
// sharing one credential do not stampede the token endpoint.
type TokenCache interface {
	// Get returns the cached token or "" if absent
	Get(ctx context.Context, userID uuid.UUID, code Code) (string, error)

	// Set stores a token with a TTL
	Set(ctx context.Context, userID uuid.UUID, code Code, token string, ttl time.Duration) error

	// Invalidate drops the cached token (after a 401)
	Invalidate(ctx context.Context, userID uuid.UUID, code Code) error

	// AcquireRefreshLock returns true if the caller won the refresh lock
	AcquireRefreshLock(ctx context.Context, userID uuid.UUID, code Code, ttl time.Duration) (bool, error)

	// ReleaseRefreshLock releases the refresh lock
	ReleaseRefreshLock(ctx context.Context, userID uuid.UUID, code Code) error
}
