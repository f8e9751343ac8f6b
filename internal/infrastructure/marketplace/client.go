package marketplace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// maxResponseSize is the maximum allowed response body size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// defaultRetryAttempts bounds automatic retries of one page. Retrying is
// only safe here because a page fetch is idempotent.
const defaultRetryAttempts = 3

// apiClient is the shared HTTP scaffold for platform adapters: request
// timeout, capped response reads, and bounded retry with backoff on
// rate-limit and server errors.
type apiClient struct {
	httpClient   *http.Client
	maxAttempts  int
	retryBackoff time.Duration
	logger       *zap.Logger
}

func newAPIClient(timeout time.Duration, logger *zap.Logger) *apiClient {
	return &apiClient{
		httpClient:   &http.Client{Timeout: timeout},
		maxAttempts:  defaultRetryAttempts,
		retryBackoff: 2 * time.Second,
		logger:       logger,
	}
}

// do executes a request built by build, retrying transient failures.
// build is called once per attempt so request bodies are re-readable.
func (c *apiClient) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.retryBackoff * time.Duration(attempt-1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("marketplace: building request: %w", err)
		}

		resp, err := c.httpClient.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", platform.ErrPlatformUnavailable, err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: reading response: %v", platform.ErrPlatformUnavailable, readErr)
			continue
		}

		switch {
		case resp.StatusCode < 400:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: HTTP 429", platform.ErrPlatformRateLimited)
			c.logger.Warn("Rate limited, backing off",
				zap.String("url", req.URL.Path),
				zap.Int("attempt", attempt),
				zap.String("retry_after", resp.Header.Get("Retry-After")),
			)
			if wait := retryAfter(resp.Header); wait > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(wait):
				}
			}
			continue
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: HTTP 401", platform.ErrPlatformAuthFailed)
		case resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: HTTP 403", platform.ErrPlatformPermissionDenied)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: HTTP %d", platform.ErrPlatformUnavailable, resp.StatusCode)
			continue
		default:
			// Other 4xx responses are permanent; retrying cannot help.
			return nil, fmt.Errorf("%w: HTTP %d: %s", platform.ErrPlatformRequestFailed, resp.StatusCode, truncate(body, 200))
		}
	}

	return nil, lastErr
}

// retryAfter parses the Retry-After header, capped to a minute
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	if secs > 60 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// ParseDecimal parses a decimal string, returning zero on failure
func ParseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// defaultQuantity returns the order line quantity, defaulting to 1 when
// the payload omitted the field. No platform reports zero-quantity lines.
func defaultQuantity(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}

// ---------------------------------------------------------------------------
// Token provider
// ---------------------------------------------------------------------------

// refreshLockTTL bounds how long a crashed refresher can hold the lock
const refreshLockTTL = 30 * time.Second

// tokenProvider resolves a cached short-lived access token, refreshing
// it under the per-(user, platform) lock so concurrent job types
// sharing one credential never stampede the token endpoint.
type tokenProvider struct {
	cache  platform.TokenCache
	logger *zap.Logger
}

// refreshFunc exchanges the stored credential for a fresh access token
// and its lifetime
type refreshFunc func(ctx context.Context) (token string, ttl time.Duration, err error)

func (p *tokenProvider) token(ctx context.Context, userID uuid.UUID, code platform.Code, refresh refreshFunc) (string, error) {
	if tok, err := p.cache.Get(ctx, userID, code); err == nil && tok != "" {
		return tok, nil
	}

	won, err := p.cache.AcquireRefreshLock(ctx, userID, code, refreshLockTTL)
	if err != nil {
		return "", fmt.Errorf("marketplace: acquiring refresh lock: %w", err)
	}

	if !won {
		// Another worker is refreshing; wait for its result.
		for i := 0; i < 10; i++ {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
			if tok, err := p.cache.Get(ctx, userID, code); err == nil && tok != "" {
				return tok, nil
			}
		}
		return "", fmt.Errorf("%w: token refresh by peer did not complete", platform.ErrPlatformAuthFailed)
	}
	defer func() {
		if err := p.cache.ReleaseRefreshLock(ctx, userID, code); err != nil {
			p.logger.Warn("Failed to release token refresh lock",
				zap.String("platform", string(code)),
				zap.Error(err),
			)
		}
	}()

	tok, ttl, err := refresh(ctx)
	if err != nil {
		return "", err
	}
	// Shave a margin so a token is never used right at its expiry.
	if ttl > 2*time.Minute {
		ttl -= time.Minute
	}
	if err := p.cache.Set(ctx, userID, code, tok, ttl); err != nil {
		p.logger.Warn("Failed to cache access token",
			zap.String("platform", string(code)),
			zap.Error(err),
		)
	}
	return tok, nil
}

// invalidate drops a cached token after the platform rejected it
func (p *tokenProvider) invalidate(ctx context.Context, userID uuid.UUID, code platform.Code) {
	if err := p.cache.Invalidate(ctx, userID, code); err != nil {
		p.logger.Warn("Failed to invalidate cached token",
			zap.String("platform", string(code)),
			zap.Error(err),
		)
	}
}
