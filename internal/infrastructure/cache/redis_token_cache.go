package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/brickdesk/backend/internal/domain/platform"
)

// RedisTokenCache implements platform.TokenCache using Redis.
// Tokens and refresh locks are shared across instances so concurrent
// job types reusing one credential hit the cache instead of the
// platform's token endpoint.
type RedisTokenCache struct {
	client    *redis.Client
	keyPrefix string
}

var _ platform.TokenCache = (*RedisTokenCache)(nil)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenCache creates a Redis-backed token cache
func NewRedisTokenCache(cfg RedisConfig) (*RedisTokenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTokenCache{
		client:    client,
		keyPrefix: "platform:token:",
	}, nil
}

// NewRedisTokenCacheWithClient creates a cache with an existing Redis
// client, useful for testing or sharing a client across components
func NewRedisTokenCacheWithClient(client *redis.Client, keyPrefix string) *RedisTokenCache {
	if keyPrefix == "" {
		keyPrefix = "platform:token:"
	}
	return &RedisTokenCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached token or "" when absent
func (c *RedisTokenCache) Get(ctx context.Context, userID uuid.UUID, code platform.Code) (string, error) {
	token, err := c.client.Get(ctx, c.tokenKey(userID, code)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token, nil
}

// Set stores a token with a TTL
func (c *RedisTokenCache) Set(ctx context.Context, userID uuid.UUID, code platform.Code, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.tokenKey(userID, code), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Invalidate drops the cached token
func (c *RedisTokenCache) Invalidate(ctx context.Context, userID uuid.UUID, code platform.Code) error {
	if err := c.client.Del(ctx, c.tokenKey(userID, code)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// AcquireRefreshLock returns true when the caller won the refresh lock.
// Uses SETNX with TTL so an abandoned lock expires on its own.
func (c *RedisTokenCache) AcquireRefreshLock(ctx context.Context, userID uuid.UUID, code platform.Code, ttl time.Duration) (bool, error) {
	won, err := c.client.SetNX(ctx, c.lockKey(userID, code), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	return won, nil
}

// ReleaseRefreshLock releases the refresh lock
func (c *RedisTokenCache) ReleaseRefreshLock(ctx context.Context, userID uuid.UUID, code platform.Code) error {
	if err := c.client.Del(ctx, c.lockKey(userID, code)).Err(); err != nil {
		return fmt.Errorf("failed to release refresh lock: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection
func (c *RedisTokenCache) Close() error {
	return c.client.Close()
}

func (c *RedisTokenCache) tokenKey(userID uuid.UUID, code platform.Code) string {
	return c.keyPrefix + userID.String() + ":" + string(code)
}

func (c *RedisTokenCache) lockKey(userID uuid.UUID, code platform.Code) string {
	return c.keyPrefix + "lock:" + userID.String() + ":" + string(code)
}
