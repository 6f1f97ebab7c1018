package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache stores the Ratapay access token so every replica shares one
// token. The key expires when the token does.
// Key format: "ratapay:token:{merchantID}"
type TokenCache struct {
	client     *RedisClient
	merchantID string
	now        func() time.Time
}

// NewTokenCache creates a TokenCache for one merchant account.
func NewTokenCache(r *RedisClient, merchantID string) *TokenCache {
	return &TokenCache{client: r, merchantID: merchantID, now: time.Now}
}

// Load returns the stored token, or an empty token when none is stored.
func (c *TokenCache) Load(ctx context.Context) (string, time.Time, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key()).Result()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token cache get: %w", err)
	}
	if len(vals) == 0 {
		return "", time.Time{}, nil
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, vals["expires_at"])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token cache parse expires_at: %w", err)
	}
	return vals["access_token"], expiresAt, nil
}

// Save stores token until expiresAt. A token that is already expired is not stored.
func (c *TokenCache) Save(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return errors.New("token cache set: token already expired")
	}
	key := c.key()
	pipe := c.client.Client().TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"access_token", token,
		"expires_at", expiresAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("token cache set: %w", err)
	}
	return nil
}

// Clear removes the stored token, forcing the next request to refresh.
func (c *TokenCache) Clear(ctx context.Context) error {
	if err := c.client.Client().Del(ctx, c.key()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("token cache delete: %w", err)
	}
	return nil
}

func (c *TokenCache) key() string {
	return Key("token", c.merchantID)
}
