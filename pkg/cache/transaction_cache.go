package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TransactionCacheTTL is the time-to-live for cached transactions.
	TransactionCacheTTL = 24 * time.Hour
)

// CachedTransaction is the denormalized read model stored in Redis.
// Fields are stored as a Redis hash.
type CachedTransaction struct {
	ID         uuid.UUID `json:"id"`
	Ref        string    `json:"ref"`
	InvoiceID  string    `json:"invoice_id"`
	Note       string    `json:"note"`
	Amount     int64     `json:"amount"`
	PaymentURL string    `json:"payment_url"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// TransactionCache provides structured read/write operations for
// transaction cache entries.
// Key format: "ratapay:transaction:{ref}"
type TransactionCache struct {
	client *RedisClient
}

// NewTransactionCache creates a new TransactionCache backed by the given RedisClient.
func NewTransactionCache(r *RedisClient) *TransactionCache {
	return &TransactionCache{client: r}
}

// Get retrieves a cached transaction by Ratapay ref.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *TransactionCache) Get(ctx context.Context, ref string) (*CachedTransaction, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(ref)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}

	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	amount, err := strconv.ParseInt(vals["amount"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse amount: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}

	return &CachedTransaction{
		ID:         id,
		Ref:        vals["ref"],
		InvoiceID:  vals["invoice_id"],
		Note:       vals["note"],
		Amount:     amount,
		PaymentURL: vals["payment_url"],
		Status:     vals["status"],
		CreatedAt:  createdAt,
	}, nil
}

// Set writes a cached transaction as a Redis hash with a 24-hour TTL.
// Uses a pipeline to set all fields and the TTL atomically.
func (c *TransactionCache) Set(ctx context.Context, tx *CachedTransaction) error {
	key := c.key(tx.Ref)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key,
		"id", tx.ID.String(),
		"ref", tx.Ref,
		"invoice_id", tx.InvoiceID,
		"note", tx.Note,
		"amount", strconv.FormatInt(tx.Amount, 10),
		"payment_url", tx.PaymentURL,
		"status", tx.Status,
		"created_at", tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, TransactionCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached transaction.
func (c *TransactionCache) Delete(ctx context.Context, ref string) error {
	if err := c.client.Client().Del(ctx, c.key(ref)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *TransactionCache) key(ref string) string {
	return Key("transaction", ref)
}
