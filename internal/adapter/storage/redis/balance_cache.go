package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// BalanceCache implements ports.BalanceCache using Redis. It holds short-TTL
// copies of balance snapshots for the read path; the ledger stays the source
// of truth and the write path only invalidates.
type BalanceCache struct {
	client *goredis.Client
	prefix string
}

// NewBalanceCache creates a new Redis-backed balance cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

// Get retrieves a cached balance snapshot by wallet ID.
// Returns nil, nil if the key does not exist.
func (c *BalanceCache) Get(ctx context.Context, walletID uuid.UUID) (*domain.BalanceSnapshot, error) {
	val, err := c.client.Get(ctx, c.prefix+walletID.String()).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis balance get: %w", err)
	}

	snap := &domain.BalanceSnapshot{}
	if err := json.Unmarshal(val, snap); err != nil {
		return nil, fmt.Errorf("redis balance decode: %w", err)
	}
	return snap, nil
}

// Set stores a balance snapshot with TTL.
func (c *BalanceCache) Set(ctx context.Context, snap *domain.BalanceSnapshot, ttl time.Duration) error {
	val, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis balance encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+snap.WalletID.String(), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot after a balance-affecting write.
func (c *BalanceCache) Invalidate(ctx context.Context, walletID uuid.UUID) error {
	if err := c.client.Del(ctx, c.prefix+walletID.String()).Err(); err != nil {
		return fmt.Errorf("redis balance invalidate: %w", err)
	}
	return nil
}
