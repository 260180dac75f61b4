package redis

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(walletID uuid.UUID) *domain.BalanceSnapshot {
	return &domain.BalanceSnapshot{
		WalletID:       walletID,
		Currency:       "USD",
		AvailableMinor: 200,
		PendingMinor:   300,
		Version:        4,
		UpdatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestBalanceCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewBalanceCache(client)
	ctx := context.Background()

	walletID := uuid.New()
	snap := testSnapshot(walletID)

	// Get before set => nil
	result, err := cache.Get(ctx, walletID)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Set
	err = cache.Set(ctx, snap, 5*time.Second)
	require.NoError(t, err)

	// Get after set
	result, err = cache.Get(ctx, walletID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, snap.AvailableMinor, result.AvailableMinor)
	assert.Equal(t, snap.PendingMinor, result.PendingMinor)
	assert.Equal(t, snap.Version, result.Version)
	assert.Equal(t, snap.Currency, result.Currency)
}

func TestBalanceCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewBalanceCache(client)
	ctx := context.Background()

	snap := testSnapshot(uuid.New())

	err := cache.Set(ctx, snap, 1*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, snap.WalletID)
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestBalanceCache_Invalidate(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewBalanceCache(client)
	ctx := context.Background()

	snap := testSnapshot(uuid.New())

	err := cache.Set(ctx, snap, 1*time.Hour)
	require.NoError(t, err)

	err = cache.Invalidate(ctx, snap.WalletID)
	require.NoError(t, err)

	result, err := cache.Get(ctx, snap.WalletID)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestBalanceCache_Invalidate_MissingKey(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewBalanceCache(client)

	err := cache.Invalidate(context.Background(), uuid.New())
	assert.NoError(t, err)
}
