package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type readTestDeps struct {
	svc        *ReadServiceImpl
	walletRepo *mocks.MockWalletRepository
	ledgerRepo *mocks.MockLedgerRepository
	snapRepo   *mocks.MockSnapshotRepository
	cache      *mocks.MockBalanceCache
	ctrl       *gomock.Controller
}

func setupReadService(t *testing.T) *readTestDeps {
	ctrl := gomock.NewController(t)
	d := &readTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		ledgerRepo: mocks.NewMockLedgerRepository(ctrl),
		snapRepo:   mocks.NewMockSnapshotRepository(ctrl),
		cache:      mocks.NewMockBalanceCache(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewReadService(d.walletRepo, d.ledgerRepo, d.snapRepo, d.cache, 5*time.Second, zerolog.Nop())
	return d
}

func TestReadService_GetBalance_CacheHit(t *testing.T) {
	d := setupReadService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	snap := snapshotFor(walletID, 500, 300, 4)

	d.cache.EXPECT().Get(ctx, walletID).Return(snap, nil)

	result, err := d.svc.GetBalance(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, snap, result)
}

func TestReadService_GetBalance_CacheMissFillsCache(t *testing.T) {
	d := setupReadService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	snap := snapshotFor(walletID, 500, 300, 4)

	d.cache.EXPECT().Get(ctx, walletID).Return(nil, nil)
	d.snapRepo.EXPECT().Get(ctx, walletID).Return(snap, nil)
	d.cache.EXPECT().Set(ctx, snap, 5*time.Second).Return(nil)

	result, err := d.svc.GetBalance(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.AvailableMinor)
}

func TestReadService_GetBalance_CacheErrorFallsThrough(t *testing.T) {
	d := setupReadService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	snap := snapshotFor(walletID, 100, 0, 1)

	d.cache.EXPECT().Get(ctx, walletID).Return(nil, errors.New("redis down"))
	d.snapRepo.EXPECT().Get(ctx, walletID).Return(snap, nil)
	d.cache.EXPECT().Set(ctx, snap, 5*time.Second).Return(errors.New("redis down"))

	result, err := d.svc.GetBalance(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.AvailableMinor)
}

func TestReadService_GetBalance_NotFound(t *testing.T) {
	d := setupReadService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()

	d.cache.EXPECT().Get(ctx, walletID).Return(nil, nil)
	d.snapRepo.EXPECT().Get(ctx, walletID).Return(nil, nil)

	_, err := d.svc.GetBalance(ctx, walletID)
	requireAppCode(t, err, "WLT_009")
}

func TestReadService_GetTransactions_ClampsTake(t *testing.T) {
	d := setupReadService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()

	tests := []struct {
		name string
		take int
		want int
	}{
		{"zero uses default", 0, 20},
		{"negative uses default", -5, 20},
		{"within range passes through", 50, 50},
		{"above max clamps", 500, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.walletRepo.EXPECT().GetByID(ctx, walletID).Return(activeWallet(walletID, "USD"), nil)
			d.ledgerRepo.EXPECT().ListRecent(ctx, walletID, tt.want).Return([]domain.LedgerEntry{}, nil)

			_, err := d.svc.GetTransactions(ctx, walletID, tt.take)
			require.NoError(t, err)
		})
	}
}

func TestReadService_GetTransactions_WalletNotFound(t *testing.T) {
	d := setupReadService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()

	d.walletRepo.EXPECT().GetByID(ctx, walletID).Return(nil, nil)

	_, err := d.svc.GetTransactions(ctx, walletID, 20)
	requireAppCode(t, err, "WLT_009")
}
