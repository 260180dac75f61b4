package service

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultTransactionTake = 20
	maxTransactionTake     = 100
)

// ReadServiceImpl implements ports.ReadService. Reads never lock and never
// write to the ledger or projection; the Redis cache in front of the
// projection is strictly best-effort.
type ReadServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	snapRepo   ports.SnapshotRepository
	cache      ports.BalanceCache
	cacheTTL   time.Duration
	log        zerolog.Logger
}

// NewReadService creates a new ReadServiceImpl.
func NewReadService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	snapRepo ports.SnapshotRepository,
	cache ports.BalanceCache,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *ReadServiceImpl {
	return &ReadServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		snapRepo:   snapRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		log:        log,
	}
}

// GetBalance returns the wallet's balance projection, serving from the cache
// when possible.
func (s *ReadServiceImpl) GetBalance(ctx context.Context, walletID uuid.UUID) (*domain.BalanceSnapshot, error) {
	cached, err := s.cache.Get(ctx, walletID)
	if err != nil {
		s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("balance cache read failed, falling through")
	}
	if cached != nil {
		return cached, nil
	}

	snap, err := s.snapRepo.Get(ctx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	if snap == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	if err := s.cache.Set(ctx, snap, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("balance cache write failed")
	}
	return snap, nil
}

// GetTransactions returns the wallet's most recent ledger entries. take is
// clamped to [1, 100]; zero or negative means the default page size.
func (s *ReadServiceImpl) GetTransactions(ctx context.Context, walletID uuid.UUID, take int) ([]domain.LedgerEntry, error) {
	if take <= 0 {
		take = defaultTransactionTake
	}
	if take > maxTransactionTake {
		take = maxTransactionTake
	}

	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	entries, err := s.ledgerRepo.ListRecent(ctx, walletID, take)
	if err != nil {
		return nil, classify(err)
	}
	return entries, nil
}
