package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RebuildServiceImpl implements ports.RebuildService. The rebuilder treats
// the ledger as the source of truth: it folds every entry of a wallet in
// deterministic order and overwrites the projection with the result.
type RebuildServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	snapRepo   ports.SnapshotRepository
	transactor ports.DBTransactor
	cache      ports.BalanceCache
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewRebuildService creates a new RebuildServiceImpl.
func NewRebuildService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	snapRepo ports.SnapshotRepository,
	transactor ports.DBTransactor,
	cache ports.BalanceCache,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RebuildServiceImpl {
	return &RebuildServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		snapRepo:   snapRepo,
		transactor: transactor,
		cache:      cache,
		metrics:    m,
		log:        log,
	}
}

// RebuildWallet recomputes one wallet's projection from the ledger under the
// wallet lock, so no write can slip between the fold and the overwrite. The
// version advances even when no drift is found; a rebuild is a write like any
// other.
func (s *RebuildServiceImpl) RebuildWallet(ctx context.Context, walletID uuid.UUID) (*domain.RebuildResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	snap, err := s.snapRepo.GetTx(ctx, dbTx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	if snap == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet %s has no balance snapshot", walletID))
	}

	entries, err := s.ledgerRepo.ListForFold(ctx, dbTx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	totals, err := domain.FoldEntries(entries)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	before := *snap
	drift := domain.NewDriftInfo(before, totals, before.Version+1)

	snap.AvailableMinor = totals.AvailableMinor
	snap.PendingMinor = totals.PendingMinor
	snap.Version = before.Version + 1
	snap.UpdatedAt = now
	if err := s.snapRepo.Update(ctx, dbTx, snap, before.Version); err != nil {
		return nil, classify(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, classify(fmt.Errorf("commit: %w", err))
	}

	s.metrics.Rebuilds.Inc()
	if drift.Detected {
		s.metrics.DriftDetected.Inc()
		s.log.Warn().
			Str("wallet_id", walletID.String()).
			Int64("available_delta", drift.AvailableDelta).
			Int64("pending_delta", drift.PendingDelta).
			Msg("balance drift repaired")
	}

	if err := s.cache.Invalidate(ctx, walletID); err != nil {
		s.log.Warn().Err(err).Str("wallet_id", walletID.String()).Msg("balance cache invalidation failed")
	}

	return &domain.RebuildResult{
		WalletID: walletID,
		Before:   before,
		After:    *snap,
		Drift:    drift,
	}, nil
}

// RebuildBatch rebuilds every wallet matching the filter, one short
// transaction per wallet so long-running sweeps never hold wide locks. A
// failing wallet is recorded and the sweep continues.
func (s *RebuildServiceImpl) RebuildBatch(ctx context.Context, filter domain.RebuildBatchFilter) (*domain.RebuildBatchSummary, error) {
	ids, err := s.walletRepo.ListIDs(ctx, filter)
	if err != nil {
		return nil, classify(err)
	}

	summary := &domain.RebuildBatchSummary{
		TotalWallets: len(ids),
		Wallets:      make([]domain.WalletRebuildSummary, 0, len(ids)),
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, classify(err)
		}

		line := domain.WalletRebuildSummary{WalletID: id}
		result, err := s.RebuildWallet(ctx, id)
		if err != nil {
			line.Error = err.Error()
			summary.FailureCount++
			s.log.Error().Err(err).Str("wallet_id", id.String()).Msg("wallet rebuild failed")
		} else {
			line.DriftDetected = result.Drift.Detected
			summary.SuccessCount++
			if result.Drift.Detected {
				summary.DriftDetectedCount++
			}
		}
		summary.Wallets = append(summary.Wallets, line)
	}

	s.log.Info().
		Int("total", summary.TotalWallets).
		Int("success", summary.SuccessCount).
		Int("drift", summary.DriftDetectedCount).
		Int("failures", summary.FailureCount).
		Msg("batch rebuild finished")

	return summary, nil
}

// DetectDrift compares the projection against the ledger fold without taking
// the wallet lock or writing anything. A transaction still scopes the two
// reads so they see one consistent database snapshot.
func (s *RebuildServiceImpl) DetectDrift(ctx context.Context, walletID uuid.UUID) (*domain.DriftReport, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	snap, err := s.snapRepo.GetTx(ctx, dbTx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	if snap == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	entries, err := s.ledgerRepo.ListForFold(ctx, dbTx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	totals, err := domain.FoldEntries(entries)
	if err != nil {
		return nil, err
	}

	drift := domain.NewDriftInfo(*snap, totals, snap.Version)
	if drift.Detected {
		s.metrics.DriftDetected.Inc()
	}

	return &domain.DriftReport{
		WalletID:   walletID,
		Projection: *snap,
		Computed:   totals,
		Drift:      drift,
	}, nil
}
