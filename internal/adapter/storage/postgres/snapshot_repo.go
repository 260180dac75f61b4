package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SnapshotRepo implements ports.SnapshotRepository. Only the atomic writer
// and the rebuilder call Update, both holding the wallet row lock.
type SnapshotRepo struct {
	pool Pool
}

// NewSnapshotRepo creates a new SnapshotRepo.
func NewSnapshotRepo(pool Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

const snapshotColumns = `wallet_id, currency, available_minor, pending_minor, version, updated_at`

func scanSnapshot(row pgx.Row) (*domain.BalanceSnapshot, error) {
	s := &domain.BalanceSnapshot{}
	err := row.Scan(&s.WalletID, &s.Currency, &s.AvailableMinor, &s.PendingMinor, &s.Version, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Get fetches a wallet's balance snapshot (non-locking read).
func (r *SnapshotRepo) Get(ctx context.Context, walletID uuid.UUID) (*domain.BalanceSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM balance_snapshots WHERE wallet_id = $1`

	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, walletID))
	if err != nil {
		return nil, fmt.Errorf("get balance snapshot: %w", err)
	}
	return s, nil
}

// GetTx fetches a wallet's balance snapshot inside a transaction. The wallet
// row lock already serializes writers, so no FOR UPDATE is needed here.
func (r *SnapshotRepo) GetTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (*domain.BalanceSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM balance_snapshots WHERE wallet_id = $1`

	s, err := scanSnapshot(tx.QueryRow(ctx, query, walletID))
	if err != nil {
		return nil, fmt.Errorf("get balance snapshot in tx: %w", err)
	}
	return s, nil
}

// Update writes the new totals and version. The WHERE clause pins the version
// read under the lock; zero rows affected means the projection moved
// underneath the caller, which the lock is supposed to make impossible.
func (r *SnapshotRepo) Update(ctx context.Context, tx pgx.Tx, snap *domain.BalanceSnapshot, expectedVersion int64) error {
	query := `UPDATE balance_snapshots
		SET available_minor = $1, pending_minor = $2, version = $3, updated_at = $4
		WHERE wallet_id = $5 AND version = $6`

	tag, err := tx.Exec(ctx, query,
		snap.AvailableMinor, snap.PendingMinor, snap.Version, snap.UpdatedAt,
		snap.WalletID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update balance snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("balance snapshot version moved for wallet %s (expected %d)", snap.WalletID, expectedVersion)
	}
	return nil
}
