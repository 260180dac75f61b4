package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, owner_type, owner_id, wallet_type, status, currency, created_at, updated_at, metadata`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.OwnerType, &w.OwnerID, &w.Type, &w.Status,
		&w.Currency, &w.CreatedAt, &w.UpdatedAt, &w.Metadata,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

// GetByIDForUpdate fetches a wallet by ID with pessimistic locking. This is
// the wallet-scoped lock serializing all balance-affecting writes; it MUST be
// called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// ListIDs returns wallet IDs matching the batch rebuild filter, ordered by ID
// for a stable iteration order.
func (r *WalletRepo) ListIDs(ctx context.Context, filter domain.RebuildBatchFilter) ([]uuid.UUID, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Currency != nil {
		conds = append(conds, "currency = "+arg(*filter.Currency))
	}
	if filter.UpdatedAfter != nil {
		conds = append(conds, "updated_at >= "+arg(*filter.UpdatedAfter))
	}
	if filter.UpdatedBefore != nil {
		conds = append(conds, "updated_at <= "+arg(*filter.UpdatedBefore))
	}
	if filter.OnlyActive {
		conds = append(conds, "status = "+arg(domain.WalletStatusActive))
	}

	query := `SELECT id FROM wallets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wallet ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wallet id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet ids: %w", err)
	}
	return ids, nil
}
