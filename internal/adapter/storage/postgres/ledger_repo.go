package postgres

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. The ledger_entries table is
// append-only: this repo exposes no update or delete.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

const ledgerColumns = `id, wallet_id, operation_id, operation_type, entry_type, amount_minor, currency,
		effective_at, created_at, related_entry_id, relation_type, external_reference, metadata_json, idempotency_key`

func scanEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		err := rows.Scan(
			&e.ID, &e.WalletID, &e.OperationID, &e.OperationType, &e.EntryType,
			&e.AmountMinor, &e.Currency, &e.EffectiveAt, &e.CreatedAt,
			&e.RelatedEntryID, &e.RelationType, &e.ExternalReference,
			&e.MetadataJSON, &e.IdempotencyKey,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}

// Insert appends one ledger entry within the write transaction.
func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.WalletID, e.OperationID, e.OperationType, e.EntryType,
		e.AmountMinor, e.Currency, e.EffectiveAt, e.CreatedAt,
		e.RelatedEntryID, e.RelationType, e.ExternalReference,
		e.MetadataJSON, e.IdempotencyKey,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries for a wallet, most recent first.
func (r *LedgerRepo) ListRecent(ctx context.Context, walletID uuid.UUID, take int) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE wallet_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, walletID, take)
	if err != nil {
		return nil, fmt.Errorf("list recent ledger entries: %w", err)
	}
	return scanEntries(rows)
}

// ListForFold returns every entry of a wallet in the deterministic fold
// order (effective_at, created_at, id).
func (r *LedgerRepo) ListForFold(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE wallet_id = $1 ORDER BY effective_at, created_at, id`

	rows, err := tx.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries for fold: %w", err)
	}
	return scanEntries(rows)
}

// ListByOperation returns the entries grouped under one operation ID, in
// insertion order.
func (r *LedgerRepo) ListByOperation(ctx context.Context, tx pgx.Tx, operationID uuid.UUID) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE operation_id = $1 ORDER BY created_at, id`

	rows, err := tx.Query(ctx, query, operationID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries by operation: %w", err)
	}
	return scanEntries(rows)
}
