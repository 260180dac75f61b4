package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IntentRepo implements ports.IntentRepository. Allocations live in a child
// table and are loaded with every intent read.
type IntentRepo struct {
	pool Pool
}

// NewIntentRepo creates a new IntentRepo.
func NewIntentRepo(pool Pool) *IntentRepo {
	return &IntentRepo{pool: pool}
}

const intentColumns = `id, order_id, amount_minor, currency, status, reserve_operation_id, metadata_json, created_at, updated_at`

// Create inserts an intent and its allocation rows within the reserve
// transaction.
func (r *IntentRepo) Create(ctx context.Context, tx pgx.Tx, intent *domain.PaymentIntent) error {
	query := `INSERT INTO payment_intents (` + intentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		intent.ID, intent.OrderID, intent.AmountMinor, intent.Currency, intent.Status,
		intent.ReserveOperationID, intent.MetadataJSON, intent.CreatedAt, intent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment intent: %w", err)
	}

	for _, a := range intent.Allocations {
		_, err := tx.Exec(ctx,
			`INSERT INTO intent_allocations (intent_id, wallet_id, amount_minor) VALUES ($1, $2, $3)`,
			intent.ID, a.WalletID, a.AmountMinor,
		)
		if err != nil {
			return fmt.Errorf("insert intent allocation: %w", err)
		}
	}
	return nil
}

func (r *IntentRepo) scanIntent(row pgx.Row) (*domain.PaymentIntent, error) {
	intent := &domain.PaymentIntent{}
	err := row.Scan(
		&intent.ID, &intent.OrderID, &intent.AmountMinor, &intent.Currency, &intent.Status,
		&intent.ReserveOperationID, &intent.MetadataJSON, &intent.CreatedAt, &intent.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return intent, nil
}

func (r *IntentRepo) loadAllocations(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, intent *domain.PaymentIntent) error {
	rows, err := q.Query(ctx,
		`SELECT wallet_id, amount_minor FROM intent_allocations WHERE intent_id = $1 ORDER BY wallet_id`,
		intent.ID,
	)
	if err != nil {
		return fmt.Errorf("list intent allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.IntentAllocation
		if err := rows.Scan(&a.WalletID, &a.AmountMinor); err != nil {
			return fmt.Errorf("scan intent allocation: %w", err)
		}
		intent.Allocations = append(intent.Allocations, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate intent allocations: %w", err)
	}
	return nil
}

// GetByID fetches an intent with allocations (non-locking read).
func (r *IntentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE id = $1`

	intent, err := r.scanIntent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	if intent == nil {
		return nil, nil
	}
	if err := r.loadAllocations(ctx, r.pool, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

// GetByIDForUpdate fetches an intent with allocations, locking the intent row
// so concurrent capture/release attempts serialize.
func (r *IntentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE id = $1 FOR UPDATE`

	intent, err := r.scanIntent(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payment intent for update: %w", err)
	}
	if intent == nil {
		return nil, nil
	}
	if err := r.loadAllocations(ctx, tx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

// UpdateStatus transitions the intent, guarded by the expected current
// status. Zero rows affected means the state machine was violated.
func (r *IntentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.PaymentIntentStatus, now time.Time) error {
	query := `UPDATE payment_intents SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	tag, err := tx.Exec(ctx, query, to, now, id, from)
	if err != nil {
		return fmt.Errorf("update payment intent status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment intent %s not in status %s", id, from)
	}
	return nil
}
