package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository. (scope, key) is the
// primary key; CreatePending surfaces the unique violation for the service
// layer to classify.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// GetForUpdate fetches an idempotency record, locking the row so concurrent
// retries of the same request serialize on it.
func (r *IdempotencyRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, scope, key string) (*domain.IdempotencyRecord, error) {
	query := `SELECT scope, key, fingerprint, status, result_payload, created_at, completed_at
		FROM idempotency_records WHERE scope = $1 AND key = $2 FOR UPDATE`

	rec := &domain.IdempotencyRecord{}
	err := tx.QueryRow(ctx, query, scope, key).Scan(
		&rec.Scope, &rec.Key, &rec.Fingerprint, &rec.Status,
		&rec.ResultPayload, &rec.CreatedAt, &rec.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	return rec, nil
}

// CreatePending inserts a Pending record. A concurrent insert of the same
// (scope, key) fails with a unique violation, which callers classify as an
// in-progress duplicate.
func (r *IdempotencyRepo) CreatePending(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	query := `INSERT INTO idempotency_records (scope, key, fingerprint, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, rec.Scope, rec.Key, rec.Fingerprint, rec.Status, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert idempotency record: %w", err)
	}
	return nil
}

// ResetPending reclaims a stale Pending record left behind by a crashed
// attempt: it refreshes the fingerprint and created_at so the current retry
// owns it.
func (r *IdempotencyRepo) ResetPending(ctx context.Context, tx pgx.Tx, scope, key, fingerprint string, now time.Time) error {
	query := `UPDATE idempotency_records
		SET fingerprint = $1, created_at = $2, status = $3
		WHERE scope = $4 AND key = $5 AND status = $3`

	tag, err := tx.Exec(ctx, query, fingerprint, now, domain.IdempotencyPending, scope, key)
	if err != nil {
		return fmt.Errorf("reset pending idempotency record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idempotency record %s/%s no longer pending", scope, key)
	}
	return nil
}

// MarkCompleted stores the serialized result and flips the record to
// Completed inside the write transaction.
func (r *IdempotencyRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, scope, key string, result []byte, completedAt time.Time) error {
	query := `UPDATE idempotency_records
		SET status = $1, result_payload = $2, completed_at = $3
		WHERE scope = $4 AND key = $5`

	tag, err := tx.Exec(ctx, query, domain.IdempotencyCompleted, result, completedAt, scope, key)
	if err != nil {
		return fmt.Errorf("complete idempotency record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idempotency record %s/%s not found", scope, key)
	}
	return nil
}
