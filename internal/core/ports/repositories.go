package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks and take the
// wallet-scoped row lock; multi-wallet callers must lock in ascending ID
// order to prevent deadlock cycles.
type WalletRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	// ListIDs returns wallet IDs matching the batch rebuild filter.
	ListIDs(ctx context.Context, filter domain.RebuildBatchFilter) ([]uuid.UUID, error)
}

// LedgerRepository defines persistence for the append-only ledger. Entries
// are inserted only inside the atomic write transaction and never updated or
// deleted.
type LedgerRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	// ListRecent returns the newest entries for a wallet, most recent first.
	ListRecent(ctx context.Context, walletID uuid.UUID, take int) ([]domain.LedgerEntry, error)
	// ListForFold returns every entry of a wallet in (effective_at,
	// created_at, id) order, the deterministic fold order of the rebuilder.
	ListForFold(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) ([]domain.LedgerEntry, error)
	// ListByOperation returns the entries grouped under one operation ID,
	// used to link capture/refund entries back to their originals.
	ListByOperation(ctx context.Context, tx pgx.Tx, operationID uuid.UUID) ([]domain.LedgerEntry, error)
}

// SnapshotRepository defines persistence for the balance projection. Rows are
// written only by the atomic writer and the rebuilder, both holding the
// wallet lock.
type SnapshotRepository interface {
	Get(ctx context.Context, walletID uuid.UUID) (*domain.BalanceSnapshot, error)
	GetTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (*domain.BalanceSnapshot, error)
	// Update writes new totals and the incremented version. expectedVersion
	// is the version the caller read under the lock; the update fails if the
	// row moved.
	Update(ctx context.Context, tx pgx.Tx, snap *domain.BalanceSnapshot, expectedVersion int64) error
}

// IdempotencyRepository defines persistence for operation attempt records.
// (scope, key) is unique.
type IdempotencyRepository interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, scope, key string) (*domain.IdempotencyRecord, error)
	CreatePending(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error
	// ResetPending reclaims a stale Pending record left by a crashed attempt.
	ResetPending(ctx context.Context, tx pgx.Tx, scope, key, fingerprint string, now time.Time) error
	MarkCompleted(ctx context.Context, tx pgx.Tx, scope, key string, result []byte, completedAt time.Time) error
}

// IntentRepository defines persistence for payment intents and their
// allocations.
type IntentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, intent *domain.PaymentIntent) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentIntent, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PaymentIntent, error)
	// UpdateStatus transitions the intent, guarded by the expected current
	// status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.PaymentIntentStatus, now time.Time) error
}

// PaymentRepository defines persistence for captured payments and refunds.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.PaymentStatus, now time.Time) error
	CreateRefund(ctx context.Context, tx pgx.Tx, refund *domain.Refund) error
}

// OutboxRepository defines persistence for the transactional outbox.
type OutboxRepository interface {
	Append(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error
	ListUnpublished(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
