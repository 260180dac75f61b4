package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// Outcome classifies how an atomic write concluded.
type Outcome string

const (
	// OutcomeCompleted: the operation executed and committed in this call.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCompletedCached: an identical request already completed; the
	// stored result is returned and no new ledger effect occurred.
	OutcomeCompletedCached Outcome = "completed_cached"
	// OutcomeInProgress: an identical request is mid-flight in another
	// transaction; the caller may retry after backoff.
	OutcomeInProgress Outcome = "in_progress"
)

// WalletBalance is the resulting projection of one touched wallet.
type WalletBalance struct {
	WalletID       uuid.UUID `json:"wallet_id"`
	Currency       string    `json:"currency"`
	AvailableMinor int64     `json:"available_minor"`
	PendingMinor   int64     `json:"pending_minor"`
	Version        int64     `json:"version"`
}

// OperationResult is the structured outcome of one atomic write. The caller
// maps it to transport-level semantics; the writer itself never decides those.
type OperationResult struct {
	Outcome       Outcome         `json:"outcome"`
	OperationID   uuid.UUID       `json:"operation_id"`
	LedgerEntryID *uuid.UUID      `json:"ledger_entry_id,omitempty"`
	IntentID      *uuid.UUID      `json:"intent_id,omitempty"`
	PaymentID     *uuid.UUID      `json:"payment_id,omitempty"`
	RefundID      *uuid.UUID      `json:"refund_id,omitempty"`
	Status        string          `json:"status,omitempty"` // intent/payment/refund state after the operation
	Balances      []WalletBalance `json:"balances,omitempty"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// TopUpRequest holds validated input for a wallet top-up.
type TopUpRequest struct {
	WalletID          uuid.UUID `json:"wallet_id"`
	AmountMinor       int64     `json:"amount_minor"`
	Currency          string    `json:"currency"`
	IdempotencyKey    string    `json:"idempotency_key"`
	ExternalReference *string   `json:"external_reference,omitempty"`
	MetadataJSON      *string   `json:"metadata_json,omitempty"`
}

// CreateIntentRequest holds validated input for reserving funds.
type CreateIntentRequest struct {
	OrderID        uuid.UUID                 `json:"order_id"`
	AmountMinor    int64                     `json:"amount_minor"`
	Currency       string                    `json:"currency"`
	Allocations    []domain.IntentAllocation `json:"allocations"`
	IdempotencyKey string                    `json:"idempotency_key"`
	MetadataJSON   *string                   `json:"metadata_json,omitempty"`
}

// CaptureIntentRequest holds validated input for capturing a reservation.
type CaptureIntentRequest struct {
	IntentID       uuid.UUID `json:"intent_id"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// ReleaseIntentRequest holds validated input for releasing a reservation.
type ReleaseIntentRequest struct {
	IntentID       uuid.UUID `json:"intent_id"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// RefundRequest holds validated input for refunding a captured payment.
type RefundRequest struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	Reason         *string   `json:"reason,omitempty"`
}

// LedgerService is the atomic money-movement writer. Every method executes
// one wallet-affecting operation as a single database transaction: lock
// acquisition, idempotency check, ledger insert, projection update, commit.
type LedgerService interface {
	TopUp(ctx context.Context, req TopUpRequest) (*OperationResult, error)
	CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*OperationResult, error)
	CapturePaymentIntent(ctx context.Context, req CaptureIntentRequest) (*OperationResult, error)
	ReleasePaymentIntent(ctx context.Context, req ReleaseIntentRequest) (*OperationResult, error)
	RefundPayment(ctx context.Context, req RefundRequest) (*OperationResult, error)
}

// RebuildService recomputes balance projections from the ledger.
type RebuildService interface {
	RebuildWallet(ctx context.Context, walletID uuid.UUID) (*domain.RebuildResult, error)
	RebuildBatch(ctx context.Context, filter domain.RebuildBatchFilter) (*domain.RebuildBatchSummary, error)
	DetectDrift(ctx context.Context, walletID uuid.UUID) (*domain.DriftReport, error)
}

// ReadService serves balance and transaction queries from the projection and
// ledger tables. No locking; safe against a replica.
type ReadService interface {
	GetBalance(ctx context.Context, walletID uuid.UUID) (*domain.BalanceSnapshot, error)
	GetTransactions(ctx context.Context, walletID uuid.UUID, take int) ([]domain.LedgerEntry, error)
}

// EventPublisher delivers outbox events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// BalanceCache is a best-effort read cache for balance snapshots. The write
// path only invalidates; it never reads through the cache.
type BalanceCache interface {
	Get(ctx context.Context, walletID uuid.UUID) (*domain.BalanceSnapshot, error)
	Set(ctx context.Context, snap *domain.BalanceSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, walletID uuid.UUID) error
}
