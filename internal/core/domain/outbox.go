package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outbox event kinds, used as routing keys when publishing.
const (
	EventWalletTopUp    = "wallet.topup"
	EventIntentReserved = "intent.reserved"
	EventIntentCaptured = "intent.captured"
	EventIntentReleased = "intent.released"
	EventPaymentRefund  = "payment.refunded"
)

// OutboxEvent is written in the same transaction as the ledger insert and
// published by a separate dispatcher, so a crash between commit and publish
// is survivable.
type OutboxEvent struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	AggregateID uuid.UUID  `json:"aggregate_id"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// NewOutboxEvent serializes payload and wraps it as an unpublished event.
func NewOutboxEvent(kind string, aggregateID uuid.UUID, payload any, now time.Time) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}
	return &OutboxEvent{
		ID:          uuid.New(),
		Kind:        kind,
		AggregateID: aggregateID,
		Payload:     raw,
		CreatedAt:   now,
	}, nil
}
