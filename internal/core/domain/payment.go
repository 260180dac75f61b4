package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle of a captured payment. Stored as a small
// integer; values must never be renumbered.
type PaymentStatus int16

const (
	PaymentStatusCompleted PaymentStatus = 1
	PaymentStatusRefunded  PaymentStatus = 2
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusCompleted:
		return "completed"
	case PaymentStatusRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// Payment is created when an intent is captured. CaptureOperationID groups
// the Debit entries written during capture, so a refund can credit each
// allocation back against its original debit.
type Payment struct {
	ID                 uuid.UUID     `json:"id"`
	IntentID           uuid.UUID     `json:"intent_id"`
	OrderID            uuid.UUID     `json:"order_id"`
	AmountMinor        int64         `json:"amount_minor"`
	Currency           string        `json:"currency"`
	Status             PaymentStatus `json:"status"`
	CaptureOperationID uuid.UUID     `json:"capture_operation_id"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// IsRefundable reports whether the payment can still be refunded.
func (p *Payment) IsRefundable() bool {
	return p.Status == PaymentStatusCompleted
}

// RefundStatus is the lifecycle of a refund. Stored as a small integer;
// values must never be renumbered.
type RefundStatus int16

const (
	RefundStatusCompleted RefundStatus = 1
)

func (s RefundStatus) String() string {
	if s == RefundStatusCompleted {
		return "completed"
	}
	return "unknown"
}

// Refund records a full reversal of a captured payment.
type Refund struct {
	ID          uuid.UUID    `json:"id"`
	PaymentID   uuid.UUID    `json:"payment_id"`
	AmountMinor int64        `json:"amount_minor"`
	Currency    string       `json:"currency"`
	Reason      *string      `json:"reason,omitempty"`
	Status      RefundStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}
