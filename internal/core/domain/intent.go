package domain

import (
	"time"

	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// PaymentIntentStatus is the intent state machine: Reserved is the only
// non-terminal state; Captured and Released are final. Stored as a small
// integer; values must never be renumbered.
type PaymentIntentStatus int16

const (
	IntentStatusReserved PaymentIntentStatus = 1
	IntentStatusCaptured PaymentIntentStatus = 2
	IntentStatusReleased PaymentIntentStatus = 3
)

func (s PaymentIntentStatus) String() string {
	switch s {
	case IntentStatusReserved:
		return "reserved"
	case IntentStatusCaptured:
		return "captured"
	case IntentStatusReleased:
		return "released"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s PaymentIntentStatus) IsTerminal() bool {
	return s == IntentStatusCaptured || s == IntentStatusReleased
}

// IntentAllocation assigns part of an intent's amount to one wallet.
type IntentAllocation struct {
	WalletID    uuid.UUID `json:"wallet_id"`
	AmountMinor int64     `json:"amount_minor"`
}

// PaymentIntent is a reservation of funds prior to capture, analogous to an
// authorization hold. ReserveOperationID groups the Hold entries written when
// the reservation was made, so capture and release can link back to them.
type PaymentIntent struct {
	ID                 uuid.UUID           `json:"id"`
	OrderID            uuid.UUID           `json:"order_id"`
	AmountMinor        int64               `json:"amount_minor"`
	Currency           string              `json:"currency"`
	Status             PaymentIntentStatus `json:"status"`
	Allocations        []IntentAllocation  `json:"allocations"`
	ReserveOperationID uuid.UUID           `json:"reserve_operation_id"`
	MetadataJSON       *string             `json:"metadata_json,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// AssertTransition validates a state-machine move. Only Reserved intents may
// transition, and only to a terminal state.
func (p *PaymentIntent) AssertTransition(to PaymentIntentStatus) error {
	if p.Status != IntentStatusReserved {
		return apperror.ErrOperationNotAllowed("payment intent is " + p.Status.String() + ", expected reserved")
	}
	if !to.IsTerminal() {
		return apperror.ErrOperationNotAllowed("payment intent cannot transition to " + to.String())
	}
	return nil
}

// ValidateAllocations checks that allocations are present, individually
// positive, free of duplicate wallets, and sum exactly to amountMinor.
func ValidateAllocations(amountMinor int64, allocations []IntentAllocation) error {
	if len(allocations) == 0 {
		return apperror.ErrAllocationMismatch()
	}
	seen := make(map[uuid.UUID]struct{}, len(allocations))
	var sum int64
	var err error
	for _, a := range allocations {
		if a.AmountMinor <= 0 {
			return apperror.ErrInvalidAmount()
		}
		if _, dup := seen[a.WalletID]; dup {
			return apperror.ErrAllocationMismatch()
		}
		seen[a.WalletID] = struct{}{}
		sum, err = AddMinor(sum, a.AmountMinor)
		if err != nil {
			return err
		}
	}
	if sum != amountMinor {
		return apperror.ErrAllocationMismatch()
	}
	return nil
}
