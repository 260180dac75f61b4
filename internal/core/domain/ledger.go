package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationType names the business operation a ledger entry belongs to.
// Stored as a small integer; values must never be renumbered.
type OperationType int16

const (
	OperationTopUp   OperationType = 1
	OperationReserve OperationType = 2
	OperationPayment OperationType = 3
	OperationRelease OperationType = 4
	OperationRefund  OperationType = 5
)

func (t OperationType) String() string {
	switch t {
	case OperationTopUp:
		return "topup"
	case OperationReserve:
		return "reserve"
	case OperationPayment:
		return "payment"
	case OperationRelease:
		return "release"
	case OperationRefund:
		return "refund"
	default:
		return "unknown"
	}
}

// EntryType encodes how an entry moves balance totals. Stored as a small
// integer; values must never be renumbered.
type EntryType int16

const (
	EntryCredit      EntryType = 1 // +available
	EntryDebit       EntryType = 2 // -available
	EntryHold        EntryType = 3 // +pending
	EntryReleaseHold EntryType = 4 // -pending
)

func (t EntryType) String() string {
	switch t {
	case EntryCredit:
		return "credit"
	case EntryDebit:
		return "debit"
	case EntryHold:
		return "hold"
	case EntryReleaseHold:
		return "release_hold"
	default:
		return "unknown"
	}
}

// RelationType qualifies the link to a related entry. Stored as a small
// integer; values must never be renumbered.
type RelationType int16

const (
	RelationNone       RelationType = 0
	RelationReversal   RelationType = 1
	RelationRefund     RelationType = 2
	RelationAdjustment RelationType = 3
)

func (t RelationType) String() string {
	switch t {
	case RelationNone:
		return "none"
	case RelationReversal:
		return "reversal"
	case RelationRefund:
		return "refund"
	case RelationAdjustment:
		return "adjustment"
	default:
		return "unknown"
	}
}

// LedgerEntry is the append-only record of one balance-affecting event.
// Entries are immutable once committed; corrections are new entries linked
// via RelatedEntryID/RelationType. OperationID groups all entries produced by
// one logical business operation.
type LedgerEntry struct {
	ID                uuid.UUID     `json:"id"`
	WalletID          uuid.UUID     `json:"wallet_id"`
	OperationID       uuid.UUID     `json:"operation_id"`
	OperationType     OperationType `json:"operation_type"`
	EntryType         EntryType     `json:"entry_type"`
	AmountMinor       int64         `json:"amount_minor"` // always > 0
	Currency          string        `json:"currency"`
	EffectiveAt       time.Time     `json:"effective_at"`
	CreatedAt         time.Time     `json:"created_at"`
	RelatedEntryID    *uuid.UUID    `json:"related_entry_id,omitempty"`
	RelationType      RelationType  `json:"relation_type"`
	ExternalReference *string       `json:"external_reference,omitempty"`
	MetadataJSON      *string       `json:"metadata_json,omitempty"`
	IdempotencyKey    string        `json:"idempotency_key"`
}

// BalanceTotals is a ledger-derived pair of balance sums.
type BalanceTotals struct {
	AvailableMinor int64 `json:"available_minor"`
	PendingMinor   int64 `json:"pending_minor"`
}

// FoldEntries folds ledger entries into balance totals using the entry-type
// semantics. Callers must pass entries in (effective_at, created_at, id)
// order for reproducible results.
func FoldEntries(entries []LedgerEntry) (BalanceTotals, error) {
	var totals BalanceTotals
	var err error
	for i := range entries {
		e := &entries[i]
		switch e.EntryType {
		case EntryCredit:
			totals.AvailableMinor, err = AddMinor(totals.AvailableMinor, e.AmountMinor)
		case EntryDebit:
			totals.AvailableMinor, err = SubMinor(totals.AvailableMinor, e.AmountMinor)
		case EntryHold:
			totals.PendingMinor, err = AddMinor(totals.PendingMinor, e.AmountMinor)
		case EntryReleaseHold:
			totals.PendingMinor, err = SubMinor(totals.PendingMinor, e.AmountMinor)
		}
		if err != nil {
			return BalanceTotals{}, err
		}
	}
	return totals, nil
}
