package domain

import (
	"time"

	"github.com/google/uuid"
)

// BalanceSnapshot is the denormalized, versioned balance projection of one
// wallet. It is written only by the atomic write path and the rebuilder,
// never by reads. Version increments exactly once per successful
// balance-affecting transaction.
type BalanceSnapshot struct {
	WalletID       uuid.UUID `json:"wallet_id"`
	Currency       string    `json:"currency"`
	AvailableMinor int64     `json:"available_minor"`
	PendingMinor   int64     `json:"pending_minor"`
	Version        int64     `json:"version"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Apply folds a single ledger entry into the snapshot totals arithmetically.
// This is the hot-path projection update; recomputing from the whole ledger
// is the rebuilder's job.
func (s *BalanceSnapshot) Apply(e *LedgerEntry) error {
	var err error
	switch e.EntryType {
	case EntryCredit:
		s.AvailableMinor, err = AddMinor(s.AvailableMinor, e.AmountMinor)
	case EntryDebit:
		s.AvailableMinor, err = SubMinor(s.AvailableMinor, e.AmountMinor)
	case EntryHold:
		s.PendingMinor, err = AddMinor(s.PendingMinor, e.AmountMinor)
	case EntryReleaseHold:
		s.PendingMinor, err = SubMinor(s.PendingMinor, e.AmountMinor)
	}
	return err
}

// Totals returns the snapshot's balance pair.
func (s *BalanceSnapshot) Totals() BalanceTotals {
	return BalanceTotals{AvailableMinor: s.AvailableMinor, PendingMinor: s.PendingMinor}
}
