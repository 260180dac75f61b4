package domain

import (
	"time"

	"github.com/google/uuid"
)

// DriftInfo flags divergence between the balance projection and the
// ledger-derived totals.
type DriftInfo struct {
	AvailableDelta int64 `json:"available_delta"` // computed - projected
	PendingDelta   int64 `json:"pending_delta"`
	VersionDelta   int64 `json:"version_delta"`
	Detected       bool  `json:"detected"`
}

// NewDriftInfo compares a projection against ledger-derived totals.
// Detected is true only for numeric balance drift; the version delta is
// informational (a rebuild always advances the version).
func NewDriftInfo(projected BalanceSnapshot, computed BalanceTotals, newVersion int64) DriftInfo {
	d := DriftInfo{
		AvailableDelta: computed.AvailableMinor - projected.AvailableMinor,
		PendingDelta:   computed.PendingMinor - projected.PendingMinor,
		VersionDelta:   newVersion - projected.Version,
	}
	d.Detected = d.AvailableDelta != 0 || d.PendingDelta != 0
	return d
}

// RebuildResult is the outcome of one single-wallet projection rebuild.
type RebuildResult struct {
	WalletID uuid.UUID       `json:"wallet_id"`
	Before   BalanceSnapshot `json:"before"`
	After    BalanceSnapshot `json:"after"`
	Drift    DriftInfo       `json:"drift"`
}

// DriftReport is the read-only counterpart of RebuildResult: same
// computation, no write, no version bump.
type DriftReport struct {
	WalletID   uuid.UUID       `json:"wallet_id"`
	Projection BalanceSnapshot `json:"projection"`
	Computed   BalanceTotals   `json:"computed"`
	Drift      DriftInfo       `json:"drift"`
}

// RebuildBatchFilter selects the wallet set for a batch rebuild.
type RebuildBatchFilter struct {
	Currency      *string    `json:"currency,omitempty"`
	UpdatedAfter  *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time `json:"updated_before,omitempty"`
	OnlyActive    bool       `json:"only_active"`
}

// WalletRebuildSummary is one wallet's line in a batch rebuild report.
type WalletRebuildSummary struct {
	WalletID      uuid.UUID `json:"wallet_id"`
	DriftDetected bool      `json:"drift_detected"`
	Error         string    `json:"error,omitempty"`
}

// RebuildBatchSummary aggregates a batch rebuild. Individual wallet failures
// are recorded here instead of aborting the batch.
type RebuildBatchSummary struct {
	TotalWallets       int                    `json:"total_wallets"`
	SuccessCount       int                    `json:"success_count"`
	DriftDetectedCount int                    `json:"drift_detected_count"`
	FailureCount       int                    `json:"failure_count"`
	Wallets            []WalletRebuildSummary `json:"wallets"`
}
