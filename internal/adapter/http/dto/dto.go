package dto

import (
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
)

// TopUpRequest is the request body for a wallet top-up.
type TopUpRequest struct {
	AmountMinor       int64   `json:"amount_minor" binding:"required,gt=0"`
	Currency          string  `json:"currency" binding:"required,len=3"`
	ExternalReference *string `json:"external_reference,omitempty"`
	Metadata          *string `json:"metadata,omitempty"`
}

// AllocationRequest assigns part of an intent's amount to one wallet.
type AllocationRequest struct {
	WalletID    string `json:"wallet_id" binding:"required,uuid"`
	AmountMinor int64  `json:"amount_minor" binding:"required,gt=0"`
}

// CreateIntentRequest is the request body for reserving funds.
type CreateIntentRequest struct {
	OrderID     string              `json:"order_id" binding:"required,uuid"`
	AmountMinor int64               `json:"amount_minor" binding:"required,gt=0"`
	Currency    string              `json:"currency" binding:"required,len=3"`
	Allocations []AllocationRequest `json:"allocations" binding:"required,min=1,dive"`
	Metadata    *string             `json:"metadata,omitempty"`
}

// RefundRequest is the request body for refunding a captured payment.
type RefundRequest struct {
	Reason *string `json:"reason,omitempty" binding:"omitempty,max=2000"`
}

// RebuildBatchRequest selects the wallet set for an admin batch rebuild.
type RebuildBatchRequest struct {
	Currency      *string    `json:"currency,omitempty" binding:"omitempty,len=3"`
	UpdatedAfter  *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time `json:"updated_before,omitempty"`
	OnlyActive    bool       `json:"only_active"`
}

// BalanceResponse is one wallet's projection after an operation or query.
type BalanceResponse struct {
	WalletID       string `json:"wallet_id"`
	Currency       string `json:"currency"`
	AvailableMinor int64  `json:"available_minor"`
	PendingMinor   int64  `json:"pending_minor"`
	Version        int64  `json:"version"`
}

// OperationResponse is the response body for every money-movement endpoint.
type OperationResponse struct {
	Outcome       string            `json:"outcome"`
	OperationID   string            `json:"operation_id,omitempty"`
	LedgerEntryID *string           `json:"ledger_entry_id,omitempty"`
	IntentID      *string           `json:"intent_id,omitempty"`
	PaymentID     *string           `json:"payment_id,omitempty"`
	RefundID      *string           `json:"refund_id,omitempty"`
	Status        string            `json:"status,omitempty"`
	Balances      []BalanceResponse `json:"balances,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// TransactionResponse is one ledger entry in a transaction listing.
type TransactionResponse struct {
	ID                string  `json:"id"`
	OperationID       string  `json:"operation_id"`
	OperationType     string  `json:"operation_type"`
	EntryType         string  `json:"entry_type"`
	AmountMinor       int64   `json:"amount_minor"`
	Currency          string  `json:"currency"`
	EffectiveAt       string  `json:"effective_at"`
	RelatedEntryID    *string `json:"related_entry_id,omitempty"`
	RelationType      string  `json:"relation_type,omitempty"`
	ExternalReference *string `json:"external_reference,omitempty"`
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// FromOperationResult maps a service-layer result to its response body.
func FromOperationResult(res *ports.OperationResult) OperationResponse {
	out := OperationResponse{
		Outcome:       string(res.Outcome),
		LedgerEntryID: uuidPtrString(res.LedgerEntryID),
		IntentID:      uuidPtrString(res.IntentID),
		PaymentID:     uuidPtrString(res.PaymentID),
		RefundID:      uuidPtrString(res.RefundID),
		Status:        res.Status,
	}
	if res.OperationID != uuid.Nil {
		out.OperationID = res.OperationID.String()
	}
	if !res.CompletedAt.IsZero() {
		t := res.CompletedAt
		out.CompletedAt = &t
	}
	for _, b := range res.Balances {
		out.Balances = append(out.Balances, BalanceResponse{
			WalletID:       b.WalletID.String(),
			Currency:       b.Currency,
			AvailableMinor: b.AvailableMinor,
			PendingMinor:   b.PendingMinor,
			Version:        b.Version,
		})
	}
	return out
}

// FromSnapshot maps a balance snapshot to its response body.
func FromSnapshot(snap *domain.BalanceSnapshot) BalanceResponse {
	return BalanceResponse{
		WalletID:       snap.WalletID.String(),
		Currency:       snap.Currency,
		AvailableMinor: snap.AvailableMinor,
		PendingMinor:   snap.PendingMinor,
		Version:        snap.Version,
	}
}

// FromLedgerEntries maps ledger entries to their listing response.
func FromLedgerEntries(entries []domain.LedgerEntry) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(entries))
	for _, e := range entries {
		resp := TransactionResponse{
			ID:                e.ID.String(),
			OperationID:       e.OperationID.String(),
			OperationType:     e.OperationType.String(),
			EntryType:         e.EntryType.String(),
			AmountMinor:       e.AmountMinor,
			Currency:          e.Currency,
			EffectiveAt:       e.EffectiveAt.UTC().Format(time.RFC3339Nano),
			RelatedEntryID:    uuidPtrString(e.RelatedEntryID),
			ExternalReference: e.ExternalReference,
		}
		if e.RelationType != domain.RelationNone {
			resp.RelationType = e.RelationType.String()
		}
		out = append(out, resp)
	}
	return out
}

// ToBatchFilter maps the admin request to the domain filter.
func (r *RebuildBatchRequest) ToBatchFilter() domain.RebuildBatchFilter {
	return domain.RebuildBatchFilter{
		Currency:      r.Currency,
		UpdatedAfter:  r.UpdatedAfter,
		UpdatedBefore: r.UpdatedBefore,
		OnlyActive:    r.OnlyActive,
	}
}
