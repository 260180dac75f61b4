package domain

import (
	"time"

	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// WalletType categorizes wallet ownership. Stored as a small integer;
// values are part of the persisted data contract and must never be renumbered.
type WalletType int16

const (
	WalletTypeSystem   WalletType = 1
	WalletTypeUser     WalletType = 2
	WalletTypeProvider WalletType = 3
)

func (t WalletType) String() string {
	switch t {
	case WalletTypeSystem:
		return "system"
	case WalletTypeUser:
		return "user"
	case WalletTypeProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// WalletStatus is the wallet lifecycle state. Stored as a small integer;
// values must never be renumbered.
type WalletStatus int16

const (
	WalletStatusActive    WalletStatus = 1
	WalletStatusSuspended WalletStatus = 2
	WalletStatusClosed    WalletStatus = 3
)

func (s WalletStatus) String() string {
	switch s {
	case WalletStatusActive:
		return "active"
	case WalletStatusSuspended:
		return "suspended"
	case WalletStatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Wallet is the aggregate guarding wallet-level invariants. All ledger entries
// and the balance projection of a wallet share its currency.
type Wallet struct {
	ID        uuid.UUID    `json:"id"`
	OwnerType string       `json:"owner_type"`
	OwnerID   uuid.UUID    `json:"owner_id"`
	Type      WalletType   `json:"type"`
	Status    WalletStatus `json:"status"`
	Currency  string       `json:"currency"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Metadata  *string      `json:"metadata,omitempty"`
}

// AssertCanOperate rejects balance-affecting operations on non-active wallets.
// Must be evaluated on a row read under the wallet lock, inside the same
// transaction as the write.
func (w *Wallet) AssertCanOperate() error {
	switch w.Status {
	case WalletStatusActive:
		return nil
	case WalletStatusClosed:
		return apperror.ErrClosedWallet()
	case WalletStatusSuspended:
		return apperror.ErrSuspendedWallet()
	default:
		return apperror.ErrOperationNotAllowed("wallet is in an unknown state")
	}
}

// AssertCurrency rejects operations whose currency differs from the wallet's.
func (w *Wallet) AssertCurrency(requested string) error {
	if requested != w.Currency {
		return apperror.ErrCurrencyMismatch(w.Currency, requested)
	}
	return nil
}
