package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IdempotencyStatus is the lifecycle of one operation attempt. Stored as a
// small integer; values must never be renumbered.
type IdempotencyStatus int16

const (
	IdempotencyPending   IdempotencyStatus = 1
	IdempotencyCompleted IdempotencyStatus = 2
)

// IdempotencyRecord deduplicates retried requests. (Scope, Key) is unique;
// reusing a key with a different request fingerprint is a conflict, not a
// retry.
type IdempotencyRecord struct {
	Scope         string            `json:"scope"`
	Key           string            `json:"key"`
	Fingerprint   string            `json:"fingerprint"`
	Status        IdempotencyStatus `json:"status"`
	ResultPayload []byte            `json:"result_payload,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// IsStalePending reports whether a Pending record is old enough to be treated
// as an abandoned crashed attempt and reclaimed by a retry.
func (r *IdempotencyRecord) IsStalePending(now time.Time, staleAfter time.Duration) bool {
	return r.Status == IdempotencyPending && staleAfter > 0 && now.Sub(r.CreatedAt) >= staleAfter
}

// Fingerprint hashes a request payload into a stable hex digest used to
// detect key reuse across different payloads.
func Fingerprint(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fingerprint payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Idempotency scopes. The scope binds a key to one operation kind and target
// so the same caller key cannot collide across operations.

func TopUpScope(walletID uuid.UUID) string {
	return "topup:" + walletID.String()
}

func IntentScope(orderID uuid.UUID) string {
	return "intent:" + orderID.String()
}

func CaptureScope(intentID uuid.UUID) string {
	return "capture:" + intentID.String()
}

func ReleaseScope(intentID uuid.UUID) string {
	return "release:" + intentID.String()
}

func RefundScope(paymentID uuid.UUID) string {
	return "refund:" + paymentID.String()
}
