package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet & Ledger Business Rules (WLT) ----

func ErrInsufficientFunds() *AppError {
	return New("WLT_001", "Insufficient available balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WLT_002", "Amount must be a positive number of minor units", http.StatusBadRequest)
}

func ErrCurrencyInvalid(currency string) *AppError {
	return New("WLT_003", fmt.Sprintf("Currency %q is not a valid 3-letter code", currency), http.StatusBadRequest)
}

func ErrCurrencyRequired() *AppError {
	return New("WLT_004", "Currency is required", http.StatusBadRequest)
}

func ErrCurrencyMismatch(want, got string) *AppError {
	return New("WLT_005", fmt.Sprintf("Currency mismatch: wallet holds %s, request uses %s", want, got), http.StatusUnprocessableEntity)
}

func ErrClosedWallet() *AppError {
	return New("WLT_006", "Wallet is closed", http.StatusUnprocessableEntity)
}

func ErrSuspendedWallet() *AppError {
	return New("WLT_007", "Wallet is suspended", http.StatusUnprocessableEntity)
}

func ErrOperationNotAllowed(reason string) *AppError {
	return New("WLT_008", reason, http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("WLT_009", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAllocationMismatch() *AppError {
	return New("WLT_010", "Allocation amounts must sum to the intent amount", http.StatusBadRequest)
}

func ErrAmountOverflow() *AppError {
	return New("WLT_011", "Amount arithmetic exceeds the 64-bit minor-unit range", http.StatusUnprocessableEntity)
}

// ---- Idempotency (IDM) ----

func ErrIdempotencyKeyConflict() *AppError {
	return New("IDM_001", "Idempotency key was already used with a different payload", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Insufficient privileges", http.StatusForbidden)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrLockTimeout marks a bounded lock acquisition that expired. Transient:
// callers may retry with the same idempotency key.
func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timed out", http.StatusServiceUnavailable, err)
}

// Validation returns a WLT_002-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("WLT_002", message, http.StatusBadRequest)
}
