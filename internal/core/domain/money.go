package domain

import (
	"strings"

	"wallet-ledger/pkg/apperror"
)

// Money is an immutable minor-unit amount tagged with a currency. Amounts are
// always stored positive; direction is carried by the ledger entry type.
type Money struct {
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

// NormalizeCurrency uppercases and trims a currency code and rejects anything
// that is not exactly three ASCII letters.
func NormalizeCurrency(raw string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" {
		return "", apperror.ErrCurrencyRequired()
	}
	if len(c) != 3 {
		return "", apperror.ErrCurrencyInvalid(raw)
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", apperror.ErrCurrencyInvalid(raw)
		}
	}
	return c, nil
}

// NewMoney builds a Money for a ledger entry amount. Entry amounts are
// strictly positive.
func NewMoney(amountMinor int64, currency string) (Money, error) {
	cur, err := NormalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	if amountMinor <= 0 {
		return Money{}, apperror.ErrInvalidAmount()
	}
	return Money{AmountMinor: amountMinor, Currency: cur}, nil
}

// Add returns m + other, failing on currency mismatch or int64 overflow.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperror.ErrCurrencyMismatch(m.Currency, other.Currency)
	}
	sum, err := AddMinor(m.AmountMinor, other.AmountMinor)
	if err != nil {
		return Money{}, err
	}
	return Money{AmountMinor: sum, Currency: m.Currency}, nil
}

// Subtract returns m - other, failing on currency mismatch or int64 overflow.
func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, apperror.ErrCurrencyMismatch(m.Currency, other.Currency)
	}
	diff, err := SubMinor(m.AmountMinor, other.AmountMinor)
	if err != nil {
		return Money{}, err
	}
	return Money{AmountMinor: diff, Currency: m.Currency}, nil
}

// AddMinor adds two minor-unit amounts and fails instead of wrapping around.
func AddMinor(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, apperror.ErrAmountOverflow()
	}
	return sum, nil
}

// SubMinor subtracts b from a and fails instead of wrapping around.
func SubMinor(a, b int64) (int64, error) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, apperror.ErrAmountOverflow()
	}
	return diff, nil
}
