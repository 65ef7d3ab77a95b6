package types

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is the fixed-point scale of ERC-20 tokens this tool talks to.
const DefaultDecimals int32 = 18

var (
	ErrEmptyAmount       = errors.New("amount is empty")
	ErrInvalidAmount     = errors.New("amount is not a number")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrTooManyDecimals   = errors.New("amount has more decimal places than the token")
	ErrInvalidDuration   = errors.New("duration must be a positive whole number of seconds")
)

// ParseAmount converts a human token quantity ("1.5") into smallest units.
func ParseAmount(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyAmount
	}
	// plain decimals only, an exponent would scale the amount
	if strings.ContainsAny(s, "eE+") {
		return nil, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if !d.Equal(d.Truncate(decimals)) {
		return nil, ErrTooManyDecimals
	}
	return d.Shift(decimals).BigInt(), nil
}

// FormatAmount renders smallest units as a plain decimal without trailing zeros.
// A nil amount is unknown and renders as "-".
func FormatAmount(v *big.Int, decimals int32) string {
	if v == nil {
		return "-"
	}
	return ToDecimal(v, decimals).String()
}

// ToDecimal scales smallest units down by the token decimals.
func ToDecimal(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -decimals)
}

// ParseDuration reads an epoch length in whole seconds.
func ParseDuration(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyAmount
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 || s[0] == '+' {
		return nil, ErrInvalidDuration
	}
	return v, nil
}
