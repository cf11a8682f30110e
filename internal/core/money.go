// Package core holds the domain types shared by the storage, reporting and
// HTTP layers: transaction records, accounts, the demo user, and the amount
// parsing rules applied at every input boundary.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied amount string to a non-negative
// decimal magnitude.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs
// are rejected: direction is carried separately and amounts are stored as
// magnitudes only. Zero and negative values are invalid.
//
// Examples:
//
//	ParseAmount("120.50") -> 120.50, nil
//	ParseAmount("45")     -> 45, nil
//	ParseAmount("-5")     -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	// Amounts are money; keep at most two fractional digits, half-up.
	return d.Round(2), nil
}

// FormatAmount renders a decimal with exactly two fractional digits, the
// way the dashboard displays currency.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
