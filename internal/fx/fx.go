// Package fx provides currency conversion helpers for posting flows.
package fx

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// allowedUnits is a ten-entry ISO 4217 sample, not the full ISO table.
var allowedUnits = func() map[currency.Unit]bool {
	codes := []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY", "SEK", "NZD"}
	units := make(map[currency.Unit]bool, len(codes))
	for _, code := range codes {
		units[currency.MustParseISO(code)] = true
	}
	return units
}()

// IsValidCode reports whether code belongs to the supported ISO 4217 sample.
func IsValidCode(code string) bool {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return false
	}
	return allowedUnits[unit]
}

// Convert applies an explicit exchange rate, rounding to two decimal places.
// When both currencies match the amount passes through unchanged. The rate
// and currency codes are the caller's responsibility.
func Convert(amount decimal.Decimal, from, to string, rate decimal.Decimal) decimal.Decimal {
	if from == to {
		return amount
	}
	return amount.Mul(rate).Round(2)
}
