// Package money converts between the decimal currency representation used at
// the API boundary and the integer minor-unit (cents) representation used for
// all stored and computed amounts. Nothing outside the HTTP layer should ever
// hold a monetary value as anything but int64 cents.
package money

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts cross the wire as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// ToCents converts a decimal amount to integer cents, rounding half away
// from zero to the nearest cent. Decoding already rejects non-numeric JSON,
// so every value reaching here is finite.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer cents to a decimal with exponent -2, so the cent
// value is preserved exactly. FromCents(ToCents(x)) == x for any x with at
// most two fractional digits. Trailing zero cents are trimmed when rendered;
// use StringFixed(2) where a fixed two-digit form is needed.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
