package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a number/currency pair. Either side may be elided in the
// source; an elided side is represented by a nil Number or an empty
// Currency rather than a zero value, so downstream booking can tell
// "0.00 USD" apart from "no amount given".
type Amount struct {
	Number   *decimal.Decimal
	Currency string
}

// NewAmount builds a fully specified amount.
func NewAmount(number decimal.Decimal, currency string) Amount {
	return Amount{Number: &number, Currency: currency}
}

// Missing reports whether any part of the amount was elided.
func (a Amount) Missing() bool {
	return a.Number == nil || a.Currency == ""
}

func (a Amount) String() string {
	if a.Missing() {
		return "<missing>"
	}
	return fmt.Sprintf("%s %s", a.Number.String(), a.Currency)
}

// DisplayContext tracks, per currency, the maximum number of decimal
// places observed across all parsed amounts. Downstream formatting and
// tolerance inference depend on it. Updates only ever widen.
type DisplayContext map[string]int32

// Update records the precision of one observed amount. If either side is
// missing this is a no-op.
func (dc DisplayContext) Update(number *decimal.Decimal, currency string) {
	if number == nil || currency == "" {
		return
	}
	places := -number.Exponent()
	if places < 0 {
		places = 0
	}
	if places > dc[currency] {
		dc[currency] = places
	}
}

// Precision returns the tracked decimal places for a currency, zero if
// the currency was never observed.
func (dc DisplayContext) Precision(currency string) int32 {
	return dc[currency]
}
