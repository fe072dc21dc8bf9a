package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencyPrefixes are matched case-insensitively, longest first.
var currencyPrefixes = []string{"Rs.", "INR", "Rs", "₹", "$", "€"}

// Money is a currency amount in cents. Negative values are allowed for refunds.
type Money struct {
	Cents int64
}

// ParseAmount converts a spreadsheet cell to Money.
//
// One leading currency marker ("Rs.", "Rs", "INR", "₹", "$", "€") and thousands
// separators are stripped; what remains must be a complete decimal number.
// The value is rounded half away from zero to two decimals.
// An empty cell is zero, the same as a blank subtotal contributing nothing
// to a sum.
//
// Examples:
//
//	ParseAmount("1234.5")     -> 123450
//	ParseAmount("Rs 1,234")   -> 123400
//	ParseAmount("Rs. 1,234")  -> 123400
//	ParseAmount("12.345")     -> 1235
//	ParseAmount("")           -> 0
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	s = trimCurrency(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, nil
}

func trimCurrency(s string) string {
	for _, p := range currencyPrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// Units returns the whole currency units, truncated toward zero.
// The KPI cards show values this way.
func (m Money) Units() int64 {
	return m.Cents / 100
}

// Float returns the amount as a float for charts.
// Use Cents for calculations.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the amount with two decimals, e.g. "-12.05".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}
