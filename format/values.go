// Package format renders simulation output for people: currency,
// percentages, counts, console tables and CSV.
package format

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every currency amount.
const CurrencySymbol = "€"

var hundred = decimal.NewFromInt(100)

// Currency renders d as euros with two decimals and thousands separators,
// e.g. €2,380,000.00 or -€12.50.
func Currency(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + CurrencySymbol + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// Percentage renders a fraction as a percentage with two decimals,
// e.g. 0.15 -> 15.00%.
func Percentage(d decimal.Decimal) string {
	return d.Mul(hundred).StringFixed(2) + "%"
}

// Number renders a count with no decimals and thousands separators.
func Number(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.", d.Round(0).InexactFloat64())
}
