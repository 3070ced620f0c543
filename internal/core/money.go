// Package core provides the travel spend record model, dataset parsing,
// filtering and money formatting.
//
// This file contains the helpers that turn decimal spend amounts into the
// display strings shown on the dashboard metrics.
package core

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the ISO code spend amounts are reported in.
const Currency = money.INR

// displayFormatter renders whole rupees with a comma thousands separator,
// e.g. "₹ 405,000".
var displayFormatter = money.NewFormatter(0, ".", ",", money.GetCurrency(Currency).Grapheme, "$ 1")

// FormatSpend rounds the amount to whole units, halves to even, and formats
// it for display.
//
// Examples:
//
//	FormatSpend(405000)    -> "₹ 405,000"
//	FormatSpend(1234.5)    -> "₹ 1,234"
//	FormatSpend(1235.5)    -> "₹ 1,236"
//	FormatSpend(0)         -> "₹ 0"
func FormatSpend(d decimal.Decimal) string {
	return displayFormatter.Format(d.RoundBank(0).IntPart())
}

// FormatAmount formats an amount with its natural precision and thousands
// separators but no currency sign, for tables.
func FormatAmount(d decimal.Decimal) string {
	cur := money.GetCurrency(Currency)
	f := money.NewFormatter(0, ".", cur.Thousand, "", "1")
	if d.Equal(d.Truncate(0)) {
		return f.Format(d.IntPart())
	}
	f.Fraction = cur.Fraction
	return f.Format(d.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// SumSpend returns the sum of Spend across all rows, zero for an empty table.
func SumSpend(t Table) decimal.Decimal {
	total := decimal.Zero
	for _, r := range t.rows {
		total = total.Add(r.Spend)
	}
	return total
}
