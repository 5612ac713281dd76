package utils

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatWithPrecision formats an amount with the given precision
// This is a convenience function when you only have the precision value
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).String()
}

// FormatFiat renders amount in the given ISO currency with its symbol and grouping,
// e.g. "$1,234.56". Unknown currency codes fall back to two decimals and the code.
func FormatFiat(amount decimal.Decimal, currencyCode string) string {
	code := strings.ToUpper(currencyCode)
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	factor := decimal.New(1, int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// FormatUSD is FormatFiat for US dollars.
func FormatUSD(amount decimal.Decimal) string {
	return FormatFiat(amount, money.USD)
}

// FormatPercent renders a percentage with two decimals, e.g. "730.00%".
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(2) + "%"
}

// MaskAmount hides a figure when the user has turned on amount hiding.
func MaskAmount(s string, hide bool) string {
	if hide {
		return "****"
	}
	return s
}
