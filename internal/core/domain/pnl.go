package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	daysPerYear = decimal.NewFromInt(365)
	hundred     = decimal.NewFromInt(100)
	nanosPerDay = decimal.NewFromInt(int64(24 * time.Hour))
)

// RealizedReturn is the pnl and annualized return of one closed round trip.
type RealizedReturn struct {
	PnL decimal.Decimal
	APR decimal.Decimal
}

// ComputeRealizedReturn values the sell leg's own amount at the buy leg's price as cost basis.
//
//	pnl  = sellAmount*sellPrice - sellAmount*buyPrice
//	apr  = (pnl/cost) * (365/days) * 100, or 0 when days <= 0 or cost <= 0
func ComputeRealizedReturn(buy, sell Transaction) RealizedReturn {
	revenue := sell.Amount.Mul(sell.Price)
	cost := sell.Amount.Mul(buy.Price)
	pnl := revenue.Sub(cost)

	days := HoldingDays(buy.Date, sell.Date)
	apr := decimal.Zero
	if days.IsPositive() && cost.IsPositive() {
		apr = pnl.Div(cost).Mul(daysPerYear).Div(days).Mul(hundred)
	}

	return RealizedReturn{PnL: pnl, APR: apr}
}

// HoldingDays returns the fractional number of days between two instants.
func HoldingDays(from, to time.Time) decimal.Decimal {
	return decimal.NewFromInt(int64(to.Sub(from))).Div(nanosPerDay)
}

// Attach stores r on the sell leg.
func (r RealizedReturn) Attach(sell *Transaction) {
	pnl, apr := r.PnL, r.APR
	sell.PnL = &pnl
	sell.APR = &apr
}
