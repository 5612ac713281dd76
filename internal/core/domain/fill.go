package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is one partial execution of a multi-fill trade.
type Fill struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// FillSummary is the weighted reduction of a fill list.
type FillSummary struct {
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	WeightedAveragePrice decimal.Decimal `json:"weightedAveragePrice"`
	TotalValue           decimal.Decimal `json:"totalValue"`
}

// Defined reports whether the summary carries a usable average price.
func (s FillSummary) Defined() bool {
	return !s.TotalAmount.IsZero()
}

// AggregateFills sums amounts and values and derives the amount weighted average price.
// The average is zero when the total amount is zero.
func AggregateFills(fills []Fill) FillSummary {
	totalAmount := decimal.Zero
	totalValue := decimal.Zero
	for _, f := range fills {
		totalAmount = totalAmount.Add(f.Amount)
		totalValue = totalValue.Add(f.Amount.Mul(f.Price))
	}

	summary := FillSummary{
		TotalAmount:          totalAmount,
		WeightedAveragePrice: decimal.Zero,
		TotalValue:           totalValue,
	}
	if !totalAmount.IsZero() {
		summary.WeightedAveragePrice = totalValue.Div(totalAmount)
	}
	return summary
}
