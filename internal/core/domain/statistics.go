package domain

import "github.com/shopspring/decimal"

// Statistics are aggregates over the active records. They are derived on every query.
type Statistics struct {
	BuyVolume    decimal.Decimal `json:"buyVolume"`
	SellVolume   decimal.Decimal `json:"sellVolume"`
	TotalFees    decimal.Decimal `json:"totalFees"`
	TotalPnL     decimal.Decimal `json:"totalPnL"`
	ActiveCount  int             `json:"activeCount"`
	DeletedCount int             `json:"deletedCount"`
}

// ComputeStatistics sums buy and sell volume, fees and defined pnl over active records.
func ComputeStatistics(records []Transaction) Statistics {
	stats := Statistics{
		BuyVolume:  decimal.Zero,
		SellVolume: decimal.Zero,
		TotalFees:  decimal.Zero,
		TotalPnL:   decimal.Zero,
	}
	for _, r := range records {
		if r.IsDeleted {
			stats.DeletedCount++
			continue
		}
		stats.ActiveCount++
		switch r.Type {
		case Buy:
			stats.BuyVolume = stats.BuyVolume.Add(r.Value())
		case Sell:
			stats.SellVolume = stats.SellVolume.Add(r.Value())
		}
		stats.TotalFees = stats.TotalFees.Add(r.Fee)
		if r.PnL != nil {
			stats.TotalPnL = stats.TotalPnL.Add(*r.PnL)
		}
	}
	return stats
}
