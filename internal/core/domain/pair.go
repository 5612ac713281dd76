package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Pair is a display row: a buy leg and/or a sell leg of one economic position.
type Pair struct {
	ID          string           `json:"id"`
	Date        time.Time        `json:"date"`
	Platform    string           `json:"platform"`
	TradingPair string           `json:"pair"`
	Buy         *Transaction     `json:"buy,omitempty"`
	Sell        *Transaction     `json:"sell,omitempty"`
	PnL         *decimal.Decimal `json:"pnl,omitempty"`
	APR         *decimal.Decimal `json:"apr,omitempty"`
}

// IsClosed reports whether both legs are present.
func (p Pair) IsClosed() bool {
	return p.Buy != nil && p.Sell != nil
}

// BuildPairs reconstructs display rows from a flat record list. Soft-deleted records are
// ignored, rows come out newest first and links to missing or deleted records are treated
// as unmatched.
func BuildPairs(records []Transaction) []Pair {
	active := make([]Transaction, 0, len(records))
	for _, r := range records {
		if !r.IsDeleted {
			active = append(active, r.Clone())
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Date.After(active[j].Date)
	})

	index := make(map[string]int, len(active))
	for i := range active {
		if _, seen := index[active[i].ID]; !seen {
			index[active[i].ID] = i
		}
	}
	processed := make(map[string]bool, len(active))

	partner := func(id string, want TransactionType) *Transaction {
		if id == "" {
			return nil
		}
		i, ok := index[id]
		if !ok || processed[id] || active[i].Type != want {
			return nil
		}
		return &active[i]
	}

	pairs := make([]Pair, 0, len(active))
	for i := range active {
		tx := &active[i]
		if processed[tx.ID] {
			continue
		}
		processed[tx.ID] = true

		p := Pair{
			ID:          tx.ID,
			Date:        tx.Date,
			Platform:    tx.Platform,
			TradingPair: tx.Pair,
		}

		if tx.Type == Sell {
			p.Sell = tx
			p.PnL = copyDecimal(tx.PnL)
			p.APR = copyDecimal(tx.APR)
			if buy := partner(tx.RelatedTransactionID, Buy); buy != nil {
				processed[buy.ID] = true
				p.Buy = buy
				p.Date = buy.Date
				p.Platform = buy.Platform
				p.TradingPair = buy.Pair
			}
		} else {
			p.Buy = tx
			if tx.Type == Buy {
				if sell := partner(tx.RelatedTransactionID, Sell); sell != nil {
					processed[sell.ID] = true
					p.Sell = sell
					p.PnL = copyDecimal(sell.PnL)
					p.APR = copyDecimal(sell.APR)
				}
			}
		}

		pairs = append(pairs, p)
	}
	return pairs
}
