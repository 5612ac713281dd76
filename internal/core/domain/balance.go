package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind tells a centralized exchange account from an on-chain wallet.
type SourceKind string

const (
	SourceCEX   SourceKind = "cex"
	SourceChain SourceKind = "chain"
)

// SourceKey builds the key a source's balances are stored under.
func SourceKey(kind SourceKind, id string) string {
	return string(kind) + ":" + id
}

// Balance is one asset held at one source, in the canonical shape every exchange and chain
// response is normalized into.
type Balance struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type,omitempty"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// SourceBalance is the last successful snapshot of one exchange account or wallet.
type SourceBalance struct {
	Source     string          `json:"source"`
	Kind       SourceKind      `json:"kind"`
	Label      string          `json:"label,omitempty"`
	Balances   []Balance       `json:"balances"`
	TotalValue decimal.Decimal `json:"totalValue"`
	FetchedAt  time.Time       `json:"fetchedAt"`
}

// SourceFailure records why one source could not be refreshed.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// RefreshReport is the outcome of a balance refresh across all configured sources.
type RefreshReport struct {
	Succeeded []string        `json:"succeeded"`
	Failed    []SourceFailure `json:"failed"`
	StartedAt time.Time       `json:"startedAt"`
	Duration  time.Duration   `json:"duration"`
}

// Holding is the total position in one asset across sources.
type Holding struct {
	Symbol  string          `json:"symbol"`
	Amount  decimal.Decimal `json:"amount"`
	Value   decimal.Decimal `json:"value"`
	Sources []string        `json:"sources"`
}

// PortfolioSummary values every source snapshot plus the manual assets.
type PortfolioSummary struct {
	Holdings   []Holding       `json:"holdings"`
	TotalValue decimal.Decimal `json:"totalValue"`
	AsOf       time.Time       `json:"asOf"`
}

// Summarize merges source snapshots and manual assets into per-asset holdings sorted by value.
// Manual assets are valued with their own price when set, otherwise with prices.
func Summarize(sources map[string]SourceBalance, manual []ManualAsset, prices map[string]decimal.Decimal, now time.Time) PortfolioSummary {
	bySymbol := map[string]*Holding{}
	add := func(symbol string, amount, value decimal.Decimal, source string) {
		symbol = strings.ToUpper(symbol)
		h, ok := bySymbol[symbol]
		if !ok {
			h = &Holding{Symbol: symbol, Amount: decimal.Zero, Value: decimal.Zero}
			bySymbol[symbol] = h
		}
		h.Amount = h.Amount.Add(amount)
		h.Value = h.Value.Add(value)
		for _, s := range h.Sources {
			if s == source {
				return
			}
		}
		h.Sources = append(h.Sources, source)
	}

	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, b := range sources[k].Balances {
			add(b.Symbol, b.Amount, b.Value, k)
		}
	}
	for _, m := range manual {
		price := prices[strings.ToUpper(m.Symbol)]
		if m.Price != nil {
			price = *m.Price
		}
		add(m.Symbol, m.Amount, m.Amount.Mul(price), "manual:"+m.ID)
	}

	summary := PortfolioSummary{Holdings: make([]Holding, 0, len(bySymbol)), TotalValue: decimal.Zero, AsOf: now}
	for _, h := range bySymbol {
		summary.Holdings = append(summary.Holdings, *h)
		summary.TotalValue = summary.TotalValue.Add(h.Value)
	}
	sort.Slice(summary.Holdings, func(i, j int) bool {
		if c := summary.Holdings[i].Value.Cmp(summary.Holdings[j].Value); c != 0 {
			return c > 0
		}
		return summary.Holdings[i].Symbol < summary.Holdings[j].Symbol
	})
	return summary
}
