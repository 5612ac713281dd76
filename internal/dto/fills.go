package dto

import (
	"strings"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DraftFill is a fill as typed into a form. Price and amount may be numbers, numeric
// strings or garbage; anything that does not parse counts as zero.
type DraftFill struct {
	Price  any       `json:"price"`
	Amount any       `json:"amount"`
	Date   time.Time `json:"date"`
}

// AggregateFillsRequest asks for the weighted summary of draft fills.
type AggregateFillsRequest struct {
	Fills []DraftFill `json:"fills"`
}

// ToDomainFills converts draft fills leniently.
func (r AggregateFillsRequest) ToDomainFills() []domain.Fill {
	out := make([]domain.Fill, 0, len(r.Fills))
	for _, f := range r.Fills {
		price, okPrice := lenientDecimal(f.Price)
		amount, okAmount := lenientDecimal(f.Amount)
		if !okPrice || !okAmount {
			price, amount = decimal.Zero, decimal.Zero
		}
		out = append(out, domain.Fill{Price: price, Amount: amount, Date: f.Date})
	}
	return out
}

func lenientDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// FillSummaryResponse is the weighted summary of a fill list.
type FillSummaryResponse struct {
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	WeightedAveragePrice decimal.Decimal `json:"weightedAveragePrice"`
	TotalValue           decimal.Decimal `json:"totalValue"`
	Defined              bool            `json:"defined"`
}

// ToFillSummaryResponse converts a domain.FillSummary.
func ToFillSummaryResponse(s domain.FillSummary) FillSummaryResponse {
	return FillSummaryResponse{
		TotalAmount:          s.TotalAmount,
		WeightedAveragePrice: s.WeightedAveragePrice,
		TotalValue:           s.TotalValue,
		Defined:              s.Defined(),
	}
}
