package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PairQuery holds the filter query parameters of the pairs listing.
type PairQuery struct {
	Coin     string `form:"coin"`
	Platform string `form:"platform"`
	PnL      string `form:"pnl" binding:"omitempty,oneof=all profit loss"`
	APRMin   string `form:"aprMin"`
	APRMax   string `form:"aprMax"`
	Range    string `form:"range" binding:"omitempty,oneof=all year month week custom"`
	Start    string `form:"start"`
	End      string `form:"end"`
}

// ToFilter parses the query into a domain filter. Dates without a zone are read in loc.
func (q PairQuery) ToFilter(loc *time.Location) (domain.PairFilter, error) {
	f := domain.PairFilter{
		Coin:     strings.TrimSpace(q.Coin),
		Platform: strings.TrimSpace(q.Platform),
		PnL:      domain.PnLSign(q.PnL),
		Range:    domain.TimeRange{Kind: domain.RangeKind(q.Range)},
	}

	var err error
	if f.APRMin, err = parseOptionalDecimal("aprMin", q.APRMin); err != nil {
		return domain.PairFilter{}, err
	}
	if f.APRMax, err = parseOptionalDecimal("aprMax", q.APRMax); err != nil {
		return domain.PairFilter{}, err
	}
	if q.Start != "" {
		if f.Range.Start, err = domain.ParseDate(q.Start, loc); err != nil {
			return domain.PairFilter{}, err
		}
	}
	if q.End != "" {
		if f.Range.End, err = domain.ParseDate(q.End, loc); err != nil {
			return domain.PairFilter{}, err
		}
	}
	if f.Range.Kind == "" && (q.Start != "" || q.End != "") {
		f.Range.Kind = domain.RangeCustom
	}
	return f, f.Validate()
}

func parseOptionalDecimal(name, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a number: %q", apperrors.ErrValidation, name, raw)
	}
	return &d, nil
}

// PairResponse is the API shape of a display row.
type PairResponse struct {
	ID       string               `json:"id"`
	Date     time.Time            `json:"date"`
	Platform string               `json:"platform"`
	Pair     string               `json:"pair"`
	Buy      *TransactionResponse `json:"buy,omitempty"`
	Sell     *TransactionResponse `json:"sell,omitempty"`
	PnL      *decimal.Decimal     `json:"pnl,omitempty"`
	APR      *decimal.Decimal     `json:"apr,omitempty"`
}

// ToPairResponses converts display rows.
func ToPairResponses(pairs []domain.Pair) []PairResponse {
	out := make([]PairResponse, len(pairs))
	for i, p := range pairs {
		r := PairResponse{
			ID:       p.ID,
			Date:     p.Date,
			Platform: p.Platform,
			Pair:     p.TradingPair,
			PnL:      p.PnL,
			APR:      p.APR,
		}
		if p.Buy != nil {
			b := ToTransactionResponse(p.Buy)
			r.Buy = &b
		}
		if p.Sell != nil {
			s := ToTransactionResponse(p.Sell)
			r.Sell = &s
		}
		out[i] = r
	}
	return out
}
