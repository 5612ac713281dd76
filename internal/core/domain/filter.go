package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PairPredicate selects display rows.
type PairPredicate func(Pair) bool

// PnLSign selects rows by the sign of their realized pnl.
type PnLSign string

const (
	PnLAll    PnLSign = "all"
	PnLProfit PnLSign = "profit"
	PnLLoss   PnLSign = "loss"
)

// RangeKind names a time window for filtering.
type RangeKind string

const (
	RangeAll    RangeKind = "all"
	RangeYear   RangeKind = "year"
	RangeMonth  RangeKind = "month"
	RangeWeek   RangeKind = "week"
	RangeCustom RangeKind = "custom"
)

// TimeRange is a filter window. For custom ranges Start and End are calendar days and the
// end day is included; a zero Start or End leaves that side open.
type TimeRange struct {
	Kind  RangeKind
	Start time.Time
	End   time.Time
}

// Bounds resolves the window to a half-open interval [from, to) relative to now.
// A zero bound means unbounded on that side.
func (r TimeRange) Bounds(now time.Time) (from, to time.Time) {
	loc := now.Location()
	y, m, d := now.Date()
	switch r.Kind {
	case RangeYear:
		from = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(1, 0, 0)
	case RangeMonth:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 1, 0)
	case RangeWeek:
		from = time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc)
		to = from.AddDate(0, 0, 7)
	case RangeCustom:
		if !r.Start.IsZero() {
			from = startOfDay(r.Start, loc)
		}
		if !r.End.IsZero() {
			to = startOfDay(r.End, loc).AddDate(0, 0, 1)
		}
	}
	return from, to
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// PairFilter is the set of optional row filters, AND composed.
type PairFilter struct {
	Coin     string
	Platform string
	PnL      PnLSign
	APRMin   *decimal.Decimal
	APRMax   *decimal.Decimal
	Range    TimeRange
}

// Validate rejects unknown enum values.
func (f PairFilter) Validate() error {
	switch f.PnL {
	case "", PnLAll, PnLProfit, PnLLoss:
	default:
		return fmt.Errorf("%w: unknown pnl filter %q", apperrors.ErrValidation, f.PnL)
	}
	switch f.Range.Kind {
	case "", RangeAll, RangeYear, RangeMonth, RangeWeek, RangeCustom:
	default:
		return fmt.Errorf("%w: unknown time range %q", apperrors.ErrValidation, f.Range.Kind)
	}
	return nil
}

// Predicates returns the active predicates of the filter.
func (f PairFilter) Predicates(now time.Time) []PairPredicate {
	var preds []PairPredicate
	if f.Coin != "" {
		preds = append(preds, MatchCoin(f.Coin))
	}
	if f.Platform != "" {
		preds = append(preds, MatchPlatform(f.Platform))
	}
	if f.PnL != "" && f.PnL != PnLAll {
		preds = append(preds, MatchPnLSign(f.PnL))
	}
	if f.APRMin != nil || f.APRMax != nil {
		preds = append(preds, MatchAPRRange(f.APRMin, f.APRMax))
	}
	if f.Range.Kind != "" && f.Range.Kind != RangeAll {
		from, to := f.Range.Bounds(now)
		preds = append(preds, MatchDateWindow(from, to))
	}
	return preds
}

// Apply filters pairs against the filter, keeping their order.
func (f PairFilter) Apply(pairs []Pair, now time.Time) []Pair {
	return FilterPairs(pairs, f.Predicates(now)...)
}

// FilterPairs keeps the pairs matched by every predicate.
func FilterPairs(pairs []Pair, preds ...PairPredicate) []Pair {
	out := make([]Pair, 0, len(pairs))
next:
	for _, p := range pairs {
		for _, pred := range preds {
			if !pred(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}

// MatchCoin is a case-insensitive substring match on the trading pair.
func MatchCoin(coin string) PairPredicate {
	needle := strings.ToUpper(coin)
	return func(p Pair) bool {
		return strings.Contains(strings.ToUpper(p.TradingPair), needle)
	}
}

// MatchPlatform is an exact match on the platform identifier.
func MatchPlatform(platform string) PairPredicate {
	return func(p Pair) bool {
		return p.Platform == platform
	}
}

// MatchPnLSign keeps profitable or losing rows. Rows without pnl never match.
func MatchPnLSign(sign PnLSign) PairPredicate {
	return func(p Pair) bool {
		if p.PnL == nil {
			return false
		}
		switch sign {
		case PnLProfit:
			return p.PnL.IsPositive()
		case PnLLoss:
			return p.PnL.IsNegative()
		}
		return true
	}
}

// MatchAPRRange keeps rows whose apr lies in the inclusive range. Rows without apr never match.
func MatchAPRRange(min, max *decimal.Decimal) PairPredicate {
	return func(p Pair) bool {
		if p.APR == nil {
			return false
		}
		if min != nil && p.APR.LessThan(*min) {
			return false
		}
		if max != nil && p.APR.GreaterThan(*max) {
			return false
		}
		return true
	}
}

// MatchDateWindow keeps rows dated in [from, to). Zero bounds are open.
func MatchDateWindow(from, to time.Time) PairPredicate {
	return func(p Pair) bool {
		if !from.IsZero() && p.Date.Before(from) {
			return false
		}
		if !to.IsZero() && !p.Date.Before(to) {
			return false
		}
		return true
	}
}
