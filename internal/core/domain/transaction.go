package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType indicates which side of a trade a record represents.
// Values other than Buy and Sell exist in older data and are displayed as buy-side rows.
type TransactionType string

const (
	Buy  TransactionType = "Buy"
	Sell TransactionType = "Sell"
)

// Transaction is one trade leg.
type Transaction struct {
	ID                   string           `json:"id"`
	Date                 time.Time        `json:"date"`
	Type                 TransactionType  `json:"type"`
	Platform             string           `json:"platform"`
	Pair                 string           `json:"pair"`
	Amount               decimal.Decimal  `json:"amount"`
	Price                decimal.Decimal  `json:"price"`
	Fee                  decimal.Decimal  `json:"fee"`
	Fills                []Fill           `json:"fills,omitempty"`
	RelatedTransactionID string           `json:"relatedTransactionId,omitempty"`
	PnL                  *decimal.Decimal `json:"pnl,omitempty"`
	APR                  *decimal.Decimal `json:"apr,omitempty"`
	IsDeleted            bool             `json:"isDeleted,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	Link                 string           `json:"link,omitempty"`
}

// Value is amount * price.
func (t Transaction) Value() decimal.Decimal {
	return t.Amount.Mul(t.Price)
}

// HasFills reports whether the record is a multi-fill trade.
func (t Transaction) HasFills() bool {
	return len(t.Fills) > 0
}

// Clone returns a deep copy so callers never share fills or pnl pointers with the store.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Fills != nil {
		c.Fills = make([]Fill, len(t.Fills))
		copy(c.Fills, t.Fills)
	}
	c.PnL = copyDecimal(t.PnL)
	c.APR = copyDecimal(t.APR)
	return c
}

// Normalize canonicalizes free-form fields and re-derives amount/price from fills.
// Only sells carry pnl and apr; any other type has them cleared.
func (t *Transaction) Normalize() {
	t.Pair = strings.ToUpper(strings.TrimSpace(t.Pair))
	t.Platform = strings.TrimSpace(t.Platform)
	if t.Type != Sell {
		t.PnL = nil
		t.APR = nil
	}
	t.ApplyFills()
}

// ApplyFills overwrites amount and price with the fill aggregate. A fill list that sums to
// zero leaves the existing amount and price untouched.
func (t *Transaction) ApplyFills() {
	if !t.HasFills() {
		return
	}
	summary := AggregateFills(t.Fills)
	if !summary.Defined() {
		return
	}
	t.Amount = summary.TotalAmount
	t.Price = summary.WeightedAveragePrice
}

// Validate checks the field level invariants of a record.
func (t Transaction) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("%w: type is required", apperrors.ErrValidation)
	}
	if t.Pair == "" {
		return fmt.Errorf("%w: pair is required", apperrors.ErrValidation)
	}
	if t.Platform == "" {
		return fmt.Errorf("%w: platform is required", apperrors.ErrValidation)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
	}
	if t.Fee.IsNegative() {
		return fmt.Errorf("%w: fee must not be negative", apperrors.ErrValidation)
	}
	for i, f := range t.Fills {
		if f.Amount.IsNegative() || f.Price.IsNegative() {
			return fmt.Errorf("%w: fill %d must not be negative", apperrors.ErrValidation, i+1)
		}
	}
	return nil
}

// TransactionPatch holds the fields of a partial update. Nil fields are left as they are.
// pnl and apr are not part of a patch; they are only derived when a trade is saved.
type TransactionPatch struct {
	Date     *time.Time
	Type     *TransactionType
	Platform *string
	Pair     *string
	Amount   *decimal.Decimal
	Price    *decimal.Decimal
	Fee      *decimal.Decimal
	Fills    *[]Fill
	Notes    *string
	Link     *string
}

// Apply copies the set fields of p onto t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Platform != nil {
		t.Platform = *p.Platform
	}
	if p.Pair != nil {
		t.Pair = *p.Pair
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Fee != nil {
		t.Fee = *p.Fee
	}
	if p.Fills != nil {
		t.Fills = append([]Fill(nil), (*p.Fills)...)
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Link != nil {
		t.Link = *p.Link
	}
}
