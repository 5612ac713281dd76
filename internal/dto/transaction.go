package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FillRequest is one partial execution in a create or update request.
type FillRequest struct {
	Price  *decimal.Decimal `json:"price" binding:"required"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Date   time.Time        `json:"date"`
}

// LegRequest is one side of a trade submission. Amount and price may be omitted when fills are given.
type LegRequest struct {
	Date     time.Time        `json:"date" binding:"required"`
	Platform string           `json:"platform" binding:"required"`
	Pair     string           `json:"pair" binding:"required"`
	Amount   *decimal.Decimal `json:"amount"`
	Price    *decimal.Decimal `json:"price"`
	Fee      *decimal.Decimal `json:"fee"`
	Fills    []FillRequest    `json:"fills" binding:"omitempty,dive"`
	Notes    string           `json:"notes"`
	Link     string           `json:"link"`
}

// CreateTradeRequest creates (or, for PUT, replaces) a buy leg, a sell leg or both.
// ExistingBuyID pairs a sell-only submission with a buy that is already stored.
type CreateTradeRequest struct {
	Buy           *LegRequest `json:"buy" binding:"required_without=Sell"`
	Sell          *LegRequest `json:"sell" binding:"required_without=Buy"`
	ExistingBuyID string      `json:"existingBuyId"`
}

// ToTransaction converts the leg into a record with the given id and side.
func (r LegRequest) ToTransaction(id string, side domain.TransactionType) (domain.Transaction, error) {
	if len(r.Fills) == 0 && (r.Amount == nil || r.Price == nil) {
		return domain.Transaction{}, fmt.Errorf("%w: %s leg needs amount and price or a list of fills", apperrors.ErrValidation, side)
	}
	tx := domain.Transaction{
		ID:       id,
		Date:     r.Date,
		Type:     side,
		Platform: r.Platform,
		Pair:     r.Pair,
		Amount:   decimal.Zero,
		Price:    decimal.Zero,
		Fee:      decimal.Zero,
		Fills:    ToDomainFills(r.Fills),
		Notes:    r.Notes,
		Link:     r.Link,
	}
	if r.Amount != nil {
		tx.Amount = *r.Amount
	}
	if r.Price != nil {
		tx.Price = *r.Price
	}
	if r.Fee != nil {
		tx.Fee = *r.Fee
	}
	return tx, nil
}

// ToDomainFills converts request fills. Fills without a date inherit nothing; the zero time is kept.
func ToDomainFills(fills []FillRequest) []domain.Fill {
	if len(fills) == 0 {
		return nil
	}
	out := make([]domain.Fill, 0, len(fills))
	for _, f := range fills {
		fill := domain.Fill{Price: decimal.Zero, Amount: decimal.Zero, Date: f.Date}
		if f.Price != nil {
			fill.Price = *f.Price
		}
		if f.Amount != nil {
			fill.Amount = *f.Amount
		}
		out = append(out, fill)
	}
	return out
}

// UpdateTransactionRequest is a partial update. Omitted fields are left unchanged.
type UpdateTransactionRequest struct {
	Date     *time.Time       `json:"date"`
	Type     *string          `json:"type" binding:"omitempty,oneof=Buy Sell"`
	Platform *string          `json:"platform" binding:"omitempty,min=1"`
	Pair     *string          `json:"pair" binding:"omitempty,min=1"`
	Amount   *decimal.Decimal `json:"amount"`
	Price    *decimal.Decimal `json:"price"`
	Fee      *decimal.Decimal `json:"fee"`
	Fills    *[]FillRequest   `json:"fills" binding:"omitempty,dive"`
	Notes    *string          `json:"notes"`
	Link     *string          `json:"link"`
}

// ToPatch converts the request into a domain patch.
func (r UpdateTransactionRequest) ToPatch() domain.TransactionPatch {
	patch := domain.TransactionPatch{
		Date:     r.Date,
		Platform: r.Platform,
		Pair:     r.Pair,
		Amount:   r.Amount,
		Price:    r.Price,
		Fee:      r.Fee,
		Notes:    r.Notes,
		Link:     r.Link,
	}
	if r.Type != nil {
		t := domain.TransactionType(*r.Type)
		patch.Type = &t
	}
	if r.Fills != nil {
		fills := ToDomainFills(*r.Fills)
		if fills == nil {
			fills = []domain.Fill{}
		}
		patch.Fills = &fills
	}
	return patch
}

// ListTransactionsParams holds the query parameters for listing records.
type ListTransactionsParams struct {
	IncludeDeleted bool   `form:"includeDeleted"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken      string `form:"nextToken"`
}

// BulkRequest names the ids of a bulk lifecycle operation.
type BulkRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

// FillResponse mirrors domain.Fill.
type FillResponse struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// TransactionResponse is the API shape of a trade leg.
type TransactionResponse struct {
	ID                   string           `json:"id"`
	Date                 time.Time        `json:"date"`
	Type                 string           `json:"type"`
	Platform             string           `json:"platform"`
	Pair                 string           `json:"pair"`
	Amount               decimal.Decimal  `json:"amount"`
	Price                decimal.Decimal  `json:"price"`
	Fee                  decimal.Decimal  `json:"fee"`
	Value                decimal.Decimal  `json:"value"`
	Fills                []FillResponse   `json:"fills,omitempty"`
	RelatedTransactionID string           `json:"relatedTransactionId,omitempty"`
	PnL                  *decimal.Decimal `json:"pnl,omitempty"`
	APR                  *decimal.Decimal `json:"apr,omitempty"`
	IsDeleted            bool             `json:"isDeleted"`
	Notes                string           `json:"notes,omitempty"`
	Link                 string           `json:"link,omitempty"`
}

// ListTransactionsResponse is one page of records.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to a TransactionResponse.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                   t.ID,
		Date:                 t.Date,
		Type:                 string(t.Type),
		Platform:             t.Platform,
		Pair:                 t.Pair,
		Amount:               t.Amount,
		Price:                t.Price,
		Fee:                  t.Fee,
		Value:                t.Value(),
		RelatedTransactionID: t.RelatedTransactionID,
		PnL:                  t.PnL,
		APR:                  t.APR,
		IsDeleted:            t.IsDeleted,
		Notes:                t.Notes,
		Link:                 t.Link,
	}
	for _, f := range t.Fills {
		resp.Fills = append(resp.Fills, FillResponse(f))
	}
	return resp
}

// ToTransactionResponses converts a slice of records.
func ToTransactionResponses(txs []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out
}

// BulkResponse reports a bulk operation per id.
type BulkResponse struct {
	Succeeded []string             `json:"succeeded"`
	Failed    []domain.BulkFailure `json:"failed"`
}

// ToBulkResponse converts a domain.BulkResult.
func ToBulkResponse(r domain.BulkResult) BulkResponse {
	return BulkResponse{Succeeded: r.Succeeded, Failed: r.Failed}
}

// ImportResponse reports a CSV import.
type ImportResponse struct {
	Imported int `json:"imported"`
}
