package domain

import (
	"fmt"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
)

// Trade is one form submission: a buy leg, a sell leg or both.
// Legs whose id already exists in the book replace the stored record (edit flow).
type Trade struct {
	Buy  *Transaction
	Sell *Transaction
}

// SaveTrade writes the legs of a trade and re-derives the cross links and the sell leg's
// realized return as if the trade had just been entered. Only an active buy yields pnl and apr. A sell submitted without a buy is
// linked to the buy named by its RelatedTransactionID when that buy is active and unpaired;
// otherwise it is stored standalone without pnl or apr.
func (b *TransactionBook) SaveTrade(trade Trade) ([]Transaction, error) {
	if trade.Buy == nil && trade.Sell == nil {
		return nil, fmt.Errorf("%w: a trade needs a buy or a sell leg", apperrors.ErrValidation)
	}

	buy, err := b.prepareLeg(trade.Buy, Buy)
	if err != nil {
		return nil, err
	}
	sell, err := b.prepareLeg(trade.Sell, Sell)
	if err != nil {
		return nil, err
	}

	var counterpart *Transaction
	switch {
	case buy != nil && sell != nil:
		if buy.ID == sell.ID {
			return nil, fmt.Errorf("%w: buy and sell legs need distinct ids", apperrors.ErrValidation)
		}
		buy.RelatedTransactionID = sell.ID
		sell.RelatedTransactionID = buy.ID
		// a buy sitting in the recycle bin keeps its link but prices nothing
		if !buy.IsDeleted {
			ComputeRealizedReturn(*buy, *sell).Attach(sell)
		}

	case sell != nil:
		linked, err := b.linkableBuy(sell.RelatedTransactionID, sell.ID)
		if err != nil {
			return nil, err
		}
		if linked == nil {
			sell.RelatedTransactionID = ""
			break
		}
		linked.RelatedTransactionID = sell.ID
		ComputeRealizedReturn(*linked, *sell).Attach(sell)
		counterpart = linked

	default:
		if !b.isIntactPartner(buy.RelatedTransactionID, Sell, buy.ID) {
			buy.RelatedTransactionID = ""
		}
	}

	saved := make([]Transaction, 0, 3)
	for _, leg := range []*Transaction{buy, sell, counterpart} {
		if leg == nil {
			continue
		}
		b.Put(*leg)
		saved = append(saved, leg.Clone())
	}
	return saved, nil
}

func (b *TransactionBook) prepareLeg(leg *Transaction, side TransactionType) (*Transaction, error) {
	if leg == nil {
		return nil, nil
	}
	c := leg.Clone()
	if c.ID == "" {
		return nil, fmt.Errorf("%w: %s leg needs an id", apperrors.ErrValidation, side)
	}
	c.Type = side
	c.PnL = nil
	c.APR = nil
	c.IsDeleted = false
	if existing, ok := b.Get(c.ID); ok {
		c.IsDeleted = existing.IsDeleted
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s leg: %w", side, err)
	}
	return &c, nil
}

// linkableBuy returns the active buy a standalone sell may pair with, or nil when there is
// none. A buy already paired with another existing record is rejected.
func (b *TransactionBook) linkableBuy(buyID, sellID string) (*Transaction, error) {
	if buyID == "" {
		return nil, nil
	}
	buy, ok := b.Get(buyID)
	if !ok || buy.IsDeleted || buy.Type != Buy {
		return nil, nil
	}
	if buy.RelatedTransactionID != "" && buy.RelatedTransactionID != sellID {
		if _, exists := b.Get(buy.RelatedTransactionID); exists {
			return nil, fmt.Errorf("%w: buy %s is already paired with %s", apperrors.ErrValidation, buy.ID, buy.RelatedTransactionID)
		}
	}
	return &buy, nil
}

func (b *TransactionBook) isIntactPartner(id string, want TransactionType, backRef string) bool {
	if id == "" {
		return false
	}
	other, ok := b.Get(id)
	return ok && other.Type == want && other.RelatedTransactionID == backRef
}

// BulkFailure names one id a bulk operation could not apply to.
type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports a bulk operation per id.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkSoftDelete soft-deletes each id independently.
func (b *TransactionBook) BulkSoftDelete(ids []string) BulkResult {
	return applyEach(ids, b.SoftDelete)
}

// BulkRestore restores each id independently.
func (b *TransactionBook) BulkRestore(ids []string) BulkResult {
	return applyEach(ids, b.Restore)
}

// BulkHardDelete permanently removes each id independently.
func (b *TransactionBook) BulkHardDelete(ids []string) BulkResult {
	return applyEach(ids, b.HardDelete)
}

func applyEach(ids []string, op func(string) error) BulkResult {
	res := BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	for _, id := range ids {
		if err := op(id); err != nil {
			res.Failed = append(res.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}
