package domain_test

import (
	"testing"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveTrade_BuyAndSellAreLinked(t *testing.T) {
	book := domain.NewTransactionBook(nil)
	buy := buyLeg("b1", day(0), "1", "100")
	sell := sellLeg("s1", day(10), "1", "120")
	buy.PnL = decimalPtr(dec("999"))

	saved, err := book.SaveTrade(domain.Trade{Buy: &buy, Sell: &sell})

	require.NoError(t, err)
	require.Len(t, saved, 2)
	gotBuy, _ := book.Get("b1")
	gotSell, _ := book.Get("s1")
	assert.Equal(t, "s1", gotBuy.RelatedTransactionID)
	assert.Equal(t, "b1", gotSell.RelatedTransactionID)
	assert.Nil(t, gotBuy.PnL)
	assert.Nil(t, gotBuy.APR)
	require.NotNil(t, gotSell.PnL)
	assertDecimal(t, "20", *gotSell.PnL)
	assertDecimal(t, "730", *gotSell.APR)
}

func TestSaveTrade_ForcesLegTypes(t *testing.T) {
	book := domain.NewTransactionBook(nil)
	buy := sellLeg("b1", day(0), "1", "100")

	_, err := book.SaveTrade(domain.Trade{Buy: &buy})

	require.NoError(t, err)
	got, _ := book.Get("b1")
	assert.Equal(t, domain.Buy, got.Type)
}

func TestSaveTrade_SellAgainstExistingBuy(t *testing.T) {
	book := domain.NewTransactionBook(nil)
	require.NoError(t, book.Insert(buyLeg("b1", day(0), "2", "100")))
	sell := sellLeg("s1", day(10), "1", "120")
	sell.RelatedTransactionID = "b1"

	saved, err := book.SaveTrade(domain.Trade{Sell: &sell})

	require.NoError(t, err)
	assert.Len(t, saved, 2)
	gotBuy, _ := book.Get("b1")
	gotSell, _ := book.Get("s1")
	assert.Equal(t, "s1", gotBuy.RelatedTransactionID)
	assertDecimal(t, "20", *gotSell.PnL)
}

func TestSaveTrade_StandaloneSellHasNoPnL(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, book *domain.TransactionBook)
		related string
	}{
		{name: "no related id"},
		{name: "related id does not exist", related: "ghost"},
		{
			name:    "related buy is soft-deleted",
			related: "b1",
			setup: func(t *testing.T, book *domain.TransactionBook) {
				require.NoError(t, book.Insert(buyLeg("b1", day(0), "1", "100")))
				require.NoError(t, book.SoftDelete("b1"))
			},
		},
		{
			name:    "related record is a sell",
			related: "s0",
			setup: func(t *testing.T, book *domain.TransactionBook) {
				require.NoError(t, book.Insert(sellLeg("s0", day(0), "1", "100")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := domain.NewTransactionBook(nil)
			if tt.setup != nil {
				tt.setup(t, book)
			}
			sell := sellLeg("s1", day(10), "1", "120")
			sell.RelatedTransactionID = tt.related
			sell.PnL = decimalPtr(dec("1"))

			saved, err := book.SaveTrade(domain.Trade{Sell: &sell})

			require.NoError(t, err)
			require.Len(t, saved, 1)
			got, _ := book.Get("s1")
			assert.Empty(t, got.RelatedTransactionID)
			assert.Nil(t, got.PnL)
			assert.Nil(t, got.APR)
		})
	}
}

func TestSaveTrade_RejectsBuyPairedElsewhere(t *testing.T) {
	book := domain.NewTransactionBook(nil)
	buy := buyLeg("b1", day(0), "1", "100")
	first := sellLeg("s1", day(5), "1", "110")
	_, err := book.SaveTrade(domain.Trade{Buy: &buy, Sell: &first})
	require.NoError(t, err)

	second := sellLeg("s2", day(6), "1", "130")
	second.RelatedTransactionID = "b1"
	_, err = book.SaveTrade(domain.Trade{Sell: &second})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, ok := book.Get("s2")
	assert.False(t, ok)
}

func TestSaveTrade_EditRecomputesPnLInPlace(t *testing.T) {
	book := domain.NewTransactionBook(nil)
	require.NoError(t, book.Insert(buyLeg("b0", day(-1), "1", "1")))
	buy := buyLeg("b1", day(0), "1", "100")
	sell := sellLeg("s1", day(10), "1", "120")
	_, err := book.SaveTrade(domain.Trade{Buy: &buy, Sell: &sell})
	require.NoError(t, err)

	edited := sellLeg("s1", day(10), "1", "150")
	_, err = book.SaveTrade(domain.Trade{Buy: &buy, Sell: &edited})
	require.NoError(t, err)

	assert.Equal(t, 3, book.Len())
	got, _ := book.Get("s1")
	assertDecimal(t, "50", *got.PnL)
	assertDecimal(t, "1825", *got.APR)
	assert.Equal(t, "b0", book.All()[0].ID)
}

func TestSaveTrade_EditAgainstDeletedBuyHasNoPnL(t *testing.T) {
	book := domain.NewTransactionBook(nil)
	buy := buyLeg("b1", day(0), "1", "100")
	sell := sellLeg("s1", day(10), "1", "120")
	_, err := book.SaveTrade(domain.Trade{Buy: &buy, Sell: &sell})
	require.NoError(t, err)
	require.NoError(t, book.SoftDelete("b1"))

	edited := sellLeg("s1", day(10), "1", "150")
	_, err = book.SaveTrade(domain.Trade{Buy: &buy, Sell: &edited})
	require.NoError(t, err)

	gotBuy, _ := book.Get("b1")
	gotSell, _ := book.Get("s1")
	assert.True(t, gotBuy.IsDeleted)
	assert.Equal(t, "b1", gotSell.RelatedTransactionID)
	assert.Nil(t, gotSell.PnL)
	assert.Nil(t, gotSell.APR)
	assertDecimal(t, "150", gotSell.Price)
}

func TestSaveTrade_BuyOnlyEditKeepsIntactLink(t *testing.T) {
	book := domain.NewTransactionBook(nil)
	buy := buyLeg("b1", day(0), "1", "100")
	sell := sellLeg("s1", day(10), "1", "120")
	_, err := book.SaveTrade(domain.Trade{Buy: &buy, Sell: &sell})
	require.NoError(t, err)

	edited := buyLeg("b1", day(0), "1", "80")
	edited.RelatedTransactionID = "s1"
	_, err = book.SaveTrade(domain.Trade{Buy: &edited})
	require.NoError(t, err)

	gotBuy, _ := book.Get("b1")
	gotSell, _ := book.Get("s1")
	assert.Equal(t, "s1", gotBuy.RelatedTransactionID)
	assertDecimal(t, "20", *gotSell.PnL)
}

func TestSaveTrade_Validation(t *testing.T) {
	book := domain.NewTransactionBook(nil)

	_, err := book.SaveTrade(domain.Trade{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	buy := buyLeg("x", day(0), "1", "1")
	sell := sellLeg("x", day(1), "1", "1")
	_, err = book.SaveTrade(domain.Trade{Buy: &buy, Sell: &sell})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	bad := sellLeg("s", day(1), "-1", "1")
	_, err = book.SaveTrade(domain.Trade{Buy: &buy, Sell: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, book.Len())
}
