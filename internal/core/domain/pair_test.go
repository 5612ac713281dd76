package domain_test

import (
	"testing"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkedTrade(buyID, sellID string) (domain.Transaction, domain.Transaction) {
	buy := buyLeg(buyID, day(0), "1", "100")
	sell := sellLeg(sellID, day(10), "1", "120")
	sell.Platform = "kraken"
	sell.Pair = "BTC/USD"
	buy.RelatedTransactionID = sellID
	sell.RelatedTransactionID = buyID
	domain.ComputeRealizedReturn(buy, sell).Attach(&sell)
	return buy, sell
}

func pairIDs(pairs []domain.Pair) []string {
	ids := make([]string, len(pairs))
	for i, p := range pairs {
		ids[i] = p.ID
	}
	return ids
}

func TestBuildPairs_LinkedTrade(t *testing.T) {
	buy, sell := linkedTrade("b1", "s1")

	pairs := domain.BuildPairs([]domain.Transaction{buy, sell})

	require.Len(t, pairs, 1)
	p := pairs[0]
	require.NotNil(t, p.Buy)
	require.NotNil(t, p.Sell)
	assert.True(t, p.IsClosed())
	assert.Equal(t, "s1", p.ID)
	assert.Equal(t, buy.Date, p.Date)
	assert.Equal(t, "binance", p.Platform)
	assert.Equal(t, "BTC/USDT", p.TradingPair)
	require.NotNil(t, p.PnL)
	require.NotNil(t, p.APR)
	assertDecimal(t, "20", *p.PnL)
	assertDecimal(t, "730", *p.APR)
}

func TestBuildPairs_BuyAnchorAttachesSell(t *testing.T) {
	buy, sell := linkedTrade("b1", "s1")
	// a sell dated before its buy puts the buy first in date order
	sell.Date = day(-1)

	pairs := domain.BuildPairs([]domain.Transaction{sell, buy})

	require.Len(t, pairs, 1)
	assert.Equal(t, "b1", pairs[0].ID)
	require.NotNil(t, pairs[0].Sell)
	assert.Equal(t, "s1", pairs[0].Sell.ID)
	assertDecimal(t, "20", *pairs[0].PnL)
}

func TestBuildPairs_OrdersNewestFirst(t *testing.T) {
	records := []domain.Transaction{
		buyLeg("old", day(0), "1", "1"),
		buyLeg("new", day(20), "1", "1"),
		buyLeg("mid", day(10), "1", "1"),
	}

	pairs := domain.BuildPairs(records)

	assert.Equal(t, []string{"new", "mid", "old"}, pairIDs(pairs))
	for _, p := range pairs {
		assert.Nil(t, p.Sell)
		assert.Nil(t, p.PnL)
	}
}

func TestBuildPairs_IgnoresSoftDeleted(t *testing.T) {
	buy, sell := linkedTrade("b1", "s1")
	sell.IsDeleted = true

	pairs := domain.BuildPairs([]domain.Transaction{buy, sell})

	require.Len(t, pairs, 1)
	assert.Equal(t, "b1", pairs[0].ID)
	assert.Nil(t, pairs[0].Sell)
	assert.Nil(t, pairs[0].PnL)
}

func TestBuildPairs_SellWithDeletedBuyKeepsOwnPnL(t *testing.T) {
	buy, sell := linkedTrade("b1", "s1")
	buy.IsDeleted = true

	pairs := domain.BuildPairs([]domain.Transaction{buy, sell})

	require.Len(t, pairs, 1)
	p := pairs[0]
	assert.Nil(t, p.Buy)
	assert.Equal(t, "kraken", p.Platform)
	assert.Equal(t, "BTC/USD", p.TradingPair)
	require.NotNil(t, p.PnL)
	assertDecimal(t, "20", *p.PnL)
}

func TestBuildPairs_OrphanedLinkIsTolerated(t *testing.T) {
	_, sell := linkedTrade("gone", "s1")

	assert.NotPanics(t, func() {
		pairs := domain.BuildPairs([]domain.Transaction{sell})
		require.Len(t, pairs, 1)
		assert.Nil(t, pairs[0].Buy)
		assertDecimal(t, "20", *pairs[0].PnL)
	})
}

func TestBuildPairs_LegacyTypeIsBuySideRow(t *testing.T) {
	legacy := buyLeg("x1", day(0), "3", "1")
	legacy.Type = "Transfer"
	legacy.RelatedTransactionID = "s1"
	_, sell := linkedTrade("x1", "s1")

	pairs := domain.BuildPairs([]domain.Transaction{legacy, sell})

	require.Len(t, pairs, 2)
	assert.Equal(t, "s1", pairs[0].ID)
	assert.Nil(t, pairs[0].Buy)
	assert.Equal(t, "x1", pairs[1].ID)
	assert.Equal(t, domain.TransactionType("Transfer"), pairs[1].Buy.Type)
	assert.Nil(t, pairs[1].Sell)
}

func TestBuildPairs_SellAlreadyConsumedIsNotReused(t *testing.T) {
	buy, sell := linkedTrade("b1", "s1")
	other := buyLeg("b2", day(-5), "1", "90")
	other.RelatedTransactionID = "s1"

	pairs := domain.BuildPairs([]domain.Transaction{buy, sell, other})

	require.Len(t, pairs, 2)
	assert.Equal(t, "s1", pairs[0].ID)
	assert.Equal(t, "b2", pairs[1].ID)
	assert.Nil(t, pairs[1].Sell)
}

func TestBuildPairs_DoesNotAliasInput(t *testing.T) {
	buy, sell := linkedTrade("b1", "s1")
	records := []domain.Transaction{buy, sell}

	pairs := domain.BuildPairs(records)
	*pairs[0].PnL = dec("0")
	pairs[0].Buy.Amount = dec("42")

	assertDecimal(t, "20", *records[1].PnL)
	assertDecimal(t, "1", records[0].Amount)
}
