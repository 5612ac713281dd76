package domain_test

import (
	"testing"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededBook(t *testing.T) *domain.TransactionBook {
	t.Helper()
	book := domain.NewTransactionBook(nil)
	buy, sell := linkedTrade("b1", "s1")
	require.NoError(t, book.Insert(
		buyLeg("b0", day(-30), "2", "50"),
		buy,
		sell,
		buyLeg("b2", day(30), "1", "10"),
	))
	return book
}

func TestNewTransactionBook_DropsDuplicateIDs(t *testing.T) {
	book := domain.NewTransactionBook([]domain.Transaction{
		buyLeg("a", day(0), "1", "1"),
		buyLeg("a", day(1), "2", "2"),
		buyLeg("", day(1), "2", "2"),
	})

	assert.Equal(t, 1, book.Len())
	got, ok := book.Get("a")
	require.True(t, ok)
	assertDecimal(t, "1", got.Amount)
}

func TestTransactionBook_InsertIsAllOrNothing(t *testing.T) {
	book := seededBook(t)

	err := book.Insert(buyLeg("new", day(1), "1", "1"), buyLeg("b1", day(1), "1", "1"))

	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	_, ok := book.Get("new")
	assert.False(t, ok)
	assert.Equal(t, 4, book.Len())
}

func TestTransactionBook_SoftDeleteAndRestore(t *testing.T) {
	book := seededBook(t)
	before := pairIDs(book.Pairs())

	require.NoError(t, book.SoftDelete("b2"))
	got, _ := book.Get("b2")
	assert.True(t, got.IsDeleted)
	assert.NotContains(t, pairIDs(book.Pairs()), "b2")
	assert.Len(t, book.Deleted(), 1)
	assert.Len(t, book.Active(), 3)

	require.NoError(t, book.Restore("b2"))
	got, _ = book.Get("b2")
	assert.False(t, got.IsDeleted)
	assert.Equal(t, before, pairIDs(book.Pairs()))
}

func TestTransactionBook_SoftDeleteDoesNotCascade(t *testing.T) {
	book := seededBook(t)

	require.NoError(t, book.SoftDelete("b1"))

	sell, ok := book.Get("s1")
	require.True(t, ok)
	assert.False(t, sell.IsDeleted)
	assert.Equal(t, "b1", sell.RelatedTransactionID)
}

func TestTransactionBook_HardDeleteLeavesSellStandalone(t *testing.T) {
	book := seededBook(t)
	require.NoError(t, book.SoftDelete("b1"))

	require.NoError(t, book.HardDelete("b1"))

	_, ok := book.Get("b1")
	assert.False(t, ok)
	assert.Equal(t, 3, book.Len())
	var sellRow *domain.Pair
	pairs := book.Pairs()
	for i := range pairs {
		if pairs[i].ID == "s1" {
			sellRow = &pairs[i]
		}
	}
	require.NotNil(t, sellRow)
	assert.Nil(t, sellRow.Buy)
	require.NotNil(t, sellRow.PnL)
	assertDecimal(t, "20", *sellRow.PnL)

	// index stays consistent after removal
	b2, ok := book.Get("b2")
	require.True(t, ok)
	assert.Equal(t, "b2", b2.ID)
}

func TestTransactionBook_MissingIDs(t *testing.T) {
	book := seededBook(t)

	assert.ErrorIs(t, book.SoftDelete("nope"), apperrors.ErrNotFound)
	assert.ErrorIs(t, book.Restore("nope"), apperrors.ErrNotFound)
	assert.ErrorIs(t, book.HardDelete("nope"), apperrors.ErrNotFound)
	_, err := book.Update("nope", domain.TransactionPatch{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTransactionBook_UpdateKeepsFrozenPnL(t *testing.T) {
	book := seededBook(t)

	updated, err := book.Update("b1", domain.TransactionPatch{Price: decimalPtr(dec("110"))})
	require.NoError(t, err)
	assertDecimal(t, "110", updated.Price)

	sell, _ := book.Get("s1")
	assertDecimal(t, "20", *sell.PnL)
	assertDecimal(t, "730", *sell.APR)
}

func TestTransactionBook_UpdateToBuyDropsPnL(t *testing.T) {
	book := seededBook(t)
	buyType := domain.Buy

	updated, err := book.Update("s1", domain.TransactionPatch{Type: &buyType})
	require.NoError(t, err)

	assert.Equal(t, domain.Buy, updated.Type)
	assert.Nil(t, updated.PnL)
	assert.Nil(t, updated.APR)
	stored, _ := book.Get("s1")
	assert.Nil(t, stored.PnL)
	assert.True(t, book.Statistics().TotalPnL.IsZero())
}

func TestTransactionBook_UpdateRejectsInvalid(t *testing.T) {
	book := seededBook(t)

	_, err := book.Update("b1", domain.TransactionPatch{Amount: decimalPtr(dec("-1"))})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	got, _ := book.Get("b1")
	assertDecimal(t, "1", got.Amount)
}

func TestTransactionBook_UpdateFillsRederiveAmount(t *testing.T) {
	book := seededBook(t)
	fills := []domain.Fill{
		{Price: dec("10"), Amount: dec("1"), Date: day(0)},
		{Price: dec("20"), Amount: dec("1"), Date: day(0)},
	}

	updated, err := book.Update("b2", domain.TransactionPatch{Fills: &fills, Amount: decimalPtr(dec("100"))})

	require.NoError(t, err)
	assertDecimal(t, "2", updated.Amount)
	assertDecimal(t, "15", updated.Price)
}

func TestTransactionBook_BulkSoftDeleteIsolatesFailures(t *testing.T) {
	book := seededBook(t)
	require.NoError(t, book.Insert(buyLeg("b3", day(40), "1", "1")))

	res := book.BulkSoftDelete([]string{"b0", "b1", "missing", "b2", "b3"})

	assert.Equal(t, []string{"b0", "b1", "b2", "b3"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "missing", res.Failed[0].ID)
	for _, id := range res.Succeeded {
		got, _ := book.Get(id)
		assert.True(t, got.IsDeleted, id)
	}
}

func TestTransactionBook_BulkRestoreAndPurge(t *testing.T) {
	book := seededBook(t)
	book.BulkSoftDelete([]string{"b0", "b2"})

	restored := book.BulkRestore([]string{"b0"})
	purged := book.BulkHardDelete([]string{"b2", "b2"})

	assert.Equal(t, []string{"b0"}, restored.Succeeded)
	assert.Equal(t, []string{"b2"}, purged.Succeeded)
	require.Len(t, purged.Failed, 1)
	assert.Equal(t, 3, book.Len())
}

func TestTransactionBook_Statistics(t *testing.T) {
	book := seededBook(t)
	require.NoError(t, book.Insert(func() domain.Transaction {
		tx := sellLeg("s-orphan", day(50), "1", "10")
		tx.Fee = dec("0.25")
		tx.IsDeleted = true
		return tx
	}()))
	_, err := book.Update("b0", domain.TransactionPatch{Fee: decimalPtr(dec("1.5"))})
	require.NoError(t, err)

	stats := book.Statistics()

	// b0 2*50 + b1 1*100 + b2 1*10
	assertDecimal(t, "210", stats.BuyVolume)
	assertDecimal(t, "120", stats.SellVolume)
	assertDecimal(t, "1.5", stats.TotalFees)
	assertDecimal(t, "20", stats.TotalPnL)
	assert.Equal(t, 4, stats.ActiveCount)
	assert.Equal(t, 1, stats.DeletedCount)
}
