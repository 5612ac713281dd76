package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// Helper functions
func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func stringPtr(s string) *string {
	return &s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

var baseDate = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseDate.AddDate(0, 0, n)
}

func buyLeg(id string, date time.Time, amount, price string) domain.Transaction {
	return domain.Transaction{
		ID:       id,
		Date:     date,
		Type:     domain.Buy,
		Platform: "binance",
		Pair:     "BTC/USDT",
		Amount:   dec(amount),
		Price:    dec(price),
		Fee:      decimal.Zero,
	}
}

func sellLeg(id string, date time.Time, amount, price string) domain.Transaction {
	tx := buyLeg(id, date, amount, price)
	tx.Type = domain.Sell
	return tx
}
