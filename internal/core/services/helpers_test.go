package services_test

import (
	"fmt"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/shopspring/decimal"
)

var baseDate = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fixedIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func leg(date time.Time, amount, price string) *dto.LegRequest {
	return &dto.LegRequest{
		Date:     date,
		Platform: "binance",
		Pair:     "btc/usdt",
		Amount:   decPtr(amount),
		Price:    decPtr(price),
		Fee:      decPtr("0"),
	}
}

func storedLeg(id string, side domain.TransactionType, date time.Time, amount, price string) domain.Transaction {
	return domain.Transaction{
		ID:       id,
		Date:     date,
		Type:     side,
		Platform: "binance",
		Pair:     "BTC/USDT",
		Amount:   dec(amount),
		Price:    dec(price),
		Fee:      decimal.Zero,
	}
}
