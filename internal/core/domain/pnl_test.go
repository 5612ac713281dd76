package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRealizedReturn(t *testing.T) {
	tests := []struct {
		name    string
		buy     domain.Transaction
		sell    domain.Transaction
		wantPnL string
		wantAPR string
	}{
		{
			name:    "profit over ten days",
			buy:     buyLeg("b", day(0), "1", "100"),
			sell:    sellLeg("s", day(10), "1", "120"),
			wantPnL: "20",
			wantAPR: "730",
		},
		{
			name:    "same day sale yields zero apr",
			buy:     buyLeg("b", day(0), "1", "100"),
			sell:    sellLeg("s", day(0), "1", "120"),
			wantPnL: "20",
			wantAPR: "0",
		},
		{
			name:    "sell dated before buy yields zero apr",
			buy:     buyLeg("b", day(5), "1", "100"),
			sell:    sellLeg("s", day(0), "1", "90"),
			wantPnL: "-10",
			wantAPR: "0",
		},
		{
			name:    "free buy has no cost basis",
			buy:     buyLeg("b", day(0), "1", "0"),
			sell:    sellLeg("s", day(30), "1", "10"),
			wantPnL: "10",
			wantAPR: "0",
		},
		{
			name:    "partial close uses the sell amount for both terms",
			buy:     buyLeg("b", day(0), "4", "50"),
			sell:    sellLeg("s", day(365), "1", "40"),
			wantPnL: "-10",
			wantAPR: "-20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ComputeRealizedReturn(tt.buy, tt.sell)
			assertDecimal(t, tt.wantPnL, got.PnL)
			assertDecimal(t, tt.wantAPR, got.APR)
		})
	}
}

func TestHoldingDays_Fractional(t *testing.T) {
	from := day(0)
	assertDecimal(t, "1.5", domain.HoldingDays(from, from.Add(36*time.Hour)))
}

func TestRealizedReturn_Attach(t *testing.T) {
	sell := sellLeg("s", day(10), "1", "120")
	domain.ComputeRealizedReturn(buyLeg("b", day(0), "1", "100"), sell).Attach(&sell)

	require.NotNil(t, sell.PnL)
	require.NotNil(t, sell.APR)
	assertDecimal(t, "20", *sell.PnL)
	assertDecimal(t, "730", *sell.APR)
	assert.False(t, sell.PnL == sell.APR)
}
