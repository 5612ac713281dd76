package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestLegRequest_ToTransaction(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("plain leg", func(t *testing.T) {
		leg := dto.LegRequest{Date: date, Platform: "binance", Pair: "btc/usdt", Amount: decimalPtr("1"), Price: decimalPtr("100")}
		tx, err := leg.ToTransaction("id1", domain.Buy)
		require.NoError(t, err)
		assert.Equal(t, "id1", tx.ID)
		assert.Equal(t, domain.Buy, tx.Type)
		assert.True(t, tx.Fee.IsZero())
	})

	t.Run("fills stand in for amount and price", func(t *testing.T) {
		leg := dto.LegRequest{
			Date: date, Platform: "binance", Pair: "BTC/USDT",
			Fills: []dto.FillRequest{{Price: decimalPtr("10"), Amount: decimalPtr("1")}},
		}
		tx, err := leg.ToTransaction("id1", domain.Sell)
		require.NoError(t, err)
		require.Len(t, tx.Fills, 1)
	})

	t.Run("missing amount without fills", func(t *testing.T) {
		leg := dto.LegRequest{Date: date, Platform: "binance", Pair: "BTC/USDT", Price: decimalPtr("100")}
		_, err := leg.ToTransaction("id1", domain.Buy)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCreateTradeRequest_Validate(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	leg := &dto.LegRequest{Date: date, Platform: "binance", Pair: "BTC/USDT", Amount: decimalPtr("1"), Price: decimalPtr("1")}

	assert.NoError(t, dto.Validate(dto.CreateTradeRequest{Buy: leg}))
	assert.NoError(t, dto.Validate(dto.CreateTradeRequest{Sell: leg}))
	assert.ErrorIs(t, dto.Validate(dto.CreateTradeRequest{}), apperrors.ErrValidation)
	assert.ErrorIs(t, dto.Validate(dto.CreateTradeRequest{Buy: &dto.LegRequest{Platform: "x", Pair: "y"}}), apperrors.ErrValidation)
}

func TestUpdateTransactionRequest_ToPatch(t *testing.T) {
	typ := "Sell"
	fills := []dto.FillRequest{}
	req := dto.UpdateTransactionRequest{Type: &typ, Fills: &fills}

	patch := req.ToPatch()

	require.NotNil(t, patch.Type)
	assert.Equal(t, domain.Sell, *patch.Type)
	require.NotNil(t, patch.Fills)
	assert.Empty(t, *patch.Fills)
	assert.Nil(t, patch.Amount)

	bad := "Swap"
	assert.ErrorIs(t, dto.Validate(dto.UpdateTransactionRequest{Type: &bad}), apperrors.ErrValidation)
}

func TestPairQuery_ToFilter(t *testing.T) {
	q := dto.PairQuery{Coin: " btc ", PnL: "profit", APRMin: "0", APRMax: "1000", Start: "2024-01-01", End: "2024-01-31"}

	f, err := q.ToFilter(time.UTC)

	require.NoError(t, err)
	assert.Equal(t, "btc", f.Coin)
	assert.Equal(t, domain.PnLProfit, f.PnL)
	assert.True(t, f.APRMin.IsZero())
	assert.Equal(t, "1000", f.APRMax.String())
	assert.Equal(t, domain.RangeCustom, f.Range.Kind)
	assert.Equal(t, 31, f.Range.End.Day())
}

func TestPairQuery_ToFilterErrors(t *testing.T) {
	tests := []struct {
		name string
		q    dto.PairQuery
	}{
		{name: "bad apr", q: dto.PairQuery{APRMin: "ten"}},
		{name: "bad date", q: dto.PairQuery{Start: "soon"}},
		{name: "bad pnl", q: dto.PairQuery{PnL: "even"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.q.ToFilter(time.UTC)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestAggregateFillsRequest_IsLenient(t *testing.T) {
	raw := `{"fills":[{"price":10,"amount":"1"},{"price":"20","amount":1},{"price":"abc","amount":5},{"price":30}]}`
	var req dto.AggregateFillsRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	summary := domain.AggregateFills(req.ToDomainFills())

	assert.Equal(t, "2", summary.TotalAmount.String())
	assert.Equal(t, "15", summary.WeightedAveragePrice.String())
	assert.Equal(t, "30", summary.TotalValue.String())
}

func TestToCexConfigResponse_MasksSecrets(t *testing.T) {
	resp := dto.ToCexConfigResponse(domain.CexConfig{ID: "c1", PlatformID: "binance", APIKey: "abcdefgh", APISecret: "s"})

	assert.Equal(t, "****efgh", resp.APIKeyHint)
	assert.True(t, resp.HasSecret)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abcdefgh")
}
