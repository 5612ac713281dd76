package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newFeed(t *testing.T, handler http.HandlerFunc, opts ...Option) *CoinGecko {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithTimeout(2 * time.Second), WithLimiter(rate.NewLimiter(rate.Inf, 1))}, opts...)
	return NewCoinGecko(srv.URL+"/", opts...)
}

func TestFetchUSDPrices(t *testing.T) {
	var query string
	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, simplePricePath, r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		query = r.URL.Query().Get("ids")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":64123.45},"ethereum":{"usd":3050.1},"kaspa":{"usd":0.00012}}`))
	})

	prices, err := feed.FetchUSDPrices(context.Background(), []string{"btc", "ETH", "kaspa", "NOPE", " "})
	require.NoError(t, err)

	assert.Equal(t, "bitcoin,ethereum,kaspa,nope", query)
	require.Len(t, prices, 3)
	assert.True(t, decimal.RequireFromString("64123.45").Equal(prices["BTC"]))
	assert.True(t, decimal.RequireFromString("3050.1").Equal(prices["ETH"]))
	assert.True(t, decimal.RequireFromString("0.00012").Equal(prices["KASPA"]))
	_, ok := prices["NOPE"]
	assert.False(t, ok)
}

func TestFetchUSDPrices_CustomIDs(t *testing.T) {
	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "my-token", r.URL.Query().Get("ids"))
		_, _ = w.Write([]byte(`{"my-token":{"usd":"2.5"}}`))
	}, WithCoinIDs(map[string]string{"mtk": "my-token"}))

	assert.Equal(t, "my-token", feed.CoinID("MTK"))
	prices, err := feed.FetchUSDPrices(context.Background(), []string{"MTK"})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.5").Equal(prices["MTK"]))
}

func TestFetchUSDPrices_Empty(t *testing.T) {
	called := false
	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	prices, err := feed.FetchUSDPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
	assert.False(t, called)
}

func TestFetchUSDPrices_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"status":{"error_code":429}}`},
		{"malformed", http.StatusOK, `{"bitcoin":`},
		{"not an object", http.StatusOK, `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := feed.FetchUSDPrices(context.Background(), []string{"BTC"})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUpstream)
		})
	}
}

func TestFetchUSDPrices_ContextCancelledWhileThrottled(t *testing.T) {
	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))

	_, err := feed.FetchUSDPrices(context.Background(), []string{"BTC"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = feed.FetchUSDPrices(ctx, []string{"BTC"})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
