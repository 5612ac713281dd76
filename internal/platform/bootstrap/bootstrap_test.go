package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		StorageDriver:      driver,
		StoragePath:        t.TempDir(),
		StorageKey:         "test-storage",
		BalanceProxyURL:    "http://127.0.0.1:1",
		PriceAPIURL:        "http://127.0.0.1:1",
		PriceCacheTTL:      time.Minute,
		HTTPTimeout:        time.Second,
		RefreshConcurrency: 2,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_PersistsAcrossRestarts(t *testing.T) {
	for _, driver := range []string{config.StorageDriverFile, config.StorageDriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, driver)
			cfg.StatePassphrase = "correct horse"

			app, err := Open(ctx, cfg, discardLogger())
			require.NoError(t, err)

			amount, price := decimal.NewFromInt(1), decimal.NewFromInt(100)
			_, err = app.Services.Transaction.CreateTrade(ctx, dto.CreateTradeRequest{
				Buy: &dto.LegRequest{
					Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					Platform: "Binance",
					Pair:     "BTC/USDT",
					Amount:   &amount,
					Price:    &price,
				},
			})
			require.NoError(t, err)
			_, err = app.Services.Settings.SaveCexConfig(ctx, dto.SaveCexConfigRequest{
				PlatformID: "binance", APIKey: "key", APISecret: "very-secret",
			})
			require.NoError(t, err)
			require.NoError(t, app.Close(ctx))

			reopened, err := Open(ctx, cfg, discardLogger())
			require.NoError(t, err)
			defer func() { _ = reopened.Close(ctx) }()

			page, err := reopened.Services.Transaction.ListTransactions(ctx, dto.ListTransactionsParams{})
			require.NoError(t, err)
			require.Len(t, page.Transactions, 1)
			assert.Equal(t, "BTC/USDT", page.Transactions[0].Pair)

			cfgs, err := reopened.Services.Settings.ListCexConfigs(ctx)
			require.NoError(t, err)
			require.Len(t, cfgs, 1)
			assert.Equal(t, "very-secret", cfgs[0].APISecret)
		})
	}
}

func TestOpen_SecretsSealedOnDisk(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.StorageDriverFile)
	cfg.StatePassphrase = "pass"

	app, err := Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	_, err = app.Services.Settings.SaveCexConfig(ctx, dto.SaveCexConfigRequest{
		PlatformID: "okx", APIKey: "key", APISecret: "plain-secret-value",
	})
	require.NoError(t, err)
	require.NoError(t, app.Close(ctx))

	raw, err := os.ReadFile(filepath.Join(cfg.StoragePath, cfg.StorageKey+".json"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "plain-secret-value"))
	assert.Contains(t, string(raw), "enc:v1:")
}

func TestOpenRepositories_UnknownDriver(t *testing.T) {
	_, err := OpenRepositories(context.Background(), testConfig(t, "mongo"), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}

func TestNewClients(t *testing.T) {
	clients := NewClients(testConfig(t, config.StorageDriverFile))
	assert.NotNil(t, clients.BalanceProxy)
	assert.NotNil(t, clients.PriceOracle)
}
