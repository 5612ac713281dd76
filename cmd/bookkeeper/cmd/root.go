package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/crypto_bookkeeper/internal/middleware"
	"github.com/SscSPs/crypto_bookkeeper/internal/platform/bootstrap"
	"github.com/SscSPs/crypto_bookkeeper/internal/platform/config"
	"github.com/spf13/cobra"
)

// noStateAnnotation marks commands that run without opening the store.
const noStateAnnotation = "noState"

var (
	outputFormat string
	storagePath  string

	app *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:   "bookkeeper",
	Short: "Crypto trade journal with pnl and apr tracking",
	Long: `Bookkeeper records crypto buys and sells, pairs them into closed positions and
reports realized pnl and annualized return.

It reads the same configuration as the HTTP server (.env or environment):
  STORAGE_DRIVER   file, sqlite or postgres
  STORAGE_PATH     data directory for file and sqlite storage
  STATE_PASSPHRASE seals exchange secrets at rest

Examples:
  bookkeeper tx add --side buy --date 2024-01-01 --platform Binance --pair BTC/USDT --amount 1 --price 42000
  bookkeeper pairs --coin BTC --pnl profit
  bookkeeper stats --markdown`,
	SilenceUsage:      true,
	PersistentPreRunE: openApp,
}

// Execute runs the command tree and flushes any state the command changed.
func Execute() error {
	err := rootCmd.Execute()
	if app != nil {
		if cerr := app.Close(context.Background()); cerr != nil && err == nil {
			err = fmt.Errorf("save state: %w", cerr)
		}
		app = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&storagePath, "data", "", "override STORAGE_PATH")
}

func openApp(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[noStateAnnotation] == "true" {
		return nil
	}
	if err := checkOutputFormat(); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if storagePath != "" {
		cfg.StoragePath = storagePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx := middleware.WithLogger(cmd.Context(), logger)
	cmd.SetContext(ctx)

	app, err = bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	return nil
}
