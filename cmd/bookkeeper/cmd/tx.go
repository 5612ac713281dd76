package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/SscSPs/crypto_bookkeeper/internal/csvio"
	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record and manage trades",
	Long: `Record buys and sells and move records through the recycle bin.

Subcommands:
  list     - List records, newest first
  add      - Record a buy or a sell
  delete   - Move records to the recycle bin
  restore  - Bring records back from the recycle bin
  purge    - Delete records permanently
  deleted  - Show the recycle bin`,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records, newest first",
	Args:  cobra.NoArgs,
	RunE:  runTxList,
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a buy or a sell",
	Long: `Record one leg of a trade. A sell may close an existing buy with --buy-id,
which also computes its pnl and apr.

Partial fills use the same grammar as the CSV Fills column:
  --fills "2024-01-01 | 0.5 @ 42000; 2024-01-02 | 0.5 @ 43000"`,
	Args: cobra.NoArgs,
	RunE: runTxAdd,
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Move records to the recycle bin",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTxBulk(func(c *cobra.Command, ids []string) domain.BulkResult { return app.Services.Transaction.BulkSoftDelete(c.Context(), ids) }),
}

var txRestoreCmd = &cobra.Command{
	Use:   "restore <id>...",
	Short: "Bring records back from the recycle bin",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTxBulk(func(c *cobra.Command, ids []string) domain.BulkResult { return app.Services.Transaction.BulkRestore(c.Context(), ids) }),
}

var txPurgeCmd = &cobra.Command{
	Use:   "purge <id>...",
	Short: "Delete records permanently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTxBulk(func(c *cobra.Command, ids []string) domain.BulkResult { return app.Services.Transaction.BulkHardDelete(c.Context(), ids) }),
}

var txDeletedCmd = &cobra.Command{
	Use:   "deleted",
	Short: "Show the recycle bin",
	Args:  cobra.NoArgs,
	RunE:  runTxDeleted,
}

var (
	txListAll   bool
	txListLimit int
	txListToken string

	txSide     string
	txDate     string
	txPlatform string
	txPair     string
	txAmount   string
	txPrice    string
	txFee      string
	txFills    string
	txNotes    string
	txLink     string
	txBuyID    string
)

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txListCmd, txAddCmd, txDeleteCmd, txRestoreCmd, txPurgeCmd, txDeletedCmd)

	txListCmd.Flags().BoolVar(&txListAll, "all", false, "include deleted records")
	txListCmd.Flags().IntVar(&txListLimit, "limit", 50, "page size")
	txListCmd.Flags().StringVar(&txListToken, "next", "", "page token printed by the previous call")

	f := txAddCmd.Flags()
	f.StringVar(&txSide, "side", "", "buy or sell")
	f.StringVar(&txDate, "date", "", "trade date (YYYY-MM-DD or RFC3339)")
	f.StringVar(&txPlatform, "platform", "", "exchange or wallet name")
	f.StringVar(&txPair, "pair", "", "trading pair, e.g. BTC/USDT")
	f.StringVar(&txAmount, "amount", "", "amount of the base asset")
	f.StringVar(&txPrice, "price", "", "price in the quote asset")
	f.StringVar(&txFee, "fee", "", "fee paid")
	f.StringVar(&txFills, "fills", "", "partial fills, replaces --amount and --price")
	f.StringVar(&txNotes, "notes", "", "free text")
	f.StringVar(&txLink, "link", "", "reference URL")
	f.StringVar(&txBuyID, "buy-id", "", "buy this sell closes")
	_ = txAddCmd.MarkFlagRequired("side")
	_ = txAddCmd.MarkFlagRequired("date")
	_ = txAddCmd.MarkFlagRequired("platform")
	_ = txAddCmd.MarkFlagRequired("pair")
}

func runTxList(cmd *cobra.Command, args []string) error {
	page, err := app.Services.Transaction.ListTransactions(cmd.Context(), dto.ListTransactionsParams{
		IncludeDeleted: txListAll,
		Limit:          txListLimit,
		NextToken:      txListToken,
	})
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	hide := hideAmounts(cmd)
	if err := render(cmd.OutOrStdout(), page, func(tw *tabwriter.Writer) {
		writeTransactionTable(tw, page.Transactions, hide)
	}); err != nil {
		return err
	}
	if page.NextToken != nil && outputFormat == "table" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nmore: --next %s\n", *page.NextToken)
	}
	return nil
}

func runTxDeleted(cmd *cobra.Command, args []string) error {
	txs, err := app.Services.Transaction.ListDeleted(cmd.Context())
	if err != nil {
		return fmt.Errorf("list deleted: %w", err)
	}
	resp := dto.ToTransactionResponses(txs)
	hide := hideAmounts(cmd)
	return render(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
		writeTransactionTable(tw, resp, hide)
	})
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	var side domain.TransactionType
	switch strings.ToLower(strings.TrimSpace(txSide)) {
	case "buy":
		side = domain.Buy
	case "sell":
		side = domain.Sell
	default:
		return fmt.Errorf("--side must be buy or sell, got %q", txSide)
	}

	leg, err := legFromFlags()
	if err != nil {
		return err
	}
	req := dto.CreateTradeRequest{}
	if side == domain.Buy {
		if txBuyID != "" {
			return fmt.Errorf("--buy-id only applies to sells")
		}
		req.Buy = leg
	} else {
		req.Sell = leg
		req.ExistingBuyID = txBuyID
	}

	saved, err := app.Services.Transaction.CreateTrade(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("record trade: %w", err)
	}
	resp := dto.ToTransactionResponses(saved)
	return render(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
		writeTransactionTable(tw, resp, false)
	})
}

func legFromFlags() (*dto.LegRequest, error) {
	date, err := domain.ParseDate(txDate, time.Local)
	if err != nil {
		return nil, err
	}
	leg := &dto.LegRequest{
		Date:     date,
		Platform: txPlatform,
		Pair:     txPair,
		Notes:    txNotes,
		Link:     txLink,
	}
	if leg.Amount, err = optionalDecimal("amount", txAmount); err != nil {
		return nil, err
	}
	if leg.Price, err = optionalDecimal("price", txPrice); err != nil {
		return nil, err
	}
	if leg.Fee, err = optionalDecimal("fee", txFee); err != nil {
		return nil, err
	}
	if txFills != "" {
		fills, err := csvio.ParseFills(txFills, time.Local)
		if err != nil {
			return nil, fmt.Errorf("--fills: %w", err)
		}
		for _, f := range fills {
			price, amount := f.Price, f.Amount
			leg.Fills = append(leg.Fills, dto.FillRequest{Price: &price, Amount: &amount, Date: f.Date})
		}
	}
	return leg, nil
}

func optionalDecimal(name, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("--%s is not a number: %q", name, raw)
	}
	return &d, nil
}

func runTxBulk(op func(*cobra.Command, []string) domain.BulkResult) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		result := dto.ToBulkResponse(op(cmd, args))
		if err := render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "ID\tRESULT")
			for _, id := range result.Succeeded {
				fmt.Fprintf(tw, "%s\tok\n", id)
			}
			for _, f := range result.Failed {
				fmt.Fprintf(tw, "%s\t%s\n", f.ID, f.Error)
			}
		}); err != nil {
			return err
		}
		if len(result.Succeeded) == 0 {
			return fmt.Errorf("no record changed")
		}
		return nil
	}
}

func writeTransactionTable(tw *tabwriter.Writer, txs []dto.TransactionResponse, hide bool) {
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tPLATFORM\tPAIR\tAMOUNT\tPRICE\tFEE\tPNL\tAPR\tLINKED")
	for _, t := range txs {
		pnl, apr := "-", "-"
		if t.PnL != nil {
			pnl = utils.MaskAmount(t.PnL.StringFixed(2), hide)
		}
		if t.APR != nil {
			apr = utils.FormatPercent(*t.APR)
		}
		typ := t.Type
		if t.IsDeleted {
			typ += " (deleted)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Date.In(time.Local).Format("2006-01-02"),
			typ,
			t.Platform,
			t.Pair,
			utils.MaskAmount(t.Amount.String(), hide),
			t.Price.String(),
			t.Fee.String(),
			pnl,
			apr,
			orDash(t.RelatedTransactionID),
		)
	}
}

func hideAmounts(cmd *cobra.Command) bool {
	prefs, err := app.Services.Settings.GetPreferences(cmd.Context())
	return err == nil && prefs.HideAmounts
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
