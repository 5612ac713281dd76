package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/dto"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils"
	"github.com/spf13/cobra"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Show buys paired with their sells",
	Long: `Show display rows: closed positions with their realized pnl and apr,
plus open buys and orphaned sells.

Examples:
  bookkeeper pairs --coin BTC
  bookkeeper pairs --pnl loss --range year
  bookkeeper pairs --start 2024-01-01 --end 2024-03-31 --apr-min 20`,
	Args: cobra.NoArgs,
	RunE: runPairs,
}

var pairQuery dto.PairQuery

func init() {
	rootCmd.AddCommand(pairsCmd)

	f := pairsCmd.Flags()
	f.StringVar(&pairQuery.Coin, "coin", "", "base asset, e.g. BTC")
	f.StringVar(&pairQuery.Platform, "platform", "", "platform name")
	f.StringVar(&pairQuery.PnL, "pnl", "all", "all, profit or loss")
	f.StringVar(&pairQuery.APRMin, "apr-min", "", "minimum APR in percent")
	f.StringVar(&pairQuery.APRMax, "apr-max", "", "maximum APR in percent")
	f.StringVar(&pairQuery.Range, "range", "all", "all, year, month, week or custom")
	f.StringVar(&pairQuery.Start, "start", "", "custom range start day")
	f.StringVar(&pairQuery.End, "end", "", "custom range end day (inclusive)")
}

func runPairs(cmd *cobra.Command, args []string) error {
	if err := dto.Validate(pairQuery); err != nil {
		return err
	}
	filter, err := pairQuery.ToFilter(time.Local)
	if err != nil {
		return err
	}
	pairs, err := app.Services.Transaction.ListPairs(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("list pairs: %w", err)
	}

	resp := dto.ToPairResponses(pairs)
	hide := hideAmounts(cmd)
	return render(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "DATE\tPLATFORM\tPAIR\tBUY\tSELL\tPNL\tAPR")
		for _, p := range resp {
			buy, sell, pnl, apr := "-", "-", "-", "-"
			if p.Buy != nil {
				buy = utils.MaskAmount(fmt.Sprintf("%s @ %s", p.Buy.Amount, p.Buy.Price), hide)
			}
			if p.Sell != nil {
				sell = utils.MaskAmount(fmt.Sprintf("%s @ %s", p.Sell.Amount, p.Sell.Price), hide)
			}
			if p.PnL != nil {
				pnl = utils.MaskAmount(p.PnL.StringFixed(2), hide)
			}
			if p.APR != nil {
				apr = utils.FormatPercent(*p.APR)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				p.Date.In(time.Local).Format("2006-01-02"), p.Platform, strings.ToUpper(p.Pair), buy, sell, pnl, apr)
		}
	})
}
