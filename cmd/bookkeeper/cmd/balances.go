package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/SscSPs/crypto_bookkeeper/internal/utils"
	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Fetch and summarize exchange and wallet holdings",
}

var balancesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch every enabled exchange account and wallet",
	Args:  cobra.NoArgs,
	RunE:  runBalancesRefresh,
}

var balancesSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Value all holdings, manual assets included",
	Args:  cobra.NoArgs,
	RunE:  runBalancesSummary,
}

func init() {
	rootCmd.AddCommand(balancesCmd)
	balancesCmd.AddCommand(balancesRefreshCmd, balancesSummaryCmd)
}

func runBalancesRefresh(cmd *cobra.Command, args []string) error {
	report, err := app.Services.Balance.RefreshAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh balances: %w", err)
	}
	return render(cmd.OutOrStdout(), report, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "SOURCE\tRESULT")
		for _, s := range report.Succeeded {
			fmt.Fprintf(tw, "%s\tok\n", s)
		}
		for _, f := range report.Failed {
			fmt.Fprintf(tw, "%s\t%s\n", f.Source, f.Error)
		}
	})
}

func runBalancesSummary(cmd *cobra.Command, args []string) error {
	summary, err := app.Services.Balance.GetSummary(cmd.Context())
	if err != nil {
		return fmt.Errorf("balance summary: %w", err)
	}
	hide := hideAmounts(cmd)
	return render(cmd.OutOrStdout(), summary, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ASSET\tAMOUNT\tVALUE\tSOURCES")
		for _, h := range summary.Holdings {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				h.Symbol,
				utils.MaskAmount(utils.FormatWithPrecision(h.Amount, 8), hide),
				utils.MaskAmount(utils.FormatUSD(h.Value), hide),
				strings.Join(h.Sources, ","),
			)
		}
		fmt.Fprintf(tw, "TOTAL\t\t%s\t\n", utils.MaskAmount(utils.FormatUSD(summary.TotalValue), hide))
	})
}
