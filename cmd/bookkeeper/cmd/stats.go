package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Volume, fees and realized pnl over active records",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var (
	statsMarkdown bool
	statsStyle    string
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsMarkdown, "markdown", false, "render a markdown report")
	statsCmd.Flags().StringVar(&statsStyle, "style", "auto", "markdown style: auto, dark, light, notty")
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := app.Services.Transaction.GetStatistics(cmd.Context())
	if err != nil {
		return fmt.Errorf("statistics: %w", err)
	}
	hide := hideAmounts(cmd)

	if statsMarkdown {
		return renderMarkdown(cmd.OutOrStdout(), statisticsMarkdown(stats, hide), statsStyle)
	}
	return render(cmd.OutOrStdout(), stats, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Buy volume\t%s\n", utils.MaskAmount(utils.FormatUSD(stats.BuyVolume), hide))
		fmt.Fprintf(tw, "Sell volume\t%s\n", utils.MaskAmount(utils.FormatUSD(stats.SellVolume), hide))
		fmt.Fprintf(tw, "Fees\t%s\n", utils.MaskAmount(utils.FormatUSD(stats.TotalFees), hide))
		fmt.Fprintf(tw, "Realized PnL\t%s\n", utils.MaskAmount(utils.FormatUSD(stats.TotalPnL), hide))
		fmt.Fprintf(tw, "Active records\t%d\n", stats.ActiveCount)
		fmt.Fprintf(tw, "In recycle bin\t%d\n", stats.DeletedCount)
	})
}

// statisticsMarkdown builds the report rendered by stats --markdown.
func statisticsMarkdown(stats domain.Statistics, hide bool) string {
	money := func(v string) string { return utils.MaskAmount(v, hide) }

	var b strings.Builder
	b.WriteString("# Portfolio statistics\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Buy volume | %s |\n", money(utils.FormatUSD(stats.BuyVolume)))
	fmt.Fprintf(&b, "| Sell volume | %s |\n", money(utils.FormatUSD(stats.SellVolume)))
	fmt.Fprintf(&b, "| Fees | %s |\n", money(utils.FormatUSD(stats.TotalFees)))
	fmt.Fprintf(&b, "| Realized PnL | %s |\n", money(utils.FormatUSD(stats.TotalPnL)))
	fmt.Fprintf(&b, "| Active records | %d |\n", stats.ActiveCount)
	fmt.Fprintf(&b, "| In recycle bin | %d |\n", stats.DeletedCount)
	return b.String()
}

func renderMarkdown(w io.Writer, md, style string) error {
	out, err := glamour.Render(md, style)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
