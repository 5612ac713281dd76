package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Import and export trades as CSV",
	Long: `Move records in and out as CSV.

Columns: Date, Type, Platform, Pair, Amount, Price, Fee, PnL, APR, Notes, Link,
Fills. Fills use "date | amount @ price" entries joined by ";".`,
}

var csvImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Append the rows of a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCSVImport,
}

var csvExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write active records as CSV",
	Args:  cobra.NoArgs,
	RunE:  runCSVExport,
}

var csvExportFile string

func init() {
	rootCmd.AddCommand(csvCmd)
	csvCmd.AddCommand(csvImportCmd, csvExportCmd)

	csvExportCmd.Flags().StringVarP(&csvExportFile, "file", "f", "", "write to a file instead of stdout")
}

func runCSVImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := app.Services.Transaction.ImportCSV(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
	return nil
}

func runCSVExport(cmd *cobra.Command, args []string) error {
	var w io.Writer = cmd.OutOrStdout()
	if csvExportFile != "" {
		f, err := os.Create(csvExportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := app.Services.Transaction.ExportCSV(cmd.Context(), w); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
