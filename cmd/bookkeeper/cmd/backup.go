package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore the full backup file",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a backup of records, settings and preferences",
	Args:  cobra.NoArgs,
	RunE:  runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the current state with a backup file",
	Long: `Replace records, exchange accounts, wallets, manual assets and preferences
with the contents of a backup file. Sections missing from the file are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupImport,
}

var backupExportFile string

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)

	backupExportCmd.Flags().StringVarP(&backupExportFile, "file", "f", "", "write to a file instead of stdout")
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	backup, err := app.Services.Backup.ExportBackup(cmd.Context())
	if err != nil {
		return fmt.Errorf("export backup: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if backupExportFile != "" {
		f, err := os.Create(backupExportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(backup)
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var backup domain.Backup
	if err := json.Unmarshal(raw, &backup); err != nil {
		return fmt.Errorf("read backup %s: %w", args[0], err)
	}

	ok, err := app.Services.Backup.ImportBackup(cmd.Context(), backup)
	if err != nil {
		return fmt.Errorf("import backup: %w", err)
	}
	if !ok {
		return errors.New("invalid backup file: missing version or data")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "backup restored")
	return nil
}
