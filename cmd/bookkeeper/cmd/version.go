package cmd

import (
	"fmt"

	"github.com/SscSPs/crypto_bookkeeper/internal/handlers"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the build version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noStateAnnotation: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bookkeeper %s\n", handlers.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
