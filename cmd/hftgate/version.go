package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xKoRx/hftgate/internal/strategy"
)

// version se sobreescribe en build con -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the available strategies",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hftgate version %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "strategies: %v\n", strategy.Variants())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
