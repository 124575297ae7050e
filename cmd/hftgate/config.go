package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xKoRx/hftgate/internal"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Load and validate the configuration, printing it without secrets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := internal.LoadConfig(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# broker endpoint: %s\n%s", cfg.BrokerEndpoint(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)
}
