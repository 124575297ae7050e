package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/xKoRx/hftgate/sdk/domain"
)

// Códigos de salida del proceso.
const (
	exitFatal  = 1
	exitConfig = 2
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hftgate",
	Short: "Gateway between a cTrader Open API account and a strategy engine",
	Long: `hftgate keeps an authenticated session with the broker, mirrors the account
state (positions, balance, quotes) and relays it to an external strategy engine,
executing the advices the engine returns.

Configuration is loaded from a YAML file, then ETCD (when ETCD_ENDPOINTS is set),
then HFTGATE_CLIENT_SECRET / HFTGATE_ACCESS_TOKEN.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
}

// exitCode traduce el error final a un código de salida.
func exitCode(err error) int {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return exitConfig
	}
	return exitFatal
}
