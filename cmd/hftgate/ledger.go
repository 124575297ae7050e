package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xKoRx/hftgate/internal"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the advice ledger",
}

var ledgerActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "List advices with a pending order or an open position",
	Args:  cobra.NoArgs,
	RunE:  runLedgerActive,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <label>",
	Short: "Show an advice and its transitions",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerActiveCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
}

func openLedger(cmd *cobra.Command) (*internal.AdviceLedger, error) {
	cfg, err := internal.LoadConfig(cmd.Context(), configPath)
	if err != nil {
		return nil, err
	}
	if cfg.LedgerPath == "" {
		return nil, fmt.Errorf("ledger_path is not configured")
	}
	return internal.OpenAdviceLedger(cfg.LedgerPath)
}

func runLedgerActive(cmd *cobra.Command, _ []string) error {
	ledger, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer ledger.Close()

	records, err := ledger.Active()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tSTATE\tINSTRUMENT\tSIDE\tQTY\tPOSITION\tUPDATED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Label, r.State, r.Instrument, r.Side, r.Qty, r.PositionID,
			time.UnixMilli(r.UpdatedAt).UTC().Format(time.RFC3339),
		)
	}
	return w.Flush()
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer ledger.Close()

	label := args[0]
	rec, err := ledger.Get(label)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("advice %q not found", label)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "label: %s\nstate: %s\ninstrument: %s\nside: %s\nqty: %d\n",
		rec.Label, rec.State, rec.Instrument, rec.Side, rec.Qty)
	if rec.PositionID != 0 {
		fmt.Fprintf(out, "position: %d\nopen_price: %s\n", rec.PositionID, rec.OpenPrice)
	}
	if rec.ClosePrice != "" {
		fmt.Fprintf(out, "close_price: %s\n", rec.ClosePrice)
	}
	if rec.LastError != "" {
		fmt.Fprintf(out, "last_error: %s\n", rec.LastError)
	}

	events, err := ledger.Events(label)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "events:")
	for _, ev := range events {
		fmt.Fprintf(out, "  %s %s %s %s\n", ev.ID, time.UnixMilli(ev.At).UTC().Format(time.RFC3339), ev.State, ev.Detail)
	}
	return nil
}
