package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xKoRx/hftgate/internal"
	"github.com/xKoRx/hftgate/internal/repository"
	"github.com/xKoRx/hftgate/sdk/utils"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade journal",
	Long: `Query the journal configured by journal_driver / journal_dsn.

Subcommands:
  closed   - list the latest closed positions
  summary  - latest balance snapshot and order error counts`,
}

var journalClosedCmd = &cobra.Command{
	Use:   "closed",
	Short: "List the latest closed positions",
	Args:  cobra.NoArgs,
	RunE:  runJournalClosed,
}

var journalSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the latest balance snapshot and order error counts",
	Args:  cobra.NoArgs,
	RunE:  runJournalSummary,
}

var journalLimit int

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalClosedCmd)
	journalCmd.AddCommand(journalSummaryCmd)

	journalClosedCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of closed positions to list")
}

func openJournal(cmd *cobra.Command) (*internal.Config, *repository.Journal, error) {
	cfg, err := internal.LoadConfig(cmd.Context(), configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.JournalDriver == "" {
		return nil, nil, fmt.Errorf("journal_driver is not configured")
	}
	j, err := repository.Open(cmd.Context(), cfg.JournalDriver, cfg.JournalDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	return cfg, j, nil
}

func runJournalClosed(cmd *cobra.Command, _ []string) error {
	_, j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	closed, err := j.ClosedPositions(cmd.Context(), journalLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLOSED_AT\tPOSITION\tLABEL\tINSTRUMENT\tSIDE\tVOLUME\tENTRY\tCLOSE\tGROSS\tBALANCE")
	for _, c := range closed {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			utils.FormatEngineTimestamp(utils.UnixMilliToTime(c.Timestamp)),
			c.PositionID, c.Label, c.Instrument, c.Side, c.Volume,
			c.EntryPrice, c.ClosePrice, c.GrossProfit, c.Balance,
		)
	}
	return w.Flush()
}

func runJournalSummary(cmd *cobra.Command, _ []string) error {
	cfg, j, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	balance, found, err := j.LatestBalance(ctx, cfg.AccountID)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "account %d balance: %s\n", cfg.AccountID, balance)
	} else {
		fmt.Fprintf(out, "account %d balance: no snapshot\n", cfg.AccountID)
	}

	for _, kind := range []string{repository.ErrorKindOpen, repository.ErrorKindClose} {
		n, err := j.CountOrderErrors(ctx, kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s errors: %d\n", kind, n)
	}
	fmt.Fprintf(out, "driver: %s\n", j.Driver())
	return nil
}
