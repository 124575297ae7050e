package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/xKoRx/hftgate/internal"
	"github.com/xKoRx/hftgate/internal/repository"
	"github.com/xKoRx/hftgate/sdk/domain"
	sdkgrpc "github.com/xKoRx/hftgate/sdk/grpc"
	"github.com/xKoRx/hftgate/sdk/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gateway until interrupted or a fatal condition",
	Long: `Run connects to the broker and the engine and processes events until SIGINT/SIGTERM.

A fatal condition (handshake rejected, server disconnect, token invalidated,
reconnect attempts exhausted) stops the gateway with exit code 1.`,
	Args: cobra.NoArgs,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runGateway(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.LoadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	tel, err := internal.InitTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(tel)

	opts := []internal.Option{}

	if cfg.LedgerPath != "" {
		ledger, err := internal.OpenAdviceLedger(cfg.LedgerPath)
		if err != nil {
			return fmt.Errorf("open advice ledger: %w", err)
		}
		defer ledger.Close()
		opts = append(opts, internal.WithLedger(ledger))
	}

	if cfg.JournalDriver != "" {
		journal, err := repository.Open(ctx, cfg.JournalDriver, cfg.JournalDSN)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer journal.Close()
		opts = append(opts, internal.WithJournal(journal))
	}

	if cfg.HealthAddress != "" {
		srvCfg := sdkgrpc.DefaultServerConfig(cfg.HealthAddress)
		srvCfg.UnaryInterceptors = []grpc.UnaryServerInterceptor{sdkgrpc.LoggingUnaryServerInterceptor(tel)}
		srvCfg.StreamInterceptors = []grpc.StreamServerInterceptor{sdkgrpc.LoggingStreamServerInterceptor(tel)}
		health, err := sdkgrpc.NewServer(srvCfg)
		if err != nil {
			return fmt.Errorf("start health server: %w", err)
		}
		go func() {
			if err := health.Serve(ctx); err != nil {
				tel.Error(ctx, "Health server stopped", err)
			}
		}()
		opts = append(opts, internal.WithHealth(health))
	}

	gw, err := internal.New(cfg, tel, opts...)
	if err != nil {
		return err
	}

	if err := gw.Run(ctx); err != nil {
		if domain.IsFatalError(err) {
			return err
		}
		return domain.NewFatalError(domain.ErrUnknown, "gateway stopped", err)
	}
	return nil
}

func shutdownTelemetry(tel *telemetry.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
	}
}
