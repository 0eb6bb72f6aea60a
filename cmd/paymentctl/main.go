// Command paymentctl runs operator tasks against the payment ledger
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/app"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

// loadConfig is replaced in tests
var loadConfig = config.LoadConfig

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "paymentctl",
		Short:         "Operator tools for the payment reconciler",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(statusCmd())

	return rootCmd
}

// withApp loads configuration, wires the application and closes it after fn
func withApp(ctx context.Context, fn func(*app.App) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); err == nil {
			err = closeErr
		}
	}()

	return fn(application)
}
