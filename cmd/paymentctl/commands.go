package main

import (
	"fmt"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/app"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Connect to the configured database and bring the schema up to date.
The demo order is seeded as well when database.seedDemoOrder is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// app wiring migrates on connect
			return withApp(cmd.Context(), func(*app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}
}

func sweepCmd() *cobra.Command {
	var (
		age   time.Duration
		limit int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Re-query stale PENDING attempts once",
		Long: `Run a single sweep pass: every PENDING attempt older than --age is
re-queried with its gateway and the answer applied to the ledger.

Examples:
  paymentctl sweep
  paymentctl sweep --age 10m --limit 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				if !cmd.Flags().Changed("age") {
					age = a.Config.Reconciliation.PendingAge
				}
				if !cmd.Flags().Changed("limit") {
					limit = a.Config.Reconciliation.SweepBatch
				}

				report, err := a.Engine.SweepPending(cmd.Context(), age, limit)
				if err != nil {
					return fmt.Errorf("sweep: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Checked:       %d\n", report.Checked)
				fmt.Fprintf(out, "Transitioned:  %d\n", report.Transitioned)
				fmt.Fprintf(out, "Still pending: %d\n", report.StillPending)
				fmt.Fprintf(out, "Failed:        %d\n", report.Failed)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&age, "age", 0, "minimum age of a PENDING attempt (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum attempts per pass (default from config)")

	return cmd
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [correlation-id]",
		Short: "Fetch the authoritative status of one attempt and apply it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Engine.Reconcile(cmd.Context(), args[0], entity.ChannelSweep)
				if err != nil {
					return fmt.Errorf("reconcile %s: %w", args[0], err)
				}

				attempt := result.Attempt
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Attempt:  %s (order %d, %s)\n", attempt.CorrelationID, attempt.OrderID, attempt.Method)
				fmt.Fprintf(out, "Result:   %s\n", result.Kind)
				fmt.Fprintf(out, "Status:   %s -> %s\n", result.Previous, attempt.Status)
				fmt.Fprintf(out, "Amount:   KES %s\n", attempt.Amount)
				if attempt.ReceiptRef != nil {
					fmt.Fprintf(out, "Receipt:  %s\n", *attempt.ReceiptRef)
				}
				if result.OrderCompleted {
					fmt.Fprintln(out, "Order completed")
				}
				if result.Anomaly != nil {
					fmt.Fprintf(out, "Anomaly:  %v\n", result.Anomaly)
				}
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	var userID uint64

	cmd := &cobra.Command{
		Use:   "status [correlation-id]",
		Short: "Show an attempt's status as its owner would see it",
		Long: `Answer the owner's status question for one attempt. A PENDING attempt
is re-queried with its gateway first, exactly like the status endpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Engine.Poll(cmd.Context(), userID, args[0])
				if err != nil {
					return fmt.Errorf("status %s: %w", args[0], err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Attempt:  %s\n", result.CorrelationID)
				fmt.Fprintf(out, "Status:   %s\n", result.Status)
				fmt.Fprintf(out, "Amount:   KES %s\n", result.Amount)
				if result.ReceiptRef != "" {
					fmt.Fprintf(out, "Receipt:  %s\n", result.ReceiptRef)
				}
				fmt.Fprintf(out, "Message:  %s\n", result.Message)
				if result.RetryLater {
					fmt.Fprintln(out, "Gateway unreachable, try again later")
				}
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&userID, "user", 0, "id of the user owning the order")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
