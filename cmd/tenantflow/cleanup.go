package main

import (
	"context"
	"fmt"

	onboardingdomain "github.com/smallbiznis/tenantflow/internal/onboarding/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func CleanupCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "List onboarding runs that may have left resources behind",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc onboardingdomain.Service
			app := fx.New(
				fx.NopLogger,
				coreModules(),
				fx.Populate(&svc),
			)

			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() {
				_ = app.Stop(context.WithoutCancel(ctx))
			}()

			runs, err := svc.PendingCleanup(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-28s  %-20s  %-6s  %-20s  %-20s  %s\n", "Run", "Status", "Step", "Tenant", "Lease", "Subscription")
			for _, run := range runs {
				fmt.Fprintf(out, "%-28s  %-20s  %-6d  %-20s  %-20s  %s\n",
					run.RunID,
					run.Status,
					run.FailedStep,
					run.TenantID.String(),
					run.LeaseID.String(),
					run.SubscriptionID,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of runs to list")

	return cmd
}
