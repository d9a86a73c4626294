package main

import (
	"github.com/smallbiznis/tenantflow/internal/events/relay"
	"github.com/smallbiznis/tenantflow/internal/onboarding"
	"github.com/smallbiznis/tenantflow/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ops HTTP server, the outbox relay and the cleanup sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				coreModules(),
				relay.Worker,
				onboarding.Worker,
				server.Module,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}
