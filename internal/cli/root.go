// Package cli implements the coffee-orders command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/coffee-orders/internal/app"
)

// deps are the process-level collaborators shared by all commands.
type deps struct {
	meterProvider metric.MeterProvider
	loadConfig    func() (*app.Config, error)
}

func newRootCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "coffee-orders",
		Short:         "Price and manage coffee shop orders",
		Long:          "coffee-orders prices order requests under the configured promotions and manages pending orders stored in PostgreSQL.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newPriceCmd(d))
	cmd.AddCommand(newMigrateCmd(d))
	cmd.AddCommand(newPlaceCmd(d))
	cmd.AddCommand(newAmendCmd(d))
	cmd.AddCommand(newCancelCmd(d))
	cmd.AddCommand(newGetCmd(d))
	cmd.AddCommand(newListCmd(d))
	cmd.AddCommand(newPopularCmd(d))
	return cmd
}

// Execute runs the command line with the process arguments.
func Execute(ctx context.Context, mp metric.MeterProvider) error {
	return newRootCmd(&deps{
		meterProvider: mp,
		loadConfig:    app.LoadConfig,
	}).ExecuteContext(ctx)
}
