package cli

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/coffee-orders/internal/app"
	"github.com/xenking/coffee-orders/internal/codec"
	"github.com/xenking/coffee-orders/internal/domain/order"
)

func newPriceCmd(d *deps) *cobra.Command {
	var (
		format      string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "price [file]",
		Short: "Price order requests without storing them",
		Long: "Reads one order request or a JSON array of requests from file (gzip allowed) or stdin " +
			"and prints the priced orders. Nothing is written to the database.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.loadConfig()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			reqs, err := codec.DecodeRequests(data)
			if err != nil {
				return errors.Wrap(err, "decode order requests")
			}
			if len(reqs) == 0 {
				return errors.New("no order requests in input")
			}

			orders, err := priceAll(cmd.Context(), cfg, reqs, concurrency)
			if err != nil {
				return err
			}
			return writeOrders(cmd.OutOrStdout(), format, orders)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or text")
	cmd.Flags().IntVar(&concurrency, "concurrency", runtime.GOMAXPROCS(0), "requests priced in parallel")
	return cmd
}

// priceAll validates and prices every request concurrently. Orders are
// returned in input order.
func priceAll(ctx context.Context, cfg *app.Config, reqs []order.Request, limit int) ([]order.Order, error) {
	pricer, policies := app.Pricing(cfg)
	policy, err := policies.Policy(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get discount policy")
	}

	orders := make([]order.Order, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := order.Validate(req.Orderer, req.Lines); err != nil {
				return errors.Wrapf(err, "request %d", i)
			}
			orders[i] = *pricer.PriceNew(req, policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zctx.From(ctx).Debug("Priced orders", zap.Int("count", len(orders)))
	return orders, nil
}
