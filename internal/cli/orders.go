package cli

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/xenking/coffee-orders/internal/app"
	"github.com/xenking/coffee-orders/internal/codec"
	"github.com/xenking/coffee-orders/internal/domain/order"
)

// withOrders loads configuration, opens the order service and runs fn.
func withOrders(ctx context.Context, d *deps, fn func(*app.Orders) error) error {
	cfg, err := d.loadConfig()
	if err != nil {
		return err
	}
	orders, err := app.Open(ctx, cfg, d.meterProvider)
	if err != nil {
		return err
	}
	defer orders.Close()

	return describeError(fn(orders))
}

// describeError prefixes client input errors so they read as such.
func describeError(err error) error {
	switch {
	case err == nil:
		return nil
	case order.IsClientError(err):
		return errors.Wrap(err, "invalid order")
	case errors.Is(err, order.ErrNotFound):
		return order.ErrNotFound
	default:
		return err
	}
}

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", formatJSON, "output format: json or text")
}

func newMigrateCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the orders schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOrders(cmd.Context(), d, func(o *app.Orders) error {
				if err := o.Migrate(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return err
			})
		},
	}
}

func newPlaceCmd(d *deps) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "place [file]",
		Short: "Price and store a new order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, optionalArg(args, 0))
			if err != nil {
				return err
			}
			req, err := codec.DecodeRequest(data)
			if err != nil {
				return errors.Wrap(err, "decode order request")
			}
			return withOrders(cmd.Context(), d, func(o *app.Orders) error {
				placed, err := o.PlaceOrder(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeOrders(cmd.OutOrStdout(), format, []order.Order{*placed})
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newAmendCmd(d *deps) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "amend <order-number> [file]",
		Short: "Replace the orderer and lines of a pending order",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, optionalArg(args, 1))
			if err != nil {
				return err
			}
			change, err := codec.DecodeChangeRequest(data)
			if err != nil {
				return errors.Wrap(err, "decode change request")
			}
			return withOrders(cmd.Context(), d, func(o *app.Orders) error {
				amended, err := o.AmendOrder(cmd.Context(), args[0], change)
				if err != nil {
					return err
				}
				return writeOrders(cmd.OutOrStdout(), format, []order.Order{*amended})
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newCancelCmd(d *deps) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "cancel <order-number>",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrders(cmd.Context(), d, func(o *app.Orders) error {
				cancelled, err := o.CancelOrder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeOrders(cmd.OutOrStdout(), format, []order.Order{*cancelled})
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newGetCmd(d *deps) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get <order-number>",
		Short: "Show a stored order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrders(cmd.Context(), d, func(o *app.Orders) error {
				got, err := o.GetOrder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeOrders(cmd.OutOrStdout(), format, []order.Order{*got})
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newListCmd(d *deps) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOrders(cmd.Context(), d, func(o *app.Orders) error {
				orders, err := o.ListPending(cmd.Context())
				if err != nil {
					return err
				}
				if format == formatJSON {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(codec.MarshalOrders(orders)))
					return err
				}
				return writeOrders(cmd.OutOrStdout(), format, orders)
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newPopularCmd(d *deps) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Show the most ordered drink and topping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOrders(cmd.Context(), d, func(o *app.Orders) error {
				p, err := o.PopularItems(cmd.Context())
				if err != nil {
					return err
				}
				return writePopularity(cmd.OutOrStdout(), format, p)
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
