package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/coffee-orders/internal/cli"
)

func main() {
	app.Run(func(ctx context.Context, _ *zap.Logger, m *app.Telemetry) error {
		return cli.Execute(ctx, m.MeterProvider())
	})
}
