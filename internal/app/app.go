// Package app wires configuration, pricing, storage and the order service.
package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/coffee-orders/internal/domain/discount"
	"github.com/xenking/coffee-orders/internal/domain/order"
	"github.com/xenking/coffee-orders/internal/storage/postgres"
)

// Pricing returns the storage-free pricing components described by cfg.
func Pricing(cfg *Config) (*order.Pricer, discount.PolicySource) {
	pricer := order.NewPricer(order.NewNumberGenerator(cfg.OrderNumberPrefix))
	return pricer, discount.NewStaticSource(cfg.Discount.Policy())
}

// Orders is the order service backed by PostgreSQL.
type Orders struct {
	*order.Service
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and wires the order service. Close must be
// called to release the pool.
func Open(ctx context.Context, cfg *Config, mp metric.MeterProvider) (*Orders, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	zctx.From(ctx).Debug("Connecting to database")
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}

	pricer, policies := Pricing(cfg)
	svc, err := order.NewService(
		postgres.NewOrderRepository(pool),
		policies,
		pricer,
		order.WithMeterProvider(mp),
	)
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "create order service")
	}

	return &Orders{Service: svc, pool: pool}, nil
}

// Migrate applies the embedded schema.
func (o *Orders) Migrate(ctx context.Context) error {
	return postgres.RunMigrations(ctx, o.pool)
}

// Close releases the database pool.
func (o *Orders) Close() {
	o.pool.Close()
}
