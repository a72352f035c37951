package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/coffee-orders/internal/codec"
	"github.com/xenking/coffee-orders/internal/domain/money"
	"github.com/xenking/coffee-orders/internal/domain/order"
)

// uniqueViolation is the SQLSTATE raised on a unique constraint conflict.
const uniqueViolation = "23505"

const orderColumns = `id, order_number, orderer, status, currency, order_lines, discounts,
	subtotal_cents, total_cents, created_at, updated_at, canceled_at`

const (
	createOrderSQL = `INSERT INTO orders (` + orderColumns + `, subtotal, total)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	updateOrderSQL = `UPDATE orders SET
		orderer = $2, status = $3, currency = $4, order_lines = $5, discounts = $6,
		subtotal_cents = $7, total_cents = $8, updated_at = $9, canceled_at = $10,
		subtotal = $11, total = $12
	WHERE order_number = $1 AND status = $13`

	orderStatusSQL = `SELECT status FROM orders WHERE order_number = $1`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
	WHERE status = $1 ORDER BY created_at DESC, order_number DESC`

	popularDrinkSQL = `SELECT line->>'name' AS name, count(*) AS n
	FROM orders, jsonb_array_elements(order_lines) AS line
	WHERE status <> $1 AND (line->>'primary')::boolean
	GROUP BY 1 ORDER BY n DESC, name LIMIT 1`

	popularToppingSQL = `SELECT addon->>'name' AS name, count(*) AS n
	FROM orders, jsonb_array_elements(order_lines) AS line,
		jsonb_array_elements(COALESCE(line->'addons', '[]'::jsonb)) AS addon
	WHERE status <> $1
	GROUP BY 1 ORDER BY n DESC, name LIMIT 1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Lines and discounts are stored as JSONB.
// It returns order.ErrDuplicateNumber when the order number is taken.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.Number, o.Orderer, string(o.Status), string(o.Currency),
		codec.MarshalLines(o.Lines), codec.MarshalDiscounts(o.Discounts),
		int64(o.Subtotal), int64(o.Total), o.CreatedAt, o.UpdatedAt, o.CanceledAt,
		o.Subtotal.Decimal(), o.Total.Decimal(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errors.Wrapf(order.ErrDuplicateNumber, "order %s", o.Number)
		}
		return errors.Wrapf(err, "create order %q", o.Number)
	}

	return nil
}

// Update overwrites the mutable fields of an order that is still pending
// in the database. A concurrent cancel therefore wins over a stale amend.
// It returns order.ErrNotFound when no row matches and order.ErrNotPending
// when the stored order has left the pending state.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.Number, o.Orderer, string(o.Status), string(o.Currency),
		codec.MarshalLines(o.Lines), codec.MarshalDiscounts(o.Discounts),
		int64(o.Subtotal), int64(o.Total), o.UpdatedAt, o.CanceledAt,
		o.Subtotal.Decimal(), o.Total.Decimal(), string(order.StatusPending),
	)
	if err != nil {
		return errors.Wrapf(err, "update order %q", o.Number)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var status string
	if err := r.pool.QueryRow(ctx, orderStatusSQL, o.Number).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.Wrapf(order.ErrNotFound, "order %s", o.Number)
		}
		return errors.Wrapf(err, "get status of order %q", o.Number)
	}
	return errors.Wrapf(order.ErrNotPending, "order %s is %s", o.Number, status)
}

// GetByNumber returns a single order. It returns order.ErrNotFound when
// no matching order exists.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getOrderSQL, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(order.ErrNotFound, "order %s", number)
		}
		return nil, errors.Wrapf(err, "get order %q", number)
	}
	return &o, nil
}

// ListByStatus returns orders with the given status, newest first.
func (r *OrderRepository) ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, string(status))
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan orders")
	}
	return orders, nil
}

// MostPopular counts drink lines and toppings by name across orders that
// were not cancelled. An item with a zero count means nothing matched.
func (r *OrderRepository) MostPopular(ctx context.Context) (order.Popularity, error) {
	drink, err := r.mostPopular(ctx, popularDrinkSQL)
	if err != nil {
		return order.Popularity{}, errors.Wrap(err, "most popular drink")
	}
	topping, err := r.mostPopular(ctx, popularToppingSQL)
	if err != nil {
		return order.Popularity{}, errors.Wrap(err, "most popular topping")
	}
	return order.Popularity{Drink: drink, Topping: topping}, nil
}

func (r *OrderRepository) mostPopular(ctx context.Context, query string) (order.PopularItem, error) {
	var item order.PopularItem
	err := r.pool.QueryRow(ctx, query, string(order.StatusCancelled)).Scan(&item.Name, &item.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.PopularItem{}, nil
		}
		return order.PopularItem{}, err
	}
	return item, nil
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var (
		o             order.Order
		status        string
		currency      string
		linesJSON     []byte
		discountsJSON []byte
		subtotal      int64
		total         int64
		canceledAt    *time.Time
	)
	if err := row.Scan(
		&o.ID, &o.Number, &o.Orderer, &status, &currency, &linesJSON, &discountsJSON,
		&subtotal, &total, &o.CreatedAt, &o.UpdatedAt, &canceledAt,
	); err != nil {
		return order.Order{}, err
	}

	lines, err := codec.UnmarshalLines(linesJSON)
	if err != nil {
		return order.Order{}, errors.Wrapf(err, "decode lines of order %s", o.Number)
	}
	discounts, err := codec.UnmarshalDiscounts(discountsJSON)
	if err != nil {
		return order.Order{}, errors.Wrapf(err, "decode discounts of order %s", o.Number)
	}

	o.Currency = money.Currency(currency)
	if !o.Currency.Valid() {
		return order.Order{}, errors.Wrapf(money.ErrUnknownCurrency, "order %s has %q", o.Number, currency)
	}
	o.Status = order.Status(status)
	o.Lines = lines
	o.Discounts = discounts
	o.Subtotal = money.Cents(subtotal)
	o.Total = money.Cents(total)
	o.CanceledAt = canceledAt
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}
