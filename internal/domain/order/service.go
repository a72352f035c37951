package order

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/coffee-orders/internal/domain/discount"
)

const meterName = "github.com/xenking/coffee-orders/internal/domain/order"

// Names reported by PopularItems when nothing qualifies.
const (
	NoDrinksName   = "No drinks ordered yet"
	NoToppingsName = "No toppings ordered yet"
)

// Service encapsulates order placement and administration. It validates
// requests, takes a policy snapshot, prices through the Pricer and
// persists through the Repository.
type Service struct {
	orders   Repository
	policies discount.PolicySource
	pricer   *Pricer
	now      func() time.Time

	placed    metric.Int64Counter
	amended   metric.Int64Counter
	cancelled metric.Int64Counter
	applied   metric.Int64Counter
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider sets the provider used for order counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *serviceOptions) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	orders Repository,
	policies discount.PolicySource,
	pricer *Pricer,
	opts ...Option,
) (*Service, error) {
	o := serviceOptions{meterProvider: noop.NewMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{
		orders:   orders,
		policies: policies,
		pricer:   pricer,
		now:      time.Now,
	}

	meter := o.meterProvider.Meter(meterName)
	var err error
	if s.placed, err = meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	if s.amended, err = meter.Int64Counter("orders.amended",
		metric.WithDescription("Pending orders amended"),
	); err != nil {
		return nil, errors.Wrap(err, "create amended counter")
	}
	if s.cancelled, err = meter.Int64Counter("orders.cancelled",
		metric.WithDescription("Orders cancelled"),
	); err != nil {
		return nil, errors.Wrap(err, "create cancelled counter")
	}
	if s.applied, err = meter.Int64Counter("orders.discount.applied",
		metric.WithDescription("Discounts applied to placed or amended orders"),
	); err != nil {
		return nil, errors.Wrap(err, "create discount counter")
	}

	return s, nil
}

// PlaceOrder validates req, prices it under the current policy and
// persists the new order.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*Order, error) {
	if err := Validate(req.Orderer, req.Lines); err != nil {
		return nil, err
	}

	policy, err := s.policies.Policy(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get discount policy")
	}

	o := s.pricer.PriceNew(req, policy)
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("currency", string(o.Currency))))
	s.recordDiscounts(ctx, o)
	zctx.From(ctx).Info("Order placed",
		zap.String("order_number", o.Number),
		zap.Int64("subtotal_cents", int64(o.Subtotal)),
		zap.Int64("total_cents", int64(o.Total)),
		zap.Int("discounts", len(o.Discounts)),
	)

	return o, nil
}

// AmendOrder replaces the orderer and lines of a pending order and
// reprices it. The order number and creation time are kept.
func (s *Service) AmendOrder(ctx context.Context, number string, change ChangeRequest) (*Order, error) {
	existing, err := s.pendingOrder(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := Validate(change.Orderer, change.Lines); err != nil {
		return nil, err
	}

	policy, err := s.policies.Policy(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get discount policy")
	}

	o := s.pricer.Reprice(existing, change, policy)
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}

	s.amended.Add(ctx, 1)
	s.recordDiscounts(ctx, o)
	zctx.From(ctx).Info("Order amended",
		zap.String("order_number", o.Number),
		zap.Int64("previous_total_cents", int64(existing.Total)),
		zap.Int64("total_cents", int64(o.Total)),
	)

	return o, nil
}

// CancelOrder marks a pending order as cancelled.
func (s *Service) CancelOrder(ctx context.Context, number string) (*Order, error) {
	existing, err := s.pendingOrder(ctx, number)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := existing.clone()
	o.Status = StatusCancelled
	o.CanceledAt = &now
	o.UpdatedAt = now

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}

	s.cancelled.Add(ctx, 1)
	zctx.From(ctx).Info("Order cancelled", zap.String("order_number", o.Number))

	return o, nil
}

// GetOrder returns the order with the given number.
func (s *Service) GetOrder(ctx context.Context, number string) (*Order, error) {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}

// ListPending returns pending orders, newest first.
func (s *Service) ListPending(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "list pending orders")
	}
	return orders, nil
}

// PopularItems returns the most ordered drink and topping. Items nobody
// ordered are reported under NoDrinksName or NoToppingsName with a zero count.
func (s *Service) PopularItems(ctx context.Context) (Popularity, error) {
	p, err := s.orders.MostPopular(ctx)
	if err != nil {
		return Popularity{}, errors.Wrap(err, "get popular items")
	}

	if p.Drink.Count == 0 {
		zctx.From(ctx).Info("No drinks ordered yet")
		p.Drink = PopularItem{Name: NoDrinksName}
	}
	if p.Topping.Count == 0 {
		p.Topping = PopularItem{Name: NoToppingsName}
	}
	return p, nil
}

func (s *Service) pendingOrder(ctx context.Context, number string) (*Order, error) {
	o, err := s.GetOrder(ctx, number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			zctx.From(ctx).Warn("Order not found", zap.String("order_number", number))
		}
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, errors.Wrapf(ErrNotPending, "order %s is %s", number, o.Status)
	}
	return o, nil
}

func (s *Service) recordDiscounts(ctx context.Context, o *Order) {
	for _, d := range o.Discounts {
		s.applied.Add(ctx, 1, metric.WithAttributes(attribute.String("discount", d.Name)))
	}
}

// Validate checks the invariants the pricer relies on: a named orderer,
// at least one line, no negative prices and at least one drink.
func Validate(orderer string, lines []LineItem) error {
	if orderer == "" {
		return ErrOrdererRequired
	}
	if n := utf8.RuneCountInString(orderer); n > MaxOrdererLength {
		return &OrdererTooLongError{Length: n}
	}
	if len(lines) == 0 {
		return ErrEmptyLines
	}

	hasPrimary := false
	for i, l := range lines {
		if l.Price < 0 {
			return &InvalidPriceError{Line: i}
		}
		if l.Primary {
			hasPrimary = true
		}
	}
	if !hasPrimary {
		return &MissingPrimaryItemError{Orderer: orderer}
	}
	return nil
}
