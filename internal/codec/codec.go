// Package codec encodes and decodes orders as JSON.
//
// Field names follow the shop's snake_case wire format: an order request
// looks like
//
//	{"orderer":"Ada","currency":"EUR","order_lines":[
//	  {"name":"Latte","price_in_cents":450,"primary":true,
//	   "addons":[{"name":"Oat milk","price_in_cents":50}]}]}
package codec

import (
	"bytes"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/coffee-orders/internal/domain/discount"
	"github.com/xenking/coffee-orders/internal/domain/money"
	"github.com/xenking/coffee-orders/internal/domain/order"
)

// DecodeRequest decodes a single order request.
func DecodeRequest(data []byte) (order.Request, error) {
	data, err := singleValue(data)
	if err != nil {
		return order.Request{}, err
	}
	return decodeRequest(jx.DecodeBytes(data))
}

// DecodeRequests decodes either a single request object or an array of
// request objects.
func DecodeRequests(data []byte) ([]order.Request, error) {
	data, err := singleValue(data)
	if err != nil {
		return nil, err
	}
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		req, err := decodeRequest(d)
		if err != nil {
			return nil, err
		}
		return []order.Request{req}, nil
	}

	var reqs []order.Request
	if err := d.Arr(func(d *jx.Decoder) error {
		req, err := decodeRequest(d)
		if err != nil {
			return errors.Wrapf(err, "request %d", len(reqs))
		}
		reqs = append(reqs, req)
		return nil
	}); err != nil {
		return nil, err
	}
	return reqs, nil
}

// DecodeChangeRequest decodes an admin change request.
func DecodeChangeRequest(data []byte) (order.ChangeRequest, error) {
	data, err := singleValue(data)
	if err != nil {
		return order.ChangeRequest{}, err
	}
	var req order.ChangeRequest
	err = jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "orderer":
			req.Orderer, err = d.Str()
		case "order_lines":
			req.Lines, err = decodeLines(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "decode %s", key)
		}
		return nil
	})
	if err != nil {
		return order.ChangeRequest{}, err
	}
	return req, nil
}

// singleValue returns data trimmed to its only JSON value. Anything but
// whitespace after that value is an error.
func singleValue(data []byte) ([]byte, error) {
	data = bytes.TrimLeft(data, " \t\r\n")
	raw, err := jx.DecodeBytes(data).Raw()
	if err != nil {
		return nil, errors.Wrap(err, "read JSON value")
	}
	if rest := bytes.TrimSpace(data[len(raw):]); len(rest) > 0 {
		return nil, errors.Errorf("unexpected %q after JSON value", truncate(rest, 16))
	}
	return data[:len(raw)], nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

func decodeRequest(d *jx.Decoder) (order.Request, error) {
	var req order.Request
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "orderer":
			req.Orderer, err = d.Str()
		case "currency":
			var s string
			if s, err = d.Str(); err == nil && s != "" {
				req.Currency, err = money.ParseCurrency(s)
			}
		case "order_lines":
			req.Lines, err = decodeLines(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "decode %s", key)
		}
		return nil
	})
	if err != nil {
		return order.Request{}, err
	}
	return req, nil
}

// MarshalLines encodes order lines as a JSON array.
func MarshalLines(lines []order.LineItem) []byte {
	var e jx.Encoder
	encodeLines(&e, lines)
	return e.Bytes()
}

// UnmarshalLines decodes a JSON array of order lines.
func UnmarshalLines(data []byte) ([]order.LineItem, error) {
	return decodeLines(jx.DecodeBytes(data))
}

func encodeLines(e *jx.Encoder, lines []order.LineItem) {
	e.ArrStart()
	for _, l := range lines {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("price_in_cents")
		e.Int64(int64(l.Price))
		e.FieldStart("primary")
		e.Bool(l.Primary)
		e.FieldStart("addons")
		e.ArrStart()
		for _, a := range l.Addons {
			e.ObjStart()
			e.FieldStart("name")
			e.Str(a.Name)
			e.FieldStart("price_in_cents")
			e.Int64(int64(a.Price))
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()
}

func decodeLines(d *jx.Decoder) ([]order.LineItem, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}

	lines := []order.LineItem{}
	err := d.Arr(func(d *jx.Decoder) error {
		var l order.LineItem
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				l.Name, err = d.Str()
			case "price_in_cents":
				l.Price, err = decodeCents(d)
			case "primary":
				l.Primary, err = d.Bool()
			case "addons":
				l.Addons, err = decodeAddons(d)
			default:
				err = d.Skip()
			}
			if err != nil {
				return errors.Wrapf(err, "decode %s", key)
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "line %d", len(lines))
		}
		lines = append(lines, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func decodeAddons(d *jx.Decoder) ([]order.Addon, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}

	var addons []order.Addon
	err := d.Arr(func(d *jx.Decoder) error {
		var a order.Addon
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				a.Name, err = d.Str()
			case "price_in_cents":
				a.Price, err = decodeCents(d)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		addons = append(addons, a)
		return nil
	})
	return addons, err
}

func decodeCents(d *jx.Decoder) (money.Cents, error) {
	v, err := d.Int64()
	if err != nil {
		return 0, err
	}
	return money.Cents(v), nil
}

// MarshalDiscounts encodes discounts as a JSON array. Each element carries
// either "percentage" or "amount_in_cents".
func MarshalDiscounts(discounts []discount.Discount) []byte {
	var e jx.Encoder
	encodeDiscounts(&e, discounts)
	return e.Bytes()
}

// UnmarshalDiscounts decodes a JSON array of discounts.
func UnmarshalDiscounts(data []byte) ([]discount.Discount, error) {
	return decodeDiscounts(jx.DecodeBytes(data))
}

func encodeDiscounts(e *jx.Encoder, discounts []discount.Discount) {
	e.ArrStart()
	for _, d := range discounts {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(d.Name)
		switch d.Kind {
		case discount.KindPercentage:
			e.FieldStart("percentage")
			e.Str(d.Percentage.String())
		case discount.KindFixed:
			e.FieldStart("amount_in_cents")
			e.Int64(int64(d.Amount))
		}
		e.ObjEnd()
	}
	e.ArrEnd()
}

func decodeDiscounts(d *jx.Decoder) ([]discount.Discount, error) {
	if d.Next() == jx.Null {
		return []discount.Discount{}, d.Null()
	}

	discounts := []discount.Discount{}
	err := d.Arr(func(d *jx.Decoder) error {
		var (
			name    string
			pct     *decimal.Decimal
			amount  *money.Cents
			decoded discount.Discount
		)
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "name":
				v, err := d.Str()
				name = v
				return err
			case "percentage":
				v, err := decodeDecimal(d)
				pct = &v
				return err
			case "amount_in_cents":
				v, err := decodeCents(d)
				amount = &v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}

		switch {
		case pct != nil && amount != nil:
			return errors.Errorf("discount %q has both percentage and amount", name)
		case pct != nil:
			decoded = discount.NewPercentage(name, *pct)
		case amount != nil:
			decoded = discount.NewFixed(name, *amount)
		default:
			return errors.Errorf("discount %q has neither percentage nor amount", name)
		}
		discounts = append(discounts, decoded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return discounts, nil
}

// decodeDecimal accepts a JSON number or a numeric string.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}

// MarshalOrder encodes a priced order.
func MarshalOrder(o *order.Order) []byte {
	var e jx.Encoder
	encodeOrder(&e, o)
	return e.Bytes()
}

// MarshalOrders encodes a list of priced orders as a JSON array.
func MarshalOrders(orders []order.Order) []byte {
	var e jx.Encoder
	e.ArrStart()
	for i := range orders {
		encodeOrder(&e, &orders[i])
	}
	e.ArrEnd()
	return e.Bytes()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("order_number")
	e.Str(o.Number)
	e.FieldStart("orderer")
	e.Str(o.Orderer)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("currency")
	e.Str(string(o.Currency))
	e.FieldStart("order_lines")
	encodeLines(e, o.Lines)
	e.FieldStart("discounts")
	encodeDiscounts(e, o.Discounts)
	e.FieldStart("sub_total_price_in_cents")
	e.Int64(int64(o.Subtotal))
	e.FieldStart("total_price_in_cents")
	e.Int64(int64(o.Total))
	e.FieldStart("created_at")
	encodeTime(e, o.CreatedAt)
	e.FieldStart("updated_at")
	encodeTime(e, o.UpdatedAt)
	if o.CanceledAt != nil {
		e.FieldStart("canceled_at")
		encodeTime(e, *o.CanceledAt)
	}
	e.ObjEnd()
}

func encodeTime(e *jx.Encoder, t time.Time) {
	if t.IsZero() {
		e.Null()
		return
	}
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

// MarshalPopularity encodes the most popular drink and topping.
func MarshalPopularity(p order.Popularity) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("most_popular_drink")
	e.Str(p.Drink.Name)
	e.FieldStart("drink_count")
	e.Int64(p.Drink.Count)
	e.FieldStart("most_popular_topping")
	e.Str(p.Topping.Name)
	e.FieldStart("topping_count")
	e.Int64(p.Topping.Count)
	e.ObjEnd()
	return e.Bytes()
}
