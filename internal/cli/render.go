package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-faster/errors"

	"github.com/xenking/coffee-orders/internal/codec"
	"github.com/xenking/coffee-orders/internal/domain/money"
	"github.com/xenking/coffee-orders/internal/domain/order"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var (
	receiptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	totalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// writeOrders prints orders in the requested format. A single order is
// printed as an object, several as an array.
func writeOrders(w io.Writer, format string, orders []order.Order) error {
	switch format {
	case formatJSON:
		var data []byte
		if len(orders) == 1 {
			data = codec.MarshalOrder(&orders[0])
		} else {
			data = codec.MarshalOrders(orders)
		}
		_, err := fmt.Fprintln(w, string(data))
		return err
	case formatText:
		for i := range orders {
			if _, err := fmt.Fprintln(w, renderReceipt(&orders[i])); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("unknown format %q, want %s or %s", format, formatJSON, formatText)
	}
}

func renderReceipt(o *order.Order) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(o.Number) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s", o.Orderer, o.Status)) + "\n\n")

	for _, l := range o.Lines {
		b.WriteString(receiptLine(l.Name, l.Price, o.Currency) + "\n")
		for _, a := range l.Addons {
			b.WriteString(mutedStyle.Render(receiptLine("  + "+a.Name, a.Price, o.Currency)) + "\n")
		}
	}
	b.WriteString("\n" + receiptLine("Subtotal", o.Subtotal, o.Currency) + "\n")
	for _, d := range o.Discounts {
		b.WriteString(receiptLine(d.Name, -d.Value(o.Subtotal), o.Currency) + "\n")
	}
	b.WriteString(totalStyle.Render(receiptLine("Total", o.Total, o.Currency)))

	return receiptStyle.Render(b.String())
}

func receiptLine(label string, amount money.Cents, currency money.Currency) string {
	return fmt.Sprintf("%-34s %9s %s", label, amount.String(), currency)
}

func writePopularity(w io.Writer, format string, p order.Popularity) error {
	switch format {
	case formatJSON:
		_, err := fmt.Fprintln(w, string(codec.MarshalPopularity(p)))
		return err
	case formatText:
		_, err := fmt.Fprintln(w, receiptStyle.Render(
			headerStyle.Render("Most popular")+"\n"+
				popularLine("Drink", p.Drink)+"\n"+
				popularLine("Topping", p.Topping),
		))
		return err
	default:
		return errors.Errorf("unknown format %q, want %s or %s", format, formatJSON, formatText)
	}
}

func popularLine(label string, item order.PopularItem) string {
	return fmt.Sprintf("%-8s %-30s %6d", label, item.Name, item.Count)
}
