package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/coffee-orders/internal/app"
	"github.com/xenking/coffee-orders/internal/domain/order"
)

func testConfig() *app.Config {
	return &app.Config{
		OrderNumberPrefix: "RCS",
		Discount: app.DiscountConfig{
			Enabled:                 true,
			PercentageOverThreshold: true,
			FreeCheapestAfterN:      true,
		},
	}
}

func execute(t *testing.T, cfg *app.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&deps{
		meterProvider: noop.NewMeterProvider(),
		loadConfig:    func() (*app.Config, error) { return cfg, nil },
	})

	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const twoLattes = `{"orderer":"Ada","order_lines":[
	{"name":"Latte","price_in_cents":700,"primary":true},
	{"name":"Flat white","price_in_cents":600,"primary":true}
]}`

func TestPrice_Stdin(t *testing.T) {
	out, err := execute(t, testConfig(), twoLattes, "price")
	require.NoError(t, err)

	assert.Contains(t, out, `"sub_total_price_in_cents":1300`)
	assert.Contains(t, out, `"total_price_in_cents":975`)
	assert.Contains(t, out, `"percentage":"25"`)
	assert.Contains(t, out, `"currency":"EUR"`)
	assert.True(t, strings.HasPrefix(out, "{"))
}

func TestPrice_PolicyDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Discount.Enabled = false

	out, err := execute(t, cfg, twoLattes, "price")
	require.NoError(t, err)

	assert.Contains(t, out, `"total_price_in_cents":1300`)
	assert.Contains(t, out, `"discounts":[]`)
}

func TestPrice_GzipBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(`[` + twoLattes + `,{"orderer":"Grace","currency":"HUF","order_lines":[
		{"price_in_cents":300,"primary":true},
		{"price_in_cents":350,"primary":true},
		{"price_in_cents":280,"primary":true}
	]}]`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	out, err := execute(t, testConfig(), "", "price", "--concurrency", "2", path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "["))
	first := strings.Index(out, `"total_price_in_cents":975`)
	second := strings.Index(out, `"total_price_in_cents":650`)
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second, "orders keep input order")
	assert.Contains(t, out, `"currency":"HUF"`)
}

func TestPrice_TextFormat(t *testing.T) {
	out, err := execute(t, testConfig(), twoLattes, "price", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Flat white")
	assert.Contains(t, out, "13.00 EUR")
	assert.Contains(t, out, "-3.25 EUR")
	assert.Contains(t, out, "9.75 EUR")
}

func TestPrice_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		errText string
	}{
		{
			name:    "no drink",
			stdin:   `{"orderer":"Ada","order_lines":[{"name":"Cookie","price_in_cents":200}]}`,
			args:    []string{"price"},
			errText: "does not contain a drink",
		},
		{
			name:    "malformed json",
			stdin:   `{"orderer":`,
			args:    []string{"price"},
			errText: "decode order requests",
		},
		{
			name:    "concatenated requests",
			stdin:   twoLattes + "\n" + twoLattes,
			args:    []string{"price"},
			errText: "after JSON value",
		},
		{
			name:    "empty batch",
			stdin:   `[]`,
			args:    []string{"price"},
			errText: "no order requests",
		},
		{
			name:    "unknown format",
			stdin:   twoLattes,
			args:    []string{"price", "--format", "xml"},
			errText: "unknown format",
		},
		{
			name:    "missing file",
			args:    []string{"price", "does-not-exist.json"},
			errText: "open does-not-exist.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, testConfig(), tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestPrice_ClientErrorIsTyped(t *testing.T) {
	_, err := execute(t, testConfig(), `{"orderer":"Ada","order_lines":[{"price_in_cents":200}]}`, "price")

	var mpErr *order.MissingPrimaryItemError
	require.ErrorAs(t, err, &mpErr)
}

func TestStorageCommands_RequireDatabase(t *testing.T) {
	for _, args := range [][]string{
		{"migrate"},
		{"place"},
		{"amend", "RCS-1"},
		{"cancel", "RCS-1"},
		{"get", "RCS-1"},
		{"list"},
		{"popular"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, err := execute(t, testConfig(), twoLattes, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "database URL is required")
		})
	}
}

func TestWritePopularity(t *testing.T) {
	p := order.Popularity{
		Drink:   order.PopularItem{Name: "Espresso", Count: 10},
		Topping: order.PopularItem{Name: order.NoToppingsName},
	}

	var text bytes.Buffer
	require.NoError(t, writePopularity(&text, formatText, p))
	assert.Contains(t, text.String(), "Espresso")
	assert.Contains(t, text.String(), order.NoToppingsName)

	var js bytes.Buffer
	require.NoError(t, writePopularity(&js, formatJSON, p))
	assert.Contains(t, js.String(), `"drink_count":10`)
	assert.Contains(t, js.String(), `"most_popular_topping":"No toppings ordered yet"`)

	require.Error(t, writePopularity(&js, "xml", p))
}
