package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/coffee-orders/internal/domain/money"
)

func drinks(prices ...money.Cents) []Line {
	lines := make([]Line, len(prices))
	for i, p := range prices {
		lines[i] = Line{Price: p, Primary: true}
	}
	return lines
}

func sum(lines []Line) money.Cents {
	var s money.Cents
	for _, l := range lines {
		s += l.Price
	}
	return s
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		policy    Policy
		lines     []Line
		wantName  string
		wantKind  Kind
		wantValue money.Cents
	}{
		{
			name:   "no rules enabled",
			policy: Policy{Enabled: true},
			lines:  drinks(700, 600, 500),
		},
		{
			name:   "subtotal below threshold",
			policy: AllEnabled(),
			lines:  drinks(500),
		},
		{
			name:   "subtotal exactly at threshold does not qualify",
			policy: AllEnabled(),
			lines:  drinks(600, 600),
		},
		{
			name:      "subtotal one cent over threshold",
			policy:    Policy{Enabled: true, PercentageOverThreshold: true},
			lines:     drinks(600, 601),
			wantName:  ThresholdName,
			wantKind:  KindPercentage,
			wantValue: 300, // floor(1201 * 0.25)
		},
		{
			name:      "percentage only",
			policy:    Policy{Enabled: true, PercentageOverThreshold: true},
			lines:     drinks(700, 600),
			wantName:  ThresholdName,
			wantKind:  KindPercentage,
			wantValue: 325,
		},
		{
			name:      "free item only",
			policy:    Policy{Enabled: true, FreeCheapestAfterN: true},
			lines:     drinks(300, 350, 280),
			wantName:  FreeItemName,
			wantKind:  KindFixed,
			wantValue: 280,
		},
		{
			name:   "two drinks never earn a free item",
			policy: Policy{Enabled: true, FreeCheapestAfterN: true},
			lines:  drinks(300, 350),
		},
		{
			name:   "toppings do not count as drinks",
			policy: Policy{Enabled: true, FreeCheapestAfterN: true},
			lines: []Line{
				{Price: 400, Primary: true},
				{Price: 50},
				{Price: 400, Primary: true},
				{Price: 60},
			},
		},
		{
			name:   "cheapest drink ignores cheaper toppings",
			policy: Policy{Enabled: true, FreeCheapestAfterN: true},
			lines: []Line{
				{Price: 400, Primary: true},
				{Price: 50},
				{Price: 450, Primary: true},
				{Price: 420, Primary: true},
			},
			wantName:  FreeItemName,
			wantKind:  KindFixed,
			wantValue: 400,
		},
		{
			name:      "both fire and percentage is larger",
			policy:    AllEnabled(),
			lines:     drinks(500, 500, 300),
			wantName:  ThresholdName,
			wantKind:  KindPercentage,
			wantValue: 325,
		},
		{
			name:      "both fire and free item is larger",
			policy:    AllEnabled(),
			lines:     drinks(500, 500, 500),
			wantName:  FreeItemName,
			wantKind:  KindFixed,
			wantValue: 500, // 25% of 1500 is 375
		},
		{
			name:      "tie goes to percentage",
			policy:    AllEnabled(),
			lines:     drinks(400, 400, 400, 400),
			wantName:  ThresholdName,
			wantKind:  KindPercentage,
			wantValue: 400, // 25% of 1600 equals the cheapest drink
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtotal := sum(tt.lines)
			got := Evaluate(tt.policy, tt.lines, subtotal)

			if tt.wantName == "" {
				require.NotNil(t, got)
				assert.Empty(t, got)
				assert.Equal(t, money.Cents(0), Best(got, subtotal))
				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, tt.wantName, got[0].Name)
			assert.Equal(t, tt.wantKind, got[0].Kind)
			assert.Equal(t, tt.wantValue, got[0].Value(subtotal))
			assert.Equal(t, tt.wantValue, Best(got, subtotal))
		})
	}
}

func TestEvaluate_ThresholdProperty(t *testing.T) {
	policy := Policy{Enabled: true, PercentageOverThreshold: true}
	for s := money.Cents(0); s <= 3000; s += 7 {
		got := Evaluate(policy, nil, s)
		if s <= ThresholdCents {
			assert.Empty(t, got, "subtotal %d", s)
			continue
		}
		require.Len(t, got, 1, "subtotal %d", s)
		assert.Equal(t, s*25/100, got[0].Value(s), "subtotal %d", s)
	}
}

func TestEvaluate_FreeItemTieKeepsFirst(t *testing.T) {
	lines := drinks(300, 250, 250, 900)
	got := Evaluate(Policy{Enabled: true, FreeCheapestAfterN: true}, lines, sum(lines))

	require.Len(t, got, 1)
	assert.Equal(t, money.Cents(250), got[0].Amount)
}

func TestDiscount_Value(t *testing.T) {
	pct := NewPercentage("half", decimal.NewFromInt(50))
	assert.Equal(t, money.Cents(0), pct.Value(0))
	assert.Equal(t, money.Cents(2), pct.Value(5)) // floor(2.5)
	assert.Equal(t, money.Cents(0), pct.Value(-100))

	fixed := NewFixed("off", 120)
	assert.Equal(t, money.Cents(120), fixed.Value(0))
	assert.Equal(t, money.Cents(0), NewFixed("neg", -5).Value(100))
	assert.Equal(t, money.Cents(0), Discount{Name: "empty"}.Value(100))
}

func TestBest(t *testing.T) {
	ds := []Discount{
		NewFixed("a", 100),
		NewPercentage("b", decimal.NewFromInt(10)),
		NewFixed("c", 250),
	}
	assert.Equal(t, money.Cents(300), Best(ds, 3000))
	assert.Equal(t, money.Cents(250), Best(ds, 1000))
	assert.Equal(t, money.Cents(0), Best(nil, 1000))
}
