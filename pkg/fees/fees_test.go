package fees

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPlatformFee(t *testing.T) {
	calc := NewCalculatorFromConfig(250, "0.30")

	cases := []struct {
		name     string
		subtotal string
		want     string
	}{
		{name: "round subtotal", subtotal: "100.00", want: "2.80"},
		{name: "rounds half up", subtotal: "10.10", want: "0.55"},
		{name: "zero subtotal", subtotal: "0.00", want: "0.00"},
		{name: "negative subtotal", subtotal: "-5.00", want: "0.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subtotal := decimal.RequireFromString(tc.subtotal)
			got := calc.PlatformFee(subtotal)
			if got.StringFixed(2) != tc.want {
				t.Fatalf("PlatformFee(%s) = %s, want %s", tc.subtotal, got.StringFixed(2), tc.want)
			}
		})
	}
}

func TestNewCalculatorFromConfigBadFixed(t *testing.T) {
	calc := NewCalculatorFromConfig(100, "not-a-number")
	got := calc.PlatformFee(decimal.RequireFromString("100.00"))
	if got.StringFixed(2) != "1.00" {
		t.Fatalf("expected fixed component to default to zero, got %s", got.StringFixed(2))
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(decimal.RequireFromString("12.50"), 3)
	if got.StringFixed(2) != "37.50" {
		t.Fatalf("LineTotal = %s, want 37.50", got.StringFixed(2))
	}
}
