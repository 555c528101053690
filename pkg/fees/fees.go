// Package fees computes the platform fee charged to wholesalers per order.
package fees

import (
	"github.com/shopspring/decimal"
)

// Calculator applies a basis-point percentage plus a fixed charge to an
// order subtotal. All amounts are rounded to 2 decimal places.
type Calculator struct {
	percentBps int64
	fixed      decimal.Decimal
}

func NewCalculator(percentBps int64, fixed decimal.Decimal) *Calculator {
	return &Calculator{percentBps: percentBps, fixed: fixed}
}

// NewCalculatorFromConfig parses the fixed amount from its string form.
// An unparseable fixed amount falls back to zero.
func NewCalculatorFromConfig(percentBps int64, fixed string) *Calculator {
	amount, err := decimal.NewFromString(fixed)
	if err != nil {
		amount = decimal.Zero
	}
	return NewCalculator(percentBps, amount)
}

// PlatformFee returns the fee for the given subtotal. A zero or negative
// subtotal yields a zero fee.
func (c *Calculator) PlatformFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero.Round(2)
	}
	percent := subtotal.
		Mul(decimal.NewFromInt(c.percentBps)).
		Div(decimal.NewFromInt(10000))
	return percent.Add(c.fixed).Round(2)
}

// LineTotal multiplies a unit price by a quantity, rounded to 2 decimals.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
