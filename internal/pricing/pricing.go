// Package pricing derives order totals from a cart.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/utafrali/brewhouse/internal/domain"
)

// DefaultTaxRate is the storefront sales tax.
var DefaultTaxRate = decimal.RequireFromString("0.10")

const centPlaces = 2

// Totaler is anything that can report a pre-tax subtotal, such as a
// *cart.Store or a cart.Snapshot.
type Totaler interface {
	TotalPrice() decimal.Decimal
}

// Summary is the derived money view of a cart. It is never stored.
type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
}

// Calculator applies a fixed tax rate. It holds no other state.
type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator returns a calculator for rate, which must be in [0, 1).
func NewCalculator(rate decimal.Decimal) (*Calculator, error) {
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("pricing: tax rate %s out of range [0, 1)", rate)
	}
	return &Calculator{taxRate: rate}, nil
}

// TaxRate returns the configured rate.
func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Calculate prices t. Tax is rounded to cents first and the grand total is
// then rounded from subtotal plus the rounded tax. Rounding is half-up; all
// amounts are non-negative so decimal's half-away-from-zero is equivalent.
func (c *Calculator) Calculate(t Totaler) Summary {
	subtotal := t.TotalPrice()
	tax := subtotal.Mul(c.taxRate).Round(centPlaces)
	return Summary{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax).Round(centPlaces),
		TaxRate:    c.TaxRate(),
	}
}

// Quote is the detail-page price of quantity units of p with the selected
// add-ons. Add-ons are charged once regardless of quantity.
func Quote(p domain.Product, quantity int, addOns []domain.AddOn) decimal.Decimal {
	if quantity < 0 {
		quantity = 0
	}
	total := p.Price.Mul(decimal.NewFromInt(int64(quantity)))
	for _, a := range addOns {
		total = total.Add(a.Price)
	}
	return total.Round(centPlaces)
}
