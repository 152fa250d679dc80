package domain

import "github.com/shopspring/decimal"

// LineItem pairs a product with how many of it are in the cart.
// Quantity is always at least 1 while the item is held by a cart.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Total is the line price at the product's current price.
func (li LineItem) Total() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
