package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags which menu a product belongs to.
type Kind string

const (
	KindCoffee  Kind = "coffee"
	KindMatcha  Kind = "matcha"
	KindDessert Kind = "dessert"
)

// Kinds lists every menu in display order.
func Kinds() []Kind {
	return []Kind{KindCoffee, KindMatcha, KindDessert}
}

// ParseKind accepts the singular or plural menu name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coffee", "coffees":
		return KindCoffee, nil
	case "matcha", "matchas":
		return KindMatcha, nil
	case "dessert", "desserts":
		return KindDessert, nil
	default:
		return "", fmt.Errorf("unknown product kind %q", s)
	}
}

// Table is the catalog table (or REST resource) holding this kind.
func (k Kind) Table() string {
	return string(k) + "s"
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCoffee, KindMatcha, KindDessert:
		return true
	}
	return false
}

// Product is a coffee, matcha or dessert as listed by the catalog.
// Records are immutable once loaded; the cart never mutates them.
type Product struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Rating      float64         `json:"rating"`
	Popular     bool            `json:"popular"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AddOn is an optional extra (syrup, milk, topping...) offered on the detail page.
type AddOn struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
}
