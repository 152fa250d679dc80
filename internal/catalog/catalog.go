// Package catalog defines the read-only product catalog the storefront sells from.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/utafrali/brewhouse/internal/domain"
)

// AllCategories is the filter value that selects every product or add-on.
const AllCategories = "All"

// Provider supplies immutable product and add-on records.
type Provider interface {
	// ListProducts returns every product of kind, popular ones first.
	ListProducts(ctx context.Context, kind domain.Kind) ([]domain.Product, error)
	// GetProduct returns one product, or an apperrors NotFound error.
	GetProduct(ctx context.Context, kind domain.Kind, id string) (*domain.Product, error)
	// ListAddOns returns every add-on ordered by type.
	ListAddOns(ctx context.Context) ([]domain.AddOn, error)
}

// FetchError reports a failed or malformed catalog read.
type FetchError struct {
	Op   string
	Kind domain.Kind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("catalog %s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SortProducts orders popular products first, keeping the relative order
// within each group.
func SortProducts(products []domain.Product) {
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		switch {
		case a.Popular == b.Popular:
			return 0
		case a.Popular:
			return -1
		default:
			return 1
		}
	})
}

// SortAddOns orders add-ons by type ascending, stable within a type.
func SortAddOns(addOns []domain.AddOn) {
	slices.SortStableFunc(addOns, func(a, b domain.AddOn) int {
		return strings.Compare(a.Type, b.Type)
	})
}

// Categories lists the distinct product categories in first-seen order.
func Categories(products []domain.Product) []string {
	return distinct(products, func(p domain.Product) string { return p.Category })
}

// AddOnTypes lists the distinct add-on types in first-seen order.
func AddOnTypes(addOns []domain.AddOn) []string {
	return distinct(addOns, func(a domain.AddOn) string { return a.Type })
}

// FilterByCategory keeps the products in category. An empty category or
// AllCategories keeps everything.
func FilterByCategory(products []domain.Product, category string) []domain.Product {
	return filter(products, category, func(p domain.Product) string { return p.Category })
}

// FilterByType keeps the add-ons of type t. An empty t or AllCategories keeps
// everything.
func FilterByType(addOns []domain.AddOn, t string) []domain.AddOn {
	return filter(addOns, t, func(a domain.AddOn) string { return a.Type })
}

func distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func filter[T any](items []T, want string, key func(T) string) []T {
	if want == "" || want == AllCategories {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if key(it) == want {
			out = append(out, it)
		}
	}
	return out
}
