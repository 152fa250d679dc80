// Package memory is an in-process catalog used for local development and tests.
package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/utafrali/brewhouse/internal/catalog"
	"github.com/utafrali/brewhouse/internal/domain"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

// Catalog serves a fixed menu from memory. It is immutable after New, so
// concurrent reads need no locking.
type Catalog struct {
	products map[domain.Kind][]domain.Product
	addOns   []domain.AddOn
}

// New builds a catalog from products and add-ons. Products are grouped by
// their Kind; records with an unknown kind are rejected.
func New(products []domain.Product, addOns []domain.AddOn) (*Catalog, error) {
	c := &Catalog{products: make(map[domain.Kind][]domain.Product)}
	for _, p := range products {
		if !p.Kind.Valid() {
			return nil, fmt.Errorf("memory catalog: product %s has unknown kind %q", p.ID, p.Kind)
		}
		c.products[p.Kind] = append(c.products[p.Kind], p)
	}
	for k := range c.products {
		catalog.SortProducts(c.products[k])
	}
	c.addOns = slices.Clone(addOns)
	catalog.SortAddOns(c.addOns)
	return c, nil
}

// NewSeeded returns a catalog holding the default menu.
func NewSeeded() *Catalog {
	c, err := New(SeedProducts(), SeedAddOns())
	if err != nil {
		panic(err)
	}
	return c
}

// ListProducts returns a copy of the products of kind, popular first.
func (c *Catalog) ListProducts(_ context.Context, kind domain.Kind) ([]domain.Product, error) {
	if !kind.Valid() {
		return nil, &catalog.FetchError{Op: "list products", Kind: kind, Err: fmt.Errorf("unknown kind")}
	}
	return slices.Clone(c.products[kind]), nil
}

// GetProduct returns the product with id, or a NotFound error.
func (c *Catalog) GetProduct(_ context.Context, kind domain.Kind, id string) (*domain.Product, error) {
	for _, p := range c.products[kind] {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperrors.NotFound(string(kind), id)
}

// ListAddOns returns a copy of every add-on ordered by type.
func (c *Catalog) ListAddOns(_ context.Context) ([]domain.AddOn, error) {
	return slices.Clone(c.addOns), nil
}
