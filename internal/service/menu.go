package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/brewhouse/internal/catalog"
	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/internal/pricing"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

// MaxQuantity bounds a single add or quote.
const MaxQuantity = 99

// MenuView is one menu page: the products of a kind, optionally narrowed to
// a category, plus every category the kind offers.
type MenuView struct {
	Kind       domain.Kind
	Category   string
	Products   []domain.Product
	Categories []string
	Available  bool
}

// AddOnView lists add-ons, optionally narrowed to one type.
type AddOnView struct {
	Type      string
	AddOns    []domain.AddOn
	Types     []string
	Available bool
}

// QuoteInput holds the detail page selection.
type QuoteInput struct {
	Quantity int      `json:"quantity" validate:"gte=1,lte=99"`
	AddOnIDs []string `json:"add_on_ids" validate:"max=20,dive,required"`
}

// QuoteResult is the detail page total for a selection.
type QuoteResult struct {
	Product  domain.Product
	Quantity int
	AddOns   []domain.AddOn
	Total    decimal.Decimal
}

// Menu lists the products of kind. A failed catalog fetch is logged and
// yields an empty view with Available false.
func (s *Storefront) Menu(ctx context.Context, kind domain.Kind, category string) (*MenuView, error) {
	if !kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown menu %q", kind))
	}

	view := &MenuView{
		Kind:       kind,
		Category:   category,
		Products:   []domain.Product{},
		Categories: []string{},
	}

	products, err := s.catalog.ListProducts(ctx, kind)
	if err != nil {
		s.logFetchError(ctx, "menu", err)
		catalogUnavailable.WithLabelValues("menu").Inc()
		return view, nil
	}

	view.Available = true
	view.Categories = catalog.Categories(products)
	view.Products = catalog.FilterByCategory(products, category)
	return view, nil
}

// AddOns lists add-ons of type t, or all of them when t is empty or "All".
func (s *Storefront) AddOns(ctx context.Context, t string) *AddOnView {
	view := &AddOnView{
		Type:   t,
		AddOns: []domain.AddOn{},
		Types:  []string{},
	}

	addOns, err := s.catalog.ListAddOns(ctx)
	if err != nil {
		s.logFetchError(ctx, "add-ons", err)
		catalogUnavailable.WithLabelValues("add_ons").Inc()
		return view
	}

	view.Available = true
	view.Types = catalog.AddOnTypes(addOns)
	view.AddOns = catalog.FilterByType(addOns, t)
	return view
}

// Product returns a single product for the detail page.
func (s *Storefront) Product(ctx context.Context, kind domain.Kind, id string) (*domain.Product, error) {
	if !kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown menu %q", kind))
	}
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	p, err := s.catalog.GetProduct(ctx, kind, id)
	if err != nil {
		return nil, s.catalogError(ctx, "product", err)
	}
	return p, nil
}

// Quote prices a detail page selection: price × quantity plus each selected
// add-on once.
func (s *Storefront) Quote(ctx context.Context, kind domain.Kind, id string, in QuoteInput) (*QuoteResult, error) {
	if in.Quantity < 1 || in.Quantity > MaxQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity))
	}

	p, err := s.Product(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	selected := []domain.AddOn{}
	if len(in.AddOnIDs) > 0 {
		addOns, err := s.catalog.ListAddOns(ctx)
		if err != nil {
			return nil, s.catalogError(ctx, "quote", err)
		}
		byID := make(map[string]domain.AddOn, len(addOns))
		for _, a := range addOns {
			byID[a.ID] = a
		}

		seen := make(map[string]struct{}, len(in.AddOnIDs))
		for _, addOnID := range in.AddOnIDs {
			if _, dup := seen[addOnID]; dup {
				continue
			}
			seen[addOnID] = struct{}{}

			a, ok := byID[addOnID]
			if !ok {
				return nil, apperrors.NotFound("add-on", addOnID)
			}
			selected = append(selected, a)
		}
	}

	return &QuoteResult{
		Product:  *p,
		Quantity: in.Quantity,
		AddOns:   selected,
		Total:    pricing.Quote(*p, in.Quantity, selected),
	}, nil
}

func (s *Storefront) logFetchError(ctx context.Context, view string, err error) {
	s.logger.ErrorContext(ctx, "catalog fetch failed",
		slog.String("view", view),
		slog.String("error", err.Error()),
	)
}

// catalogError passes NotFound through and turns fetch failures into a 503.
func (s *Storefront) catalogError(ctx context.Context, view string, err error) error {
	var fe *catalog.FetchError
	if errors.As(err, &fe) {
		s.logFetchError(ctx, view, err)
		catalogUnavailable.WithLabelValues(view).Inc()
		return apperrors.CatalogUnavailable(err)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s lookup: %w", view, err)
}
