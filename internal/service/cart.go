package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/brewhouse/internal/cart"
	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/internal/event"
	"github.com/utafrali/brewhouse/internal/pricing"
	"github.com/utafrali/brewhouse/internal/session"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
)

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	Kind      string `json:"kind" validate:"required,max=16"`
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=99"`
}

// UpdateQuantityInput holds the absolute quantity for a line item.
// Zero or less removes the item.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"lte=99"`
}

// CartView is the cart as the storefront renders it.
type CartView struct {
	SessionID  string
	Items      []domain.LineItem
	TotalItems int
	Summary    pricing.Summary
}

// Receipt confirms a placed order.
type Receipt struct {
	OrderID    string
	SessionID  string
	Items      []domain.LineItem
	TotalItems int
	Summary    pricing.Summary
	PlacedAt   time.Time
}

func (s *Storefront) view(sessionID string, snap cart.Snapshot) *CartView {
	return &CartView{
		SessionID:  sessionID,
		Items:      snap.Items,
		TotalItems: snap.TotalItems,
		Summary:    s.calc.Calculate(snap),
	}
}

func checkSession(sessionID string) error {
	if !session.ValidID(sessionID) {
		return apperrors.InvalidInput("a valid session id is required")
	}
	return nil
}

// withCart runs fn on the cart the session manager installs in the context.
func (s *Storefront) withCart(ctx context.Context, sessionID string, fn func(*cart.Store) error) error {
	return s.sessions.With(ctx, sessionID, func(ctx context.Context) error {
		store, err := cart.FromContext(ctx)
		if err != nil {
			return err
		}
		return fn(store)
	})
}

// mutate applies fn to the session cart and publishes cart.updated.
func (s *Storefront) mutate(ctx context.Context, sessionID, op string, fn func(*cart.Store)) (*CartView, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}

	var snap cart.Snapshot
	err := s.withCart(ctx, sessionID, func(store *cart.Store) error {
		fn(store)
		snap = store.Snapshot()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cartOperations.WithLabelValues(op).Inc()

	if err := s.producer.PublishCartUpdated(ctx, sessionID, snap); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return s.view(sessionID, snap), nil
}

// Cart returns the session's cart with its pricing summary.
func (s *Storefront) Cart(ctx context.Context, sessionID string) (*CartView, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}

	snap, err := s.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return s.view(sessionID, snap), nil
}

// AddItem adds quantity units of a catalog product to the cart, one Add per
// unit. The product is looked up so the cart holds the current record.
func (s *Storefront) AddItem(ctx context.Context, sessionID string, in AddItemInput) (*CartView, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	kind, err := domain.ParseKind(in.Kind)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 || qty > MaxQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity))
	}

	p, err := s.Product(ctx, kind, in.ProductID)
	if err != nil {
		return nil, err
	}

	view, err := s.mutate(ctx, sessionID, "add", func(store *cart.Store) {
		for i := 0; i < qty; i++ {
			store.Add(*p)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", p.ID),
		slog.Int("quantity", qty),
	)
	return view, nil
}

// UpdateQuantity sets a line item's quantity. A quantity of zero or less
// removes it; an unknown product leaves the cart unchanged.
func (s *Storefront) UpdateQuantity(ctx context.Context, sessionID, productID string, in UpdateQuantityInput) (*CartView, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if in.Quantity > MaxQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantity))
	}

	view, err := s.mutate(ctx, sessionID, "update", func(store *cart.Store) {
		store.UpdateQuantity(productID, in.Quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
		slog.Int("quantity", in.Quantity),
	)
	return view, nil
}

// RemoveItem drops a line item. Removing an absent product is not an error.
func (s *Storefront) RemoveItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	view, err := s.mutate(ctx, sessionID, "remove", func(store *cart.Store) {
		store.Remove(productID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
	)
	return view, nil
}

// ClearCart empties the session's cart by ending the session. The next
// request with the same id starts a fresh, empty cart.
func (s *Storefront) ClearCart(ctx context.Context, sessionID string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}

	if err := s.sessions.End(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	cartOperations.WithLabelValues("clear").Inc()

	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)
	return nil
}

// Checkout places an order for the current cart and clears it. No payment is
// taken; any non-empty cart can be checked out.
func (s *Storefront) Checkout(ctx context.Context, sessionID string) (*Receipt, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := s.withCart(ctx, sessionID, func(store *cart.Store) error {
		snap := store.Snapshot()
		if snap.IsEmpty() {
			return apperrors.InvalidInput("cart is empty")
		}
		receipt = &Receipt{
			OrderID:    uuid.NewString(),
			SessionID:  sessionID,
			Items:      snap.Items,
			TotalItems: snap.TotalItems,
			Summary:    s.calc.Calculate(snap),
			PlacedAt:   s.now(),
		}
		store.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	ordersPlaced.Inc()
	orderValue.Observe(receipt.Summary.GrandTotal.InexactFloat64())

	if err := s.producer.PublishOrderPlaced(ctx, event.Order{
		ID:        receipt.OrderID,
		SessionID: sessionID,
		Items:     receipt.Items,
		Summary:   receipt.Summary,
		PlacedAt:  receipt.PlacedAt,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", receipt.OrderID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("session_id", sessionID),
		slog.String("order_id", receipt.OrderID),
		slog.Int("total_items", receipt.TotalItems),
		slog.String("grand_total", receipt.Summary.GrandTotal.StringFixed(2)),
	)
	return receipt, nil
}
