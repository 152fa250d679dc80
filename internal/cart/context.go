package cart

import (
	"context"
	"errors"
)

// ErrNoStore is returned by FromContext when no cart has been installed.
var ErrNoStore = errors.New("cart: no store in context")

type contextKey struct{}

// WithStore returns a context carrying s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the cart installed by WithStore.
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrNoStore
	}
	return s, nil
}
