// Package service implements the storefront use cases on top of the catalog,
// the session carts and the pricing calculator.
package service

import (
	"log/slog"
	"time"

	"github.com/utafrali/brewhouse/internal/catalog"
	"github.com/utafrali/brewhouse/internal/event"
	"github.com/utafrali/brewhouse/internal/pricing"
	"github.com/utafrali/brewhouse/internal/session"
)

// Storefront ties the storefront collaborators together.
type Storefront struct {
	catalog  catalog.Provider
	sessions *session.Manager
	calc     *pricing.Calculator
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewStorefront creates a new storefront service.
func NewStorefront(
	cat catalog.Provider,
	sessions *session.Manager,
	calc *pricing.Calculator,
	producer *event.Producer,
	logger *slog.Logger,
) *Storefront {
	return &Storefront{
		catalog:  cat,
		sessions: sessions,
		calc:     calc,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}
