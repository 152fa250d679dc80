package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/brewhouse/internal/domain"
	apperrors "github.com/utafrali/brewhouse/pkg/errors"
	"github.com/utafrali/brewhouse/pkg/tracing"
)

var fetchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "catalog_fetch_duration_seconds",
		Help:    "Catalog read latency by backend, operation and outcome",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	},
	[]string{"backend", "op", "outcome"},
)

// Instrumented wraps a Provider with tracing spans and latency metrics.
type Instrumented struct {
	next    Provider
	backend string
}

// Instrument returns p wrapped for observability, labelled with backend.
func Instrument(p Provider, backend string) *Instrumented {
	return &Instrumented{next: p, backend: backend}
}

func (i *Instrumented) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	fetchDuration.WithLabelValues(i.backend, op, outcome).Observe(time.Since(start).Seconds())
}

func (i *Instrumented) ListProducts(ctx context.Context, kind domain.Kind) (products []domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "catalog", "catalog.ListProducts",
		attribute.String("catalog.backend", i.backend),
		attribute.String("catalog.kind", string(kind)),
	)
	defer func(start time.Time) {
		tracing.RecordError(span, err)
		span.SetAttributes(attribute.Int("catalog.count", len(products)))
		span.End()
		i.observe("list_products", start, err)
	}(time.Now())

	return i.next.ListProducts(ctx, kind)
}

func (i *Instrumented) GetProduct(ctx context.Context, kind domain.Kind, id string) (p *domain.Product, err error) {
	ctx, span := tracing.Start(ctx, "catalog", "catalog.GetProduct",
		attribute.String("catalog.backend", i.backend),
		attribute.String("catalog.kind", string(kind)),
		attribute.String("catalog.product_id", id),
	)
	defer func(start time.Time) {
		if !errors.Is(err, apperrors.ErrNotFound) {
			tracing.RecordError(span, err)
		}
		span.End()
		i.observe("get_product", start, err)
	}(time.Now())

	return i.next.GetProduct(ctx, kind, id)
}

func (i *Instrumented) ListAddOns(ctx context.Context) (addOns []domain.AddOn, err error) {
	ctx, span := tracing.Start(ctx, "catalog", "catalog.ListAddOns",
		attribute.String("catalog.backend", i.backend),
	)
	defer func(start time.Time) {
		tracing.RecordError(span, err)
		span.SetAttributes(attribute.Int("catalog.count", len(addOns)))
		span.End()
		i.observe("list_add_ons", start, err)
	}(time.Now())

	return i.next.ListAddOns(ctx)
}
