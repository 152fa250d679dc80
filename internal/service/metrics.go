package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Total number of cart mutations by operation",
		},
		[]string{"operation"},
	)

	ordersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed at checkout",
		},
	)

	orderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_order_value",
			Help:    "Grand total of placed orders",
			Buckets: []float64{5, 10, 20, 35, 50, 75, 100, 200},
		},
	)

	catalogUnavailable = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_unavailable_total",
			Help: "Total number of views rendered empty because the catalog fetch failed",
		},
		[]string{"view"},
	)
)
