package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/brewhouse/internal/service"
	"github.com/utafrali/brewhouse/pkg/health"
	"github.com/utafrali/brewhouse/pkg/middleware"
)

// RouterConfig holds the presentation settings of the router.
type RouterConfig struct {
	ServiceName string
	PprofCIDRs  []string
	CORSOrigins []string
	// MenuMaxAge is the Cache-Control max-age of catalog responses.
	MenuMaxAge time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svc *service.Storefront,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	h := NewStorefrontHandler(svc, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Catalog endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.MenuMaxAge))

			r.Get("/menu/{kind}", h.ListMenu)
			r.Get("/menu/{kind}/{productId}", h.GetProduct)
			r.Get("/add-ons", h.ListAddOns)
		})
		r.Post("/menu/{kind}/{productId}/quote", h.QuoteProduct)

		// Session cart endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(Session)

			r.Get("/cart", h.GetCart)
			r.Delete("/cart", h.ClearCart)
			r.Post("/cart/items", h.AddItem)
			r.Put("/cart/items/{productId}", h.UpdateItemQuantity)
			r.Delete("/cart/items/{productId}", h.RemoveItem)
			r.Post("/checkout", h.Checkout)
		})
	})

	return r
}
