package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/brewhouse/internal/catalog"
	catalogmemory "github.com/utafrali/brewhouse/internal/catalog/memory"
	catalogpostgres "github.com/utafrali/brewhouse/internal/catalog/postgres"
	catalogrest "github.com/utafrali/brewhouse/internal/catalog/rest"
	"github.com/utafrali/brewhouse/internal/config"
	"github.com/utafrali/brewhouse/internal/event"
	handler "github.com/utafrali/brewhouse/internal/handler/http"
	"github.com/utafrali/brewhouse/internal/pricing"
	"github.com/utafrali/brewhouse/internal/service"
	"github.com/utafrali/brewhouse/internal/session"
	sessionmemory "github.com/utafrali/brewhouse/internal/session/memory"
	sessionredis "github.com/utafrali/brewhouse/internal/session/redis"
	"github.com/utafrali/brewhouse/migrations"
	"github.com/utafrali/brewhouse/pkg/database"
	"github.com/utafrali/brewhouse/pkg/health"
	pkgkafka "github.com/utafrali/brewhouse/pkg/kafka"
	"github.com/utafrali/brewhouse/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	sessions       *sessionmemory.Repository
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	healthHandler := health.NewHandler()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	cat, err := a.initCatalog(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	repo, err := a.initSessions(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	// Initialize the event publisher.
	var publisher event.Publisher = event.NoopPublisher{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka disabled, events are dropped")
	}

	calc, err := pricing.NewCalculator(cfg.TaxRate)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("pricing: %w", err)
	}
	logger.Info("pricing configured", slog.String("tax_rate", calc.TaxRate().String()))

	// Build the dependency graph.
	sessions := session.NewManager(repo, logger)
	eventProducer := event.NewProducer(publisher, logger)
	storefront := service.NewStorefront(cat, sessions, calc, eventProducer, logger)

	// HTTP router.
	router := handler.NewRouter(storefront, healthHandler, logger, handler.RouterConfig{
		ServiceName: serviceName,
		PprofCIDRs:  cfg.PprofAllowedCIDRs,
		CORSOrigins: cfg.CORSOrigins,
		MenuMaxAge:  cfg.MenuMaxAge(),
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// initCatalog builds the configured catalog backend wrapped with tracing and
// latency metrics.
func (a *App) initCatalog(ctx context.Context, h *health.Handler) (catalog.Provider, error) {
	cfg, logger := a.cfg, a.logger

	var provider catalog.Provider
	switch cfg.CatalogBackend {
	case config.CatalogPostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)

		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
			logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}

		// Run database migrations.
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		// Configure slow query logging.
		if cfg.SlowQueryThresholdMs > 0 {
			database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
		}

		h.Register("postgres", pool.Ping)
		provider = catalogpostgres.NewRepository(pool)

	case config.CatalogREST:
		provider = catalogrest.New(catalogrest.Config{
			BaseURL: cfg.CatalogRESTURL,
			APIKey:  cfg.CatalogRESTKey,
			Timeout: cfg.CatalogRESTTimeout(),
		}, logger)
		logger.Info("using REST catalog", slog.String("url", cfg.CatalogRESTURL))

	default:
		provider = catalogmemory.NewSeeded()
		logger.Info("using in-memory catalog")
	}

	return catalog.Instrument(provider, cfg.CatalogBackend), nil
}

// initSessions builds the configured session store.
func (a *App) initSessions(ctx context.Context, h *health.Handler) (session.Repository, error) {
	cfg, logger := a.cfg, a.logger

	if cfg.SessionBackend == config.SessionRedis {
		rdb, err := database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		logger.Info("connected to Redis",
			slog.String("addr", cfg.Redis().Addr()),
			slog.Int("db", cfg.RedisDB),
		)
		h.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		return sessionredis.NewRepository(rdb, cfg.SessionTTL()), nil
	}

	a.sessions = sessionmemory.NewRepository(cfg.SessionTTL())
	logger.Info("using in-memory sessions", slog.Duration("ttl", cfg.SessionTTL()))
	return a.sessions, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.sessions != nil {
		janitorCtx, stop := context.WithCancel(ctx)
		defer stop()
		go a.sessions.RunJanitor(janitorCtx, time.Minute, a.logger)
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
