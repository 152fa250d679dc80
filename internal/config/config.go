package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/utafrali/brewhouse/pkg/config"
	"github.com/utafrali/brewhouse/pkg/database"
)

// Catalog backends.
const (
	CatalogMemory   = "memory"
	CatalogPostgres = "postgres"
	CatalogREST     = "rest"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort          int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
	CORSOrigins       []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	MenuMaxAgeSeconds int      `env:"MENU_CACHE_MAX_AGE_SECONDS" envDefault:"60"`

	// Pricing
	TaxRate decimal.Decimal `env:"TAX_RATE" envDefault:"0.10"`

	// Catalog
	CatalogBackend         string `env:"CATALOG_BACKEND" envDefault:"memory"`
	CatalogRESTURL         string `env:"CATALOG_REST_URL"`
	CatalogRESTKey         string `env:"CATALOG_REST_KEY"`
	CatalogRESTTimeoutSecs int    `env:"CATALOG_REST_TIMEOUT_SECONDS" envDefault:"10"`

	// PostgreSQL catalog
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"brewhouse"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"brewhouse_secret"`
	PostgresDB   string `env:"CATALOG_DB_NAME" envDefault:"catalog_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Sessions
	SessionBackend    string `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"120"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_RATE must be in [0, 1), got %s", c.TaxRate)
	}
	if c.MenuMaxAgeSeconds < 0 {
		return fmt.Errorf("MENU_CACHE_MAX_AGE_SECONDS must not be negative, got %d", c.MenuMaxAgeSeconds)
	}

	switch c.CatalogBackend {
	case CatalogMemory:
	case CatalogPostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required")
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("invalid POSTGRES_PORT: %d", c.PostgresPort)
		}
	case CatalogREST:
		if c.CatalogRESTURL == "" {
			return fmt.Errorf("CATALOG_REST_URL is required")
		}
		u, err := url.ParseRequestURI(c.CatalogRESTURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid CATALOG_REST_URL %q", c.CatalogRESTURL)
		}
		if c.CatalogRESTTimeoutSecs <= 0 {
			return fmt.Errorf("CATALOG_REST_TIMEOUT_SECONDS must be positive, got %d", c.CatalogRESTTimeoutSecs)
		}
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend)
	}

	switch c.SessionBackend {
	case SessionMemory:
	case SessionRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required")
		}
		if c.RedisPort < 1 || c.RedisPort > 65535 {
			return fmt.Errorf("invalid REDIS_PORT: %d", c.RedisPort)
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", c.SessionTTLMinutes)
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// SessionTTL returns the idle lifetime of a session cart.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MenuMaxAge returns the Cache-Control max-age of catalog responses.
func (c *Config) MenuMaxAge() time.Duration {
	return time.Duration(c.MenuMaxAgeSeconds) * time.Second
}

// CatalogRESTTimeout returns the per-request timeout of the REST catalog.
func (c *Config) CatalogRESTTimeout() time.Duration {
	return time.Duration(c.CatalogRESTTimeoutSecs) * time.Second
}

// Postgres returns the catalog database settings.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the session store settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		PoolSize: c.RedisPoolSize,
	}
}
