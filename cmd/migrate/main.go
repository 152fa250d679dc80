// Command migrate applies the catalog schema and seed menu to PostgreSQL
// without starting the storefront, then reports how many rows each catalog
// table holds.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/brewhouse/internal/config"
	"github.com/utafrali/brewhouse/internal/domain"
	"github.com/utafrali/brewhouse/migrations"
	"github.com/utafrali/brewhouse/pkg/database"
	"github.com/utafrali/brewhouse/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("storefront-migrate", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	tables := []string{"add_ons"}
	for _, k := range domain.Kinds() {
		tables = append(tables, k.Table())
	}
	for _, table := range tables {
		var n int
		query := "SELECT COUNT(*) FROM " + pgx.Identifier{table}.Sanitize()
		if err := pool.QueryRow(ctx, query).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		log.Info("catalog table ready", slog.String("table", table), slog.Int("rows", n))
	}

	log.Info("catalog migrations completed", slog.String("database", cfg.PostgresDB))
	return nil
}
