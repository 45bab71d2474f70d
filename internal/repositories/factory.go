// Package repositories selects and opens the configured ledger store.
package repositories

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/finance_bot/internal/core/ports/repositories"
	"github.com/SscSPs/finance_bot/internal/platform/config"
	"github.com/SscSPs/finance_bot/internal/repositories/database/pgsql"
	"github.com/SscSPs/finance_bot/internal/repositories/database/sqlite"
	"github.com/SscSPs/finance_bot/internal/repositories/memory"
	"github.com/SscSPs/finance_bot/pkg/database"
)

// NewRepositoryProvider opens the store named by cfg.DataBackend, applying
// migrations first when cfg.RunMigrations is set.
func NewRepositoryProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.DataBackend {
	case config.BackendPostgres:
		return newPostgres(ctx, cfg, logger)
	case config.BackendSQLite:
		return newSQLite(cfg, logger)
	case config.BackendMemory:
		logger.Warn("Using in-memory ledger, transactions are lost on restart")
		return memory.NewRepositoryProvider(), nil
	default:
		return portsrepo.RepositoryProvider{}, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}

func newPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	if cfg.RunMigrations {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(database.DialectPostgres, cfg.DatabaseURL, pgsql.Migrations, pgsql.MigrationsDir); err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to run postgres migrations: %w", err)
		}
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	logger.Info("Initialized PostgreSQL backend")
	return pgsql.NewRepositoryProvider(pool), nil
}

func newSQLite(cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	db, err := sqlite.Open(cfg.SQLiteDBPath)
	if err != nil {
		return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to initialize SQLite database: %w", err)
	}

	if cfg.RunMigrations {
		if err := database.RunMigrations(database.DialectSQLite, cfg.SQLiteDBPath, sqlite.Migrations, sqlite.MigrationsDir); err != nil {
			db.Close()
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to run sqlite migrations: %w", err)
		}
	}

	logger.Info("Initialized SQLite backend", slog.String("db_path", cfg.SQLiteDBPath))
	return sqlite.NewRepositoryProvider(db), nil
}
