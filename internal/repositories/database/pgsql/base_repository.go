package pgsql

import (
	"embed"
	"errors"
	"fmt"

	"github.com/SscSPs/finance_bot/internal/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrations holds the PostgreSQL schema migrations, rooted at MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the .sql files.
const MigrationsDir = "migrations"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// mapError translates driver errors into application errors, keeping the cause wrapped.
func mapError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return fmt.Errorf("%s: %w: %w", msg, apperrors.ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
