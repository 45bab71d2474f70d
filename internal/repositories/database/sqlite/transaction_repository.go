// Package sqlite stores the ledger in a single SQLite file.
//
// Amounts are kept as decimal text and timestamps as fixed-width UTC text, so
// string comparison in SQL orders and filters rows the same way as time comparison.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SscSPs/finance_bot/internal/apperrors"
	"github.com/SscSPs/finance_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_bot/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Migrations holds the SQLite schema migrations, rooted at MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the .sql files.
const MigrationsDir = "migrations"

// timeLayout is fixed width and always UTC ("Z"), which keeps lexical order equal to time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// TransactionRepository stores ledger transactions in SQLite.
type TransactionRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file at dbPath.
// Migrations are applied separately.
func Open(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent commands.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewTransactionRepository wraps an open database.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// NewRepositoryProvider builds the repositories backed by db. Closing the provider closes db.
func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: NewTransactionRepository(db),
		Close:           db.Close,
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

// SaveTransaction inserts txn with a single statement.
func (r *TransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount, description, created_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		txn.ID,
		string(txn.Type),
		txn.Amount.String(),
		txn.Description,
		formatTime(txn.CreatedAt),
		txn.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to insert transaction %s: %w: %w", txn.ID, apperrors.ErrDuplicate, err)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

// ListTransactionsInWindow retrieves the transactions created in [window.Start, window.End).
func (r *TransactionRepository) ListTransactionsInWindow(ctx context.Context, window domain.Window, userID *string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount, description, created_at, user_id
		FROM transactions
		WHERE created_at >= ?
			AND created_at < ?
			AND (? IS NULL OR user_id = ?)
		ORDER BY created_at, id`,
		formatTime(window.Start),
		formatTime(window.End),
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var (
			txn       domain.Transaction
			txnType   string
			amount    decimal.Decimal
			createdAt string
			owner     sql.NullString
		)
		if err := rows.Scan(&txn.ID, &txnType, &amount, &txn.Description, &createdAt, &owner); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}

		txn.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q of %s: %w", createdAt, txn.ID, err)
		}
		txn.Type = domain.TransactionType(txnType)
		txn.Amount = amount
		if owner.Valid {
			txn.UserID = &owner.String
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
