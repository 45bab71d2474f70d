package pgsql

import (
	"context"

	"github.com/SscSPs/finance_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_bot/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxTransactionRepository stores ledger transactions in PostgreSQL.
type PgxTransactionRepository struct {
	BaseRepository
}

// NewPgxTransactionRepository creates a new repository for ledger transactions.
func NewPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements the facade.
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// SaveTransaction inserts txn with a single statement. The pool hands the
// connection back on every exit path.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, type, amount, description, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		txn.ID,
		string(txn.Type),
		txn.Amount, // decimal.Decimal encodes through driver.Valuer
		txn.Description,
		txn.CreatedAt,
		txn.UserID,
	)
	if err != nil {
		return mapError(err, "failed to insert transaction %s", txn.ID)
	}
	return nil
}

// ListTransactionsInWindow retrieves the transactions created in [window.Start, window.End).
func (r *PgxTransactionRepository) ListTransactionsInWindow(ctx context.Context, window domain.Window, userID *string) ([]domain.Transaction, error) {
	query := `
		SELECT id, type, amount, description, created_at, user_id
		FROM transactions
		WHERE created_at >= $1
			AND created_at < $2
			AND ($3::text IS NULL OR user_id = $3)
		ORDER BY created_at, id;
	`
	rows, err := r.Pool.Query(ctx, query, window.Start, window.End, userID)
	if err != nil {
		return nil, mapError(err, "failed to query transactions")
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var (
			txn     domain.Transaction
			txnType string
			amount  decimal.Decimal
		)
		if err := rows.Scan(
			&txn.ID,
			&txnType,
			&amount,
			&txn.Description,
			&txn.CreatedAt,
			&txn.UserID,
		); err != nil {
			return nil, mapError(err, "failed to scan transaction row")
		}
		txn.Type = domain.TransactionType(txnType)
		txn.Amount = amount
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating transaction rows")
	}

	return transactions, nil
}
