package pgsql

import (
	portsrepo "github.com/SscSPs/finance_bot/internal/core/ports/repositories"
	"github.com/SscSPs/finance_bot/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds the repositories backed by dbPool.
// Closing the provider closes the pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: NewPgxTransactionRepository(dbPool),
		Close: func() error {
			database.ClosePgxPool(dbPool)
			return nil
		},
	}
}
