package repositories

import (
	"context"

	"github.com/SscSPs/finance_bot/internal/core/domain"
)

// TransactionReader defines read operations for ledger transactions
type TransactionReader interface {
	// ListTransactionsInWindow returns every transaction whose CreatedAt falls in
	// [window.Start, window.End), ordered ascending by CreatedAt, from a single query.
	// A nil userID reads the whole ledger; otherwise only that owner's rows.
	ListTransactionsInWindow(ctx context.Context, window domain.Window, userID *string) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for ledger transactions
type TransactionWriter interface {
	// SaveTransaction appends exactly one row. It never updates an existing one.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
