package services

import (
	"context"

	"github.com/SscSPs/finance_bot/internal/core/commands"
	"github.com/SscSPs/finance_bot/internal/core/domain"
)

// LedgerWriterSvc defines the write path of the ledger
type LedgerWriterSvc interface {
	// RecordOutflow persists an OUT transaction for a parsed outflow command.
	// Fails with a ValidationError when the amount is not positive and positivity
	// is enforced, or a StorageError when the store rejects the insert.
	RecordOutflow(ctx context.Context, cmd commands.RecordOutflow, userID *string) (*domain.Transaction, error)
}

// LedgerReaderSvc defines the read/aggregate path of the ledger
type LedgerReaderSvc interface {
	// Summarize returns the transactions of the period containing "now" and their total.
	Summarize(ctx context.Context, period domain.Period, userID *string) (*domain.LedgerReport, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
