package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_bot/internal/apperrors"
	"github.com/SscSPs/finance_bot/internal/core/commands"
	"github.com/SscSPs/finance_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_bot/internal/core/ports/services"
	"github.com/SscSPs/finance_bot/internal/events"
	"github.com/SscSPs/finance_bot/internal/utils"
)

// ledgerService implements the LedgerSvcFacade interface
type ledgerService struct {
	BaseService
	txnRepo           portsrepo.TransactionRepositoryFacade
	publisher         events.Publisher
	ids               utils.IDGenerator
	now               func() time.Time
	loc               *time.Location
	dayStartHour      int
	rejectNonPositive bool
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithReferenceLocation sets the timezone used for period windows and stored timestamps.
func WithReferenceLocation(loc *time.Location) LedgerServiceOption {
	return func(s *ledgerService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDayStartHour sets the local hour at which the TODAY window begins.
func WithDayStartHour(hour int) LedgerServiceOption {
	return func(s *ledgerService) {
		s.dayStartHour = hour
	}
}

// WithNonPositiveAmountCheck toggles rejection of zero and negative amounts.
func WithNonPositiveAmountCheck(enabled bool) LedgerServiceOption {
	return func(s *ledgerService) {
		s.rejectNonPositive = enabled
	}
}

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how transaction IDs are assigned.
func WithIDGenerator(ids utils.IDGenerator) LedgerServiceOption {
	return func(s *ledgerService) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithEventPublisher sets where TransactionRecorded events go.
func WithEventPublisher(p events.Publisher) LedgerServiceOption {
	return func(s *ledgerService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// NewLedgerService creates a new ledger service with the provided options.
// Defaults: UTC windows starting at midnight, positivity enforced, ULID ids, no events.
func NewLedgerService(repo portsrepo.TransactionRepositoryFacade, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txnRepo:           repo,
		publisher:         events.NopPublisher{},
		ids:               utils.NewULIDGenerator(),
		now:               time.Now,
		loc:               time.UTC,
		rejectNonPositive: true,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure ledgerService implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// RecordOutflow persists cmd as an OUT transaction with one insert.
func (s *ledgerService) RecordOutflow(ctx context.Context, cmd commands.RecordOutflow, userID *string) (*domain.Transaction, error) {
	if s.rejectNonPositive && !cmd.Amount.IsPositive() {
		s.LogWarn(ctx, "Rejected non-positive outflow amount", slog.String("amount", cmd.Amount.String()))
		return nil, apperrors.NewValidationError(apperrors.ErrNonPositiveAmount, "amount")
	}

	now := s.now()
	id, err := s.ids.NewID(now)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate transaction ID")
		return nil, fmt.Errorf("failed to generate transaction ID: %w", err)
	}

	createdAt := cmd.OccurredAt
	if createdAt.IsZero() {
		createdAt = now
	}

	txn := domain.Transaction{
		ID:          id,
		Type:        domain.Out,
		Amount:      cmd.Amount,
		Description: cmd.Description,
		CreatedAt:   createdAt.In(s.loc),
		UserID:      userID,
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save transaction",
			slog.String("transaction_id", txn.ID),
			slog.String("amount", txn.Amount.String()))
		return nil, apperrors.NewStorageError("save transaction", err)
	}

	if err := s.publisher.PublishTransactionRecorded(ctx, events.NewTransactionRecorded(txn, now)); err != nil {
		s.LogWarn(ctx, "Failed to publish transaction recorded event",
			slog.String("transaction_id", txn.ID),
			slog.String("error", err.Error()))
	}

	s.LogInfo(ctx, "Outflow recorded",
		slog.String("transaction_id", txn.ID),
		slog.String("amount", txn.Amount.String()),
		slog.String("created_at", txn.CreatedAt.Format(time.RFC3339)))
	return &txn, nil
}

// Summarize fetches the period window with a single query and totals it.
func (s *ledgerService) Summarize(ctx context.Context, period domain.Period, userID *string) (*domain.LedgerReport, error) {
	window, err := domain.WindowFor(period, s.now(), s.loc, s.dayStartHour)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	s.LogDebug(ctx, "Resolved period window",
		slog.String("period", string(period)),
		slog.String("from", window.Start.Format(time.RFC3339)),
		slog.String("to", window.End.Format(time.RFC3339)))

	txns, err := s.txnRepo.ListTransactionsInWindow(ctx, window, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions",
			slog.String("period", string(period)),
			slog.String("from", window.Start.Format(time.RFC3339)),
			slog.String("to", window.End.Format(time.RFC3339)))
		return nil, apperrors.NewStorageError("list transactions", err)
	}

	for i := range txns {
		txns[i].CreatedAt = txns[i].CreatedAt.In(s.loc)
	}

	report := domain.NewLedgerReport(period, window, txns)

	s.LogInfo(ctx, "Ledger summary generated",
		slog.String("period", string(period)),
		slog.Int("row_count", len(report.Transactions)),
		slog.String("total", report.Total.String()))
	return report, nil
}
