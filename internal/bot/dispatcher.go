// Package bot connects chat messages to the ledger: it parses text, calls the
// ledger service, renders replies and delivers them through a Messenger.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/finance_bot/internal/apperrors"
	"github.com/SscSPs/finance_bot/internal/core/commands"
	"github.com/SscSPs/finance_bot/internal/core/domain"
	portssvc "github.com/SscSPs/finance_bot/internal/core/ports/services"
	"github.com/SscSPs/finance_bot/internal/middleware"
)

// Inbound is a chat message as seen by the dispatcher.
type Inbound struct {
	Text      string
	SenderID  string
	FirstName string
	ChatID    int64
	MessageID int
	Timestamp int64 // Unix seconds
}

// Reply is what should be sent back. A zero Reply means stay silent.
type Reply struct {
	Text        string
	HTML        bool
	DeleteAfter time.Duration // 0 keeps the reply
}

// IsEmpty reports whether there is nothing to send.
func (r Reply) IsEmpty() bool { return r.Text == "" }

// Dispatcher maps inbound text to ledger operations and replies.
// Every parse, validation and storage error ends here as a reply.
type Dispatcher struct {
	parser      *commands.Parser
	ledger      portssvc.LedgerSvcFacade
	renderer    *Renderer
	perUser     bool
	deleteAfter time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPerUserLedger limits summaries to the sender's own transactions.
func WithPerUserLedger(enabled bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.perUser = enabled
	}
}

// WithSavedReplyDeletion deletes the "Saved !" confirmation after delay. Zero keeps it.
func WithSavedReplyDeletion(delay time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.deleteAfter = delay
	}
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(parser *commands.Parser, ledger portssvc.LedgerSvcFacade, renderer *Renderer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		parser:   parser,
		ledger:   ledger,
		renderer: renderer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes one inbound message and returns the reply to send.
func (d *Dispatcher) Handle(ctx context.Context, in Inbound) Reply {
	cmd, err := d.parser.Parse(in.Text, in.Timestamp)
	if err != nil {
		return d.parseFailure(ctx, in, err)
	}

	switch c := cmd.(type) {
	case commands.RecordOutflow:
		return d.recordOutflow(ctx, in, c)
	case commands.QueryPeriod:
		return d.summarize(ctx, in, c.Period)
	case commands.Start:
		return Reply{Text: d.renderer.Start(in.FirstName)}
	case commands.Greeting:
		return Reply{Text: greetingText}
	case commands.Echo:
		if c.Text == "" {
			return Reply{Text: emptyEchoText}
		}
		return Reply{Text: c.Text}
	case commands.Help:
		return Reply{Text: helpText}
	default:
		middleware.GetLoggerFromCtx(ctx).Warn("Parsed command has no handler", slog.String("keyword", cmd.Keyword()))
		return Reply{Text: unknownCommandText}
	}
}

func (d *Dispatcher) parseFailure(ctx context.Context, in Inbound, err error) Reply {
	logger := middleware.GetLoggerFromCtx(ctx)

	if errors.Is(err, apperrors.ErrInvalidAmount) {
		logger.Info("Rejected command with invalid amount", slog.String("error", err.Error()))
		return Reply{Text: invalidAmountText}
	}

	// Plain chatter that is not addressed to the bot gets no answer.
	if !strings.HasPrefix(strings.TrimSpace(in.Text), "/") {
		logger.Debug("Ignoring non-command message")
		return Reply{}
	}

	logger.Info("Unknown command", slog.String("error", err.Error()))
	return Reply{Text: unknownCommandText}
}

func (d *Dispatcher) recordOutflow(ctx context.Context, in Inbound, cmd commands.RecordOutflow) Reply {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := d.ledger.RecordOutflow(ctx, cmd, optionalID(in.SenderID))
	switch {
	case err == nil:
		logger.Debug("Outflow saved", slog.String("transaction_id", txn.ID))
		return Reply{Text: savedText, DeleteAfter: d.deleteAfter}
	case errors.Is(err, apperrors.ErrNonPositiveAmount):
		return Reply{Text: nonPositiveText}
	default:
		logger.Error("Failed to record outflow", slog.String("error", err.Error()))
		return Reply{Text: saveFailedText}
	}
}

func (d *Dispatcher) summarize(ctx context.Context, in Inbound, period domain.Period) Reply {
	var owner *string
	if d.perUser {
		owner = optionalID(in.SenderID)
	}

	report, err := d.ledger.Summarize(ctx, period, owner)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to summarize ledger",
			slog.String("period", string(period)),
			slog.String("error", err.Error()))
		return Reply{Text: d.renderer.ReportFailure(period)}
	}

	return Reply{Text: d.renderer.Report(report), HTML: true}
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
