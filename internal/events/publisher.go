// Package events defines the notifications emitted by the ledger once a write has
// been committed. Publication is best effort: a failed publish never undoes or
// fails the write that triggered it.
package events

import (
	"context"
	"time"

	"github.com/SscSPs/finance_bot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RoutingKeyTransactionRecorded is the routing key / topic suffix of TransactionRecorded.
const RoutingKeyTransactionRecorded = "transaction.recorded"

// TransactionRecorded is emitted after a transaction has been persisted.
type TransactionRecorded struct {
	TransactionID string                 `json:"transactionID"`
	Type          domain.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	Description   string                 `json:"description"`
	CreatedAt     time.Time              `json:"createdAt"`
	UserID        *string                `json:"userID,omitempty"`
	RecordedAt    time.Time              `json:"recordedAt"`
}

// NewTransactionRecorded builds the event for txn.
func NewTransactionRecorded(txn domain.Transaction, recordedAt time.Time) TransactionRecorded {
	return TransactionRecorded{
		TransactionID: txn.ID,
		Type:          txn.Type,
		Amount:        txn.Amount,
		Description:   txn.Description,
		CreatedAt:     txn.CreatedAt,
		UserID:        txn.UserID,
		RecordedAt:    recordedAt,
	}
}

// Publisher delivers ledger events to a broker.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, event TransactionRecorded) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishTransactionRecorded(context.Context, TransactionRecorded) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

var _ Publisher = NopPublisher{}
