package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates the direction of money flow.
type TransactionType string

const (
	In  TransactionType = "IN"
	Out TransactionType = "OUT"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	return t == In || t == Out
}

// Transaction is a single ledger record. It is never updated or deleted once persisted.
type Transaction struct {
	ID          string          `json:"id"`          // ULID, sorts by creation order
	Type        TransactionType `json:"type"`        // IN or OUT
	Amount      decimal.Decimal `json:"amount"`      // Precise decimal, > 0 when positivity is enforced
	Description string          `json:"description"` // May be empty, never null
	CreatedAt   time.Time       `json:"createdAt"`   // Sole ordering and filtering key
	UserID      *string         `json:"userID,omitempty"`
}

// Equal compares two transactions field by field. Timestamps are compared as instants
// so a value read back from a store in another zone still matches.
func (t Transaction) Equal(other Transaction) bool {
	if t.ID != other.ID || t.Type != other.Type || t.Description != other.Description {
		return false
	}
	if !t.Amount.Equal(other.Amount) || !t.CreatedAt.Equal(other.CreatedAt) {
		return false
	}
	switch {
	case t.UserID == nil && other.UserID == nil:
		return true
	case t.UserID == nil || other.UserID == nil:
		return false
	default:
		return *t.UserID == *other.UserID
	}
}
