// Package memory keeps the ledger in process memory. Data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/finance_bot/internal/apperrors"
	"github.com/SscSPs/finance_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_bot/internal/core/ports/repositories"
)

type Store struct {
	mu    sync.RWMutex
	ids   map[string]struct{}
	items []domain.Transaction // sorted by CreatedAt, then ID
}

func New() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// NewRepositoryProvider wraps a fresh Store.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: New(),
		Close:           func() error { return nil },
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*Store)(nil)

// SaveTransaction stores a copy of txn.
func (s *Store) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[txn.ID]; exists {
		return fmt.Errorf("transaction %s: %w", txn.ID, apperrors.ErrDuplicate)
	}

	if txn.UserID != nil {
		owner := *txn.UserID
		txn.UserID = &owner
	}

	i := sort.Search(len(s.items), func(i int) bool {
		return less(txn, s.items[i])
	})
	s.items = append(s.items, domain.Transaction{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = txn
	s.ids[txn.ID] = struct{}{}
	return nil
}

// ListTransactionsInWindow returns copies of the transactions created in [window.Start, window.End).
func (s *Store) ListTransactionsInWindow(ctx context.Context, window domain.Window, userID *string) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := sort.Search(len(s.items), func(i int) bool {
		return !s.items[i].CreatedAt.Before(window.Start)
	})

	result := []domain.Transaction{}
	for _, txn := range s.items[start:] {
		if !txn.CreatedAt.Before(window.End) {
			break
		}
		if userID != nil && (txn.UserID == nil || *txn.UserID != *userID) {
			continue
		}
		if txn.UserID != nil {
			owner := *txn.UserID
			txn.UserID = &owner
		}
		result = append(result, txn)
	}
	return result, nil
}

func less(a, b domain.Transaction) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
