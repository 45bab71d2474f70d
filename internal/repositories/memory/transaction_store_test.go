package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/finance_bot/internal/apperrors"
	"github.com/SscSPs/finance_bot/internal/core/domain"
	"github.com/SscSPs/finance_bot/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(id string, at time.Time, userID *string) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		Type:      domain.Out,
		Amount:    decimal.NewFromInt(10),
		CreatedAt: at,
		UserID:    userID,
	}
}

func ids(txns []domain.Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}

func TestStore_WindowIsHalfOpenAndOrdered(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	start := time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	for _, tx := range []domain.Transaction{
		txn("late", end.Add(-time.Nanosecond), nil),
		txn("atEnd", end, nil),
		txn("b-same", start.Add(time.Hour), nil),
		txn("before", start.Add(-time.Nanosecond), nil),
		txn("a-same", start.Add(time.Hour), nil),
		txn("first", start, nil),
	} {
		require.NoError(t, store.SaveTransaction(ctx, tx))
	}

	got, err := store.ListTransactionsInWindow(ctx, domain.Window{Start: start, End: end}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "a-same", "b-same", "late"}, ids(got))
}

func TestStore_EmptyResultIsNotNil(t *testing.T) {
	got, err := memory.New().ListTransactionsInWindow(context.Background(), domain.Window{
		Start: time.Unix(0, 0), End: time.Unix(100, 0),
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_FiltersByOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	at := time.Date(2025, time.July, 14, 9, 0, 0, 0, time.UTC)
	alice, bob := "alice", "bob"

	require.NoError(t, store.SaveTransaction(ctx, txn("a", at, &alice)))
	require.NoError(t, store.SaveTransaction(ctx, txn("b", at.Add(time.Second), &bob)))
	require.NoError(t, store.SaveTransaction(ctx, txn("c", at.Add(2*time.Second), nil)))

	window := domain.Window{Start: at, End: at.Add(time.Minute)}

	all, err := store.ListTransactionsInWindow(ctx, window, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))

	mine, err := store.ListTransactionsInWindow(ctx, window, &alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(mine))
}

func TestStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tx := txn("dup", time.Now(), nil)

	require.NoError(t, store.SaveTransaction(ctx, tx))
	assert.ErrorIs(t, store.SaveTransaction(ctx, tx), apperrors.ErrDuplicate)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	at := time.Date(2025, time.July, 14, 9, 0, 0, 0, time.UTC)
	owner := "alice"

	require.NoError(t, store.SaveTransaction(ctx, txn("a", at, &owner)))
	owner = "mallory"

	got, err := store.ListTransactionsInWindow(ctx, domain.Window{Start: at, End: at.Add(time.Second)}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	*got[0].UserID = "eve"

	again, err := store.ListTransactionsInWindow(ctx, domain.Window{Start: at, End: at.Add(time.Second)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", *again[0].UserID)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	base := time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.SaveTransaction(ctx, txn(fmt.Sprintf("t%02d", i), base.Add(time.Duration(i)*time.Minute), nil)))
		}(i)
	}
	wg.Wait()

	got, err := store.ListTransactionsInWindow(ctx, domain.Window{Start: base, End: base.Add(time.Hour)}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 50)
	assert.Equal(t, "t00", got[0].ID)
	assert.Equal(t, "t49", got[49].ID)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := memory.New().SaveTransaction(ctx, txn("x", time.Now(), nil))
	assert.ErrorIs(t, err, context.Canceled)
}
