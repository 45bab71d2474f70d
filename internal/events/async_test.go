package events_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/finance_bot/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingPublisher struct {
	release chan struct{}

	mu        sync.Mutex
	published []string
	deadlines []bool
	closed    bool
	err       error
}

func (b *blockingPublisher) PublishTransactionRecorded(ctx context.Context, event events.TransactionRecorded) error {
	<-b.release
	_, hasDeadline := ctx.Deadline()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event.TransactionID)
	b.deadlines = append(b.deadlines, hasDeadline && ctx.Err() == nil)
	return b.err
}

func (b *blockingPublisher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func TestAsyncPublisher_DoesNotWaitForBroker(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	p := events.NewAsyncPublisher(next, 4, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan error, 1)
	go func() { returned <- p.PublishTransactionRecorded(ctx, events.TransactionRecorded{TransactionID: "a"}) }()

	select {
	case err := <-returned:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stalled broker")
	}

	// The caller's request ends before delivery; the event still goes out.
	cancel()
	close(next.release)
	require.NoError(t, p.Close())

	assert.Equal(t, []string{"a"}, next.published)
	assert.Equal(t, []bool{true}, next.deadlines)
	assert.True(t, next.closed)
}

func TestAsyncPublisher_DropsWhenFull(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	p := events.NewAsyncPublisher(next, 1, time.Second)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, p.PublishTransactionRecorded(ctx, events.TransactionRecorded{TransactionID: id}))
	}

	close(next.release)
	require.NoError(t, p.Close())

	// One event may be in flight and one buffered; the rest are dropped.
	assert.NotEmpty(t, next.published)
	assert.LessOrEqual(t, len(next.published), 2)
	assert.Equal(t, "a", next.published[0])
}

func TestAsyncPublisher_FailuresAreSwallowed(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{}), err: assert.AnError}
	close(next.release)
	p := events.NewAsyncPublisher(next, 0, 0)

	assert.NoError(t, p.PublishTransactionRecorded(context.Background(), events.TransactionRecorded{TransactionID: "a"}))
	require.NoError(t, p.Close())
	assert.Equal(t, []string{"a"}, next.published)
}

func TestAsyncPublisher_RejectsAfterClose(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	close(next.release)
	p := events.NewAsyncPublisher(next, 1, time.Second)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err := p.PublishTransactionRecorded(context.Background(), events.TransactionRecorded{TransactionID: "late"})
	assert.ErrorIs(t, err, events.ErrPublisherClosed)
	assert.Empty(t, next.published)
}
