package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/finance_bot/internal/middleware"
)

const (
	defaultAsyncBuffer  = 256
	defaultAsyncTimeout = 5 * time.Second
)

// ErrPublisherClosed is returned when publishing through a closed AsyncPublisher.
var ErrPublisherClosed = errors.New("publisher closed")

type asyncJob struct {
	ctx   context.Context
	event TransactionRecorded
}

// AsyncPublisher hands events to a background worker so a slow broker never
// delays the caller. Events are dropped with a warning once the buffer is full.
type AsyncPublisher struct {
	next    Publisher
	timeout time.Duration
	jobs    chan asyncJob
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncPublisher wraps next. buffer bounds the number of queued events;
// timeout bounds each delivery attempt. Non-positive values use defaults.
func NewAsyncPublisher(next Publisher, buffer int, timeout time.Duration) *AsyncPublisher {
	if buffer <= 0 {
		buffer = defaultAsyncBuffer
	}
	if timeout <= 0 {
		timeout = defaultAsyncTimeout
	}
	p := &AsyncPublisher{
		next:    next,
		timeout: timeout,
		jobs:    make(chan asyncJob, buffer),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishTransactionRecorded enqueues event and returns immediately. The
// caller's cancellation is detached; its values, the logger included, are kept.
func (p *AsyncPublisher) PublishTransactionRecorded(ctx context.Context, event TransactionRecorded) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	job := asyncJob{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case p.jobs <- job:
	default:
		middleware.GetLoggerFromCtx(ctx).Warn("Event buffer full, dropping transaction recorded event",
			slog.String("transaction_id", event.TransactionID))
	}
	return nil
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for job := range p.jobs {
		ctx, cancel := context.WithTimeout(job.ctx, p.timeout)
		if err := p.next.PublishTransactionRecorded(ctx, job.event); err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish transaction recorded event",
				slog.String("transaction_id", job.event.TransactionID),
				slog.String("error", err.Error()))
		}
		cancel()
	}
}

// Close stops accepting events, drains the queue and closes the wrapped publisher.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	<-p.done
	return p.next.Close()
}

var _ Publisher = (*AsyncPublisher)(nil)
