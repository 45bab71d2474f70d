package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/finance_bot/internal/events"
	"github.com/SscSPs/finance_bot/internal/middleware"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends ledger events to a durable topic exchange. A channel closed
// by the broker is reopened on the next publish.
type Publisher struct {
	mu        sync.Mutex
	open      func() (channel, func() error, error)
	channel   channel
	closeConn func() error
	exchange  string
}

// NewPublisher dials url and declares exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	p := &Publisher{
		exchange: exchange,
		open: func() (channel, func() error, error) {
			return dialExchange(url, exchange)
		},
	}
	if err := p.reconnect(); err != nil {
		return nil, err
	}
	return p, nil
}

// dialExchange opens a connection and a channel, and declares exchange on it.
func dialExchange(url, exchange string) (channel, func() error, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}

	return ch, conn.Close, nil
}

// newPublisherWithChannel is used by tests to bypass dialing.
func newPublisherWithChannel(ch channel, exchange string) *Publisher {
	return &Publisher{channel: ch, exchange: exchange}
}

// reconnect drops the current session and opens a fresh one. Callers hold mu,
// except NewPublisher which owns p exclusively.
func (p *Publisher) reconnect() error {
	if p.open == nil {
		return amqp091.ErrClosed
	}
	p.closeSession()

	ch, closeConn, err := p.open()
	if err != nil {
		return err
	}
	p.channel, p.closeConn = ch, closeConn
	return nil
}

func (p *Publisher) closeSession() {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.closeConn != nil {
		p.closeConn()
		p.closeConn = nil
	}
}

// PublishTransactionRecorded publishes event as a persistent JSON message.
func (p *Publisher) PublishTransactionRecorded(ctx context.Context, event events.TransactionRecorded) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		if err := p.reconnect(); err != nil {
			return fmt.Errorf("reopen channel: %w", err)
		}
	}

	err = p.publish(ctx, event, body)
	if errors.Is(err, amqp091.ErrClosed) && p.open != nil {
		logger := middleware.GetLoggerFromCtx(ctx)
		logger.Warn("AMQP channel closed, reconnecting", slog.String("exchange", p.exchange))
		if rerr := p.reconnect(); rerr != nil {
			return fmt.Errorf("reopen channel: %w", errors.Join(err, rerr))
		}
		err = p.publish(ctx, event, body)
	}
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Debug("Published transaction recorded event",
		slog.String("transaction_id", event.TransactionID),
		slog.String("exchange", p.exchange))
	return nil
}

func (p *Publisher) publish(ctx context.Context, event events.TransactionRecorded, body []byte) error {
	return p.channel.PublishWithContext(
		ctx,
		p.exchange,                           // exchange
		events.RoutingKeyTransactionRecorded, // routing key
		false,                                // mandatory
		false,                                // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.TransactionID,
			Timestamp:    event.RecordedAt,
			Body:         body,
		},
	)
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.open = nil
	var err error
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.closeConn != nil {
		err = p.closeConn()
		p.closeConn = nil
	}
	return err
}

var _ events.Publisher = (*Publisher)(nil)
