package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campusconnect/pkg/logging"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/trace"
)

var ErrPublisherClosed = errors.New("event publisher closed")

// Publisher delivers envelopes to the event exchange, routed by event type.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// dialer opens the broker connection; tests replace it.
var dialer = func(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return realConnection{conn}, nil
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type realConnection struct{ *amqp.Connection }

func (c realConnection) Channel() (amqpChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// NewPublisher connects to RabbitMQ and declares the topic exchange. With no
// URL, or when the broker is unreachable at startup, events are dropped by a
// noop publisher so the chat paths never depend on the broker.
func NewPublisher(ctx context.Context, amqpURL, exchange string) Publisher {
	log := logging.FromContext(ctx).With(slog.String("exchange", exchange))
	if amqpURL == "" {
		log.Info("domain events disabled", slog.String("reason", "empty amqp url"))
		return noopPublisher{}
	}

	conn, err := dialer(amqpURL)
	if err != nil {
		log.Warn("domain events disabled", slog.String("reason", "dial failed"), logging.Err(err))
		return noopPublisher{}
	}

	p := &amqpPublisher{conn: conn, exchange: exchange}
	if _, err := p.channel(); err != nil {
		log.Warn("domain events disabled", slog.String("reason", "exchange setup failed"), logging.Err(err))
		_ = conn.Close()
		return noopPublisher{}
	}

	log.Info("domain events enabled")
	return p
}

type amqpPublisher struct {
	conn     amqpConnection
	exchange string

	mu     sync.Mutex
	ch     amqpChannel
	closed bool
}

// channel returns the open channel, reopening it after a broker-side close
// (for example a publish to a deleted exchange).
func (p *amqpPublisher) channel() (amqpChannel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPublisherClosed
	}
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.ch = ch
	return ch, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         env.EventType,
		AppId:        env.Service,
		Timestamp:    occurredAt(env),
		Headers: amqp.Table{
			"schema_version": int32(env.SchemaVersion),
			"environment":    env.Environment,
		},
		Body: body,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		msg.CorrelationId = sc.TraceID().String()
	}
	return ch.PublishWithContext(ctx, p.exchange, env.EventType, false, false, msg)
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.ch != nil {
		_ = p.ch.Close()
	}
	return p.conn.Close()
}

func occurredAt(env Envelope) time.Time {
	t, err := time.Parse(time.RFC3339Nano, env.OccurredAt)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, env Envelope) error {
	logging.FromContext(ctx).Debug("event dropped", slog.String("event_type", env.EventType))
	return nil
}

func (noopPublisher) Close() error {
	return nil
}

// PublisherMode reports the publisher mode for logging.
func PublisherMode(p Publisher) string {
	switch p.(type) {
	case *amqpPublisher:
		return "amqp"
	case noopPublisher:
		return "noop"
	default:
		return "unknown"
	}
}
