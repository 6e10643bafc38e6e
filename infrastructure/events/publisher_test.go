package events

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	closed     bool
	declareErr error
	published  []amqp.Publishing
	keys       []string
}

func (c *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeConnection struct {
	channels []*fakeChannel
	opened   int
	closed   bool
}

func (c *fakeConnection) Channel() (amqpChannel, error) {
	if c.opened >= len(c.channels) {
		return nil, errors.New("no channel")
	}
	ch := c.channels[c.opened]
	c.opened++
	return ch, nil
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

func withDialer(t *testing.T, conn *fakeConnection, err error) {
	t.Helper()
	orig := dialer
	t.Cleanup(func() { dialer = orig })
	dialer = func(string) (amqpConnection, error) {
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

func testEnvelope() Envelope {
	return Envelope{
		SchemaVersion: 1,
		EventType:     ChatGroupCreated,
		OccurredAt:    "2025-03-10T09:00:00Z",
		Service:       "campusconnect",
		Environment:   "test",
		Payload:       GroupCreated{ChatId: "g1", Name: "Study Group"},
	}
}

func TestNewPublisher_NoopWithoutURL(t *testing.T) {
	p := NewPublisher(context.Background(), "", "campus.events")
	assert.Equal(t, "noop", PublisherMode(p))
	assert.NoError(t, p.Publish(context.Background(), testEnvelope()))
	assert.NoError(t, p.Close())
}

func TestNewPublisher_NoopWhenBrokerUnreachable(t *testing.T) {
	withDialer(t, nil, errors.New("connection refused"))
	p := NewPublisher(context.Background(), "amqp://localhost", "campus.events")
	assert.Equal(t, "noop", PublisherMode(p))
}

func TestNewPublisher_NoopWhenExchangeSetupFails(t *testing.T) {
	conn := &fakeConnection{channels: []*fakeChannel{{declareErr: errors.New("access refused")}}}
	withDialer(t, conn, nil)

	p := NewPublisher(context.Background(), "amqp://localhost", "campus.events")
	assert.Equal(t, "noop", PublisherMode(p))
	assert.True(t, conn.closed)
}

func TestAmqpPublisher_RoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	withDialer(t, &fakeConnection{channels: []*fakeChannel{ch}}, nil)
	p := NewPublisher(context.Background(), "amqp://localhost", "campus.events")
	require.Equal(t, "amqp", PublisherMode(p))

	require.NoError(t, p.Publish(context.Background(), testEnvelope()))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, ChatGroupCreated, ch.keys[0])
	assert.Equal(t, ChatGroupCreated, msg.Type)
	assert.Equal(t, "campusconnect", msg.AppId)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.NotEmpty(t, msg.MessageId)
	assert.Equal(t, 2025, msg.Timestamp.Year())
	assert.Equal(t, int32(1), msg.Headers["schema_version"])
	assert.Contains(t, string(msg.Body), `"chat_id":"g1"`)
}

func TestAmqpPublisher_ReopensClosedChannel(t *testing.T) {
	first, second := &fakeChannel{}, &fakeChannel{}
	conn := &fakeConnection{channels: []*fakeChannel{first, second}}
	withDialer(t, conn, nil)
	p := NewPublisher(context.Background(), "amqp://localhost", "campus.events")

	first.closed = true
	require.NoError(t, p.Publish(context.Background(), testEnvelope()))

	assert.Empty(t, first.published)
	assert.Len(t, second.published, 1)
	assert.Equal(t, 2, conn.opened)
}

func TestAmqpPublisher_PublishAfterClose(t *testing.T) {
	conn := &fakeConnection{channels: []*fakeChannel{{}}}
	withDialer(t, conn, nil)
	p := NewPublisher(context.Background(), "amqp://localhost", "campus.events")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, conn.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), testEnvelope()), ErrPublisherClosed)
}
