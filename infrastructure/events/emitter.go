package events

import (
	"context"
	"log/slog"
	"time"

	"campusconnect/infrastructure/observability"
	"campusconnect/pkg/logging"
)

const (
	ChatGroupCreated      = "chat.group_created"
	ChatMessageSent       = "chat.message_sent"
	FriendRequestSent     = "friend_request.sent"
	FriendRequestAccepted = "friend_request.accepted"
)

type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	UserId        string `json:"user_id,omitempty"`
	Payload       any    `json:"payload"`
}

type GroupCreated struct {
	ChatId    string     `json:"chat_id"`
	Name      string     `json:"name"`
	Users     []string   `json:"users"`
	Ephemeral bool       `json:"ephemeral"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type MessageSent struct {
	ChatId    string `json:"chat_id"`
	MessageId string `json:"message_id"`
	SenderId  string `json:"sender_id"`
}

type FriendRequestChanged struct {
	RequestId string `json:"request_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	ChatId    string `json:"chat_id,omitempty"`
}

// Emitter wraps domain payloads in an Envelope and publishes them with the
// event type as routing key. Failures are logged and counted, never returned.
type Emitter struct {
	publisher   Publisher
	service     string
	environment string
	now         func() time.Time
}

func NewEmitter(publisher Publisher, service, environment string) *Emitter {
	return &Emitter{
		publisher:   publisher,
		service:     service,
		environment: environment,
		now:         time.Now,
	}
}

func (e *Emitter) Emit(ctx context.Context, eventType, userId string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		UserId:        userId,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, envelope); err != nil {
		observability.IncEventPublishErrors(eventType)
		logging.FromContext(ctx).Warn("event publish failed",
			slog.String("event_type", eventType), logging.Err(err))
	}
}
