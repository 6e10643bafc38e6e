package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"campusconnect/infrastructure/observability"
	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
	"campusconnect/internal/usecase"
	"campusconnect/pkg/docstore"
	"campusconnect/pkg/logging"
)

type sender interface {
	Send(message []byte) bool
}

type subscription struct {
	kind        string
	unsubscribe docstore.Unsubscribe
}

// session holds the live queries of one connection. Every subscription is
// released by close, whichever way the connection ends.
type session struct {
	userId string
	out    sender

	chatUc     usecase.ChatUsecase
	chatListUc usecase.ChatListUsecase
	friendUc   usecase.FriendRequestUsecase

	mu     sync.Mutex
	subs   map[string]subscription
	closed bool
}

func newSession(userId string, out sender, h *WebsocketHandler) *session {
	return &session{
		userId:     userId,
		out:        out,
		chatUc:     h.chatUc,
		chatListUc: h.chatListUc,
		friendUc:   h.friendUc,
		subs:       make(map[string]subscription),
	}
}

func (s *session) handle(ctx context.Context, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.emit(ctx, Event{Type: EventError, Error: "invalid frame"})
		return
	}

	switch cmd.Type {
	case CommandSubscribeChats:
		s.subscribe(ctx, cmd, func(ctx context.Context, id string) (docstore.Unsubscribe, error) {
			return s.chatListUc.SubscribeChats(ctx, s.userId, func(chats []entity.ChatSummary) {
				s.emit(ctx, Event{Type: EventChats, Id: id, Data: chats})
			})
		})
	case CommandSubscribeMessages:
		if cmd.ChatId == "" {
			s.emit(ctx, Event{Type: EventError, Id: cmd.Id, Error: "chatId is required"})
			return
		}
		s.subscribe(ctx, cmd, func(ctx context.Context, id string) (docstore.Unsubscribe, error) {
			return s.chatUc.SubscribeMessages(ctx, cmd.ChatId, s.userId, func(msgs []entity.Message) {
				s.emit(ctx, Event{Type: EventMessages, Id: id, ChatId: cmd.ChatId, Data: msgs})
			})
		})
	case CommandSubscribePending:
		s.subscribe(ctx, cmd, func(ctx context.Context, id string) (docstore.Unsubscribe, error) {
			return s.friendUc.SubscribePending(ctx, s.userId, func(pending []entity.Connection) {
				s.emit(ctx, Event{Type: EventPending, Id: id, Data: pending})
			})
		})
	case CommandUnsubscribe:
		s.release(cmd.subscriptionId())
		s.emit(ctx, Event{Type: EventAck, Id: cmd.Id})
	case CommandSendMessage:
		messageId, err := s.chatUc.SendMessage(ctx, cmd.ChatId, s.userId, cmd.Text)
		if err != nil {
			s.fail(ctx, cmd, err)
			return
		}
		s.emit(ctx, Event{Type: EventAck, Id: cmd.Id, ChatId: cmd.ChatId, Data: map[string]string{"messageId": messageId}})
	default:
		s.emit(ctx, Event{Type: EventError, Id: cmd.Id, Error: "unknown command " + cmd.Type})
	}
}

func (s *session) subscribe(ctx context.Context, cmd Command, open func(ctx context.Context, id string) (docstore.Unsubscribe, error)) {
	id := cmd.subscriptionId()
	s.release(id)

	unsubscribe, err := open(ctx, id)
	if err != nil {
		s.fail(ctx, cmd, err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return
	}
	s.subs[id] = subscription{kind: cmd.Type, unsubscribe: unsubscribe}
	s.mu.Unlock()
	observability.IncSubscriptions(cmd.Type)
}

func (s *session) release(id string) {
	s.mu.Lock()
	sub, ok := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()

	if ok {
		sub.unsubscribe()
		observability.DecSubscriptions(sub.kind)
	}
}

func (s *session) close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]subscription)
	s.closed = true
	s.mu.Unlock()

	for _, sub := range subs {
		sub.unsubscribe()
		observability.DecSubscriptions(sub.kind)
	}
}

func (s *session) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *session) emit(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logging.FromContext(ctx).Error("marshal event failed", logging.Err(err))
		return
	}
	if !s.out.Send(payload) {
		logging.FromContext(ctx).Warn("dropping event for slow or closed client", slog.String("type", event.Type))
	}
}

func (s *session) fail(ctx context.Context, cmd Command, err error) {
	message := errorMessage(err)
	if message == internalError {
		logging.FromContext(ctx).Error("websocket command failed", logging.Chat(cmd.ChatId), logging.Err(err))
	}
	s.emit(ctx, Event{Type: EventError, Id: cmd.Id, ChatId: cmd.ChatId, Error: message})
}

const internalError = "something went wrong, please try again"

func errorMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "not found"
	case errors.Is(err, usecase.ErrExpired),
		errors.Is(err, usecase.ErrNotParticipant),
		errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrForbidden):
		return err.Error()
	}
	return internalError
}
