package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"campusconnect/internal/entity"
	"campusconnect/internal/mocks"
	"campusconnect/internal/usecase"
	"campusconnect/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakeSender) Send(message []byte) bool {
	var e Event
	if err := json.Unmarshal(message, &e); err != nil {
		return false
	}
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
	return true
}

func (f *fakeSender) last() Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

type sessionFixture struct {
	chat     *mocks.ChatUsecaseMock
	chatList *mocks.ChatListUsecaseMock
	friends  *mocks.FriendRequestUsecaseMock
	out      *fakeSender
	sess     *session
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		chat:     new(mocks.ChatUsecaseMock),
		chatList: new(mocks.ChatListUsecaseMock),
		friends:  new(mocks.FriendRequestUsecaseMock),
		out:      &fakeSender{},
	}
	h := &WebsocketHandler{chatUc: f.chat, chatListUc: f.chatList, friendUc: f.friends}
	f.sess = newSession("alice", f.out, h)
	return f
}

func (f *sessionFixture) send(t *testing.T, cmd Command) {
	t.Helper()
	data, err := json.Marshal(cmd)
	require.NoError(t, err)
	f.sess.handle(context.Background(), data)
}

func countingUnsubscribe(n *int) docstore.Unsubscribe {
	return func() { *n++ }
}

func TestSession_SubscribeChatsDeliversSnapshot(t *testing.T) {
	f := newSessionFixture()
	released := 0

	f.chatList.On("SubscribeChats", mock.Anything, "alice", mock.Anything).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func([]entity.ChatSummary))
			fn([]entity.ChatSummary{{Id: "a_b", Name: "Bob"}})
		}).
		Return(countingUnsubscribe(&released), nil).Once()

	f.send(t, Command{Type: CommandSubscribeChats, Id: "list"})

	event := f.out.last()
	assert.Equal(t, EventChats, event.Type)
	assert.Equal(t, "list", event.Id)
	assert.Equal(t, 1, f.sess.count())

	f.send(t, Command{Type: CommandUnsubscribe, Id: "list"})
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, f.sess.count())
	assert.Equal(t, EventAck, f.out.last().Type)
	f.chatList.AssertExpectations(t)
}

func TestSession_ResubscribeReleasesPrevious(t *testing.T) {
	f := newSessionFixture()
	released := 0

	f.chat.On("SubscribeMessages", mock.Anything, "a_b", "alice", mock.Anything).
		Return(countingUnsubscribe(&released), nil).Twice()

	f.send(t, Command{Type: CommandSubscribeMessages, ChatId: "a_b"})
	f.send(t, Command{Type: CommandSubscribeMessages, ChatId: "a_b"})

	assert.Equal(t, 1, released)
	assert.Equal(t, 1, f.sess.count())

	f.sess.close()
	assert.Equal(t, 2, released)
	f.chat.AssertExpectations(t)
}

func TestSession_CloseReleasesEverything(t *testing.T) {
	f := newSessionFixture()
	released := 0

	f.chatList.On("SubscribeChats", mock.Anything, "alice", mock.Anything).
		Return(countingUnsubscribe(&released), nil).Once()
	f.friends.On("SubscribePending", mock.Anything, "alice", mock.Anything).
		Return(countingUnsubscribe(&released), nil).Once()

	f.send(t, Command{Type: CommandSubscribeChats})
	f.send(t, Command{Type: CommandSubscribePending})
	require.Equal(t, 2, f.sess.count())

	f.sess.close()
	assert.Equal(t, 2, released)
	assert.Equal(t, 0, f.sess.count())
}

func TestSession_SubscribeMessagesErrors(t *testing.T) {
	f := newSessionFixture()

	f.send(t, Command{Type: CommandSubscribeMessages})
	assert.Equal(t, "chatId is required", f.out.last().Error)

	f.chat.On("SubscribeMessages", mock.Anything, "g1", "alice", mock.Anything).
		Return(nil, usecase.ErrNotParticipant).Once()
	f.send(t, Command{Type: CommandSubscribeMessages, ChatId: "g1"})

	event := f.out.last()
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, usecase.ErrNotParticipant.Error(), event.Error)
	assert.Equal(t, 0, f.sess.count())
}

func TestSession_SendMessage(t *testing.T) {
	f := newSessionFixture()

	f.chat.On("SendMessage", mock.Anything, "g1", "alice", "hello").Return("m1", nil).Once()
	f.send(t, Command{Type: CommandSendMessage, Id: "c1", ChatId: "g1", Text: "hello"})

	event := f.out.last()
	assert.Equal(t, EventAck, event.Type)
	assert.Equal(t, "c1", event.Id)
	assert.Equal(t, map[string]any{"messageId": "m1"}, event.Data)

	f.chat.On("SendMessage", mock.Anything, "g1", "alice", "late").Return("", usecase.ErrExpired).Once()
	f.send(t, Command{Type: CommandSendMessage, ChatId: "g1", Text: "late"})
	assert.Equal(t, usecase.ErrExpired.Error(), f.out.last().Error)

	f.chat.On("SendMessage", mock.Anything, "g1", "alice", "boom").Return("", assert.AnError).Once()
	f.send(t, Command{Type: CommandSendMessage, ChatId: "g1", Text: "boom"})
	assert.Equal(t, internalError, f.out.last().Error)

	f.chat.AssertExpectations(t)
}

func TestSession_RejectsUnknownFrames(t *testing.T) {
	f := newSessionFixture()

	f.sess.handle(context.Background(), []byte("not json"))
	assert.Equal(t, "invalid frame", f.out.last().Error)

	f.send(t, Command{Type: "dance"})
	assert.Equal(t, "unknown command dance", f.out.last().Error)
}
