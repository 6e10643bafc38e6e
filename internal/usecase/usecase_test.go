package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"campusconnect/infrastructure/db"
	"campusconnect/internal/repository"

	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices map[string][]Notice
}

func (r *recordingNotifier) SendToClient(userID string, message []byte) {
	var n Notice
	if err := json.Unmarshal(message, &n); err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.notices == nil {
		r.notices = make(map[string][]Notice)
	}
	r.notices[userID] = append(r.notices[userID], n)
}

func (r *recordingNotifier) For(userID string) []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices[userID]...)
}

type fixture struct {
	store       *db.MemoryStore
	clock       *stepClock
	notifier    *recordingNotifier
	users       repository.UserRepository
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	requestRepo repository.FriendRequestRepository

	chats    ChatUsecase
	chatList ChatListUsecase
	friends  FriendRequestUsecase
	profiles UserUsecase
	activity ActivityUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := newStepClock()
	store := db.NewMemoryStore(db.WithClock(clock.Now))
	f := &fixture{
		store:       store,
		clock:       clock,
		notifier:    &recordingNotifier{},
		users:       repository.NewUserRepository(store),
		chatRepo:    repository.NewChatRepository(store),
		messageRepo: repository.NewMessageRepository(store),
		requestRepo: repository.NewFriendRequestRepository(store),
	}

	resolver := NewProfileResolver(f.users, nil, 0)
	f.chats = NewChatUsecase(f.chatRepo, f.messageRepo, nil, ChatConfig{Clock: clock.Now})
	f.chatList = NewChatListUsecase(f.chatRepo, resolver, clock.Now)
	f.friends = NewFriendRequestUsecase(f.requestRepo, f.chats, resolver, f.notifier, nil)
	f.profiles = NewUserUseCase(f.users, resolver)
	f.activity = NewActivityUsecase(
		repository.NewActivityRepository(store),
		repository.NewAssignmentRepository(store),
		f.users,
	)
	return f
}

func (f *fixture) user(t *testing.T, id, name string) {
	t.Helper()
	_, err := f.profiles.EnsureProfile(context.Background(), id, name)
	require.NoError(t, err)
}
