package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusconnect/infrastructure/db"
	"campusconnect/internal/entity"
	"campusconnect/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func newStore() (*db.MemoryStore, *stepClock) {
	clock := &stepClock{t: time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)}
	return db.NewMemoryStore(db.WithClock(clock.now)), clock
}

type failingStore struct {
	docstore.Store
}

func (failingStore) Set(context.Context, string, string, map[string]any, docstore.SetOptions) error {
	return errors.New("permission denied")
}

func TestChatRepository_EnsureDirectKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store, clock := newStore()
	repo := NewChatRepository(store)

	require.NoError(t, repo.EnsureDirect(ctx, "a_b", []string{"a", "b"}))
	first, err := repo.Get(ctx, "a_b")
	require.NoError(t, err)
	require.NotNil(t, first.CreatedAt)

	clock.t = clock.t.Add(time.Hour)
	require.NoError(t, repo.EnsureDirect(ctx, "a_b", []string{"b", "a"}))
	second, err := repo.Get(ctx, "a_b")
	require.NoError(t, err)

	assert.True(t, first.CreatedAt.Equal(*second.CreatedAt))
	assert.True(t, second.UpdatedAt.Equal(clock.t))
	assert.Equal(t, entity.ChatDirect, second.Type)
}

func TestChatRepository_GetMissing(t *testing.T) {
	store, _ := newStore()
	_, err := NewChatRepository(store).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChatRepository_ListDropsMalformed(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	repo := NewChatRepository(store)

	require.NoError(t, repo.EnsureDirect(ctx, "a_b", []string{"a", "b"}))
	require.NoError(t, store.Set(ctx, "chats", "broken", map[string]any{
		"type":  "ephemeral_group",
		"users": []string{"a"},
	}, docstore.SetOptions{}))
	require.NoError(t, store.Set(ctx, "chats", "odd", map[string]any{
		"type":  42,
		"users": []string{"a"},
	}, docstore.SetOptions{}))

	chats, err := repo.ListForUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "a_b", chats[0].Id)

	_, err = repo.Get(ctx, "broken")
	assert.ErrorIs(t, err, entity.ErrMalformedChat)
}

func TestChatRepository_ListKeepsMalformedDirectChatsAsDegraded(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	repo := NewChatRepository(store)

	require.NoError(t, repo.EnsureDirect(ctx, "a_b", []string{"a", "b"}))
	require.NoError(t, store.Set(ctx, "chats", "a_c", map[string]any{
		"users": []string{"a", "b", "c"},
	}, docstore.SetOptions{}))

	chats, err := repo.ListForUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, chats, 2)

	byId := map[string]entity.Chat{}
	for _, c := range chats {
		byId[c.Id] = c
	}
	assert.False(t, byId["a_b"].Degraded)
	assert.True(t, byId["a_c"].Degraded)
	assert.Equal(t, entity.ChatDirect, byId["a_c"].Type)

	_, err = repo.Get(ctx, "a_c")
	assert.ErrorIs(t, err, entity.ErrMalformedChat)
}

func TestChatRepository_CreateGroup(t *testing.T) {
	ctx := context.Background()
	store, clock := newStore()
	repo := NewChatRepository(store)

	exp := clock.t.Add(time.Hour)
	id, err := repo.CreateGroup(ctx, entity.Chat{
		Type:      entity.ChatEphemeralGroup,
		GroupName: "Study Group",
		Users:     []string{"u1", "u2"},
		CreatedBy: "u1",
		Admins:    []string{"u1"},
		ExpiresAt: &exp,
	})
	require.NoError(t, err)

	chat, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Study Group", chat.GroupName)
	assert.Equal(t, []string{"u1"}, chat.Admins)
	require.NotNil(t, chat.ExpiresAt)
	assert.True(t, chat.ExpiresAt.Equal(exp))
}

func TestChatRepository_WriteFailureIsTagged(t *testing.T) {
	store, _ := newStore()
	repo := NewChatRepository(failingStore{Store: store})

	err := repo.UpdateSummary(context.Background(), "a_b", "hi")
	assert.ErrorIs(t, err, ErrStoreWriteFailed)
}

func TestMessageRepository_OrderedByCreatedAt(t *testing.T) {
	ctx := context.Background()
	store, clock := newStore()
	repo := NewMessageRepository(store)

	for _, text := range []string{"one", "two", "three"} {
		_, err := repo.Append(ctx, "a_b", "a", text)
		require.NoError(t, err)
		clock.t = clock.t.Add(time.Second)
	}
	_, err := repo.Append(ctx, "c_d", "c", "elsewhere")
	require.NoError(t, err)

	msgs, err := repo.List(ctx, "a_b")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Text)
	assert.Equal(t, "three", msgs[2].Text)
	assert.Equal(t, "a_b", msgs[0].ChatId)
}

func TestFriendRequestRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	repo := NewFriendRequestRepository(store)

	req, err := repo.Put(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a_b", req.Id)

	exists, err := repo.Exists(ctx, "b_a")
	require.NoError(t, err)
	assert.False(t, exists)

	pending, err := repo.ListIncoming(ctx, "b", entity.FriendRequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].From)

	require.NoError(t, repo.UpdateStatus(ctx, "a_b", entity.FriendRequestAccepted))
	outgoing, err := repo.ListOutgoing(ctx, "a", entity.FriendRequestAccepted)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "x_y", entity.FriendRequestAccepted), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "a_b"))
	_, err = repo.Get(ctx, "a_b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_ProfileAndPresence(t *testing.T) {
	ctx := context.Background()
	store, clock := newStore()
	repo := NewUserRepository(store)

	require.NoError(t, repo.EnsureProfile(ctx, entity.User{Id: "u1", Name: "Ana"}))
	name := "Ana B."
	require.NoError(t, repo.Update(ctx, "u1", entity.ProfileUpdate{Name: &name}))
	require.NoError(t, repo.EnsureProfile(ctx, entity.User{Id: "u1", Name: "ignored"}))
	require.NoError(t, repo.SetPresence(ctx, "u1", true))

	u, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana B.", u.Name)
	assert.Equal(t, entity.RoleStudent, u.Role)
	assert.True(t, u.Online)
	assert.True(t, u.LastSeen.Equal(clock.t))
}

func TestUserRepository_LegacyFields(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	require.NoError(t, store.Set(ctx, "users", "u9", map[string]any{
		"Name": "Legacy", "BIO": "hi", "photoUrl": "p.png",
	}, docstore.SetOptions{}))

	u, err := NewUserRepository(store).Get(ctx, "u9")
	require.NoError(t, err)
	assert.Equal(t, "Legacy", u.Name)
	assert.Equal(t, "hi", u.Bio)
	assert.Equal(t, "p.png", u.Photo)
}

func TestActivityRepository_Volunteer(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()
	repo := NewActivityRepository(store)

	id, err := repo.Create(ctx, entity.Activity{CommunityName: "Robotics", Title: "Beach cleanup", PostedBy: "lead"})
	require.NoError(t, err)
	require.NoError(t, repo.AddVolunteer(ctx, id, "u1"))
	require.NoError(t, repo.AddVolunteer(ctx, id, "u1"))

	mine, err := repo.ListVolunteered(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, []string{"u1"}, mine[0].Volunteers)

	assert.ErrorIs(t, repo.AddVolunteer(ctx, "missing", "u1"), ErrNotFound)
}
