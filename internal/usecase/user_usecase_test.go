package usecase

import (
	"context"
	"testing"
	"time"

	"campusconnect/infrastructure/cache"
	"campusconnect/internal/entity"
	"campusconnect/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfile_FirstSignInOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.profiles.EnsureProfile(ctx, "alice", " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, entity.RoleStudent, user.Role)

	_, err = f.profiles.EnsureProfile(ctx, "alice", "Someone Else")
	require.NoError(t, err)
	user, err = f.profiles.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "alice", "Alice")

	bio := "CSE, likes robots"
	leader := entity.RoleCommunityLeader
	f.clock.Advance(time.Minute)
	user, err := f.profiles.UpdateProfile(ctx, "alice", entity.ProfileUpdate{Bio: &bio, Role: &leader})
	require.NoError(t, err)
	assert.Equal(t, bio, user.Bio)
	assert.Equal(t, entity.RoleCommunityLeader, user.Role)
	assert.Equal(t, "Alice", user.Name)
	assert.True(t, user.UpdatedAt.Equal(f.clock.Now()))

	_, err = f.profiles.UpdateProfile(ctx, "alice", entity.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	blank := "  "
	_, err = f.profiles.UpdateProfile(ctx, "alice", entity.ProfileUpdate{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bogus := entity.Role("admin")
	_, err = f.profiles.UpdateProfile(ctx, "alice", entity.ProfileUpdate{Role: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProfile_InvalidatesCachedProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "bob", "Bob")

	profileCache := cache.NewMemCache[entity.DisplayProfile](time.Minute)
	defer profileCache.Close()
	resolver := NewProfileResolver(f.users, profileCache, time.Minute)
	users := NewUserUseCase(f.users, resolver)

	assert.Equal(t, "Bob", resolver.Resolve(ctx, "bob").Name)

	name := "Robert"
	_, err := users.UpdateProfile(ctx, "bob", entity.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Robert", resolver.Resolve(ctx, "bob").Name)
}

func TestSetPresenceAndOnlineUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, "alice", "Alice")
	f.user(t, "bob", "Bob")

	require.NoError(t, f.profiles.SetPresence(ctx, "alice", true))

	online, err := f.profiles.GetOnlineUsers(ctx, []string{"alice", "bob", "ghost"})
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, "alice", online[0].Id)
	assert.True(t, online[0].LastSeen.Equal(f.clock.Now()))

	f.clock.Advance(time.Minute)
	require.NoError(t, f.profiles.SetPresence(ctx, "alice", false))
	user, err := f.profiles.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, user.Online)
	assert.True(t, user.LastSeen.Equal(f.clock.Now()))

	_, err = f.profiles.Get(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
