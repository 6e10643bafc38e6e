package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatValidate(t *testing.T) {
	exp := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		chat    Chat
		wantErr bool
	}{
		{"direct", Chat{Id: "a_b", Type: ChatDirect, Users: []string{"b", "a"}}, false},
		{"direct wrong id", Chat{Id: "x", Type: ChatDirect, Users: []string{"a", "b"}}, true},
		{"direct one user", Chat{Id: "a_b", Type: ChatDirect, Users: []string{"a"}}, true},
		{"group", Chat{Id: "g1", Type: ChatGroup, Users: []string{"a"}}, false},
		{"group without users", Chat{Id: "g1", Type: ChatGroup}, true},
		{"ephemeral", Chat{Id: "g2", Type: ChatEphemeralGroup, Users: []string{"a"}, ExpiresAt: &exp}, false},
		{"ephemeral without expiry", Chat{Id: "g2", Type: ChatEphemeralGroup, Users: []string{"a"}}, true},
		{"unknown type", Chat{Id: "g3", Type: "channel", Users: []string{"a"}}, true},
		{"missing id", Chat{Type: ChatGroup, Users: []string{"a"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chat.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedChat)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChatIsExpired(t *testing.T) {
	exp := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c := Chat{Id: "g", Type: ChatEphemeralGroup, Users: []string{"a"}, ExpiresAt: &exp}

	assert.False(t, c.IsExpired(exp.Add(-time.Second)))
	assert.False(t, c.IsExpired(exp))
	assert.True(t, c.IsExpired(exp.Add(time.Second)))

	c.Type = ChatGroup
	assert.False(t, c.IsExpired(exp.Add(time.Hour)))
}

func TestOtherParticipant(t *testing.T) {
	c := Chat{Id: "a_b", Type: ChatDirect, Users: []string{"a", "b"}}
	other, ok := c.OtherParticipant("a")
	require.True(t, ok)
	assert.Equal(t, "b", other)

	_, ok = Chat{Type: ChatGroup, Users: []string{"a", "b"}}.OtherParticipant("a")
	assert.False(t, ok)
}

func TestFriendRequestTransitions(t *testing.T) {
	r := FriendRequest{From: "a", To: "b", Status: FriendRequestPending}
	require.NoError(t, r.Transition(FriendRequestAccepted))
	assert.Equal(t, FriendRequestAccepted, r.Status)

	assert.ErrorIs(t, r.Transition(FriendRequestAccepted), ErrRequestNotPending)
	assert.ErrorIs(t, r.Transition(FriendRequestRejected), ErrRequestNotPending)
	require.NoError(t, r.Transition(FriendRequestDeleted))
	assert.False(t, r.Status.Persisted())

	p := FriendRequest{Status: FriendRequestPending}
	assert.ErrorIs(t, p.Transition(FriendRequestDeleted), ErrInvalidTransition)
	require.NoError(t, p.Transition(FriendRequestRejected))
}

func TestFriendRequestCounterpart(t *testing.T) {
	r := FriendRequest{From: "a", To: "b"}
	assert.Equal(t, "b", r.Counterpart("a"))
	assert.Equal(t, "a", r.Counterpart("b"))
	assert.Equal(t, "a_b", FriendRequestId("a", "b"))
}

func TestAssignmentTransitions(t *testing.T) {
	a := Assignment{Status: AssignmentPending}

	assert.ErrorIs(t, a.Transition(AssignmentCompleted), ErrInvalidTransition)
	require.NoError(t, a.Transition(AssignmentInReview))
	require.NoError(t, a.Transition(AssignmentRejected))
	require.NoError(t, a.Transition(AssignmentInReview))
	require.NoError(t, a.Transition(AssignmentCompleted))
	assert.ErrorIs(t, a.Transition(AssignmentInReview), ErrInvalidTransition)
}
