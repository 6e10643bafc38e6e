package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"campusconnect/pkg/logging"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrForbidden            = errors.New("not allowed")
	ErrNotParticipant       = errors.New("you are not a participant of this chat")
	ErrExpired              = errors.New("this group chat has expired")
	ErrEmptyParticipants    = errors.New("a group needs at least one participant")
	ErrReverseRequestExists = errors.New("they already sent you a request, respond to it instead")
	ErrCannotRequestSelf    = errors.New("cannot send a friend request to yourself")
)

// Clock is the time source of the use cases.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// Notifier pushes a payload to every connection of a user. The websocket hub
// implements it.
type Notifier interface {
	SendToClient(userID string, message []byte)
}

const (
	NoticeFriendRequest         = "friend_request"
	NoticeFriendRequestAccepted = "friend_request_accepted"
)

// Notice is a server push that is not tied to a subscription.
type Notice struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// notify is best effort: failures are logged and never returned.
func notify(ctx context.Context, n Notifier, userId string, notice Notice) {
	if n == nil {
		return
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		logging.FromContext(ctx).Warn("notice marshal failed", logging.User(userId), logging.Err(err))
		return
	}
	n.SendToClient(userId, payload)
}
