package entity

import (
	"errors"
	"fmt"
	"time"

	"campusconnect/pkg/chatid"
)

var ErrMalformedChat = errors.New("malformed chat")

// ChatType tags the Chat variant. Direct chats are stored without a type
// field.
type ChatType string

const (
	ChatDirect         ChatType = "direct"
	ChatGroup          ChatType = "group"
	ChatEphemeralGroup ChatType = "ephemeral_group"
)

func (t ChatType) IsGroup() bool {
	return t == ChatGroup || t == ChatEphemeralGroup
}

// Chat is the decoded chat document. Which optional fields are meaningful
// depends on Type; Validate enforces the per-variant shape.
type Chat struct {
	Id          string     `json:"id"`
	Type        ChatType   `json:"type"`
	Users       []string   `json:"users"`
	GroupName   string     `json:"groupName,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	Admins      []string   `json:"admins,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	LastMessage string     `json:"lastMessage"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`

	// Degraded marks a direct chat whose stored shape is invalid but which
	// still lists the reader. It is shown with fallback display fields.
	Degraded bool `json:"-"`
}

func (c Chat) Validate() error {
	if c.Id == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedChat)
	}
	switch c.Type {
	case ChatDirect:
		if len(c.Users) != 2 {
			return fmt.Errorf("%w: direct chat %s has %d users", ErrMalformedChat, c.Id, len(c.Users))
		}
		if chatid.Derive(c.Users[0], c.Users[1]) != c.Id {
			return fmt.Errorf("%w: direct chat id %s does not match its users", ErrMalformedChat, c.Id)
		}
	case ChatGroup:
		if len(c.Users) == 0 {
			return fmt.Errorf("%w: group %s has no users", ErrMalformedChat, c.Id)
		}
	case ChatEphemeralGroup:
		if len(c.Users) == 0 {
			return fmt.Errorf("%w: group %s has no users", ErrMalformedChat, c.Id)
		}
		if c.ExpiresAt == nil {
			return fmt.Errorf("%w: ephemeral group %s has no expiry", ErrMalformedChat, c.Id)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedChat, c.Type)
	}
	return nil
}

// IsExpired reports whether an ephemeral group is past its expiry at now.
// Other variants never expire.
func (c Chat) IsExpired(now time.Time) bool {
	return c.Type == ChatEphemeralGroup && c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

func (c Chat) HasMember(userId string) bool {
	for _, u := range c.Users {
		if u == userId {
			return true
		}
	}
	return false
}

// OtherParticipant returns the member of a direct chat that is not userId.
func (c Chat) OtherParticipant(userId string) (string, bool) {
	if c.Type != ChatDirect {
		return "", false
	}
	for _, u := range c.Users {
		if u != userId {
			return u, true
		}
	}
	return "", false
}

// ChatSummary is one row of a user's chat list.
type ChatSummary struct {
	Id          string     `json:"id"`
	Type        ChatType   `json:"type"`
	Name        string     `json:"name"`
	Photo       string     `json:"photo"`
	Users       []string   `json:"users"`
	LastMessage string     `json:"lastMessage"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type CreateGroupChatRequest struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
	Ephemeral    bool     `json:"ephemeral"`
}

type EnsureDirectChatRequest struct {
	UserId string `json:"userId"`
}
