package repository

import (
	"errors"
	"fmt"
	"time"

	"campusconnect/pkg/docstore"
)

const (
	usersCollection          = "users"
	friendRequestsCollection = "friend_requests"
	chatsCollection          = "chats"
	messagesCollection       = "messages"
	activitiesCollection     = "activities"
	assignmentsCollection    = "assignments"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrStoreWriteFailed = errors.New("store write failed")
)

// writeErr tags any store failure on a write path.
func writeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
}

func readErr(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func timePtr(doc docstore.Document, field string) *time.Time {
	t, ok := doc.Time(field)
	if !ok {
		return nil
	}
	return &t
}

func timeOrZero(doc docstore.Document, field string) time.Time {
	t, _ := doc.Time(field)
	return t
}

// firstString returns the first non-empty string among fields. Older
// documents use capitalised keys.
func firstString(doc docstore.Document, fields ...string) string {
	for _, f := range fields {
		if s := doc.String(f); s != "" {
			return s
		}
	}
	return ""
}
