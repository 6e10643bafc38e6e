package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRequestNotPending = errors.New("friend request is not pending")
)

// FriendRequestStatus is the full lifecycle of a request. Only pending and
// accepted are persisted; rejected and deleted requests are removed from
// storage.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
	FriendRequestDeleted  FriendRequestStatus = "deleted"
)

func (s FriendRequestStatus) Persisted() bool {
	return s == FriendRequestPending || s == FriendRequestAccepted
}

var friendRequestTransitions = map[FriendRequestStatus][]FriendRequestStatus{
	FriendRequestPending:  {FriendRequestAccepted, FriendRequestRejected},
	FriendRequestAccepted: {FriendRequestDeleted},
}

// CanTransition reports whether a request in status s may move to next.
func (s FriendRequestStatus) CanTransition(next FriendRequestStatus) bool {
	for _, allowed := range friendRequestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type FriendRequest struct {
	Id        string              `json:"id"`
	From      string              `json:"from"`
	To        string              `json:"to"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt,omitempty"`
}

// FriendRequestId is the sender-first storage key for a request.
func FriendRequestId(from, to string) string {
	return from + "_" + to
}

// Counterpart returns the participant that is not userId.
func (r FriendRequest) Counterpart(userId string) string {
	if r.From == userId {
		return r.To
	}
	return r.From
}

func (r FriendRequest) Involves(userId string) bool {
	return r.From == userId || r.To == userId
}

// Transition moves the request to next or fails with ErrInvalidTransition.
func (r *FriendRequest) Transition(next FriendRequestStatus) error {
	if !r.Status.CanTransition(next) {
		if r.Status != FriendRequestPending && (next == FriendRequestAccepted || next == FriendRequestRejected) {
			return fmt.Errorf("%w: %s", ErrRequestNotPending, r.Status)
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, next)
	}
	r.Status = next
	return nil
}

// Connection is an accepted or pending request enriched with the other
// participant's display profile.
type Connection struct {
	FriendRequest
	TargetId string `json:"targetId"`
	DisplayProfile
}
