package entity

import (
	"fmt"
	"time"
)

type Activity struct {
	Id            string    `json:"id"`
	CommunityName string    `json:"communityName"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	EventDate     string    `json:"eventDate,omitempty"`
	Location      string    `json:"location"`
	PostedBy      string    `json:"postedBy"`
	Volunteers    []string  `json:"volunteers"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

type CreateActivityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	EventDate   string `json:"eventDate"`
	Location    string `json:"location"`
}

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentInReview  AssignmentStatus = "in_review"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentRejected  AssignmentStatus = "rejected"
)

var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentPending:  {AssignmentInReview},
	AssignmentInReview: {AssignmentCompleted, AssignmentRejected},
	AssignmentRejected: {AssignmentInReview},
}

func (s AssignmentStatus) CanTransition(next AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Assignment struct {
	Id            string           `json:"id"`
	ActivityId    string           `json:"activityId"`
	StudentId     string           `json:"studentId"`
	Title         string           `json:"title"`
	Status        AssignmentStatus `json:"status"`
	AssignedBy    string           `json:"assignedBy"`
	CommunityName string           `json:"communityName"`
	AssignedAt    time.Time        `json:"assignedAt,omitempty"`
}

func (a *Assignment) Transition(next AssignmentStatus) error {
	if !a.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	a.Status = next
	return nil
}

type AssignRequest struct {
	ActivityId string `json:"activityId"`
	StudentId  string `json:"studentId"`
	Title      string `json:"title"`
}
