package usecase

import (
	"context"
	"fmt"
	"strings"

	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
)

// ActivityUsecase covers community event postings and the tasks leaders
// assign to volunteers.
type ActivityUsecase interface {
	CreateActivity(ctx context.Context, leaderId string, req entity.CreateActivityRequest) (entity.Activity, error)
	ListActivities(ctx context.Context, communityName string) ([]entity.Activity, error)
	ListVolunteered(ctx context.Context, userId string) ([]entity.Activity, error)
	Volunteer(ctx context.Context, activityId, userId string) error

	Assign(ctx context.Context, leaderId string, req entity.AssignRequest) (entity.Assignment, error)
	ListAssignments(ctx context.Context, studentId string) ([]entity.Assignment, error)
	ListCommunityAssignments(ctx context.Context, leaderId string) ([]entity.Assignment, error)
	Submit(ctx context.Context, assignmentId, studentId string) (entity.Assignment, error)
	Approve(ctx context.Context, assignmentId, leaderId string) (entity.Assignment, error)
	Reject(ctx context.Context, assignmentId, leaderId string) (entity.Assignment, error)
}

type activityUsecase struct {
	activityRepo   repository.ActivityRepository
	assignmentRepo repository.AssignmentRepository
	userRepo       repository.UserRepository
}

func NewActivityUsecase(activityRepo repository.ActivityRepository, assignmentRepo repository.AssignmentRepository, userRepo repository.UserRepository) ActivityUsecase {
	return &activityUsecase{
		activityRepo:   activityRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
	}
}

func (a *activityUsecase) CreateActivity(ctx context.Context, leaderId string, req entity.CreateActivityRequest) (entity.Activity, error) {
	leader, err := a.leader(ctx, leaderId)
	if err != nil {
		return entity.Activity{}, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return entity.Activity{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	activity := entity.Activity{
		CommunityName: leader.CommunityName,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		EventDate:     req.EventDate,
		Location:      req.Location,
		PostedBy:      leaderId,
	}
	id, err := a.activityRepo.Create(ctx, activity)
	if err != nil {
		return entity.Activity{}, err
	}
	return a.activityRepo.Get(ctx, id)
}

func (a *activityUsecase) ListActivities(ctx context.Context, communityName string) ([]entity.Activity, error) {
	return a.activityRepo.ListByCommunity(ctx, communityName)
}

func (a *activityUsecase) ListVolunteered(ctx context.Context, userId string) ([]entity.Activity, error) {
	return a.activityRepo.ListVolunteered(ctx, userId)
}

func (a *activityUsecase) Volunteer(ctx context.Context, activityId, userId string) error {
	return a.activityRepo.AddVolunteer(ctx, activityId, userId)
}

func (a *activityUsecase) Assign(ctx context.Context, leaderId string, req entity.AssignRequest) (entity.Assignment, error) {
	leader, err := a.leader(ctx, leaderId)
	if err != nil {
		return entity.Assignment{}, err
	}
	if req.StudentId == "" || strings.TrimSpace(req.Title) == "" {
		return entity.Assignment{}, fmt.Errorf("%w: student and title are required", ErrInvalidInput)
	}
	activity, err := a.activityRepo.Get(ctx, req.ActivityId)
	if err != nil {
		return entity.Assignment{}, err
	}
	if activity.CommunityName != leader.CommunityName {
		return entity.Assignment{}, fmt.Errorf("%w: activity belongs to another community", ErrForbidden)
	}

	id, err := a.assignmentRepo.Create(ctx, entity.Assignment{
		ActivityId:    activity.Id,
		StudentId:     req.StudentId,
		Title:         strings.TrimSpace(req.Title),
		AssignedBy:    leaderId,
		CommunityName: leader.CommunityName,
	})
	if err != nil {
		return entity.Assignment{}, err
	}
	return a.assignmentRepo.Get(ctx, id)
}

func (a *activityUsecase) ListAssignments(ctx context.Context, studentId string) ([]entity.Assignment, error) {
	return a.assignmentRepo.ListByStudent(ctx, studentId)
}

func (a *activityUsecase) ListCommunityAssignments(ctx context.Context, leaderId string) ([]entity.Assignment, error) {
	leader, err := a.leader(ctx, leaderId)
	if err != nil {
		return nil, err
	}
	return a.assignmentRepo.ListByCommunity(ctx, leader.CommunityName)
}

func (a *activityUsecase) Submit(ctx context.Context, assignmentId, studentId string) (entity.Assignment, error) {
	assignment, err := a.assignmentRepo.Get(ctx, assignmentId)
	if err != nil {
		return entity.Assignment{}, err
	}
	if assignment.StudentId != studentId {
		return entity.Assignment{}, fmt.Errorf("%w: assignment belongs to another student", ErrForbidden)
	}
	return a.transition(ctx, assignment, entity.AssignmentInReview)
}

func (a *activityUsecase) Approve(ctx context.Context, assignmentId, leaderId string) (entity.Assignment, error) {
	return a.review(ctx, assignmentId, leaderId, entity.AssignmentCompleted)
}

func (a *activityUsecase) Reject(ctx context.Context, assignmentId, leaderId string) (entity.Assignment, error) {
	return a.review(ctx, assignmentId, leaderId, entity.AssignmentRejected)
}

func (a *activityUsecase) review(ctx context.Context, assignmentId, leaderId string, next entity.AssignmentStatus) (entity.Assignment, error) {
	leader, err := a.leader(ctx, leaderId)
	if err != nil {
		return entity.Assignment{}, err
	}
	assignment, err := a.assignmentRepo.Get(ctx, assignmentId)
	if err != nil {
		return entity.Assignment{}, err
	}
	if assignment.CommunityName != leader.CommunityName {
		return entity.Assignment{}, fmt.Errorf("%w: assignment belongs to another community", ErrForbidden)
	}
	return a.transition(ctx, assignment, next)
}

func (a *activityUsecase) transition(ctx context.Context, assignment entity.Assignment, next entity.AssignmentStatus) (entity.Assignment, error) {
	if err := assignment.Transition(next); err != nil {
		return entity.Assignment{}, err
	}
	if err := a.assignmentRepo.UpdateStatus(ctx, assignment.Id, assignment.Status); err != nil {
		return entity.Assignment{}, err
	}
	return assignment, nil
}

func (a *activityUsecase) leader(ctx context.Context, userId string) (entity.User, error) {
	user, err := a.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.User{}, err
	}
	if user.Role != entity.RoleCommunityLeader || user.CommunityName == "" {
		return entity.User{}, fmt.Errorf("%w: community leaders only", ErrForbidden)
	}
	return user, nil
}
