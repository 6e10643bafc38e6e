package repository

import (
	"context"

	"campusconnect/internal/entity"
	"campusconnect/pkg/docstore"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity entity.Activity) (string, error)
	Get(ctx context.Context, activityId string) (entity.Activity, error)
	ListByCommunity(ctx context.Context, communityName string) ([]entity.Activity, error)
	ListVolunteered(ctx context.Context, userId string) ([]entity.Activity, error)
	AddVolunteer(ctx context.Context, activityId, userId string) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment entity.Assignment) (string, error)
	Get(ctx context.Context, assignmentId string) (entity.Assignment, error)
	UpdateStatus(ctx context.Context, assignmentId string, status entity.AssignmentStatus) error
	ListByStudent(ctx context.Context, studentId string) ([]entity.Assignment, error)
	ListByCommunity(ctx context.Context, communityName string) ([]entity.Assignment, error)
}

type activityRepository struct {
	store docstore.Store
}

func NewActivityRepository(store docstore.Store) ActivityRepository {
	return &activityRepository{
		store: store,
	}
}

func (r *activityRepository) Create(ctx context.Context, a entity.Activity) (string, error) {
	id, err := r.store.Add(ctx, activitiesCollection, map[string]any{
		"community_name": a.CommunityName,
		"event_title":    a.Title,
		"description":    a.Description,
		"image_url":      a.ImageURL,
		"event_date":     a.EventDate,
		"location":       a.Location,
		"posted_by_uid":  a.PostedBy,
		"volunteer_list": []string{},
		"createdAt":      docstore.ServerTimestamp,
	})
	if err != nil {
		return "", writeErr(err)
	}
	return id, nil
}

func (r *activityRepository) Get(ctx context.Context, activityId string) (entity.Activity, error) {
	doc, err := r.store.Get(ctx, activitiesCollection, activityId)
	if err != nil {
		return entity.Activity{}, readErr(err)
	}
	return decodeActivity(doc), nil
}

func (r *activityRepository) ListByCommunity(ctx context.Context, communityName string) ([]entity.Activity, error) {
	return r.find(ctx, docstore.Collection(activitiesCollection).
		Where("community_name", communityName).
		Order("createdAt", true))
}

func (r *activityRepository) ListVolunteered(ctx context.Context, userId string) ([]entity.Activity, error) {
	return r.find(ctx, docstore.Collection(activitiesCollection).
		WhereArrayContains("volunteer_list", userId).
		Order("createdAt", true))
}

func (r *activityRepository) AddVolunteer(ctx context.Context, activityId, userId string) error {
	return writeErr(r.store.Update(ctx, activitiesCollection, activityId, map[string]any{
		"volunteer_list": docstore.ArrayUnion(userId),
	}))
}

func (r *activityRepository) find(ctx context.Context, q docstore.Query) ([]entity.Activity, error) {
	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Activity, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeActivity(doc))
	}
	return out, nil
}

func decodeActivity(doc docstore.Document) entity.Activity {
	return entity.Activity{
		Id:            doc.Id,
		CommunityName: doc.String("community_name"),
		Title:         doc.String("event_title"),
		Description:   doc.String("description"),
		ImageURL:      doc.String("image_url"),
		EventDate:     doc.String("event_date"),
		Location:      doc.String("location"),
		PostedBy:      doc.String("posted_by_uid"),
		Volunteers:    doc.Strings("volunteer_list"),
		CreatedAt:     timeOrZero(doc, "createdAt"),
	}
}

type assignmentRepository struct {
	store docstore.Store
}

func NewAssignmentRepository(store docstore.Store) AssignmentRepository {
	return &assignmentRepository{
		store: store,
	}
}

func (r *assignmentRepository) Create(ctx context.Context, a entity.Assignment) (string, error) {
	id, err := r.store.Add(ctx, assignmentsCollection, map[string]any{
		"activityId":    a.ActivityId,
		"studentId":     a.StudentId,
		"taskTitle":     a.Title,
		"status":        string(entity.AssignmentPending),
		"assignedBy":    a.AssignedBy,
		"communityName": a.CommunityName,
		"assignedAt":    docstore.ServerTimestamp,
	})
	if err != nil {
		return "", writeErr(err)
	}
	return id, nil
}

func (r *assignmentRepository) Get(ctx context.Context, assignmentId string) (entity.Assignment, error) {
	doc, err := r.store.Get(ctx, assignmentsCollection, assignmentId)
	if err != nil {
		return entity.Assignment{}, readErr(err)
	}
	return decodeAssignment(doc), nil
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, assignmentId string, status entity.AssignmentStatus) error {
	return writeErr(r.store.Update(ctx, assignmentsCollection, assignmentId, map[string]any{
		"status": string(status),
	}))
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentId string) ([]entity.Assignment, error) {
	return r.find(ctx, docstore.Collection(assignmentsCollection).
		Where("studentId", studentId).
		Order("assignedAt", true))
}

func (r *assignmentRepository) ListByCommunity(ctx context.Context, communityName string) ([]entity.Assignment, error) {
	return r.find(ctx, docstore.Collection(assignmentsCollection).
		Where("communityName", communityName).
		Order("assignedAt", true))
}

func (r *assignmentRepository) find(ctx context.Context, q docstore.Query) ([]entity.Assignment, error) {
	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Assignment, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeAssignment(doc))
	}
	return out, nil
}

func decodeAssignment(doc docstore.Document) entity.Assignment {
	return entity.Assignment{
		Id:            doc.Id,
		ActivityId:    doc.String("activityId"),
		StudentId:     doc.String("studentId"),
		Title:         doc.String("taskTitle"),
		Status:        entity.AssignmentStatus(doc.String("status")),
		AssignedBy:    doc.String("assignedBy"),
		CommunityName: doc.String("communityName"),
		AssignedAt:    timeOrZero(doc, "assignedAt"),
	}
}
