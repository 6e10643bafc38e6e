package repository

import (
	"context"
	"errors"

	"campusconnect/internal/entity"
	"campusconnect/pkg/docstore"
)

type FriendRequestRepository interface {
	Get(ctx context.Context, requestId string) (entity.FriendRequest, error)
	Exists(ctx context.Context, requestId string) (bool, error)
	// Put writes a pending request at its sender-first key, replacing any
	// previous document there.
	Put(ctx context.Context, from, to string) (entity.FriendRequest, error)
	UpdateStatus(ctx context.Context, requestId string, status entity.FriendRequestStatus) error
	Delete(ctx context.Context, requestId string) error
	ListIncoming(ctx context.Context, userId string, status entity.FriendRequestStatus) ([]entity.FriendRequest, error)
	ListOutgoing(ctx context.Context, userId string, status entity.FriendRequestStatus) ([]entity.FriendRequest, error)
	SubscribeIncoming(ctx context.Context, userId string, status entity.FriendRequestStatus, fn func([]entity.FriendRequest)) (docstore.Unsubscribe, error)
}

type friendRequestRepository struct {
	store docstore.Store
}

func NewFriendRequestRepository(store docstore.Store) FriendRequestRepository {
	return &friendRequestRepository{
		store: store,
	}
}

func (r *friendRequestRepository) Get(ctx context.Context, requestId string) (entity.FriendRequest, error) {
	doc, err := r.store.Get(ctx, friendRequestsCollection, requestId)
	if err != nil {
		return entity.FriendRequest{}, readErr(err)
	}
	return decodeFriendRequest(doc), nil
}

func (r *friendRequestRepository) Exists(ctx context.Context, requestId string) (bool, error) {
	_, err := r.Get(ctx, requestId)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *friendRequestRepository) Put(ctx context.Context, from, to string) (entity.FriendRequest, error) {
	id := entity.FriendRequestId(from, to)
	fields := map[string]any{
		"from":      from,
		"to":        to,
		"status":    string(entity.FriendRequestPending),
		"createdAt": docstore.ServerTimestamp,
	}
	if err := r.store.Set(ctx, friendRequestsCollection, id, fields, docstore.SetOptions{}); err != nil {
		return entity.FriendRequest{}, writeErr(err)
	}
	return entity.FriendRequest{Id: id, From: from, To: to, Status: entity.FriendRequestPending}, nil
}

func (r *friendRequestRepository) UpdateStatus(ctx context.Context, requestId string, status entity.FriendRequestStatus) error {
	return writeErr(r.store.Update(ctx, friendRequestsCollection, requestId, map[string]any{
		"status": string(status),
	}))
}

func (r *friendRequestRepository) Delete(ctx context.Context, requestId string) error {
	return writeErr(r.store.Delete(ctx, friendRequestsCollection, requestId))
}

func (r *friendRequestRepository) ListIncoming(ctx context.Context, userId string, status entity.FriendRequestStatus) ([]entity.FriendRequest, error) {
	return r.find(ctx, incomingQuery(userId, status))
}

func (r *friendRequestRepository) ListOutgoing(ctx context.Context, userId string, status entity.FriendRequestStatus) ([]entity.FriendRequest, error) {
	return r.find(ctx, docstore.Collection(friendRequestsCollection).
		Where("from", userId).
		Where("status", string(status)).
		Order("createdAt", true))
}

func (r *friendRequestRepository) SubscribeIncoming(ctx context.Context, userId string, status entity.FriendRequestStatus, fn func([]entity.FriendRequest)) (docstore.Unsubscribe, error) {
	return r.store.Subscribe(ctx, incomingQuery(userId, status), func(docs []docstore.Document) {
		fn(decodeFriendRequests(docs))
	})
}

func (r *friendRequestRepository) find(ctx context.Context, q docstore.Query) ([]entity.FriendRequest, error) {
	docs, err := r.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodeFriendRequests(docs), nil
}

func incomingQuery(userId string, status entity.FriendRequestStatus) docstore.Query {
	return docstore.Collection(friendRequestsCollection).
		Where("to", userId).
		Where("status", string(status)).
		Order("createdAt", true)
}

func decodeFriendRequests(docs []docstore.Document) []entity.FriendRequest {
	out := make([]entity.FriendRequest, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeFriendRequest(doc))
	}
	return out
}

func decodeFriendRequest(doc docstore.Document) entity.FriendRequest {
	return entity.FriendRequest{
		Id:        doc.Id,
		From:      doc.String("from"),
		To:        doc.String("to"),
		Status:    entity.FriendRequestStatus(doc.String("status")),
		CreatedAt: timeOrZero(doc, "createdAt"),
	}
}
