package usecase

import (
	"context"
	"errors"
	"fmt"

	"campusconnect/infrastructure/events"
	"campusconnect/infrastructure/observability"
	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
	"campusconnect/pkg/docstore"
	"campusconnect/pkg/logging"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type FriendRequestUsecase interface {
	SendRequest(ctx context.Context, fromId, toId string) (entity.FriendRequest, error)
	// AcceptRequest marks the request accepted and returns the direct chat
	// between the two users. Only the recipient may accept.
	AcceptRequest(ctx context.Context, requestId, userId string) (string, error)
	RejectRequest(ctx context.Context, requestId, userId string) error
	// Unfriend removes an accepted connection. The direct chat and its
	// messages are kept.
	Unfriend(ctx context.Context, requestId, userId string) error
	ListPending(ctx context.Context, userId string) ([]entity.Connection, error)
	ListConnections(ctx context.Context, userId string) ([]entity.Connection, error)
	SubscribePending(ctx context.Context, userId string, fn func([]entity.Connection)) (docstore.Unsubscribe, error)
}

type friendRequestUsecase struct {
	requestRepo repository.FriendRequestRepository
	chats       ChatUsecase
	profiles    *ProfileResolver
	notifier    Notifier
	emitter     *events.Emitter
}

func NewFriendRequestUsecase(
	requestRepo repository.FriendRequestRepository,
	chats ChatUsecase,
	profiles *ProfileResolver,
	notifier Notifier,
	emitter *events.Emitter,
) FriendRequestUsecase {
	return &friendRequestUsecase{
		requestRepo: requestRepo,
		chats:       chats,
		profiles:    profiles,
		notifier:    notifier,
		emitter:     emitter,
	}
}

func (f *friendRequestUsecase) SendRequest(ctx context.Context, fromId, toId string) (req entity.FriendRequest, err error) {
	ctx, span := observability.StartSpan(ctx, "friend_request.Send",
		trace.WithAttributes(attribute.String("friend_request.to", toId)))
	defer func() { observability.EndSpan(span, err) }()

	if fromId == "" || toId == "" {
		return entity.FriendRequest{}, fmt.Errorf("%w: missing user", ErrInvalidInput)
	}
	if fromId == toId {
		return entity.FriendRequest{}, ErrCannotRequestSelf
	}

	reverse, err := f.requestRepo.Exists(ctx, entity.FriendRequestId(toId, fromId))
	if err != nil {
		return entity.FriendRequest{}, err
	}
	if reverse {
		return entity.FriendRequest{}, ErrReverseRequestExists
	}

	existing, err := f.requestRepo.Get(ctx, entity.FriendRequestId(fromId, toId))
	switch {
	case err == nil && existing.Status == entity.FriendRequestAccepted:
		return entity.FriendRequest{}, fmt.Errorf("%w: already connected", ErrInvalidInput)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return entity.FriendRequest{}, err
	}

	req, err = f.requestRepo.Put(ctx, fromId, toId)
	if err != nil {
		return entity.FriendRequest{}, err
	}

	notify(ctx, f.notifier, toId, Notice{Type: NoticeFriendRequest, Data: req})
	f.emitter.Emit(ctx, events.FriendRequestSent, fromId, events.FriendRequestChanged{
		RequestId: req.Id,
		From:      fromId,
		To:        toId,
	})
	return req, nil
}

func (f *friendRequestUsecase) AcceptRequest(ctx context.Context, requestId, userId string) (chatId string, err error) {
	ctx, span := observability.StartSpan(ctx, "friend_request.Accept",
		trace.WithAttributes(attribute.String("friend_request.id", requestId)))
	defer func() { observability.EndSpan(span, err) }()

	req, err := f.requestRepo.Get(ctx, requestId)
	if err != nil {
		return "", err
	}
	if req.To != userId {
		return "", fmt.Errorf("%w: only the recipient can accept", ErrForbidden)
	}
	if err := f.settle(ctx, &req, entity.FriendRequestAccepted); err != nil {
		return "", err
	}

	// an accepted request without a chat is recoverable: the chat upsert is
	// idempotent and may be retried by the caller
	chatId, err = f.chats.EnsureDirectChat(ctx, req.From, req.To)
	if err != nil {
		logging.FromContext(ctx).Error("chat creation after accept failed",
			logging.FriendRequest(requestId), logging.Err(err))
		return "", err
	}

	notify(ctx, f.notifier, req.From, Notice{Type: NoticeFriendRequestAccepted, Data: map[string]string{
		"requestId": requestId,
		"chatId":    chatId,
		"userId":    req.To,
	}})
	f.emitter.Emit(ctx, events.FriendRequestAccepted, userId, events.FriendRequestChanged{
		RequestId: requestId,
		From:      req.From,
		To:        req.To,
		ChatId:    chatId,
	})
	return chatId, nil
}

func (f *friendRequestUsecase) RejectRequest(ctx context.Context, requestId, userId string) error {
	return f.remove(ctx, requestId, userId, entity.FriendRequestRejected)
}

func (f *friendRequestUsecase) Unfriend(ctx context.Context, requestId, userId string) error {
	return f.remove(ctx, requestId, userId, entity.FriendRequestDeleted)
}

// remove ends a request on behalf of either party.
func (f *friendRequestUsecase) remove(ctx context.Context, requestId, userId string, next entity.FriendRequestStatus) error {
	req, err := f.requestRepo.Get(ctx, requestId)
	if err != nil {
		return err
	}
	if !req.Involves(userId) {
		return ErrForbidden
	}
	return f.settle(ctx, &req, next)
}

// settle moves req to next and stores the outcome. Statuses that are not
// persisted delete the document, so no tombstone is kept.
func (f *friendRequestUsecase) settle(ctx context.Context, req *entity.FriendRequest, next entity.FriendRequestStatus) error {
	if err := req.Transition(next); err != nil {
		return err
	}
	if req.Status.Persisted() {
		return f.requestRepo.UpdateStatus(ctx, req.Id, req.Status)
	}
	return f.requestRepo.Delete(ctx, req.Id)
}

func (f *friendRequestUsecase) ListPending(ctx context.Context, userId string) ([]entity.Connection, error) {
	reqs, err := f.requestRepo.ListIncoming(ctx, userId, entity.FriendRequestPending)
	if err != nil {
		return nil, err
	}
	return f.enrich(ctx, userId, reqs), nil
}

func (f *friendRequestUsecase) ListConnections(ctx context.Context, userId string) ([]entity.Connection, error) {
	incoming, err := f.requestRepo.ListIncoming(ctx, userId, entity.FriendRequestAccepted)
	if err != nil {
		return nil, err
	}
	outgoing, err := f.requestRepo.ListOutgoing(ctx, userId, entity.FriendRequestAccepted)
	if err != nil {
		return nil, err
	}
	return f.enrich(ctx, userId, append(incoming, outgoing...)), nil
}

func (f *friendRequestUsecase) SubscribePending(ctx context.Context, userId string, fn func([]entity.Connection)) (docstore.Unsubscribe, error) {
	return f.requestRepo.SubscribeIncoming(ctx, userId, entity.FriendRequestPending, func(reqs []entity.FriendRequest) {
		fn(f.enrich(ctx, userId, reqs))
	})
}

func (f *friendRequestUsecase) enrich(ctx context.Context, userId string, reqs []entity.FriendRequest) []entity.Connection {
	out := make([]entity.Connection, 0, len(reqs))
	for _, req := range reqs {
		target := req.Counterpart(userId)
		out = append(out, entity.Connection{
			FriendRequest:  req,
			TargetId:       target,
			DisplayProfile: f.profiles.Resolve(ctx, target),
		})
	}
	return out
}
