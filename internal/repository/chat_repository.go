package repository

import (
	"context"
	"fmt"

	"campusconnect/internal/entity"
	"campusconnect/pkg/docstore"
	"campusconnect/pkg/logging"
)

type ChatRepository interface {
	Get(ctx context.Context, chatId string) (entity.Chat, error)
	// EnsureDirect upserts a direct chat and sets createdAt only when the
	// document did not have one yet.
	EnsureDirect(ctx context.Context, chatId string, users []string) error
	CreateGroup(ctx context.Context, chat entity.Chat) (string, error)
	UpdateSummary(ctx context.Context, chatId, lastMessage string) error
	ListForUser(ctx context.Context, userId string) ([]entity.Chat, error)
	SubscribeForUser(ctx context.Context, userId string, fn func([]entity.Chat)) (docstore.Unsubscribe, error)
}

type chatRepository struct {
	store docstore.Store
}

func NewChatRepository(store docstore.Store) ChatRepository {
	return &chatRepository{
		store: store,
	}
}

func (r *chatRepository) Get(ctx context.Context, chatId string) (entity.Chat, error) {
	doc, err := r.store.Get(ctx, chatsCollection, chatId)
	if err != nil {
		return entity.Chat{}, readErr(err)
	}
	chat, err := decodeChat(doc)
	if err != nil {
		return entity.Chat{}, err
	}
	return chat, nil
}

func (r *chatRepository) EnsureDirect(ctx context.Context, chatId string, users []string) error {
	fields := map[string]any{
		"users":     users,
		"updatedAt": docstore.ServerTimestamp,
	}
	if err := r.store.Set(ctx, chatsCollection, chatId, fields, docstore.SetOptions{Merge: true}); err != nil {
		return writeErr(err)
	}

	doc, err := r.store.Get(ctx, chatsCollection, chatId)
	if err != nil {
		return writeErr(err)
	}
	if doc.Has("createdAt") {
		return nil
	}
	return writeErr(r.store.Set(ctx, chatsCollection, chatId, map[string]any{
		"createdAt": docstore.ServerTimestamp,
	}, docstore.SetOptions{Merge: true}))
}

func (r *chatRepository) CreateGroup(ctx context.Context, chat entity.Chat) (string, error) {
	fields := map[string]any{
		"type":        string(chat.Type),
		"groupName":   chat.GroupName,
		"users":       chat.Users,
		"createdBy":   chat.CreatedBy,
		"admins":      chat.Admins,
		"lastMessage": chat.LastMessage,
		"createdAt":   docstore.ServerTimestamp,
		"updatedAt":   docstore.ServerTimestamp,
	}
	if chat.ExpiresAt != nil {
		fields["expiresAt"] = chat.ExpiresAt.UTC()
	}

	id, err := r.store.Add(ctx, chatsCollection, fields)
	if err != nil {
		return "", writeErr(err)
	}
	return id, nil
}

func (r *chatRepository) UpdateSummary(ctx context.Context, chatId, lastMessage string) error {
	return writeErr(r.store.Set(ctx, chatsCollection, chatId, map[string]any{
		"lastMessage": lastMessage,
		"updatedAt":   docstore.ServerTimestamp,
	}, docstore.SetOptions{Merge: true}))
}

func (r *chatRepository) ListForUser(ctx context.Context, userId string) ([]entity.Chat, error) {
	docs, err := r.store.Find(ctx, userChatsQuery(userId))
	if err != nil {
		return nil, err
	}
	return decodeChats(ctx, userId, docs), nil
}

func (r *chatRepository) SubscribeForUser(ctx context.Context, userId string, fn func([]entity.Chat)) (docstore.Unsubscribe, error) {
	return r.store.Subscribe(ctx, userChatsQuery(userId), func(docs []docstore.Document) {
		fn(decodeChats(ctx, userId, docs))
	})
}

func userChatsQuery(userId string) docstore.Query {
	return docstore.Collection(chatsCollection).WhereArrayContains("users", userId)
}

// decodeChats drops documents that do not decode to a valid chat variant,
// except direct chats that still list userId: those are kept as Degraded.
func decodeChats(ctx context.Context, userId string, docs []docstore.Document) []entity.Chat {
	log := logging.FromContext(ctx)
	chats := make([]entity.Chat, 0, len(docs))
	for _, doc := range docs {
		chat, err := decodeChat(doc)
		if err != nil {
			if chat.Type != entity.ChatDirect || !chat.HasMember(userId) {
				log.Warn("skipping malformed chat", logging.Chat(doc.Id), logging.Err(err))
				continue
			}
			log.Warn("listing malformed direct chat with fallbacks", logging.Chat(doc.Id), logging.Err(err))
			chat.Degraded = true
		}
		chats = append(chats, chat)
	}
	return chats
}

func decodeChat(doc docstore.Document) (entity.Chat, error) {
	chatType := entity.ChatType(doc.String("type"))
	if chatType == "" {
		chatType = entity.ChatDirect
	}
	if raw, ok := doc.Fields["type"]; ok {
		if _, isString := raw.(string); !isString {
			return entity.Chat{}, fmt.Errorf("%w: type is %T", entity.ErrMalformedChat, raw)
		}
	}

	chat := entity.Chat{
		Id:          doc.Id,
		Type:        chatType,
		Users:       doc.Strings("users"),
		GroupName:   doc.String("groupName"),
		CreatedBy:   doc.String("createdBy"),
		Admins:      doc.Strings("admins"),
		ExpiresAt:   timePtr(doc, "expiresAt"),
		LastMessage: doc.String("lastMessage"),
		CreatedAt:   timePtr(doc, "createdAt"),
		UpdatedAt:   timePtr(doc, "updatedAt"),
	}
	// the decoded fields come back with the error so listings can degrade
	return chat, chat.Validate()
}
