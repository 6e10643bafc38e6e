package repository

import (
	"context"

	"campusconnect/internal/entity"
	"campusconnect/pkg/docstore"
)

type MessageRepository interface {
	Append(ctx context.Context, chatId, senderId, text string) (string, error)
	List(ctx context.Context, chatId string) ([]entity.Message, error)
	Subscribe(ctx context.Context, chatId string, fn func([]entity.Message)) (docstore.Unsubscribe, error)
}

type messageRepository struct {
	store docstore.Store
}

func NewMessageRepository(store docstore.Store) MessageRepository {
	return &messageRepository{
		store: store,
	}
}

func messagesPath(chatId string) string {
	return docstore.Path(chatsCollection, chatId, messagesCollection)
}

// messagesQuery orders by createdAt; the message log is the source of truth
// for order, never the chat summary.
func messagesQuery(chatId string) docstore.Query {
	return docstore.Collection(messagesPath(chatId)).Order("createdAt", false)
}

func (r *messageRepository) Append(ctx context.Context, chatId, senderId, text string) (string, error) {
	id, err := r.store.Add(ctx, messagesPath(chatId), map[string]any{
		"senderId":  senderId,
		"text":      text,
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return "", writeErr(err)
	}
	return id, nil
}

func (r *messageRepository) List(ctx context.Context, chatId string) ([]entity.Message, error) {
	docs, err := r.store.Find(ctx, messagesQuery(chatId))
	if err != nil {
		return nil, err
	}
	return decodeMessages(chatId, docs), nil
}

func (r *messageRepository) Subscribe(ctx context.Context, chatId string, fn func([]entity.Message)) (docstore.Unsubscribe, error) {
	return r.store.Subscribe(ctx, messagesQuery(chatId), func(docs []docstore.Document) {
		fn(decodeMessages(chatId, docs))
	})
}

func decodeMessages(chatId string, docs []docstore.Document) []entity.Message {
	out := make([]entity.Message, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entity.Message{
			Id:        doc.Id,
			ChatId:    chatId,
			SenderId:  doc.String("senderId"),
			Text:      doc.String("text"),
			CreatedAt: timeOrZero(doc, "createdAt"),
		})
	}
	return out
}
