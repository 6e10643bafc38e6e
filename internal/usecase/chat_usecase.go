package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusconnect/infrastructure/events"
	"campusconnect/infrastructure/observability"
	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
	"campusconnect/pkg/chatid"
	"campusconnect/pkg/docstore"
	"campusconnect/pkg/logging"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultEphemeralGroupTTL = time.Hour

type ChatUsecase interface {
	// EnsureDirectChat returns the deterministic chat between two users,
	// creating it if needed. Repeated calls never reset createdAt.
	EnsureDirectChat(ctx context.Context, userA, userB string) (string, error)
	CreateGroupChat(ctx context.Context, name string, participantIds []string, creatorId string, ephemeral bool) (string, error)
	// SendMessage is a no-op returning "" for blank text.
	SendMessage(ctx context.Context, chatId, senderId, text string) (string, error)
	GetChat(ctx context.Context, chatId, userId string) (entity.Chat, error)
	GetMessages(ctx context.Context, chatId, userId string) ([]entity.Message, error)
	SubscribeMessages(ctx context.Context, chatId, userId string, fn func([]entity.Message)) (docstore.Unsubscribe, error)
}

type ChatConfig struct {
	EphemeralGroupTTL time.Duration
	Clock             Clock
}

type chatUsecase struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	emitter     *events.Emitter
	ttl         time.Duration
	clock       Clock
}

func NewChatUsecase(chatRepo repository.ChatRepository, messageRepo repository.MessageRepository, emitter *events.Emitter, cfg ChatConfig) ChatUsecase {
	ttl := cfg.EphemeralGroupTTL
	if ttl <= 0 {
		ttl = DefaultEphemeralGroupTTL
	}
	return &chatUsecase{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		emitter:     emitter,
		ttl:         ttl,
		clock:       cfg.Clock,
	}
}

func (c *chatUsecase) EnsureDirectChat(ctx context.Context, userA, userB string) (chatId string, err error) {
	ctx, span := observability.StartSpan(ctx, "chat.EnsureDirectChat")
	defer func() { observability.EndSpan(span, err) }()

	if userA == "" || userB == "" || userA == userB {
		return "", fmt.Errorf("%w: a direct chat needs two distinct users", ErrInvalidInput)
	}

	chatId = chatid.Derive(userA, userB)
	span.SetAttributes(attribute.String("chat.id", chatId))

	if err := c.chatRepo.EnsureDirect(ctx, chatId, []string{userA, userB}); err != nil {
		return "", err
	}
	return chatId, nil
}

func (c *chatUsecase) CreateGroupChat(ctx context.Context, name string, participantIds []string, creatorId string, ephemeral bool) (chatId string, err error) {
	ctx, span := observability.StartSpan(ctx, "chat.CreateGroupChat",
		trace.WithAttributes(attribute.Bool("chat.ephemeral", ephemeral)))
	defer func() { observability.EndSpan(span, err) }()

	if creatorId == "" {
		return "", fmt.Errorf("%w: missing creator", ErrInvalidInput)
	}
	if len(participantIds) == 0 {
		return "", ErrEmptyParticipants
	}

	users := []string{creatorId}
	seen := map[string]bool{creatorId: true}
	for _, id := range participantIds {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, id)
	}
	if len(users) == 1 {
		return "", ErrEmptyParticipants
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultGroupName(len(users)-1, ephemeral)
	}
	chat := entity.Chat{
		Type:        entity.ChatGroup,
		GroupName:   name,
		Users:       users,
		CreatedBy:   creatorId,
		Admins:      []string{creatorId},
		LastMessage: `Group "` + name + `" created`,
	}
	if ephemeral {
		expiresAt := c.clock.now().Add(c.ttl)
		chat.Type = entity.ChatEphemeralGroup
		chat.ExpiresAt = &expiresAt
	}

	chatId, err = c.chatRepo.CreateGroup(ctx, chat)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("chat.id", chatId))

	c.emitter.Emit(ctx, events.ChatGroupCreated, creatorId, events.GroupCreated{
		ChatId:    chatId,
		Name:      name,
		Users:     users,
		Ephemeral: ephemeral,
		ExpiresAt: chat.ExpiresAt,
	})
	return chatId, nil
}

func (c *chatUsecase) SendMessage(ctx context.Context, chatId, senderId, text string) (messageId string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	ctx, span := observability.StartSpan(ctx, "chat.SendMessage",
		trace.WithAttributes(attribute.String("chat.id", chatId)))
	defer func() { observability.EndSpan(span, err) }()

	chat, err := c.memberChat(ctx, chatId, senderId)
	if err != nil {
		return "", err
	}
	if chat.IsExpired(c.clock.now()) {
		observability.IncExpiredWrites()
		return "", ErrExpired
	}

	messageId, err = c.messageRepo.Append(ctx, chatId, senderId, text)
	if err != nil {
		return "", err
	}
	observability.IncMessagesSent()

	// the message log is authoritative; a stale summary heals on the next send
	if err := c.chatRepo.UpdateSummary(ctx, chatId, text); err != nil {
		logging.FromContext(ctx).Warn("chat summary update failed", logging.Chat(chatId), logging.Err(err))
	}

	c.emitter.Emit(ctx, events.ChatMessageSent, senderId, events.MessageSent{
		ChatId:    chatId,
		MessageId: messageId,
		SenderId:  senderId,
	})
	return messageId, nil
}

func (c *chatUsecase) GetChat(ctx context.Context, chatId, userId string) (entity.Chat, error) {
	return c.memberChat(ctx, chatId, userId)
}

func (c *chatUsecase) GetMessages(ctx context.Context, chatId, userId string) ([]entity.Message, error) {
	if _, err := c.memberChat(ctx, chatId, userId); err != nil {
		return nil, err
	}
	return c.messageRepo.List(ctx, chatId)
}

func (c *chatUsecase) SubscribeMessages(ctx context.Context, chatId, userId string, fn func([]entity.Message)) (docstore.Unsubscribe, error) {
	if _, err := c.memberChat(ctx, chatId, userId); err != nil {
		return nil, err
	}
	return c.messageRepo.Subscribe(ctx, chatId, fn)
}

func (c *chatUsecase) memberChat(ctx context.Context, chatId, userId string) (entity.Chat, error) {
	chat, err := c.chatRepo.Get(ctx, chatId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.Chat{}, fmt.Errorf("chat %s: %w", chatId, err)
		}
		return entity.Chat{}, err
	}
	if !chat.HasMember(userId) {
		return entity.Chat{}, ErrNotParticipant
	}
	return chat, nil
}

// defaultGroupName names a group created without one after its size.
func defaultGroupName(participants int, ephemeral bool) string {
	if ephemeral {
		return fmt.Sprintf("Temp Group (%d)", participants)
	}
	return fmt.Sprintf("Group (%d)", participants)
}
