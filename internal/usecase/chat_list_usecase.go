package usecase

import (
	"context"
	"sort"

	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
	"campusconnect/pkg/docstore"
)

// ChatListUsecase projects a user's chats into display rows.
type ChatListUsecase interface {
	ListChats(ctx context.Context, userId string) ([]entity.ChatSummary, error)
	// SubscribeChats calls fn with the projected list on every change to the
	// user's chats. The first call happens before SubscribeChats returns.
	SubscribeChats(ctx context.Context, userId string, fn func([]entity.ChatSummary)) (docstore.Unsubscribe, error)
}

type chatListUsecase struct {
	chatRepo repository.ChatRepository
	profiles *ProfileResolver
	clock    Clock
}

func NewChatListUsecase(chatRepo repository.ChatRepository, profiles *ProfileResolver, clock Clock) ChatListUsecase {
	return &chatListUsecase{
		chatRepo: chatRepo,
		profiles: profiles,
		clock:    clock,
	}
}

func (c *chatListUsecase) ListChats(ctx context.Context, userId string) ([]entity.ChatSummary, error) {
	chats, err := c.chatRepo.ListForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	return c.project(ctx, userId, chats), nil
}

func (c *chatListUsecase) SubscribeChats(ctx context.Context, userId string, fn func([]entity.ChatSummary)) (docstore.Unsubscribe, error) {
	return c.chatRepo.SubscribeForUser(ctx, userId, func(chats []entity.Chat) {
		fn(c.project(ctx, userId, chats))
	})
}

func (c *chatListUsecase) project(ctx context.Context, userId string, chats []entity.Chat) []entity.ChatSummary {
	now := c.clock.now()

	out := make([]entity.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		if chat.IsExpired(now) {
			continue
		}
		out = append(out, c.summarize(ctx, userId, chat))
	}

	// the store's snapshot order breaks ties
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].UpdatedAt, out[j].UpdatedAt
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})
	return out
}

func (c *chatListUsecase) summarize(ctx context.Context, userId string, chat entity.Chat) entity.ChatSummary {
	summary := entity.ChatSummary{
		Id:          chat.Id,
		Type:        chat.Type,
		Users:       chat.Users,
		LastMessage: chat.LastMessage,
		UpdatedAt:   chat.UpdatedAt,
		ExpiresAt:   chat.ExpiresAt,
	}

	if chat.Type.IsGroup() {
		summary.Name = chat.GroupName
		if summary.Name == "" {
			summary.Name = FallbackGroupName
		}
		summary.Photo = GroupIcon
		return summary
	}

	other, ok := chat.OtherParticipant(userId)
	if !ok || chat.Degraded {
		summary.Name = FallbackName
		summary.Photo = DefaultAvatar
		return summary
	}
	profile := c.profiles.Resolve(ctx, other)
	summary.Name = profile.Name
	summary.Photo = profile.Photo
	return summary
}
