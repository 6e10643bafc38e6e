package mocks

import (
	"context"

	"campusconnect/internal/entity"
	"campusconnect/internal/usecase"
	"campusconnect/pkg/docstore"

	"github.com/stretchr/testify/mock"
)

var (
	_ usecase.ChatUsecase          = (*ChatUsecaseMock)(nil)
	_ usecase.ChatListUsecase      = (*ChatListUsecaseMock)(nil)
	_ usecase.FriendRequestUsecase = (*FriendRequestUsecaseMock)(nil)
	_ usecase.UserUsecase          = (*UserUsecaseMock)(nil)
	_ usecase.ActivityUsecase      = (*ActivityUsecaseMock)(nil)
)

func unsubscribeArg(args mock.Arguments, i int) docstore.Unsubscribe {
	if val := args.Get(i); val != nil {
		return val.(docstore.Unsubscribe)
	}
	return nil
}

type ChatUsecaseMock struct {
	mock.Mock
}

func (m *ChatUsecaseMock) EnsureDirectChat(ctx context.Context, userA, userB string) (string, error) {
	args := m.Called(ctx, userA, userB)
	return args.String(0), args.Error(1)
}

func (m *ChatUsecaseMock) CreateGroupChat(ctx context.Context, name string, participantIds []string, creatorId string, ephemeral bool) (string, error) {
	args := m.Called(ctx, name, participantIds, creatorId, ephemeral)
	return args.String(0), args.Error(1)
}

func (m *ChatUsecaseMock) SendMessage(ctx context.Context, chatId, senderId, text string) (string, error) {
	args := m.Called(ctx, chatId, senderId, text)
	return args.String(0), args.Error(1)
}

func (m *ChatUsecaseMock) GetChat(ctx context.Context, chatId, userId string) (entity.Chat, error) {
	args := m.Called(ctx, chatId, userId)
	var chat entity.Chat
	if val := args.Get(0); val != nil {
		chat = val.(entity.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatUsecaseMock) GetMessages(ctx context.Context, chatId, userId string) ([]entity.Message, error) {
	args := m.Called(ctx, chatId, userId)
	var msgs []entity.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]entity.Message)
	}
	return msgs, args.Error(1)
}

func (m *ChatUsecaseMock) SubscribeMessages(ctx context.Context, chatId, userId string, fn func([]entity.Message)) (docstore.Unsubscribe, error) {
	args := m.Called(ctx, chatId, userId, fn)
	return unsubscribeArg(args, 0), args.Error(1)
}

type ChatListUsecaseMock struct {
	mock.Mock
}

func (m *ChatListUsecaseMock) ListChats(ctx context.Context, userId string) ([]entity.ChatSummary, error) {
	args := m.Called(ctx, userId)
	var list []entity.ChatSummary
	if val := args.Get(0); val != nil {
		list = val.([]entity.ChatSummary)
	}
	return list, args.Error(1)
}

func (m *ChatListUsecaseMock) SubscribeChats(ctx context.Context, userId string, fn func([]entity.ChatSummary)) (docstore.Unsubscribe, error) {
	args := m.Called(ctx, userId, fn)
	return unsubscribeArg(args, 0), args.Error(1)
}

type FriendRequestUsecaseMock struct {
	mock.Mock
}

func (m *FriendRequestUsecaseMock) SendRequest(ctx context.Context, fromId, toId string) (entity.FriendRequest, error) {
	args := m.Called(ctx, fromId, toId)
	var req entity.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(entity.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *FriendRequestUsecaseMock) AcceptRequest(ctx context.Context, requestId, userId string) (string, error) {
	args := m.Called(ctx, requestId, userId)
	return args.String(0), args.Error(1)
}

func (m *FriendRequestUsecaseMock) RejectRequest(ctx context.Context, requestId, userId string) error {
	return m.Called(ctx, requestId, userId).Error(0)
}

func (m *FriendRequestUsecaseMock) Unfriend(ctx context.Context, requestId, userId string) error {
	return m.Called(ctx, requestId, userId).Error(0)
}

func (m *FriendRequestUsecaseMock) ListPending(ctx context.Context, userId string) ([]entity.Connection, error) {
	args := m.Called(ctx, userId)
	var list []entity.Connection
	if val := args.Get(0); val != nil {
		list = val.([]entity.Connection)
	}
	return list, args.Error(1)
}

func (m *FriendRequestUsecaseMock) ListConnections(ctx context.Context, userId string) ([]entity.Connection, error) {
	args := m.Called(ctx, userId)
	var list []entity.Connection
	if val := args.Get(0); val != nil {
		list = val.([]entity.Connection)
	}
	return list, args.Error(1)
}

func (m *FriendRequestUsecaseMock) SubscribePending(ctx context.Context, userId string, fn func([]entity.Connection)) (docstore.Unsubscribe, error) {
	args := m.Called(ctx, userId, fn)
	return unsubscribeArg(args, 0), args.Error(1)
}

type UserUsecaseMock struct {
	mock.Mock
}

func (m *UserUsecaseMock) Get(ctx context.Context, userId string) (entity.User, error) {
	args := m.Called(ctx, userId)
	var user entity.User
	if val := args.Get(0); val != nil {
		user = val.(entity.User)
	}
	return user, args.Error(1)
}

func (m *UserUsecaseMock) EnsureProfile(ctx context.Context, userId, name string) (entity.User, error) {
	args := m.Called(ctx, userId, name)
	var user entity.User
	if val := args.Get(0); val != nil {
		user = val.(entity.User)
	}
	return user, args.Error(1)
}

func (m *UserUsecaseMock) UpdateProfile(ctx context.Context, userId string, update entity.ProfileUpdate) (entity.User, error) {
	args := m.Called(ctx, userId, update)
	var user entity.User
	if val := args.Get(0); val != nil {
		user = val.(entity.User)
	}
	return user, args.Error(1)
}

func (m *UserUsecaseMock) SetPresence(ctx context.Context, userId string, online bool) error {
	return m.Called(ctx, userId, online).Error(0)
}

func (m *UserUsecaseMock) GetOnlineUsers(ctx context.Context, userIds []string) ([]entity.User, error) {
	args := m.Called(ctx, userIds)
	var users []entity.User
	if val := args.Get(0); val != nil {
		users = val.([]entity.User)
	}
	return users, args.Error(1)
}

type ActivityUsecaseMock struct {
	mock.Mock
}

func (m *ActivityUsecaseMock) CreateActivity(ctx context.Context, leaderId string, req entity.CreateActivityRequest) (entity.Activity, error) {
	args := m.Called(ctx, leaderId, req)
	var a entity.Activity
	if val := args.Get(0); val != nil {
		a = val.(entity.Activity)
	}
	return a, args.Error(1)
}

func (m *ActivityUsecaseMock) ListActivities(ctx context.Context, communityName string) ([]entity.Activity, error) {
	args := m.Called(ctx, communityName)
	var list []entity.Activity
	if val := args.Get(0); val != nil {
		list = val.([]entity.Activity)
	}
	return list, args.Error(1)
}

func (m *ActivityUsecaseMock) ListVolunteered(ctx context.Context, userId string) ([]entity.Activity, error) {
	args := m.Called(ctx, userId)
	var list []entity.Activity
	if val := args.Get(0); val != nil {
		list = val.([]entity.Activity)
	}
	return list, args.Error(1)
}

func (m *ActivityUsecaseMock) Volunteer(ctx context.Context, activityId, userId string) error {
	return m.Called(ctx, activityId, userId).Error(0)
}

func (m *ActivityUsecaseMock) Assign(ctx context.Context, leaderId string, req entity.AssignRequest) (entity.Assignment, error) {
	args := m.Called(ctx, leaderId, req)
	return assignmentArg(args), args.Error(1)
}

func (m *ActivityUsecaseMock) ListAssignments(ctx context.Context, studentId string) ([]entity.Assignment, error) {
	args := m.Called(ctx, studentId)
	return assignmentsArg(args), args.Error(1)
}

func (m *ActivityUsecaseMock) ListCommunityAssignments(ctx context.Context, leaderId string) ([]entity.Assignment, error) {
	args := m.Called(ctx, leaderId)
	return assignmentsArg(args), args.Error(1)
}

func (m *ActivityUsecaseMock) Submit(ctx context.Context, assignmentId, studentId string) (entity.Assignment, error) {
	args := m.Called(ctx, assignmentId, studentId)
	return assignmentArg(args), args.Error(1)
}

func (m *ActivityUsecaseMock) Approve(ctx context.Context, assignmentId, leaderId string) (entity.Assignment, error) {
	args := m.Called(ctx, assignmentId, leaderId)
	return assignmentArg(args), args.Error(1)
}

func (m *ActivityUsecaseMock) Reject(ctx context.Context, assignmentId, leaderId string) (entity.Assignment, error) {
	args := m.Called(ctx, assignmentId, leaderId)
	return assignmentArg(args), args.Error(1)
}

func assignmentArg(args mock.Arguments) entity.Assignment {
	if val := args.Get(0); val != nil {
		return val.(entity.Assignment)
	}
	return entity.Assignment{}
}

func assignmentsArg(args mock.Arguments) []entity.Assignment {
	if val := args.Get(0); val != nil {
		return val.([]entity.Assignment)
	}
	return nil
}
