package http

import (
	"net/http"
	"strings"

	"campusconnect/internal/entity"
	"campusconnect/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type HttpHandler struct {
	chatUc     usecase.ChatUsecase
	chatListUc usecase.ChatListUsecase
	friendUc   usecase.FriendRequestUsecase
	userUc     usecase.UserUsecase
	activityUc usecase.ActivityUsecase
}

func NewHttpHandler(
	chatUc usecase.ChatUsecase,
	chatListUc usecase.ChatListUsecase,
	friendUc usecase.FriendRequestUsecase,
	userUc usecase.UserUsecase,
	activityUc usecase.ActivityUsecase,
) *HttpHandler {
	return &HttpHandler{
		chatUc:     chatUc,
		chatListUc: chatListUc,
		friendUc:   friendUc,
		userUc:     userUc,
		activityUc: activityUc,
	}
}

// Method Get /chats
func (h *HttpHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chatListUc.ListChats(r.Context(), userId(r))
	if err != nil {
		writeError(w, r, "list chats", err)
		return
	}
	writeSuccess(w, http.StatusOK, chats)
}

// Method Post /chats/direct
func (h *HttpHandler) EnsureDirectChat(w http.ResponseWriter, r *http.Request) {
	var req entity.EnsureDirectChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	chatId, err := h.chatUc.EnsureDirectChat(r.Context(), userId(r), req.UserId)
	if err != nil {
		writeError(w, r, "ensure direct chat", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"chatId": chatId})
}

// Method Post /chats/group
func (h *HttpHandler) CreateGroupChat(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateGroupChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	chatId, err := h.chatUc.CreateGroupChat(r.Context(), req.Name, req.Participants, userId(r), req.Ephemeral)
	if err != nil {
		writeError(w, r, "create group chat", err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]string{"chatId": chatId})
}

// Method Get /chats/:chatId
func (h *HttpHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chatUc.GetChat(r.Context(), chi.URLParam(r, "chatId"), userId(r))
	if err != nil {
		writeError(w, r, "get chat", err)
		return
	}
	writeSuccess(w, http.StatusOK, chat)
}

// Method Get /chats/:chatId/messages
func (h *HttpHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatUc.GetMessages(r.Context(), chi.URLParam(r, "chatId"), userId(r))
	if err != nil {
		writeError(w, r, "get messages", err)
		return
	}
	writeSuccess(w, http.StatusOK, messages)
}

// Method Post /chats/:chatId/messages
func (h *HttpHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req entity.SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	messageId, err := h.chatUc.SendMessage(r.Context(), chi.URLParam(r, "chatId"), userId(r), req.Text)
	if err != nil {
		writeError(w, r, "send message", err)
		return
	}
	if messageId == "" {
		writeJSON(w, http.StatusOK, Response{Message: "empty message ignored"})
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]string{"messageId": messageId})
}

// Method Get /users/:id
func (h *HttpHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get user", err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

// Method Patch /users/me
func (h *HttpHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req entity.ProfileUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userUc.UpdateProfile(r.Context(), userId(r), req)
	if err != nil {
		writeError(w, r, "update profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

// Method Get /users/online?ids=a,b
func (h *HttpHandler) GetOnlineUsers(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	users, err := h.userUc.GetOnlineUsers(r.Context(), ids)
	if err != nil {
		writeError(w, r, "online users", err)
		return
	}
	if users == nil {
		users = []entity.User{}
	}
	writeSuccess(w, http.StatusOK, users)
}
