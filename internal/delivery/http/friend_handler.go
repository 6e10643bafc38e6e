package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type sendFriendRequest struct {
	To string `json:"to"`
}

// Method Post /friend-requests
func (h *HttpHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req sendFriendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.friendUc.SendRequest(r.Context(), userId(r), req.To)
	if err != nil {
		writeError(w, r, "send friend request", err)
		return
	}
	writeSuccess(w, http.StatusCreated, created)
}

// Method Post /friend-requests/:requestId/accept
func (h *HttpHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	chatId, err := h.friendUc.AcceptRequest(r.Context(), chi.URLParam(r, "requestId"), userId(r))
	if err != nil {
		writeError(w, r, "accept friend request", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"chatId": chatId})
}

// Method Post /friend-requests/:requestId/reject
func (h *HttpHandler) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.friendUc.RejectRequest(r.Context(), chi.URLParam(r, "requestId"), userId(r)); err != nil {
		writeError(w, r, "reject friend request", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "request rejected"})
}

// Method Delete /friend-requests/:requestId
func (h *HttpHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	if err := h.friendUc.Unfriend(r.Context(), chi.URLParam(r, "requestId"), userId(r)); err != nil {
		writeError(w, r, "unfriend", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "connection removed"})
}

// Method Get /friend-requests/pending
func (h *HttpHandler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := h.friendUc.ListPending(r.Context(), userId(r))
	if err != nil {
		writeError(w, r, "list pending", err)
		return
	}
	writeSuccess(w, http.StatusOK, pending)
}

// Method Get /friend-requests/connections
func (h *HttpHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	connections, err := h.friendUc.ListConnections(r.Context(), userId(r))
	if err != nil {
		writeError(w, r, "list connections", err)
		return
	}
	writeSuccess(w, http.StatusOK, connections)
}
