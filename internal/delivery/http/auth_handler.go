package http

import (
	"net/http"

	"campusconnect/internal/entity"
	"campusconnect/internal/usecase"
	"campusconnect/pkg/identity"
)

// Disconnector closes a user's live connections. The websocket hub
// implements it.
type Disconnector interface {
	DisconnectUser(userID string)
}

type AuthHandler struct {
	provider *identity.Provider
	userUc   usecase.UserUsecase
	sockets  Disconnector
}

func NewAuthHandler(provider *identity.Provider, userUc usecase.UserUsecase, sockets Disconnector) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		userUc:   userUc,
		sockets:  sockets,
	}
}

// POST /auth/dev-token
// Issues a token for any user id. Only mounted in development.
func (h *AuthHandler) DevToken(w http.ResponseWriter, r *http.Request) {
	var req entity.DevTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserId == "" {
		writeBadRequest(w, "userId is required")
		return
	}

	user, err := h.userUc.EnsureProfile(r.Context(), req.UserId, req.Name)
	if err != nil {
		writeError(w, r, "ensure profile", err)
		return
	}
	token, err := h.provider.IssueToken(req.UserId, req.Email)
	if err != nil {
		writeError(w, r, "issue token", err)
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Message: "token issued",
		Data:    entity.AuthResponse{AccessToken: token, User: user},
	})
}

// POST /auth/sign-out
// Revokes the token and closes the user's websockets on every server.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	id, err := h.provider.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, r, "current user", err)
		return
	}
	if err := h.provider.SignOut(r.Context()); err != nil {
		writeError(w, r, "sign out", err)
		return
	}
	if h.sockets != nil {
		h.sockets.DisconnectUser(id)
	}
	writeJSON(w, http.StatusOK, Response{Message: "signed out"})
}

// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := h.provider.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, r, "current user", err)
		return
	}
	user, err := h.userUc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, "get user", err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}
