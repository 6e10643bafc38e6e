package websocket

import (
	"context"
	"net/http"

	"campusconnect/infrastructure/observability"
	"campusconnect/infrastructure/ws"
	"campusconnect/internal/usecase"
	"campusconnect/pkg/identity"
	"campusconnect/pkg/logging"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebsocketHandler struct {
	hub        ws.IHub
	provider   *identity.Provider
	userUc     usecase.UserUsecase
	chatUc     usecase.ChatUsecase
	chatListUc usecase.ChatListUsecase
	friendUc   usecase.FriendRequestUsecase
}

func NewWebsocketHandler(
	hub ws.IHub,
	provider *identity.Provider,
	userUc usecase.UserUsecase,
	chatUc usecase.ChatUsecase,
	chatListUc usecase.ChatListUsecase,
	friendUc usecase.FriendRequestUsecase,
) *WebsocketHandler {
	return &WebsocketHandler{
		hub:        hub,
		provider:   provider,
		userUc:     userUc,
		chatUc:     chatUc,
		chatListUc: chatListUc,
		friendUc:   friendUc,
	}
}

// HandleWebSocket serves GET /ws. The route sits behind the auth middleware,
// so the caller's claims are already on the context.
func (h *WebsocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userId, err := h.provider.CurrentUserID(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	log := logging.FromContext(ctx)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", logging.Err(err))
		return
	}

	client := ws.NewClient(userId, h.hub, conn)
	sess := newSession(userId, client, h)

	// stop pushing snapshots as soon as the user signs out here; the sockets
	// themselves are closed through the hub
	stopAuthWatch := h.provider.OnAuthStateChanged(userId, func(_ string, signedIn bool) {
		if !signedIn {
			sess.close()
		}
	})

	h.hub.RegisterClient(client)
	observability.IncWSActive()
	defer func() {
		stopAuthWatch()
		sess.close()
		observability.DecWSActive()
	}()

	go client.WritePump()
	client.ReadPump(func(data []byte) {
		sess.handle(ctx, data)
	})
}

// HandleRegisterClient marks the user online. The hub calls it for every
// new connection.
func (h *WebsocketHandler) HandleRegisterClient(client *ws.UserClient) error {
	return h.userUc.SetPresence(context.Background(), client.UserId, true)
}

// HandleUnregisterClient marks the user offline once their last connection
// on any server is gone.
func (h *WebsocketHandler) HandleUnregisterClient(client *ws.UserClient) error {
	if h.hub.IsOnline(client.UserId) {
		return nil
	}
	return h.userUc.SetPresence(context.Background(), client.UserId, false)
}
