package ws

import (
	"context"
	"log/slog"
	"sync"
)

// clientSet holds the live connections per user.
type clientSet map[string]map[*UserClient]struct{}

func (s clientSet) add(c *UserClient) {
	if s[c.UserId] == nil {
		s[c.UserId] = make(map[*UserClient]struct{})
	}
	s[c.UserId][c] = struct{}{}
}

// remove reports whether c was present.
func (s clientSet) remove(c *UserClient) bool {
	conns, ok := s[c.UserId]
	if !ok {
		return false
	}
	if _, ok := conns[c]; !ok {
		return false
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(s, c.UserId)
	}
	return true
}

func (s clientSet) count() int {
	n := 0
	for _, conns := range s {
		n += len(conns)
	}
	return n
}

type Hub struct {
	clients            clientSet
	Register           chan *UserClient
	Unregister         chan *UserClient
	mu                 sync.RWMutex
	OnClientRegister   func(client *UserClient) error
	OnClientUnregister func(client *UserClient) error
}

func NewHub() IHub {
	return &Hub{
		clients:    make(clientSet),
		Register:   make(chan *UserClient),
		Unregister: make(chan *UserClient),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients.add(client)
			h.mu.Unlock()
			slog.Info("client connected", slog.String("user_id", client.UserId))

			if h.OnClientRegister != nil {
				if err := h.OnClientRegister(client); err != nil {
					slog.Warn("OnClientRegister error", slog.String("error", err.Error()))
				}
			}

		case client := <-h.Unregister:
			h.mu.Lock()
			removed := h.clients.remove(client)
			h.mu.Unlock()
			if !removed {
				continue
			}
			client.closeSend()
			slog.Info("client disconnected", slog.String("user_id", client.UserId))

			if h.OnClientUnregister != nil {
				if err := h.OnClientUnregister(client); err != nil {
					slog.Warn("OnClientUnregister error", slog.String("error", err.Error()))
				}
			}
		}
	}
}

// SendToClient delivers message to every connection of clientID.
func (h *Hub) SendToClient(clientID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[clientID] {
		if !client.Send(message) {
			slog.Warn("failed to send to client", slog.String("user_id", clientID))
		}
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients.count()
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// DisconnectUser closes every connection of userID; their read pumps then
// unregister them.
func (h *Hub) DisconnectUser(userID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		client.Close()
	}
}

func (h *Hub) RegisterClient(client *UserClient) {
	h.Register <- client
}

func (h *Hub) UnregisterClient(client *UserClient) {
	h.Unregister <- client
}

func (h *Hub) SetOnClientRegister(callback func(client *UserClient) error) {
	h.OnClientRegister = callback
}

func (h *Hub) SetOnClientUnregister(callback func(client *UserClient) error) {
	h.OnClientUnregister = callback
}
