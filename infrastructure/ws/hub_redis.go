package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "messages:"
	presenceTTL       = 2 * time.Minute
	presenceTimeout   = time.Second
)

const (
	kindDeliver    = "deliver"
	kindDisconnect = "disconnect"
)

// RedisHub keeps local connections in memory and relays messages for users
// connected to other servers over Redis pub/sub.
type RedisHub struct {
	// Local connections (in-memory map)
	clients clientSet
	mu      sync.RWMutex

	// Redis for distributed messaging
	redisClient *redis.Client
	pubsub      *redis.PubSub
	serverID    string
	now         func() time.Time

	// Channels
	Register   chan *UserClient
	Unregister chan *UserClient

	// Callbacks
	OnClientRegister   func(client *UserClient) error
	OnClientUnregister func(client *UserClient) error
}

type RedisMessage struct {
	Kind         string `json:"kind"`
	FromServerID string `json:"fromServerId"`
	ToUserID     string `json:"toUserId"`
	Payload      []byte `json:"payload,omitempty"`
}

func NewRedisHub(rdb *redis.Client, serverID string) IHub {
	hub := &RedisHub{
		clients:     make(clientSet),
		redisClient: rdb,
		serverID:    serverID,
		now:         time.Now,
		Register:    make(chan *UserClient),
		Unregister:  make(chan *UserClient),
	}

	hub.pubsub = rdb.PSubscribe(context.Background(), userChannelPrefix+"*")

	return hub
}

// presenceKey is a sorted set of the servers holding a connection for the
// user, scored by when that server's claim expires.
func presenceKey(userID string) string {
	return "user:" + userID + ":servers"
}

func (h *RedisHub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)
	defer h.pubsub.Close()

	heartbeat := time.NewTicker(presenceTTL / 2)
	defer heartbeat.Stop()

	log := slog.With(slog.String("server_id", h.serverID))

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients.add(client)
			h.mu.Unlock()

			// Announce this user is on this server
			h.claimPresence(ctx, h.redisClient, client.UserId)
			log.Info("client connected", slog.String("user_id", client.UserId))

			if h.OnClientRegister != nil {
				if err := h.OnClientRegister(client); err != nil {
					log.Warn("OnClientRegister error", slog.String("error", err.Error()))
				}
			}

		case client := <-h.Unregister:
			h.mu.Lock()
			removed := h.clients.remove(client)
			last := len(h.clients[client.UserId]) == 0
			h.mu.Unlock()
			if !removed {
				continue
			}
			client.closeSend()
			if last {
				h.redisClient.ZRem(ctx, presenceKey(client.UserId), h.serverID)
			}
			log.Info("client disconnected", slog.String("user_id", client.UserId))

			if h.OnClientUnregister != nil {
				if err := h.OnClientUnregister(client); err != nil {
					log.Warn("OnClientUnregister error", slog.String("error", err.Error()))
				}
			}

		case <-heartbeat.C:
			h.refreshPresence(ctx)
		}
	}
}

func (h *RedisHub) claimPresence(ctx context.Context, cmd redis.Cmdable, userID string) {
	key := presenceKey(userID)
	expires := h.now().Add(presenceTTL)
	cmd.ZAdd(ctx, key, redis.Z{Score: float64(expires.Unix()), Member: h.serverID})
	cmd.Expire(ctx, key, presenceTTL)
}

func (h *RedisHub) refreshPresence(ctx context.Context) {
	h.mu.RLock()
	users := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	h.mu.RUnlock()
	if len(users) == 0 {
		return
	}

	pipe := h.redisClient.Pipeline()
	for _, userID := range users {
		h.claimPresence(ctx, pipe, userID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("presence heartbeat failed", slog.String("error", err.Error()))
	}
}

// subscribeRedis applies messages published by other servers to local clients.
func (h *RedisHub) subscribeRedis(ctx context.Context) {
	ch := h.pubsub.Channel()

	slog.Info("redis subscriber started", slog.String("server_id", h.serverID))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var redisMsg RedisMessage
			if err := json.Unmarshal([]byte(msg.Payload), &redisMsg); err != nil {
				slog.Warn("error unmarshaling redis message", slog.String("error", err.Error()))
				continue
			}
			h.dispatch(redisMsg)
		}
	}
}

func (h *RedisHub) dispatch(msg RedisMessage) {
	// Don't process messages we sent ourselves
	if msg.FromServerID == h.serverID {
		return
	}

	switch msg.Kind {
	case kindDisconnect:
		h.disconnectLocal(msg.ToUserID)
	default:
		h.sendLocal(msg.ToUserID, msg.Payload)
	}
}

// SendToClient delivers to local connections and publishes for any other
// server the user is connected to.
func (h *RedisHub) SendToClient(userID string, message []byte) {
	h.sendLocal(userID, message)
	h.publish(RedisMessage{Kind: kindDeliver, ToUserID: userID, Payload: message})
}

func (h *RedisHub) sendLocal(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		if !client.Send(message) {
			slog.Warn("failed to send to local client", slog.String("user_id", userID))
		}
	}
}

func (h *RedisHub) publish(msg RedisMessage) {
	msg.FromServerID = h.serverID
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		slog.Warn("error marshaling redis message", slog.String("error", err.Error()))
		return
	}

	if err := h.redisClient.Publish(context.Background(), userChannelPrefix+msg.ToUserID, msgBytes).Err(); err != nil {
		slog.Warn("error publishing to redis", slog.String("kind", msg.Kind), slog.String("error", err.Error()))
	}
}

func (h *RedisHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients.count()
}

func (h *RedisHub) localOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// IsOnline reports whether any server still holds a connection for userID.
// When Redis cannot be reached only local connections count.
func (h *RedisHub) IsOnline(userID string) bool {
	if h.localOnline(userID) {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	live, err := h.redisClient.ZCount(ctx, presenceKey(userID), strconv.FormatInt(h.now().Unix(), 10), "+inf").Result()
	if err != nil {
		slog.Warn("presence lookup failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		return false
	}
	return live > 0
}

// DisconnectUser closes the user's connections here and asks every other
// server to do the same.
func (h *RedisHub) DisconnectUser(userID string) {
	h.disconnectLocal(userID)
	h.publish(RedisMessage{Kind: kindDisconnect, ToUserID: userID})
}

func (h *RedisHub) disconnectLocal(userID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		client.Close()
	}
}

func (h *RedisHub) RegisterClient(client *UserClient) {
	h.Register <- client
}

func (h *RedisHub) UnregisterClient(client *UserClient) {
	h.Unregister <- client
}

func (h *RedisHub) SetOnClientRegister(callback func(client *UserClient) error) {
	h.OnClientRegister = callback
}

func (h *RedisHub) SetOnClientUnregister(callback func(client *UserClient) error) {
	h.OnClientUnregister = callback
}
