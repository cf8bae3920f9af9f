package websocket

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"notebot-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries cross-instance pushes when several gateways share
// the same user base.
const redisChannel = "notebot_pushes"

type redisEnvelope struct {
	Origin       string          `json:"origin"`
	TargetUserId int64           `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub tracks every live chat connection per user. One user may be
// connected from several devices at once; pushes reach all of them.
type Hub struct {
	clients map[int64][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Optional Redis fan-out to other gateway instances. instanceId keeps
	// an instance from re-delivering its own publishes.
	rdb        *redis.Client
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64][]*Client),
		rdb:        rdb,
		instanceId: watermill.NewUUID(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToUser pushes payload to every local connection of the user and
// relays it to other instances through Redis.
func (h *Hub) SendToUser(userId int64, payload []byte) {
	h.sendLocal(userId, payload)

	if h.rdb != nil {
		envelope, _ := json.Marshal(redisEnvelope{
			Origin:       h.instanceId,
			TargetUserId: userId,
			Message:      payload,
		})
		h.rdb.Publish(context.Background(), redisChannel, envelope)
	}
}

func (h *Hub) sendLocal(userId int64, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[userId] {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer: drop the connection rather than block the hub.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	sub := h.rdb.Subscribe(context.Background(), redisChannel)
	for msg := range sub.Channel() {
		var envelope redisEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Bad redis envelope", map[string]interface{}{"error": err.Error()})
			continue
		}
		if envelope.Origin == h.instanceId {
			continue
		}
		h.sendLocal(envelope.TargetUserId, envelope.Message)
	}
}

// ConnectedUsers is used by health endpoints and tests.
func (h *Hub) ConnectedUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	users := make([]string, 0, len(h.clients))
	for id := range h.clients {
		users = append(users, strconv.FormatInt(id, 10))
	}
	return users
}
