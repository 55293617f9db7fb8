package stream

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans job progress events out to connected websocket clients. When a
// Redis client is configured, events are also relayed through pub/sub so
// watchers connected to another instance still see them.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	JobID string
	Send  chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(jobID string) *Client {
	client := &Client{
		JobID: jobID,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[jobID] == nil {
		h.clients[jobID] = map[*Client]struct{}{}
	}
	h.clients[jobID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if jobClients, ok := h.clients[client.JobID]; ok {
		delete(jobClients, client)
		if len(jobClients) == 0 {
			delete(h.clients, client.JobID)
		}
	}
	close(client.Send)
}

func (h *Hub) Broadcast(jobID string, payload []byte) {
	h.deliver(jobID, payload)

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(jobID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

// deliver holds the read lock across the sends. The sends never block,
// and Unregister closes Send under the write lock, so a channel can
// never be closed while a send is in flight.
func (h *Hub) deliver(jobID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[jobID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "animation:*:progress")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		jobID := jobIDFromChannel(msg.Channel)
		if jobID == "" {
			continue
		}
		h.deliver(jobID, []byte(msg.Payload))
	}
}

func redisChannel(jobID string) string {
	return "animation:" + jobID + ":progress"
}

func jobIDFromChannel(ch string) string {
	// animation:{job}:progress
	const prefix = "animation:"
	const suffix = ":progress"
	if !strings.HasPrefix(ch, prefix) || !strings.HasSuffix(ch, suffix) || len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
