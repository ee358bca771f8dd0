package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sendBuffer = 256

// Client is one websocket connection subscribed to a clinic topic.
type Client struct {
	ID    string
	Topic string
	Send  chan []byte
}

func NewClient(tenantID uint) *Client {
	return &Client{
		ID:    uuid.NewString(),
		Topic: Topic(tenantID),
		Send:  make(chan []byte, sendBuffer),
	}
}

// Hub tracks connected clients per topic. It is the only state shared
// between requests.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.Topic] == nil {
		h.clients[c.Topic] = make(map[*Client]struct{})
	}
	h.clients[c.Topic][c] = struct{}{}
}

// Unregister drops the client and closes its Send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.clients[c.Topic]
	if !ok {
		return
	}
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.clients, c.Topic)
	}
	close(c.Send)
}

// Broadcast never blocks; a client with a full buffer misses the message.
func (h *Hub) Broadcast(topic string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[topic] {
		select {
		case c.Send <- data:
		default:
			h.log.Warn("dropping websocket message", zap.String("client_id", c.ID), zap.String("topic", topic))
		}
	}
}

func (h *Hub) Publish(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	h.Broadcast(Topic(e.TenantID), data)
	return nil
}

func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
