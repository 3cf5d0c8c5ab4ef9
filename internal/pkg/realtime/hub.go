// Package realtime pushes table change events and per-user messages to
// WebSocket clients. Instances share events through Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ChangeType mirrors the Postgres change kinds.
type ChangeType string

const (
	Insert ChangeType = "INSERT"
	Update ChangeType = "UPDATE"
	Delete ChangeType = "DELETE"
)

// Change is one row-level change of a content table. The table name doubles
// as the subscription topic.
type Change struct {
	Type      ChangeType  `json:"type"`
	Table     string      `json:"table"`
	Record    interface{} `json:"record,omitempty"`
	OldRecord interface{} `json:"old_record,omitempty"`
	At        time.Time   `json:"at"`
}

// Restricted is implemented by records only managers may read, such as
// drafts and inactive rows.
type Restricted interface {
	Public() bool
}

func hidden(record interface{}) bool {
	r, ok := record.(Restricted)
	return ok && !r.Public()
}

// redact drops the records subscribers may not read. The event itself is
// kept so clients know to refetch through the API.
func redact(change Change) Change {
	if hidden(change.Record) {
		change.Record = nil
	}
	if hidden(change.OldRecord) {
		change.OldRecord = nil
	}
	return change
}

// Publisher is what domain services depend on.
type Publisher interface {
	Publish(ctx context.Context, change Change)
}

// Nop discards changes.
type Nop struct{}

func (Nop) Publish(context.Context, Change) {}

const eventsChannel = "realtime:events"

const sendBuffer = 256

var (
	wsConnectionsGauge   = expvar.NewInt("realtime_connections")
	wsEventsSentTotal    = expvar.NewInt("realtime_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("realtime_events_dropped_total")
)

// envelope travels over Redis between instances.
type envelope struct {
	Instance string          `json:"instance"`
	Topic    string          `json:"topic,omitempty"`
	UserID   string          `json:"user_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// Client is one WebSocket connection.
type Client struct {
	UserID uuid.UUID
	Send   chan []byte
	topics map[string]bool
}

// NewClient creates a client subscribed to topics.
func NewClient(userID uuid.UUID, topics []string) *Client {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}
	return &Client{UserID: userID, Send: make(chan []byte, sendBuffer), topics: set}
}

// Hub tracks the connections of this instance.
type Hub struct {
	clients map[uuid.UUID]map[*Client]bool
	mu      sync.RWMutex

	redis  *redis.Client
	pubsub *redis.PubSub

	register   chan *Client
	unregister chan *Client

	ctx        context.Context
	cancel     context.CancelFunc
	instanceID string
}

// NewHub creates a hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		redis:      redisClient,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		instanceID: uuid.NewString(),
	}
	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, eventsChannel)
	}
	return h
}

// Run processes registrations until Stop is called.
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.UserID] == nil {
				h.clients[c.UserID] = make(map[*Client]bool)
			}
			h.clients[c.UserID][c] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("user_id", c.UserID.String()).Msg("Realtime client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[c.UserID]; ok {
				if _, exists := conns[c]; exists {
					delete(conns, c)
					close(c.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.clients, c.UserID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", c.UserID.String()).Msg("Realtime client disconnected")
		}
	}
}

// Stop shuts the hub down.
func (h *Hub) Stop() {
	h.cancel()
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Instance == h.instanceID {
				continue
			}
			if env.Topic != "" {
				h.broadcastLocal(env.Topic, env.Payload)
				continue
			}
			if userID, err := uuid.Parse(env.UserID); err == nil {
				h.sendLocal(userID, env.Payload)
			}
		}
	}
}

// Publish delivers a change to every client subscribed to change.Table on
// any instance.
func (h *Hub) Publish(ctx context.Context, change Change) {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	change = redact(change)
	data, err := json.Marshal(map[string]interface{}{
		"event": "change",
		"data":  change,
	})
	if err != nil {
		log.Error().Err(err).Str("table", change.Table).Msg("Failed to marshal change event")
		return
	}

	h.broadcastLocal(change.Table, data)
	h.fanOut(ctx, envelope{Topic: change.Table, Payload: data})
}

// SendToUserJSON sends payload to all connections of userID.
func (h *Hub) SendToUserJSON(userID uuid.UUID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.sendLocal(userID, data)
	h.fanOut(h.ctx, envelope{UserID: userID.String(), Payload: data})
	return nil
}

func (h *Hub) fanOut(ctx context.Context, env envelope) {
	if h.redis == nil {
		return
	}
	env.Instance = h.instanceID
	raw, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := h.redis.Publish(context.WithoutCancel(ctx), eventsChannel, raw).Err(); err != nil {
		log.Warn().Err(err).Msg("Realtime publish to Redis failed")
	}
}

func (h *Hub) broadcastLocal(topic string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.clients {
		for c := range conns {
			if c.topics[topic] {
				deliver(c, data)
			}
		}
	}
}

func (h *Hub) sendLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		deliver(c, data)
	}
}

// deliver never blocks: a full buffer drops the message for that client.
func deliver(c *Client, data []byte) {
	select {
	case c.Send <- data:
		wsEventsSentTotal.Add(1)
	default:
		wsEventsDroppedTotal.Add(1)
		log.Warn().Str("user_id", c.UserID.String()).Msg("Realtime send buffer full")
	}
}

// Connected reports whether userID has a connection on this instance.
func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
