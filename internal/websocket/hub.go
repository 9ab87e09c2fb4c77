package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"trendpulse/internal/infrastructure"
	"trendpulse/pkg/contracts/events"
)

const (
	// broadcastBuffer is how many outbound messages may wait for the run loop.
	broadcastBuffer = 64

	// sendBuffer is the per-client outbound queue length.
	sendBuffer = 256
)

type outbound struct {
	messageType string
	payload     []byte
}

// HubStats is a snapshot of hub counters
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesDropped  int64 `json:"messages_dropped"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// The clients map and every client's send channel are owned by the run loop.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	mu          sync.RWMutex
	clientCount int
	running     bool

	logger  *slog.Logger
	metrics *OTelMetrics
	timings Timings

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	messagesDropped  atomic.Int64

	quit chan struct{}
	done chan struct{}
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithMetrics records hub activity on m
func WithMetrics(m *OTelMetrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithTimings overrides the keepalive timings handed to clients
func WithTimings(t Timings) HubOption {
	return func(h *Hub) { h.timings = t.withDefaults() }
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan outbound, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		timings:    Timings{}.withDefaults(),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the hub loop in its own goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop ends the run loop and disconnects every client. A stopped hub cannot
// be restarted.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			for client := range h.clients {
				h.drop(client, "shutdown")
			}
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setClientCount()
			h.totalConnections.Add(1)

			ctx := client.context()
			h.metrics.RecordConnection(ctx)
			h.logger.InfoContext(ctx, "client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", len(h.clients)),
			)

			h.sendConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client, "normal")
			}

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// drop removes client and closes its queue, which ends its write pump.
func (h *Hub) drop(client *Client, reason string) {
	delete(h.clients, client)
	close(client.send)
	h.setClientCount()

	ctx := client.context()
	duration := time.Since(client.connectedAt)
	h.metrics.RecordDisconnection(ctx, duration, reason)
	h.logger.InfoContext(ctx, "client unregistered",
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", duration),
		slog.Int("total_clients", len(h.clients)),
	)
}

func (h *Hub) setClientCount() {
	h.mu.Lock()
	h.clientCount = len(h.clients)
	h.mu.Unlock()
}

func (h *Hub) fanOut(msg outbound) {
	ctx := context.Background()
	h.metrics.RecordBroadcast(ctx, msg.messageType)

	var failed int
	for client := range h.clients {
		select {
		case client.send <- msg.payload:
			h.messagesSent.Add(1)
		default:
			failed++
			h.messagesDropped.Add(1)
			h.metrics.RecordDroppedMessage(ctx, msg.messageType, "client_buffer_full")
			h.drop(client, "slow_consumer")
		}
	}

	h.logger.Debug("broadcast delivered",
		slog.String("type", msg.messageType),
		slog.Int("clients", len(h.clients)),
		slog.Int("failed", failed),
		slog.Int("payload_size", len(msg.payload)),
	)
}

func (h *Hub) sendConnect(client *Client) {
	payload, err := encode(events.MessageTypeConnect, client.traceID, events.ConnectData{
		ClientID: client.id,
		Message:  "connected to trendpulse",
	})
	if err != nil {
		h.logger.Error("failed to encode connect message", slog.String("error", err.Error()))
		return
	}

	select {
	case client.send <- payload:
	default:
		h.logger.Warn("client buffer full, connect message dropped", slog.String("client_id", client.id))
	}
}

// Broadcast queues data for every connected client under messageType. It
// never blocks: when the queue is full or the hub is stopped the message is
// dropped and logged.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	payload, err := encode(events.MessageType(messageType), "", data)
	if err != nil {
		h.logger.Error("failed to encode broadcast",
			slog.String("type", messageType),
			slog.String("error", err.Error()),
		)
		return
	}

	select {
	case <-h.quit:
		h.logger.Debug("hub stopped, broadcast dropped", slog.String("type", messageType))
		return
	default:
	}

	select {
	case h.broadcast <- outbound{messageType: messageType, payload: payload}:
	default:
		h.messagesDropped.Add(1)
		h.metrics.RecordDroppedMessage(context.Background(), messageType, "hub_buffer_full")
		h.logger.Warn("broadcast queue full, message dropped", slog.String("type", messageType))
	}
}

// Register hands client to the run loop. It returns false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes client. Safe to call after the hub stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clientCount
}

// Stats returns the current hub counters
func (h *Hub) Stats() HubStats {
	return HubStats{
		ActiveClients:    h.ClientCount(),
		TotalConnections: h.totalConnections.Load(),
		MessagesSent:     h.messagesSent.Load(),
		MessagesDropped:  h.messagesDropped.Load(),
	}
}

func encode(messageType events.MessageType, traceID string, data interface{}) ([]byte, error) {
	return json.Marshal(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.NewString(),
			Type:      messageType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	})
}

func traceContext(traceID string) context.Context {
	ctx := context.Background()
	if traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, traceID)
	}
	return ctx
}
