// Package notify pushes new notifications to connected dashboards over
// Server-Sent Events.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/teamboard/internal/domain"
)

const (
	// DefaultKeepAlive is how often an idle stream receives a comment line.
	DefaultKeepAlive = 30 * time.Second

	clientBuffer = 32
)

// client is one open stream.
type client struct {
	id        string
	recipient string
	events    chan []byte
}

// Hub fans notifications out to the streams of their recipients.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]map[*client]struct{}
	keepAlive time.Duration
	logger    *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:   make(map[string]map[*client]struct{}),
		keepAlive: DefaultKeepAlive,
		logger:    logger.With("component", "notification_hub"),
	}
}

// SetKeepAlive changes the keep-alive interval for streams opened later.
// Non-positive intervals are ignored.
func (h *Hub) SetKeepAlive(d time.Duration) {
	if d <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keepAlive = d
}

func (h *Hub) subscribe(recipient string) *client {
	c := &client{
		id:        uuid.NewString(),
		recipient: domain.CanonicalID(recipient),
		events:    make(chan []byte, clientBuffer),
	}
	h.mu.Lock()
	if h.clients[c.recipient] == nil {
		h.clients[c.recipient] = make(map[*client]struct{})
	}
	h.clients[c.recipient][c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("notification stream opened", "client_id", c.id, "recipient", c.recipient)
	return c
}

func (h *Hub) unsubscribe(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.recipient]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.recipient)
		}
	}
	h.mu.Unlock()

	h.logger.Debug("notification stream closed", "client_id", c.id, "recipient", c.recipient)
}

// Publish delivers n to every open stream of its recipient. A stream whose
// buffer is full misses the message.
func (h *Hub) Publish(n domain.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("failed to marshal notification", "error", err)
		return
	}
	msg := []byte(fmt.Sprintf("event: notification\ndata: %s\n\n", data))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[domain.CanonicalID(n.Recipient)] {
		select {
		case c.events <- msg:
		default:
			h.logger.Warn("notification stream is slow, skipping message",
				"client_id", c.id,
				"notification_id", n.ID)
		}
	}
}

// ClientCount returns the number of open streams for recipient.
func (h *Hub) ClientCount(recipient string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[domain.CanonicalID(recipient)])
}

// Stream serves an SSE stream of recipient's notifications until the client
// disconnects.
func (h *Hub) Stream(w http.ResponseWriter, r *http.Request, recipient string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	c := h.subscribe(recipient)
	defer h.unsubscribe(c)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	flusher.Flush()

	h.mu.RLock()
	interval := h.keepAlive
	h.mu.RUnlock()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.events:
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
