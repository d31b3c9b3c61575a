package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Event is the typed envelope streamed to SSE clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type sseClient struct {
	events chan Event
}

// EventHub fans broadcast events out to connected SSE clients. Slow
// clients drop events rather than stalling the broadcaster; the snapshot
// endpoints always carry the authoritative state.
type EventHub struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*sseClient]struct{})}
}

// Broadcast sends an event to all connected clients.
func (h *EventHub) Broadcast(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.events <- evt:
		default:
		}
	}
}

func (h *EventHub) register(c *sseClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *EventHub) unregister(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ServeHTTP streams events to one client until it disconnects.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &sseClient{events: make(chan Event, 16)}
	h.register(client)
	defer h.unregister(client)

	flusher.Flush()
	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-client.events:
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload)
			flusher.Flush()
		}
	}
}
