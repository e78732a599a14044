package websocket

import (
	"context"
	"sync"

	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
)

// broadcastBuffer bounds how many events may queue between the poll
// cycle and the hub loop before events are shed.
const broadcastBuffer = 64

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan models.Event
	register   chan *Client
	unregister chan *Client
	shutdown   chan struct{}
	log        *logger.Logger
	mu         sync.RWMutex
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan models.Event, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// Run starts the hub loop. It listens for context cancellation for clean shutdown.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("WebSocket Hub started")
	for {
		select {
		case <-ctx.Done():
			h.log.Info("WebSocket Hub shutting down...")
			close(h.shutdown)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("New WS Client connected. Total: %d", total)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Slow client; shed it rather than stall the hub.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Handle implements notify.Observer. Events are queued to the hub loop;
// if the queue is full the event is shed so the poll cycle never blocks
// on websocket delivery.
func (h *Hub) Handle(event models.Event) error {
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("WS broadcast queue full; dropping %s event", event.Type)
	}
	return nil
}

// add hands a new client to the hub loop. It reports false once the hub
// has shut down, so a connection racing shutdown is rejected instead of
// blocking on an unserviced channel.
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.shutdown:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.shutdown:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
