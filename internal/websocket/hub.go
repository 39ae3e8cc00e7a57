// Package websocket pushes terrarium changes to the owner's open browser
// sessions.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/observability"
)

// TerrariumLister answers SYNC requests.
type TerrariumLister interface {
	ListForUser(ctx context.Context, userID string) ([]*domain.LiveTerrarium, error)
}

type userMessage struct {
	userID uuid.UUID
	data   []byte
}

// Hub tracks connected clients per user. Run owns the client map; other
// goroutines talk to it through channels.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	lister     TerrariumLister
	metrics    *observability.Metrics
	mu         sync.RWMutex
}

func NewHub(lister TerrariumLister, metrics *observability.Metrics) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *userMessage, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		lister:     lister,
		metrics:    metrics,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					client.Close()
					h.metrics.LiveConnectionClosed()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			h.metrics.LiveConnectionOpened()
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.userID]; ok && set[client] {
				delete(set, client)
				if len(set) == 0 {
					delete(h.clients, client.userID)
				}
				client.Close()
				h.metrics.LiveConnectionClosed()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients[msg.userID] {
				client.trySend(msg.data)
			}
			h.mu.RUnlock()
		}
	}
}

// Stop closes every client and blocks until Run has returned.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Serve attaches an upgraded connection for userID and starts its pumps.
func (h *Hub) Serve(conn *websocket.Conn, userID uuid.UUID) {
	client := NewClient(h, conn, userID)
	h.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister is safe to call after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishTerrarium sends a TERRARIUM_UPDATED message to the owner's clients.
// It never blocks the caller; updates are dropped if the hub is saturated or
// stopped.
func (h *Hub) PublishTerrarium(kind string, terrarium *domain.LiveTerrarium) {
	msg, err := NewMessage(MessageTypeTerrariumUpdated, TerrariumUpdatedPayload{
		Kind:      kind,
		Terrarium: terrarium,
	})
	if err != nil {
		slog.Error("failed to build terrarium update", "error", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal terrarium update", "error", err)
		return
	}

	select {
	case h.broadcast <- &userMessage{userID: terrarium.UserID, data: data}:
	case <-h.done:
	default:
		slog.Warn("live update queue full, dropping update", "terrarium_id", terrarium.ID)
	}
}

// ClientCount reports how many connections userID has open.
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
