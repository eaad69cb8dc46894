// Package websocket streams realtime VPS monitor samples to dashboard
// clients, replacing per-client polling with a single upstream fetch.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/orivyx/orivyx-backend/internal/models"
	"github.com/orivyx/orivyx-backend/internal/pkg/metrics"
)

// samplePeriod is the dashboard's realtime chart cadence.
const samplePeriod = time.Second

// Sampler yields one realtime snapshot per call. Satisfied by
// monitor.Client.
type Sampler interface {
	Realtime(ctx context.Context) (*models.RealtimeSample, error)
}

// Message is the frame pushed to monitor stream clients.
type Message struct {
	Type      string                 `json:"type"`
	Sample    *models.RealtimeSample `json:"sample,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Hub maintains active WebSocket connections and broadcasts monitor samples.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	sampler Sampler
	log     *slog.Logger

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub that samples the monitor once per second while at
// least one client is connected.
func NewHub(ctx context.Context, sampler Sampler, log *slog.Logger) *Hub {
	hubCtx, cancel := context.WithCancel(ctx)
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sampler:    sampler,
		log:        log,
		ctx:        hubCtx,
		cancel:     cancel,
	}
}

// Run starts the hub loop. Call in a goroutine.
func (h *Hub) Run() {
	ticker := time.NewTicker(samplePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			metrics.WebSocketConnectionsActive.Set(float64(len(h.clients)))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			metrics.WebSocketConnectionsActive.Set(float64(len(h.clients)))
			h.mu.Unlock()

		case <-ticker.C:
			h.sampleAndBroadcast()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client buffer full, close connection
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop stops the hub and closes all client connections.
func (h *Hub) Stop() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebSocketConnectionsActive.Set(0)
}

// sampleAndBroadcast fetches one realtime sample and pushes it to every
// connected client. Skipped entirely when nobody is listening, so an idle
// dashboard costs the monitor nothing.
func (h *Hub) sampleAndBroadcast() {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(h.ctx, samplePeriod)
	defer cancel()
	sample, err := h.sampler.Realtime(ctx)
	if err != nil {
		h.log.Warn("realtime sample failed", "error", err)
		return
	}

	msg := Message{Type: "monitor_sample", Sample: sample, Timestamp: time.Now().UTC()}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.ctx.Done():
	}
}
