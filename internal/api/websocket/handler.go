package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the router level
	},
}

// Handler upgrades HTTP requests to monitor stream connections.
type Handler struct {
	hub *Hub
	ctx context.Context
	log *slog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(ctx context.Context, hub *Hub, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{hub: hub, ctx: ctx, log: log}
}

// ServeWS handles websocket requests from dashboard clients.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := NewClient(h.ctx, h.hub, conn, clientID)

	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()

	h.log.Info("monitor stream client connected", "client_id", clientID)
}
