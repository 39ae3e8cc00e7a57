package handlers

import (
	"log/slog"
	"net/http"

	ws "github.com/gorilla/websocket"

	"github.com/glowupgrow/terrarium-api/internal/api/middleware"
	"github.com/glowupgrow/terrarium-api/internal/api/respond"
	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/websocket"
)

// The session travels in a cookie, so the upgrader keeps gorilla's default
// same-origin check.
var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	hub *websocket.Hub
}

func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Handle upgrades GET /api/terrarium/live for the signed-in user.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, apperr.Unauthorized("no user in context"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	h.hub.Serve(conn, user.ID)
}
