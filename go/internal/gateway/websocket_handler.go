package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RoomResolver maps a public room code to its id.
type RoomResolver interface {
	RoomIDByCode(ctx context.Context, code string) (uuid.UUID, error)
}

// WebSocketHandler handles WebSocket upgrade requests for room feeds
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	resolver          RoomResolver
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, resolver RoomResolver) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		resolver:          resolver,
	}
}

// HandleRoomConnection handles WebSocket connections for a specific room
func (h *WebSocketHandler) HandleRoomConnection(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	roomID, err := h.resolver.RoomIDByCode(r.Context(), code)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	// Player identity only segments per-player messages; a spectator
	// screen connects without one.
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = "spectator"
	}

	if err := h.connectionManager.UpgradeConnection(w, r, playerID, roomID); err != nil {
		log.Error().
			Err(err).
			Str("code", code).
			Str("player_id", playerID).
			Msg("failed to upgrade WebSocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
		return
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	stats := h.connectionManager.GetConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	w.Write([]byte("{"))
	w.Write([]byte("\"total_connections\":" + strconv.Itoa(stats["total_connections"].(int)) + ","))
	w.Write([]byte("\"active_rooms\":" + strconv.Itoa(stats["active_rooms"].(int))))
	w.Write([]byte("}"))
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/room", h.HandleRoomConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
