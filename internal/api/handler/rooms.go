package handler

import (
	"net/http"

	"github.com/mcoot/wordlegame-go/internal/api/response"
	"github.com/mcoot/wordlegame-go/internal/services/room"
)

// RoomHandler lists open rooms
type RoomHandler struct {
	registry *room.Registry
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry *room.Registry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// List handles GET /api/rooms
func (h *RoomHandler) List(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.RoomListFromSummaries(h.registry.ListAvailable()))
}
