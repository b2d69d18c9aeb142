package handler

import (
	"net/http"

	"github.com/mcoot/wordlegame-go/internal/api/response"
)

// Counter reports live game server load
type Counter interface {
	ConnectionCount() int
	RoomCount() int
}

// HealthHandler serves the health check
type HealthHandler struct {
	counter Counter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(counter Counter) *HealthHandler {
	return &HealthHandler{counter: counter}
}

// Get handles GET /api/health
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	resp := response.Health{Status: "ok"}
	if h.counter != nil {
		resp.Connections = h.counter.ConnectionCount()
		resp.Rooms = h.counter.RoomCount()
	}
	response.JSON(w, http.StatusOK, resp)
}
