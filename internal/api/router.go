package api

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"github.com/mcoot/wordlegame-go/internal/api/handler"
	"github.com/mcoot/wordlegame-go/internal/api/middleware"
	sharedmw "github.com/mcoot/wordlegame-go/internal/middleware"
	"github.com/mcoot/wordlegame-go/internal/services/auth"
	"github.com/mcoot/wordlegame-go/internal/services/records"
	"github.com/mcoot/wordlegame-go/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	RecordsService *records.Service
	Registry       *room.Registry
	// Counter feeds the health check, usually the game server
	Counter handler.Counter
	// Websocket serves the game protocol on /ws when set
	Websocket http.HandlerFunc
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	logger := cfg.Logger.With(slog.String("component", "api"))

	healthHandler := handler.NewHealthHandler(cfg.Counter)
	authHandler := handler.NewAuthHandler(cfg.AuthService, logger)
	roomHandler := handler.NewRoomHandler(cfg.Registry)
	recordsHandler := handler.NewRecordsHandler(cfg.RecordsService, logger)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(logger))

	api := r.PathPrefix("/api").Subrouter()
	api.Use(sharedmw.Logging(logger))

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/auth/token", authHandler.Token).Methods(http.MethodPost)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)

	admin := api.PathPrefix("/records").Subrouter()
	admin.Use(middleware.RequireAdmin(cfg.AuthService))
	admin.HandleFunc("", recordsHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("", recordsHandler.Reset).Methods(http.MethodDelete)
	admin.HandleFunc("/{name}", recordsHandler.Get).Methods(http.MethodGet)

	if cfg.Websocket != nil {
		ws := r.PathPrefix("/ws").Subrouter()
		ws.Use(sharedmw.Logging(logger))
		ws.HandleFunc("", cfg.Websocket).Methods(http.MethodGet)
	}

	return r
}
