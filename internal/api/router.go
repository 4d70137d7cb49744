package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/impostorgame/internal/api/handler"
	"github.com/mcoot/impostorgame/internal/api/middleware"
	"github.com/mcoot/impostorgame/internal/dependencies/clock"
	"github.com/mcoot/impostorgame/internal/feed"
	"github.com/mcoot/impostorgame/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	RoomController   room.ControllerInterface
	HubManager       *feed.HubManager
	Clock            clock.Clock
	WebSocketOptions feed.WebSocketOptions
	HealthCheck      handler.HealthChecker
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.RoomController)
	feedHandler := handler.NewFeedHandler(cfg.RoomController, cfg.HubManager, cfg.Clock, cfg.WebSocketOptions, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.RequestID())
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Viewer())

	api.HandleFunc("/health", handler.Health(cfg.HealthCheck)).Methods(http.MethodGet)
	api.HandleFunc("/themes", roomHandler.Themes).Methods(http.MethodGet)

	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/players", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/start", roomHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/turn/pass", roomHandler.PassTurn).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/decision", roomHandler.Decide).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/votes", roomHandler.Vote).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/continue", roomHandler.Continue).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/restart", roomHandler.Restart).Methods(http.MethodPost)

	// Realtime feeds
	rooms.HandleFunc("/{code}/events", feedHandler.Events).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/ws", feedHandler.WebSocket).Methods(http.MethodGet)

	return r
}
