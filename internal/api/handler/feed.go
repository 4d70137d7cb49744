package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/impostorgame/internal/api/middleware"
	"github.com/mcoot/impostorgame/internal/dependencies/clock"
	"github.com/mcoot/impostorgame/internal/feed"
	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/services/room"
)

// FeedHandler streams room events over SSE and websockets
type FeedHandler struct {
	rooms     room.ControllerInterface
	hubs      *feed.HubManager
	clock     clock.Clock
	wsOptions feed.WebSocketOptions
	logger    *slog.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(rooms room.ControllerInterface, hubs *feed.HubManager, clock clock.Clock, wsOptions feed.WebSocketOptions, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		rooms:     rooms,
		hubs:      hubs,
		clock:     clock,
		wsOptions: wsOptions,
		logger:    logger.With(slog.String("component", "feed-handler")),
	}
}

// Events handles GET /api/v1/rooms/{code}/events
func (h *FeedHandler) Events(w http.ResponseWriter, r *http.Request) {
	code, initial, ok := h.initialSnapshot(w, r)
	if !ok {
		return
	}
	feed.ServeSSE(w, r, h.hubs, code, middleware.GetViewer(r.Context()), initial)
}

// WebSocket handles GET /api/v1/rooms/{code}/ws
func (h *FeedHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	code, initial, ok := h.initialSnapshot(w, r)
	if !ok {
		return
	}
	feed.ServeWebSocket(w, r, h.hubs, code, middleware.GetViewer(r.Context()), initial, h.wsOptions, h.logger)
}

// initialSnapshot loads the viewer's snapshot so subscribers to unknown rooms get a 404
func (h *FeedHandler) initialSnapshot(w http.ResponseWriter, r *http.Request) (model.RoomCode, []byte, bool) {
	code := roomCode(r)
	snap, err := h.rooms.GetSnapshot(r.Context(), code, middleware.GetViewer(r.Context()))
	if err != nil {
		WriteError(w, err)
		return "", nil, false
	}
	initial, err := feed.EncodeSnapshot(*snap, h.clock.Now())
	if err != nil {
		h.logger.Error("failed to encode snapshot",
			slog.String("room_code", string(code)),
			slog.Any("error", err))
		WriteError(w, err)
		return "", nil, false
	}
	return code, initial, true
}
