package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/impostorgame/internal/api/middleware"
	"github.com/mcoot/impostorgame/internal/api/request"
	"github.com/mcoot/impostorgame/internal/api/response"
	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/services/room"
)

// RoomHandler handles room and game endpoints
type RoomHandler struct {
	rooms room.ControllerInterface
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms room.ControllerInterface) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Theme == "" {
		WriteError(w, NewInvalidRequestError("theme is required"))
		return
	}

	state, err := h.rooms.CreateRoom(r.Context(), req.Theme, req.ImpostorCount)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateRoomResponse{
		Code: string(state.Room.Code),
		Room: response.RoomFromSnapshot(state.Snapshot("")),
	})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, roomCode(r))
}

// Join handles POST /api/v1/rooms/{code}/players
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.rooms.JoinRoom(r.Context(), roomCode(r), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponseFromModel(player))
}

// Start handles POST /api/v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, err := h.rooms.StartGame(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}
	h.writeSnapshot(w, r, code)
}

// PassTurn handles POST /api/v1/rooms/{code}/turn/pass
func (h *RoomHandler) PassTurn(w http.ResponseWriter, r *http.Request) {
	var req request.PassTurnRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	code := roomCode(r)
	if _, err := h.rooms.PassTurn(r.Context(), code, req.ExpectedIndex); err != nil {
		WriteError(w, err)
		return
	}
	h.writeSnapshot(w, r, code)
}

// Decide handles POST /api/v1/rooms/{code}/decision
func (h *RoomHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req request.DecisionRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	decision, err := model.ParseDecision(req.Decision)
	if err != nil {
		WriteError(w, err)
		return
	}

	code := roomCode(r)
	if _, err := h.rooms.DecideNextStep(r.Context(), code, decision); err != nil {
		WriteError(w, err)
		return
	}
	h.writeSnapshot(w, r, code)
}

// Vote handles POST /api/v1/rooms/{code}/votes
func (h *RoomHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req request.VoteRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	voter := model.PlayerID(req.VoterID)
	if voter == "" {
		voter = middleware.GetViewer(r.Context())
	}
	if voter == "" {
		WriteError(w, NewInvalidRequestError("voter_id is required"))
		return
	}
	var candidate model.PlayerID
	if req.CandidateID != nil {
		candidate = model.PlayerID(*req.CandidateID)
	}

	outcome, err := h.rooms.CastVote(r.Context(), roomCode(r), voter, candidate)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.VoteResponseFromModel(outcome))
}

// Continue handles POST /api/v1/rooms/{code}/continue
func (h *RoomHandler) Continue(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, err := h.rooms.ContinueGame(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}
	h.writeSnapshot(w, r, code)
}

// Restart handles POST /api/v1/rooms/{code}/restart
func (h *RoomHandler) Restart(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, err := h.rooms.RestartGame(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}
	h.writeSnapshot(w, r, code)
}

// Themes handles GET /api/v1/themes
func (h *RoomHandler) Themes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.rooms.Themes(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ThemesResponse{Themes: themes})
}

// writeSnapshot responds with the room as seen by the requesting player
func (h *RoomHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, code model.RoomCode) {
	snap, err := h.rooms.GetSnapshot(r.Context(), code, middleware.GetViewer(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromSnapshot(*snap))
}

func roomCode(r *http.Request) model.RoomCode {
	return model.NormalizeRoomCode(mux.Vars(r)["code"])
}

// decode reads a required JSON body
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewInvalidRequestError("Invalid request body")
	}
	return nil
}

// decodeOptional reads a JSON body that may be empty
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return NewInvalidRequestError("Invalid request body")
}
