package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/impostorgame/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidName          = "INVALID_NAME"
	CodeInvalidImpostorCount = "INVALID_IMPOSTOR_COUNT"
	CodeInvalidDecision      = "INVALID_DECISION"
	CodeRoomNotFound         = "ROOM_NOT_FOUND"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeStaleTurn            = "STALE_TURN"
	CodeInvalidState         = "INVALID_STATE"
	CodeInsufficientPlayers  = "INSUFFICIENT_PLAYERS"
	CodeAlreadyVoted         = "ALREADY_VOTED"
	CodePlayerNotAlive       = "PLAYER_NOT_ALIVE"
	CodeNoWordsAvailable     = "NO_WORDS_AVAILABLE"
	CodeRoomCodesExhausted   = "ROOM_CODES_EXHAUSTED"
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	if he.apiError.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError.
// Specific errors are matched before the kinds they wrap.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeRoomNotFound, Message: "Room not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePlayerNotFound, Message: "Player not found"}}
	case errors.Is(err, model.ErrNoWordsAvailable):
		return &httpError{http.StatusNotFound, APIError{Code: CodeNoWordsAvailable, Message: "No words available for this theme"}}
	case errors.Is(err, model.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidName, Message: err.Error()}}
	case errors.Is(err, model.ErrInvalidImpostorCount):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidImpostorCount, Message: "Impostor count must be between 1 and 3"}}
	case errors.Is(err, model.ErrInvalidDecision):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidDecision, Message: "Decision must be NEW_ROUND or VOTE"}}
	case errors.Is(err, model.ErrStaleTurn):
		return &httpError{http.StatusConflict, APIError{Code: CodeStaleTurn, Message: "The turn has already moved on"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{Code: CodeInsufficientPlayers, Message: "Not enough players to start"}}
	case errors.Is(err, model.ErrAlreadyVoted):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyVoted, Message: "Already voted this round"}}
	case errors.Is(err, model.ErrPlayerNotAlive):
		return &httpError{http.StatusConflict, APIError{Code: CodePlayerNotAlive, Message: "Eliminated players cannot vote or be voted for"}}
	case errors.Is(err, model.ErrInvalidState):
		return &httpError{http.StatusConflict, APIError{Code: CodeInvalidState, Message: err.Error()}}
	case errors.Is(err, model.ErrExhaustedCodeSpace):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeRoomCodesExhausted, Message: "Could not allocate a room code", Retryable: true}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeStoreUnavailable, Message: "Storage is temporarily unavailable", Retryable: true}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
