package model

import (
	"errors"
	"fmt"
)

// Error kinds shared across services, storage and transports
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")
	ErrAlreadyVoted        = errors.New("player has already voted this round")
	ErrPlayerNotAlive      = errors.New("player is not alive")
	ErrNoWordsAvailable    = errors.New("no words available for theme")
	ErrCodeCollision       = errors.New("room code already in use")
	ErrExhaustedCodeSpace  = errors.New("could not allocate a free room code")
	ErrStoreUnavailable    = errors.New("store unavailable")

	// Input validation
	ErrInvalidImpostorCount = errors.New("impostor count must be between 1 and 3")
	ErrInvalidName          = errors.New("invalid player name")
	ErrInvalidDecision      = errors.New("invalid decision")
)

// Specific not-found and invalid-state errors
var (
	ErrRoomNotFound   = fmt.Errorf("room %w", ErrNotFound)
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)
	ErrStaleTurn      = fmt.Errorf("%w: turn has already moved on", ErrInvalidState)
)

// IsRetryable reports whether the caller may safely retry the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
