package model

import (
	"fmt"
	"strings"
	"time"
)

// RoomCode is the short human-readable identifier players use to join a room
type RoomCode string

// NormalizeRoomCode upper-cases and trims user supplied codes
func NormalizeRoomCode(s string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(s)))
}

// RoomStatus is the top-level phase of a room
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "WAITING"   // Lobby, accepting players
	StatusPlaying  RoomStatus = "PLAYING"   // Clue-giving turns
	StatusVoting   RoomStatus = "VOTING"    // Ballots open
	StatusResults  RoomStatus = "RESULTS"   // Elimination shown, game continues
	StatusGameOver RoomStatus = "GAME_OVER" // A side has won
)

// statusTransitions lists every legal status change
var statusTransitions = map[RoomStatus][]RoomStatus{
	StatusWaiting:  {StatusPlaying},
	StatusPlaying:  {StatusVoting, StatusPlaying},
	StatusVoting:   {StatusResults, StatusGameOver, StatusPlaying},
	StatusResults:  {StatusPlaying},
	StatusGameOver: {StatusPlaying},
}

// Valid reports whether s is one of the known statuses
func (s RoomStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal
func (s RoomStatus) CanTransitionTo(next RoomStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RoundState is the sub-state of a PLAYING room
type RoundState string

const (
	RoundTurnLoop      RoundState = "TURN_LOOP"      // Players are giving clues
	RoundRoundFinished RoundState = "ROUND_FINISHED" // Every player has spoken
)

// Valid reports whether r is one of the known round states
func (r RoundState) Valid() bool {
	return r == RoundTurnLoop || r == RoundRoundFinished
}

// Decision is what the table chooses once a round finishes
type Decision string

const (
	DecisionNewRound Decision = "NEW_ROUND"
	DecisionVote     Decision = "VOTE"
)

// ParseDecision converts user input into a Decision
func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToUpper(strings.TrimSpace(s))) {
	case DecisionNewRound:
		return DecisionNewRound, nil
	case DecisionVote:
		return DecisionVote, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

// Winner is the side that won a finished game
type Winner string

const (
	WinnerNone      Winner = ""
	WinnerVillagers Winner = "VILLAGERS"
	WinnerImpostors Winner = "IMPOSTORS"
)

const (
	// MinPlayers is the smallest table a game can start with
	MinPlayers = 3
	// MinImpostors and MaxImpostors bound the configured impostor count
	MinImpostors = 1
	MaxImpostors = 3
)

// Room is the persistent state of one game room
type Room struct {
	Code             RoomCode
	Theme            string
	ImpostorCount    int
	SecretWord       string
	Status           RoomStatus
	RoundState       RoundState
	CurrentTurnIndex int
	Winner           Winner
	LastEliminatedID PlayerID // Empty when nobody was ejected
	RoundGeneration  int      // Bumped each time voting opens or the game restarts
	Version          int64    // Optimistic concurrency token, bumped on every commit
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TransitionTo moves the room to next, failing with ErrInvalidState on an illegal change
func (r *Room) TransitionTo(next RoomStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidState, r.Status, next)
	}
	r.Status = next
	return nil
}
