package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventRoomCreated    EventType = "room_created"
	EventPlayerJoined   EventType = "player_joined"
	EventGameStarted    EventType = "game_started"
	EventTurnPassed     EventType = "turn_passed"
	EventRoundFinished  EventType = "round_finished"
	EventNewRound       EventType = "new_round"
	EventVotingOpened   EventType = "voting_opened"
	EventVoteCast       EventType = "vote_cast"
	EventVotingResolved EventType = "voting_resolved"
	EventGameOver       EventType = "game_over"
	EventGameContinued  EventType = "game_continued"
	EventGameRestarted  EventType = "game_restarted"
)

// Event is published after every committed state change
type Event struct {
	Type      EventType
	Timestamp time.Time
	RoomCode  RoomCode
	PlayerID  PlayerID // The player who triggered the change, if any
	Snapshot  RoomSnapshot
}
