package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a participant seated in a room
type Player struct {
	ID         PlayerID
	RoomCode   RoomCode
	Name       string
	IsHost     bool
	IsImpostor bool
	IsAlive    bool
	JoinOrder  int // Position in the speaking order
	JoinedAt   time.Time
}
