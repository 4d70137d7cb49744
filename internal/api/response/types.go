package response

import (
	"time"

	"github.com/mcoot/impostorgame/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsHost     bool   `json:"is_host"`
	IsAlive    bool   `json:"is_alive"`
	HasVoted   bool   `json:"has_voted,omitempty"`
	IsImpostor *bool  `json:"is_impostor,omitempty"`
}

// PlayerFromView converts a model.PlayerView
func PlayerFromView(p model.PlayerView) Player {
	return Player{
		ID:         string(p.ID),
		Name:       p.Name,
		IsHost:     p.IsHost,
		IsAlive:    p.IsAlive,
		HasVoted:   p.HasVoted,
		IsImpostor: p.IsImpostor,
	}
}

// Voting reports ballot progress while a vote is open
type Voting struct {
	BallotsCast int `json:"ballots_cast"`
	AliveCount  int `json:"alive_count"`
}

// Room is a room snapshot in API responses
type Room struct {
	Code             string    `json:"code"`
	Theme            string    `json:"theme"`
	ImpostorCount    int       `json:"impostor_count"`
	Status           string    `json:"status"`
	RoundState       string    `json:"round_state"`
	CurrentTurnIndex int       `json:"current_turn_index"`
	CurrentSpeakerID *string   `json:"current_speaker_id"`
	Winner           *string   `json:"winner"`
	LastEliminatedID *string   `json:"last_eliminated_id"`
	Round            int       `json:"round"`
	Voting           *Voting   `json:"voting,omitempty"`
	Players          []Player  `json:"players"`
	Me               *Me       `json:"me,omitempty"`
	SecretWord       *string   `json:"secret_word,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Me is the viewer's own role card
type Me struct {
	PlayerID   string `json:"player_id"`
	IsImpostor bool   `json:"is_impostor"`
}

// RoomFromSnapshot converts a model.RoomSnapshot
func RoomFromSnapshot(s model.RoomSnapshot) Room {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromView(p)
	}

	room := Room{
		Code:             string(s.Code),
		Theme:            s.Theme,
		ImpostorCount:    s.ImpostorCount,
		Status:           string(s.Status),
		RoundState:       string(s.RoundState),
		CurrentTurnIndex: s.CurrentTurnIndex,
		CurrentSpeakerID: optional(s.CurrentSpeakerID),
		Winner:           optional(s.Winner),
		LastEliminatedID: optional(s.LastEliminatedID),
		Round:            s.RoundGeneration,
		Players:          players,
		SecretWord:       optional(s.SecretWord),
		UpdatedAt:        s.UpdatedAt,
	}
	if s.Status == model.StatusVoting {
		room.Voting = &Voting{BallotsCast: s.BallotsCast, AliveCount: s.AliveCount}
	}
	if s.Viewer != "" {
		room.Me = &Me{PlayerID: string(s.Viewer), IsImpostor: s.ViewerIsImpostor}
		if s.Status == model.StatusWaiting {
			room.Me.IsImpostor = false
		}
	}
	return room
}

// CreateRoomResponse is the response after creating a room
type CreateRoomResponse struct {
	Code string `json:"code"`
	Room Room   `json:"room"`
}

// JoinResponse is the response after joining a room
type JoinResponse struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"is_host"`
}

// JoinResponseFromModel converts a model.Player
func JoinResponseFromModel(p *model.Player) JoinResponse {
	return JoinResponse{
		PlayerID: string(p.ID),
		Name:     p.Name,
		IsHost:   p.IsHost,
	}
}

// VoteResponse is the response after casting a vote
type VoteResponse struct {
	BallotsCast  int     `json:"ballots_cast"`
	AliveCount   int     `json:"alive_count"`
	Resolved     bool    `json:"resolved"`
	EliminatedID *string `json:"eliminated_id"`
	Winner       *string `json:"winner"`
	Status       string  `json:"status"`
}

// VoteResponseFromModel converts a model.VoteOutcome
func VoteResponseFromModel(o *model.VoteOutcome) VoteResponse {
	return VoteResponse{
		BallotsCast:  o.BallotsCast,
		AliveCount:   o.AliveCount,
		Resolved:     o.Resolved,
		EliminatedID: optional(o.EliminatedID),
		Winner:       optional(o.Winner),
		Status:       string(o.Status),
	}
}

// ThemesResponse lists the available themes
type ThemesResponse struct {
	Themes []string `json:"themes"`
}

// Event is a room event pushed to feed subscribers
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RoomCode  string    `json:"room_code"`
	PlayerID  *string   `json:"player_id,omitempty"`
	Room      Room      `json:"room"`
}

// EventFromModel converts a model.Event
func EventFromModel(e model.Event) Event {
	return Event{
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
		RoomCode:  string(e.RoomCode),
		PlayerID:  optional(e.PlayerID),
		Room:      RoomFromSnapshot(e.Snapshot),
	}
}

func optional[T ~string](v T) *string {
	if v == "" {
		return nil
	}
	s := string(v)
	return &s
}
