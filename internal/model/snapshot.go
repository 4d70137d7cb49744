package model

import "time"

// PlayerView is a player as seen by a particular viewer
type PlayerView struct {
	ID         PlayerID
	Name       string
	IsHost     bool
	IsAlive    bool
	HasVoted   bool
	IsImpostor *bool // nil when the viewer may not see this role
}

// RoomSnapshot is the read model of a room for one viewer.
// An empty Viewer gives the public projection pushed on the event feed.
type RoomSnapshot struct {
	Code             RoomCode
	Theme            string
	ImpostorCount    int
	Status           RoomStatus
	RoundState       RoundState
	CurrentTurnIndex int
	CurrentSpeakerID PlayerID
	Winner           Winner
	LastEliminatedID PlayerID
	RoundGeneration  int
	BallotsCast      int
	AliveCount       int
	Players          []PlayerView
	Viewer           PlayerID
	ViewerIsImpostor bool
	SecretWord       string // Only for non-impostor viewers, or at game over
	UpdatedAt        time.Time
}

// Snapshot projects the room for viewer.
// Impostors and unknown viewers never receive the secret word before the game ends.
func (s *RoomState) Snapshot(viewer PlayerID) RoomSnapshot {
	gameOver := s.Room.Status == StatusGameOver
	snap := RoomSnapshot{
		Code:             s.Room.Code,
		Theme:            s.Room.Theme,
		ImpostorCount:    s.Room.ImpostorCount,
		Status:           s.Room.Status,
		RoundState:       s.Room.RoundState,
		CurrentTurnIndex: s.Room.CurrentTurnIndex,
		Winner:           s.Room.Winner,
		LastEliminatedID: s.Room.LastEliminatedID,
		RoundGeneration:  s.Room.RoundGeneration,
		AliveCount:       len(s.AlivePlayers()),
		UpdatedAt:        s.Room.UpdatedAt,
	}
	if speaker := s.CurrentSpeaker(); speaker != nil {
		snap.CurrentSpeakerID = speaker.ID
	}
	if s.Room.Status == StatusVoting {
		snap.BallotsCast = len(s.CurrentBallots())
	}

	me := s.Player(viewer)
	if me != nil {
		snap.Viewer = me.ID
		snap.ViewerIsImpostor = me.IsImpostor
	}
	started := s.Room.Status != StatusWaiting
	if gameOver || (me != nil && started && !me.IsImpostor) {
		snap.SecretWord = s.Room.SecretWord
	}

	snap.Players = make([]PlayerView, 0, len(s.Players))
	for _, p := range s.Players {
		view := PlayerView{
			ID:      p.ID,
			Name:    p.Name,
			IsHost:  p.IsHost,
			IsAlive: p.IsAlive,
		}
		if s.Room.Status == StatusVoting {
			view.HasVoted = s.HasVoted(p.ID)
		}
		if gameOver || (started && me != nil && me.ID == p.ID) {
			isImpostor := p.IsImpostor
			view.IsImpostor = &isImpostor
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}
