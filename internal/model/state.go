package model

import "slices"

// RoomState is the unit of atomic update: a room with its players and ballots
type RoomState struct {
	Room    Room
	Players []Player // Ordered by JoinOrder
	Ballots []Ballot
}

// Clone returns a deep copy so callers can mutate freely
func (s *RoomState) Clone() *RoomState {
	return &RoomState{
		Room:    s.Room,
		Players: slices.Clone(s.Players),
		Ballots: slices.Clone(s.Ballots),
	}
}

// Player returns the player with the given ID, or nil if not seated here
func (s *RoomState) Player(id PlayerID) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// PlayerByName returns the player with the given name, or nil
func (s *RoomState) PlayerByName(name string) *Player {
	for i := range s.Players {
		if s.Players[i].Name == name {
			return &s.Players[i]
		}
	}
	return nil
}

// Host returns the room host, or nil for an empty room
func (s *RoomState) Host() *Player {
	for i := range s.Players {
		if s.Players[i].IsHost {
			return &s.Players[i]
		}
	}
	return nil
}

// AlivePlayers returns the players still in the game
func (s *RoomState) AlivePlayers() []Player {
	var alive []Player
	for _, p := range s.Players {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

// AliveCounts returns the number of living impostors and villagers
func (s *RoomState) AliveCounts() (impostors, villagers int) {
	for _, p := range s.Players {
		if !p.IsAlive {
			continue
		}
		if p.IsImpostor {
			impostors++
		} else {
			villagers++
		}
	}
	return impostors, villagers
}

// CurrentBallots returns the ballots of the active voting round
func (s *RoomState) CurrentBallots() []Ballot {
	var ballots []Ballot
	for _, b := range s.Ballots {
		if b.Round == s.Room.RoundGeneration {
			ballots = append(ballots, b)
		}
	}
	return ballots
}

// HasVoted reports whether the player already cast a ballot this round
func (s *RoomState) HasVoted(id PlayerID) bool {
	for _, b := range s.Ballots {
		if b.Round == s.Room.RoundGeneration && b.VoterID == id {
			return true
		}
	}
	return false
}

// CurrentSpeaker returns the player whose turn it is, or nil once the round finished
func (s *RoomState) CurrentSpeaker() *Player {
	if s.Room.Status != StatusPlaying || s.Room.RoundState != RoundTurnLoop {
		return nil
	}
	idx := s.Room.CurrentTurnIndex
	if idx < 0 || idx >= len(s.Players) {
		return nil
	}
	return &s.Players[idx]
}
