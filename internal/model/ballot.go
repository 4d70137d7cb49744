package model

import "time"

// Ballot is one vote cast during a voting round.
// An empty CandidateID is a skip.
type Ballot struct {
	RoomCode    RoomCode
	VoterID     PlayerID
	CandidateID PlayerID
	Round       int
	CastAt      time.Time
}

// IsSkip reports whether the ballot abstains
func (b Ballot) IsSkip() bool {
	return b.CandidateID == ""
}

// VoteOutcome describes the effect of a single cast vote
type VoteOutcome struct {
	BallotsCast  int
	AliveCount   int
	Resolved     bool
	EliminatedID PlayerID // Empty if nobody was ejected or voting is still open
	Winner       Winner
	Status       RoomStatus
}
