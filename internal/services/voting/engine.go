// Package voting records ballots and resolves a voting round by plurality.
package voting

import (
	"fmt"
	"time"

	"github.com/mcoot/impostorgame/internal/model"
)

// Cast records a ballot from voter for candidate in the current round.
// An empty candidate is a skip. It reports whether every living player has
// now voted, at which point the caller must resolve the round.
func Cast(state *model.RoomState, voter, candidate model.PlayerID, now time.Time) (bool, error) {
	if state.Room.Status != model.StatusVoting {
		return false, fmt.Errorf("%w: voting is not open (status %s)", model.ErrInvalidState, state.Room.Status)
	}

	v := state.Player(voter)
	if v == nil {
		return false, fmt.Errorf("%w: voter %s", model.ErrPlayerNotFound, voter)
	}
	if !v.IsAlive {
		return false, fmt.Errorf("%w: voter %s", model.ErrPlayerNotAlive, voter)
	}
	if candidate != "" {
		c := state.Player(candidate)
		if c == nil {
			return false, fmt.Errorf("%w: candidate %s", model.ErrPlayerNotFound, candidate)
		}
		if !c.IsAlive {
			return false, fmt.Errorf("%w: candidate %s", model.ErrPlayerNotAlive, candidate)
		}
	}
	if state.HasVoted(voter) {
		return false, model.ErrAlreadyVoted
	}

	state.Ballots = append(state.Ballots, model.Ballot{
		RoomCode:    state.Room.Code,
		VoterID:     voter,
		CandidateID: candidate,
		Round:       state.Room.RoundGeneration,
		CastAt:      now,
	})
	return Complete(state), nil
}

// Complete reports whether every living player has a ballot this round
func Complete(state *model.RoomState) bool {
	return len(state.CurrentBallots()) >= len(state.AlivePlayers())
}

// Tally is the vote count of one round
type Tally struct {
	Votes map[model.PlayerID]int
	Skips int
}

// Count tallies ballots
func Count(ballots []model.Ballot) Tally {
	t := Tally{Votes: make(map[model.PlayerID]int)}
	for _, b := range ballots {
		if b.IsSkip() {
			t.Skips++
			continue
		}
		t.Votes[b.CandidateID]++
	}
	return t
}

// Leader returns the candidate with strictly more votes than every other
// candidate and than the skips. ok is false on any tie or when skip leads.
func (t Tally) Leader() (model.PlayerID, bool) {
	var (
		leader   model.PlayerID
		best     int
		runnerUp int
	)
	for candidate, n := range t.Votes {
		switch {
		case n > best:
			runnerUp = best
			best = n
			leader = candidate
		case n > runnerUp:
			runnerUp = n
		}
	}
	if best == 0 || best == runnerUp || best <= t.Skips {
		return "", false
	}
	return leader, true
}

// Resolve tallies the current round and marks the plurality leader as no longer
// alive. It returns the eliminated player, or "" when nobody is ejected.
func Resolve(state *model.RoomState) model.PlayerID {
	leader, ok := Count(state.CurrentBallots()).Leader()
	if !ok {
		return ""
	}
	if p := state.Player(leader); p != nil {
		p.IsAlive = false
	}
	return leader
}
