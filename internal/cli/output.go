package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/impostorgame/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Room:
		o.printRoom(v)
	case response.CreateRoomResponse:
		o.printf("Created room %s\n", v.Code)
		o.printRoom(v.Room)
	case response.JoinResponse:
		o.printJoin(v)
	case response.VoteResponse:
		o.printVote(v)
	case response.ThemesResponse:
		for _, theme := range v.Themes {
			o.printf("%s\n", theme)
		}
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printRoom(r response.Room) {
	o.printf("Room: %s\n", r.Code)
	o.printf("Theme: %s\n", r.Theme)
	o.printf("Impostors: %d\n", r.ImpostorCount)
	o.printf("Status: %s\n", r.Status)

	if r.Status == "PLAYING" {
		o.printf("Round: %d (%s)\n", r.Round, r.RoundState)
		if r.CurrentSpeakerID != nil {
			o.printf("Speaking: %s\n", nameOf(r, *r.CurrentSpeakerID))
		}
	}
	if r.Voting != nil {
		o.printf("Ballots: %d/%d\n", r.Voting.BallotsCast, r.Voting.AliveCount)
	}
	if r.LastEliminatedID != nil {
		o.printf("Last ejected: %s\n", nameOf(r, *r.LastEliminatedID))
	}
	if r.Winner != nil {
		o.printf("Winner: %s\n", *r.Winner)
	}

	if r.Me != nil && r.Status != "WAITING" {
		if r.Me.IsImpostor {
			o.printf("\nYou are the IMPOSTOR\n")
		} else if r.SecretWord != nil {
			o.printf("\nSecret word: %s\n", *r.SecretWord)
		}
	} else if r.SecretWord != nil {
		o.printf("\nSecret word: %s\n", *r.SecretWord)
	}

	o.printf("\nPlayers (%d):\n", len(r.Players))
	for _, p := range r.Players {
		var tags []string
		if p.IsHost {
			tags = append(tags, "host")
		}
		if !p.IsAlive {
			tags = append(tags, "out")
		}
		if p.HasVoted {
			tags = append(tags, "voted")
		}
		if p.IsImpostor != nil && *p.IsImpostor {
			tags = append(tags, "impostor")
		}
		if r.Me != nil && r.Me.PlayerID == p.ID {
			tags = append(tags, "you")
		}

		line := fmt.Sprintf("  - %s (%s)", p.Name, p.ID)
		if len(tags) > 0 {
			line += " [" + strings.Join(tags, ", ") + "]"
		}
		o.printf("%s\n", line)
	}
}

func (o *Output) printJoin(j response.JoinResponse) {
	o.printf("Joined as %s (%s)\n", j.Name, j.PlayerID)
	if j.IsHost {
		o.printf("You are the host\n")
	}
}

func (o *Output) printVote(v response.VoteResponse) {
	o.printf("Vote recorded (%d/%d)\n", v.BallotsCast, v.AliveCount)
	if !v.Resolved {
		return
	}

	if v.EliminatedID != nil {
		o.printf("Ejected: %s\n", *v.EliminatedID)
	} else {
		o.printf("No one was ejected\n")
	}
	if v.Winner != nil {
		o.printf("Winner: %s\n", *v.Winner)
	}
	o.printf("Status: %s\n", v.Status)
}

// nameOf resolves a player id to a display name within a room
func nameOf(r response.Room, id string) string {
	for _, p := range r.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
