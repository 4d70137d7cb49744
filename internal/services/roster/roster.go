// Package roster manages who sits in a room and which of them are impostors.
package roster

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/impostorgame/internal/dependencies/random"
	"github.com/mcoot/impostorgame/internal/model"
)

// MaxNameLength is the longest display name accepted, in runes
const MaxNameLength = 32

// NormalizeName trims a display name and validates its length
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", model.ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name longer than %d characters", model.ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

// Join seats a player called name. Joining with a name already in the room
// returns that player unchanged, in any status. New players are only admitted
// while the room is waiting. The first player becomes host.
// It reports whether a new player was added.
func Join(state *model.RoomState, id model.PlayerID, name string, now time.Time) (*model.Player, bool, error) {
	if existing := state.PlayerByName(name); existing != nil {
		return existing, false, nil
	}
	if state.Room.Status != model.StatusWaiting {
		return nil, false, fmt.Errorf("%w: room %s is no longer accepting players", model.ErrInvalidState, state.Room.Code)
	}

	state.Players = append(state.Players, model.Player{
		ID:        id,
		RoomCode:  state.Room.Code,
		Name:      name,
		IsHost:    len(state.Players) == 0,
		IsAlive:   true,
		JoinOrder: len(state.Players),
		JoinedAt:  now,
	})
	return &state.Players[len(state.Players)-1], true, nil
}

// CheckStartable verifies the table is large enough for the configured impostors.
// At least one villager must be seated.
func CheckStartable(state *model.RoomState) error {
	n := len(state.Players)
	if n < model.MinPlayers {
		return fmt.Errorf("%w: need at least %d players, have %d", model.ErrInsufficientPlayers, model.MinPlayers, n)
	}
	if k := state.Room.ImpostorCount; k >= n {
		return fmt.Errorf("%w: %d impostors need at least %d players, have %d", model.ErrInsufficientPlayers, k, k+1, n)
	}
	return nil
}

// Reset revives every player and clears their roles
func Reset(state *model.RoomState) {
	for i := range state.Players {
		state.Players[i].IsAlive = true
		state.Players[i].IsImpostor = false
	}
}

// AssignRoles revives everyone and picks exactly ImpostorCount impostors
// uniformly at random with a partial Fisher-Yates shuffle.
func AssignRoles(state *model.RoomState, rnd random.Random) error {
	if err := CheckStartable(state); err != nil {
		return err
	}
	Reset(state)

	n := len(state.Players)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := range state.Room.ImpostorCount {
		j := i + rnd.Intn(n-i)
		order[i], order[j] = order[j], order[i]
		state.Players[order[i]].IsImpostor = true
	}
	return nil
}
