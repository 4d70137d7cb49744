// Package outcome decides whether a game has been won.
package outcome

import "github.com/mcoot/impostorgame/internal/model"

// Evaluate returns the winning side for the given alive counts, or WinnerNone.
// Villagers win once no impostor is alive; impostors win once they match or
// outnumber the living villagers.
func Evaluate(aliveImpostors, aliveVillagers int) model.Winner {
	switch {
	case aliveImpostors == 0:
		return model.WinnerVillagers
	case aliveImpostors >= aliveVillagers:
		return model.WinnerImpostors
	default:
		return model.WinnerNone
	}
}

// EvaluateRoom applies Evaluate to the living players of a room
func EvaluateRoom(state *model.RoomState) model.Winner {
	return Evaluate(state.AliveCounts())
}
