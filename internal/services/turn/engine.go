// Package turn advances the clue-giving pointer of a playing room.
package turn

import (
	"fmt"

	"github.com/mcoot/impostorgame/internal/model"
)

// Pass hands the turn to the next player in join order. The pointer walks every
// seated player, eliminated or not. When it runs past the last player the round
// is finished. If expectedIndex is non-nil it must match the current pointer,
// otherwise model.ErrStaleTurn is returned and nothing changes.
// It reports whether the round finished.
func Pass(state *model.RoomState, expectedIndex *int) (bool, error) {
	room := &state.Room
	if room.Status != model.StatusPlaying || room.RoundState != model.RoundTurnLoop {
		return false, fmt.Errorf("%w: cannot pass turn while %s/%s", model.ErrInvalidState, room.Status, room.RoundState)
	}
	if expectedIndex != nil && *expectedIndex != room.CurrentTurnIndex {
		return false, fmt.Errorf("%w: expected index %d, current is %d", model.ErrStaleTurn, *expectedIndex, room.CurrentTurnIndex)
	}

	room.CurrentTurnIndex++
	if room.CurrentTurnIndex >= len(state.Players) {
		room.RoundState = model.RoundRoundFinished
		return true, nil
	}
	return false, nil
}

// StartRound resets the pointer to the first player
func StartRound(state *model.RoomState) {
	state.Room.RoundState = model.RoundTurnLoop
	state.Room.CurrentTurnIndex = 0
}
