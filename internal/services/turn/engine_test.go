package turn

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/impostorgame/internal/model"
)

func playingState(players int) *model.RoomState {
	state := &model.RoomState{
		Room: model.Room{Status: model.StatusPlaying, RoundState: model.RoundTurnLoop},
	}
	for i := range players {
		state.Players = append(state.Players, model.Player{ID: model.PlayerID(fmt.Sprintf("p%d", i)), IsAlive: true, JoinOrder: i})
	}
	return state
}

func TestPass_WalksEveryPlayerThenFinishes(t *testing.T) {
	state := playingState(4)

	for i := 1; i < 4; i++ {
		finished, err := Pass(state, nil)
		require.NoError(t, err)
		assert.False(t, finished)
		assert.Equal(t, i, state.Room.CurrentTurnIndex)
		assert.Equal(t, model.RoundTurnLoop, state.Room.RoundState)
	}

	finished, err := Pass(state, nil)
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, 4, state.Room.CurrentTurnIndex)
	assert.Equal(t, model.RoundRoundFinished, state.Room.RoundState)
}

func TestPass_CountsEliminatedPlayers(t *testing.T) {
	state := playingState(3)
	state.Players[1].IsAlive = false

	for range 2 {
		finished, err := Pass(state, nil)
		require.NoError(t, err)
		assert.False(t, finished)
	}
	finished, err := Pass(state, nil)
	require.NoError(t, err)
	assert.True(t, finished)
}

func TestPass_RejectsFinishedRound(t *testing.T) {
	state := playingState(3)
	state.Room.RoundState = model.RoundRoundFinished
	state.Room.CurrentTurnIndex = 3

	_, err := Pass(state, nil)
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.Equal(t, 3, state.Room.CurrentTurnIndex)
}

func TestPass_RejectsOtherStatuses(t *testing.T) {
	for _, status := range []model.RoomStatus{model.StatusWaiting, model.StatusVoting, model.StatusResults, model.StatusGameOver} {
		state := playingState(3)
		state.Room.Status = status

		_, err := Pass(state, nil)
		assert.ErrorIs(t, err, model.ErrInvalidState, "status %s", status)
		assert.Equal(t, 0, state.Room.CurrentTurnIndex)
	}
}

func TestPass_ExpectedIndex(t *testing.T) {
	state := playingState(3)
	zero := 0

	_, err := Pass(state, &zero)
	require.NoError(t, err)

	// A duplicate pass for the same turn is stale
	_, err = Pass(state, &zero)
	assert.ErrorIs(t, err, model.ErrStaleTurn)
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.Equal(t, 1, state.Room.CurrentTurnIndex)
}

func TestStartRound(t *testing.T) {
	state := playingState(3)
	state.Room.RoundState = model.RoundRoundFinished
	state.Room.CurrentTurnIndex = 3

	StartRound(state)

	assert.Equal(t, model.RoundTurnLoop, state.Room.RoundState)
	assert.Equal(t, 0, state.Room.CurrentTurnIndex)
}
