package roster

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/impostorgame/internal/dependencies/mocks"
	"github.com/mcoot/impostorgame/internal/dependencies/random"
	"github.com/mcoot/impostorgame/internal/model"
)

var joinedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func waitingRoom(impostors int, names ...string) *model.RoomState {
	state := &model.RoomState{
		Room: model.Room{Code: "ABCD", Status: model.StatusWaiting, ImpostorCount: impostors},
	}
	for _, name := range names {
		_, _, err := Join(state, model.PlayerID("id-"+name), name, joinedAt)
		if err != nil {
			panic(err)
		}
	}
	return state
}

func countImpostors(state *model.RoomState) int {
	n := 0
	for _, p := range state.Players {
		if p.IsImpostor {
			n++
		}
	}
	return n
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Ana  ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)

	_, err = NormalizeName("   ")
	assert.ErrorIs(t, err, model.ErrInvalidName)

	_, err = NormalizeName(strings.Repeat("ñ", MaxNameLength+1))
	assert.ErrorIs(t, err, model.ErrInvalidName)

	_, err = NormalizeName(strings.Repeat("ñ", MaxNameLength))
	assert.NoError(t, err)
}

func TestJoin_FirstPlayerIsHost(t *testing.T) {
	state := waitingRoom(1)

	p, created, err := Join(state, "id-1", "Ana", joinedAt)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, p.IsHost)
	assert.True(t, p.IsAlive)
	assert.Equal(t, 0, p.JoinOrder)
	assert.Equal(t, model.RoomCode("ABCD"), p.RoomCode)

	p, created, err = Join(state, "id-2", "Beto", joinedAt)
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, p.IsHost)
	assert.Equal(t, 1, p.JoinOrder)
}

func TestJoin_IsIdempotentByName(t *testing.T) {
	state := waitingRoom(1, "Ana")

	p, created, err := Join(state, "id-other", "Ana", joinedAt)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, model.PlayerID("id-Ana"), p.ID)
	assert.Len(t, state.Players, 1)
}

func TestJoin_RejoinAllowedAfterStart(t *testing.T) {
	state := waitingRoom(1, "Ana", "Beto", "Caro")
	state.Room.Status = model.StatusPlaying

	p, created, err := Join(state, "id-x", "Beto", joinedAt)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, model.PlayerID("id-Beto"), p.ID)

	_, _, err = Join(state, "id-x", "Dani", joinedAt)
	assert.ErrorIs(t, err, model.ErrInvalidState)
	assert.Len(t, state.Players, 3)
}

func TestCheckStartable(t *testing.T) {
	tests := []struct {
		name      string
		players   int
		impostors int
		wantErr   bool
	}{
		{name: "two players", players: 2, impostors: 1, wantErr: true},
		{name: "three players one impostor", players: 3, impostors: 1},
		{name: "three players two impostors", players: 3, impostors: 2},
		{name: "three players three impostors", players: 3, impostors: 3, wantErr: true},
		{name: "four players two impostors", players: 4, impostors: 2},
		{name: "five players three impostors", players: 5, impostors: 3},
		{name: "six players three impostors", players: 6, impostors: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([]string, tt.players)
			for i := range names {
				names[i] = string(rune('A' + i))
			}
			err := CheckStartable(waitingRoom(tt.impostors, names...))
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInsufficientPlayers)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssignRoles_PicksExactCount(t *testing.T) {
	for impostors := model.MinImpostors; impostors <= model.MaxImpostors; impostors++ {
		state := waitingRoom(impostors, "A", "B", "C", "D", "E", "F", "G")
		require.NoError(t, AssignRoles(state, random.New()))
		assert.Equal(t, impostors, countImpostors(state))
	}
}

func TestAssignRoles_FollowsRandomSource(t *testing.T) {
	state := waitingRoom(2, "A", "B", "C", "D", "E")
	rnd := mocks.NewMockRandom()
	// Swap 0<->3, then 1<->(1+2)=3 which now holds original 0
	rnd.QueueIntn(3, 2)

	require.NoError(t, AssignRoles(state, rnd))

	assert.True(t, state.Players[3].IsImpostor)
	assert.True(t, state.Players[0].IsImpostor)
	assert.Equal(t, 2, countImpostors(state))
}

func TestAssignRoles_ResetsPreviousGame(t *testing.T) {
	state := waitingRoom(1, "A", "B", "C")
	state.Players[2].IsImpostor = true
	state.Players[1].IsAlive = false

	require.NoError(t, AssignRoles(state, mocks.NewMockRandom()))

	assert.True(t, state.Players[0].IsImpostor)
	assert.False(t, state.Players[2].IsImpostor)
	assert.True(t, state.Players[1].IsAlive)
	assert.Equal(t, 1, countImpostors(state))
}

func TestAssignRoles_InsufficientPlayers(t *testing.T) {
	state := waitingRoom(1, "A", "B")
	err := AssignRoles(state, mocks.NewMockRandom())
	assert.ErrorIs(t, err, model.ErrInsufficientPlayers)
	assert.Equal(t, 0, countImpostors(state))
}
