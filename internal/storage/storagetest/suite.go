// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/storage"
)

// Suite runs the storage contract against a backend. Embedders set Storage in
// their SetupTest before the test methods run.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

// NewRoomState builds a waiting room with the given players seated in order
func NewRoomState(code model.RoomCode, names ...string) *model.RoomState {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state := &model.RoomState{
		Room: model.Room{
			Code:          code,
			Theme:         "Comidas",
			ImpostorCount: 1,
			SecretWord:    "Paella",
			Status:        model.StatusWaiting,
			RoundState:    model.RoundTurnLoop,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
	for i, name := range names {
		state.Players = append(state.Players, model.Player{
			ID:        model.PlayerID(string(code) + "-" + name),
			RoomCode:  code,
			Name:      name,
			IsHost:    i == 0,
			IsAlive:   true,
			JoinOrder: i,
			JoinedAt:  now,
		})
	}
	return state
}

// Room tests

func (s *Suite) TestCreateAndGetRoom() {
	state := NewRoomState("ABCD", "Ana", "Beto")

	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, state))

	got, err := s.Storage.GetRoom(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ABCD"), got.Room.Code)
	s.Equal("Paella", got.Room.SecretWord)
	s.Equal(model.StatusWaiting, got.Room.Status)
	s.Require().Len(got.Players, 2)
	s.Equal("Ana", got.Players[0].Name)
	s.True(got.Players[0].IsHost)
	s.Equal("Beto", got.Players[1].Name)
	s.False(got.Players[1].IsHost)
}

func (s *Suite) TestCreateRoomCollision() {
	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD")))

	err := s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD"))
	s.ErrorIs(err, model.ErrCodeCollision)
}

func (s *Suite) TestGetRoomNotFound() {
	_, err := s.Storage.GetRoom(s.Ctx, "ZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestRoomExists() {
	exists, err := s.Storage.RoomExists(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD")))

	exists, err = s.Storage.RoomExists(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *Suite) TestUpdateRoomAppliesChanges() {
	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD", "Ana", "Beto", "Caro")))

	updated, err := s.Storage.UpdateRoom(s.Ctx, "ABCD", func(state *model.RoomState) error {
		state.Room.Status = model.StatusVoting
		state.Room.RoundGeneration = 1
		state.Players[1].IsImpostor = true
		state.Players[2].IsAlive = false
		state.Ballots = append(state.Ballots, model.Ballot{
			RoomCode:    "ABCD",
			VoterID:     state.Players[0].ID,
			CandidateID: state.Players[1].ID,
			Round:       1,
			CastAt:      time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
		}, model.Ballot{
			RoomCode: "ABCD",
			VoterID:  state.Players[1].ID,
			Round:    1,
			CastAt:   time.Date(2026, 3, 1, 12, 6, 0, 0, time.UTC),
		})
		return nil
	})
	s.Require().NoError(err)
	s.Equal(int64(1), updated.Room.Version)

	got, err := s.Storage.GetRoom(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.StatusVoting, got.Room.Status)
	s.Equal(int64(1), got.Room.Version)
	s.True(got.Players[1].IsImpostor)
	s.False(got.Players[2].IsAlive)
	s.Require().Len(got.Ballots, 2)
	s.Equal(got.Players[1].ID, got.Ballots[0].CandidateID)
	s.True(got.Ballots[1].IsSkip())
}

func (s *Suite) TestUpdateRoomAddsPlayers() {
	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD", "Ana")))

	_, err := s.Storage.UpdateRoom(s.Ctx, "ABCD", func(state *model.RoomState) error {
		state.Players = append(state.Players, model.Player{
			ID:        "ABCD-Beto",
			RoomCode:  "ABCD",
			Name:      "Beto",
			IsAlive:   true,
			JoinOrder: 1,
			JoinedAt:  time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC),
		})
		return nil
	})
	s.Require().NoError(err)

	got, err := s.Storage.GetRoom(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.Require().Len(got.Players, 2)
	s.Equal("Beto", got.Players[1].Name)
}

func (s *Suite) TestUpdateRoomNotFound() {
	_, err := s.Storage.UpdateRoom(s.Ctx, "ZZZZ", func(state *model.RoomState) error {
		return nil
	})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestUpdateRoomErrorAbortsWrite() {
	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD", "Ana")))

	_, err := s.Storage.UpdateRoom(s.Ctx, "ABCD", func(state *model.RoomState) error {
		state.Room.Status = model.StatusPlaying
		return model.ErrInsufficientPlayers
	})
	s.ErrorIs(err, model.ErrInsufficientPlayers)

	got, err := s.Storage.GetRoom(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(model.StatusWaiting, got.Room.Status)
	s.Equal(int64(0), got.Room.Version)
}

func (s *Suite) TestUpdateRoomNoChanges() {
	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD", "Ana")))

	got, err := s.Storage.UpdateRoom(s.Ctx, "ABCD", func(state *model.RoomState) error {
		return storage.ErrNoChanges
	})
	s.Require().NoError(err)
	s.Equal(int64(0), got.Room.Version)
	s.Len(got.Players, 1)
}

func (s *Suite) TestConcurrentUpdatesAreSerialized() {
	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD", "Ana")))

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Storage.UpdateRoom(s.Ctx, "ABCD", func(state *model.RoomState) error {
				state.Room.CurrentTurnIndex++
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(errors.Is(err, model.ErrStoreUnavailable), "unexpected error: %v", err)
	}

	got, err := s.Storage.GetRoom(s.Ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal(succeeded, got.Room.CurrentTurnIndex)
	s.Equal(int64(succeeded), got.Room.Version)
}

func (s *Suite) TestConditionalUpdateRunsOnce() {
	s.Require().NoError(s.Storage.CreateRoom(s.Ctx, NewRoomState("ABCD", "Ana")))

	const writers = 6
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Storage.UpdateRoom(s.Ctx, "ABCD", func(state *model.RoomState) error {
				if state.Room.Status != model.StatusWaiting {
					return model.ErrInvalidState
				}
				state.Room.Status = model.StatusPlaying
				return nil
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		s.True(errors.Is(err, model.ErrInvalidState) || errors.Is(err, model.ErrStoreUnavailable),
			"unexpected error: %v", err)
	}
	s.Equal(1, succeeded)
}

// Word bank tests

func (s *Suite) TestCategoryWords() {
	s.Require().NoError(s.Storage.SaveCategoryWords(s.Ctx, "Comidas", []string{"Paella", "Tacos"}))
	s.Require().NoError(s.Storage.SaveCategoryWords(s.Ctx, "Lugares", []string{"Playa"}))

	words, err := s.Storage.GetCategoryWords(s.Ctx, "Comidas")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"Paella", "Tacos"}, words)

	categories, err := s.Storage.ListCategories(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Comidas", "Lugares"}, categories)
}

func (s *Suite) TestSaveCategoryWordsReplaces() {
	s.Require().NoError(s.Storage.SaveCategoryWords(s.Ctx, "Comidas", []string{"Paella", "Tacos"}))
	s.Require().NoError(s.Storage.SaveCategoryWords(s.Ctx, "Comidas", []string{"Sushi"}))

	words, err := s.Storage.GetCategoryWords(s.Ctx, "Comidas")
	s.Require().NoError(err)
	s.Equal([]string{"Sushi"}, words)
}

func (s *Suite) TestGetCategoryWordsUnknown() {
	words, err := s.Storage.GetCategoryWords(s.Ctx, "Desconocido")
	s.Require().NoError(err)
	s.Empty(words)
}
