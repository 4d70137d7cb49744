package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestRoomKeyHasTTL() {
	s.Require().NoError(s.storage.CreateRoom(s.Ctx, storagetest.NewRoomState("ABCD", "Ana")))

	s.Equal(time.Hour, s.mini.TTL(roomKey("ABCD")))
}

func (s *StorageSuite) TestUpdateRoomRefreshesTTL() {
	s.Require().NoError(s.storage.CreateRoom(s.Ctx, storagetest.NewRoomState("ABCD", "Ana")))
	s.mini.FastForward(30 * time.Minute)

	_, err := s.storage.UpdateRoom(s.Ctx, "ABCD", func(state *model.RoomState) error {
		state.Room.Status = model.StatusPlaying
		return nil
	})
	s.Require().NoError(err)

	s.Equal(time.Hour, s.mini.TTL(roomKey("ABCD")))
}

func (s *StorageSuite) TestRoomExpires() {
	s.Require().NoError(s.storage.CreateRoom(s.Ctx, storagetest.NewRoomState("ABCD", "Ana")))
	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetRoom(s.Ctx, "ABCD")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestUpdateRoomRetriesOnConflict() {
	s.Require().NoError(s.storage.CreateRoom(s.Ctx, storagetest.NewRoomState("ABCD", "Ana")))

	calls := 0
	updated, err := s.storage.UpdateRoom(s.Ctx, "ABCD", func(state *model.RoomState) error {
		calls++
		if calls == 1 {
			// Another writer commits between our read and our write
			_, err := s.storage.UpdateRoom(s.Ctx, "ABCD", func(inner *model.RoomState) error {
				inner.Room.CurrentTurnIndex = 5
				return nil
			})
			s.Require().NoError(err)
		}
		state.Room.RoundGeneration++
		return nil
	})
	s.Require().NoError(err)
	s.Equal(2, calls)
	s.Equal(5, updated.Room.CurrentTurnIndex)
	s.Equal(1, updated.Room.RoundGeneration)
}

func (s *StorageSuite) TestStoreUnavailableWhenServerDown() {
	s.mini.Close()

	_, err := s.storage.GetRoom(s.Ctx, "ABCD")
	s.ErrorIs(err, model.ErrStoreUnavailable)
	s.True(model.IsRetryable(err))
}

func (s *StorageSuite) TestEmptyCategoryRemovedFromIndex() {
	s.Require().NoError(s.storage.SaveCategoryWords(s.Ctx, "Comidas", []string{"Paella"}))
	s.Require().NoError(s.storage.SaveCategoryWords(s.Ctx, "Comidas", nil))

	categories, err := s.storage.ListCategories(s.Ctx)
	s.Require().NoError(err)
	s.Empty(categories)
}
