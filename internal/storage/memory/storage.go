package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms map[model.RoomCode]*model.RoomState
	words map[string][]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms: make(map[model.RoomCode]*model.RoomState),
		words: make(map[string][]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, state *model.RoomState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[state.Room.Code]; ok {
		return model.ErrCodeCollision
	}
	s.rooms[state.Room.Code] = state.Clone()
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return state.Clone(), nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}

func (s *Storage) UpdateRoom(ctx context.Context, code model.RoomCode, fn storage.UpdateFunc) (*model.RoomState, error) {
	for range storage.MaxUpdateAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		state, err := s.GetRoom(ctx, code)
		if err != nil {
			return nil, err
		}
		baseVersion := state.Room.Version

		if err := fn(state); err != nil {
			if errors.Is(err, storage.ErrNoChanges) {
				return s.GetRoom(ctx, code)
			}
			return nil, err
		}

		if s.commit(code, baseVersion, state) {
			return state.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: too many concurrent updates to room %s", model.ErrStoreUnavailable, code)
}

// commit stores state if nobody else committed since baseVersion was read
func (s *Storage) commit(code model.RoomCode, baseVersion int64, state *model.RoomState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[code]
	if !ok || current.Room.Version != baseVersion {
		return false
	}
	state.Room.Version = baseVersion + 1
	s.rooms[code] = state.Clone()
	return true
}

// Word bank operations

func (s *Storage) SaveCategoryWords(ctx context.Context, category string, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words[category] = slices.Clone(words)
	return nil
}

func (s *Storage) GetCategoryWords(ctx context.Context, category string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.words[category]), nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := make([]string, 0, len(s.words))
	for category, words := range s.words {
		if len(words) > 0 {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}
