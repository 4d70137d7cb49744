package storage

import (
	"context"
	"errors"

	"github.com/mcoot/impostorgame/internal/model"
)

// MaxUpdateAttempts bounds optimistic retries of UpdateRoom before giving up
// with model.ErrStoreUnavailable
const MaxUpdateAttempts = 16

// ErrNoChanges may be returned by an UpdateFunc that decided not to modify the
// state. UpdateRoom then commits nothing and returns the state as read.
var ErrNoChanges = errors.New("no changes")

// UpdateFunc mutates a freshly read room state. It may be invoked more than once
// when concurrent writers race, so it must not have side effects outside the state.
// Returning an error aborts the update without writing.
type UpdateFunc func(state *model.RoomState) error

// Storage defines the interface for data persistence
type Storage interface {
	// Room operations
	CreateRoom(ctx context.Context, state *model.RoomState) error // model.ErrCodeCollision if taken
	GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomState, error)
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)

	// UpdateRoom atomically applies fn to the room. Writes are committed only if
	// no other writer committed since the read; otherwise fn is re-run on fresh state.
	UpdateRoom(ctx context.Context, code model.RoomCode, fn UpdateFunc) (*model.RoomState, error)

	// Word bank operations
	SaveCategoryWords(ctx context.Context, category string, words []string) error
	GetCategoryWords(ctx context.Context, category string) ([]string, error)
	ListCategories(ctx context.Context) ([]string, error)
}
