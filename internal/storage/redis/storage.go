package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each room is a single JSON document guarded by WATCH/MULTI.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying connection for other Redis consumers such as the event bus
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Ping checks the server is reachable
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// unavailable wraps infrastructure failures, leaving cancellation untouched
func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}

func decodeRoom(cmd *redis.StringCmd) (*model.RoomState, error) {
	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, unavailable(err)
	}

	var state model.RoomState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, state *model.RoomState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, roomKey(state.Room.Code), data, s.cfg.RoomTTL).Result()
	if err != nil {
		return unavailable(err)
	}
	if !created {
		return model.ErrCodeCollision
	}
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomState, error) {
	return decodeRoom(s.client.Get(ctx, roomKey(code)))
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	count, err := s.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return count > 0, nil
}

func (s *Storage) UpdateRoom(ctx context.Context, code model.RoomCode, fn storage.UpdateFunc) (*model.RoomState, error) {
	key := roomKey(code)

	for range storage.MaxUpdateAttempts {
		var (
			result *model.RoomState
			fnErr  error
		)

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			state, err := decodeRoom(tx.Get(ctx, key))
			if err != nil {
				return err
			}
			original := state.Clone()

			if fnErr = fn(state); fnErr != nil {
				result = original
				return fnErr
			}

			state.Room.Version = original.Room.Version + 1
			data, err := json.Marshal(state)
			if err != nil {
				return err
			}

			// Only commits if key is unchanged since WATCH
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, s.cfg.RoomTTL)
				return nil
			})
			if err != nil {
				return err
			}
			result = state
			return nil
		}, key)

		switch {
		case fnErr != nil:
			if errors.Is(fnErr, storage.ErrNoChanges) {
				return result, nil
			}
			return nil, fnErr
		case err == nil:
			return result, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, model.ErrRoomNotFound), errors.Is(err, model.ErrStoreUnavailable):
			return nil, err
		default:
			return nil, unavailable(err)
		}
	}
	return nil, fmt.Errorf("%w: too many concurrent updates to room %s", model.ErrStoreUnavailable, code)
}

// Word bank operations

func (s *Storage) SaveCategoryWords(ctx context.Context, category string, words []string) error {
	key := wordsKey(category)

	// Replace the set and keep the category index in step
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(words) == 0 {
			pipe.SRem(ctx, categoriesKey(), category)
			return nil
		}

		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.SAdd(ctx, key, members...)
		pipe.SAdd(ctx, categoriesKey(), category)
		return nil
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) GetCategoryWords(ctx context.Context, category string) ([]string, error) {
	words, err := s.client.SMembers(ctx, wordsKey(category)).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	sort.Strings(words)
	return words, nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.client.SMembers(ctx, categoriesKey()).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	sort.Strings(categories)
	return categories, nil
}
