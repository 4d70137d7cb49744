package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/impostorgame/internal/dependencies/clock"
	"github.com/mcoot/impostorgame/internal/dependencies/ids"
	"github.com/mcoot/impostorgame/internal/dependencies/random"
	"github.com/mcoot/impostorgame/internal/feed"
	"github.com/mcoot/impostorgame/internal/services/room"
	"github.com/mcoot/impostorgame/internal/services/wordbank"
	"github.com/mcoot/impostorgame/internal/storage"
	"github.com/mcoot/impostorgame/internal/storage/memory"
	postgresstorage "github.com/mcoot/impostorgame/internal/storage/postgres"
	redisstorage "github.com/mcoot/impostorgame/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Services
	WordBank       *wordbank.Service
	RoomController *room.Controller

	// Realtime feed
	HubManager  *feed.HubManager
	Broadcaster *feed.Broadcaster
	Bus         *feed.RedisBus // Nil on a single node

	// HealthCheck pings the storage backend, if it can be pinged
	HealthCheck func(ctx context.Context) error

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// WordsPath is the path to the themed word list (optional)
	// If empty, words must be loaded manually
	WordsPath string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds Postgres connection settings (required if StorageType is "postgres")
	PostgresConfig *postgresstorage.Config
	// EventBusURL is a Redis URL for relaying events between nodes (optional).
	// With redis storage the storage connection is reused when this is empty.
	EventBusURL string
}

type pinger interface {
	Ping(ctx context.Context) error
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var (
		store     storage.Storage
		closers   []func() error
		busClient *redis.Client
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		busClient = redisStore.Client()
		closers = append(closers, redisStore.Close)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgresstorage.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = pgStore
		closers = append(closers, pgStore.Close)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}

	if cfg.EventBusURL != "" {
		opts, err := redis.ParseURL(cfg.EventBusURL)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("invalid event bus URL: %w", err)
		}
		busClient = redis.NewClient(opts)
		closers = append(closers, busClient.Close)
	}

	app := newWithDependencies(store, clock.New(), random.New(), ids.New(), busClient, logger)
	app.closers = closers

	if cfg.WordsPath != "" {
		if err := app.WordBank.LoadFromFile(ctx, cfg.WordsPath); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("loading words from %s: %w", cfg.WordsPath, err)
		}
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, idGen ids.Generator, busClient *redis.Client, logger *slog.Logger) *App {
	hubManager := feed.NewHubManager(logger)
	broadcaster := feed.NewBroadcaster(hubManager, logger)

	var (
		publisher room.Publisher = broadcaster
		bus       *feed.RedisBus
	)
	if busClient != nil {
		bus = feed.NewRedisBus(busClient, broadcaster, logger)
		publisher = bus
	}

	words := wordbank.New(store, rnd, logger)
	roomController := room.NewController(store, words, publisher, clk, rnd, idGen, logger)

	app := &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		IDs:            idGen,
		WordBank:       words,
		RoomController: roomController,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		Bus:            bus,
	}
	if p, ok := store.(pinger); ok {
		app.HealthCheck = p.Ping
	}
	return app
}

// Close stops the feed and releases storage connections
func (a *App) Close() error {
	a.HubManager.Close()
	return closeAll(a.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
