package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/impostorgame/internal/factory"
	postgresstorage "github.com/mcoot/impostorgame/internal/storage/postgres"
	redisstorage "github.com/mcoot/impostorgame/internal/storage/redis"
)

// config is the server configuration read from the environment
type config struct {
	Host            string
	Port            int
	LogLevel        slog.Level
	StorageType     string
	RedisURL        string
	DatabaseURL     string
	EventBusURL     string
	WordsPath       string
	AllowedOrigins  []string
	RoomTTL         time.Duration
	CleanupInterval time.Duration
}

// loadConfig reads configuration from environment variables
func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		Host:            getenv("HOST"),
		Port:            8080,
		LogLevel:        slog.LevelInfo,
		StorageType:     getenv("STORAGE_TYPE"),
		RedisURL:        getenv("REDIS_URL"),
		DatabaseURL:     getenv("DATABASE_URL"),
		EventBusURL:     getenv("EVENT_BUS_URL"),
		WordsPath:       "data/words.txt",
		RoomTTL:         24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
	if cfg.StorageType == "" {
		cfg.StorageType = factory.StorageTypeMemory
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return config{}, fmt.Errorf("invalid LOG_LEVEL %q", v)
		}
	}
	if v := getenv("WORDS_PATH"); v != "" {
		cfg.WordsPath = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}
	if v := getenv("ROOM_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return config{}, fmt.Errorf("invalid ROOM_TTL %q", v)
		}
		cfg.RoomTTL = ttl
	}

	switch cfg.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if cfg.RedisURL == "" {
			return config{}, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case factory.StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return config{}, fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return config{}, fmt.Errorf("invalid STORAGE_TYPE %q", cfg.StorageType)
	}

	return cfg, nil
}

// factoryConfig translates the server configuration for the application factory
func (c config) factoryConfig(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		WordsPath:   c.WordsPath,
		Logger:      logger,
		StorageType: c.StorageType,
		EventBusURL: c.EventBusURL,
	}
	switch c.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.RoomTTL = c.RoomTTL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		pgCfg := postgresstorage.DefaultConfig()
		pgCfg.URL = c.DatabaseURL
		cfg.PostgresConfig = &pgCfg
	}
	return cfg
}
