package redis

import (
	"fmt"

	"github.com/mcoot/impostorgame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "impostor"

// roomKey returns the Redis key for a room aggregate
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// wordsKey returns the Redis key for the word set of a category
func wordsKey(category string) string {
	return fmt.Sprintf("%s:words:%s", keyPrefix, category)
}

// categoriesKey returns the Redis key for the SET of known categories
func categoriesKey() string {
	return fmt.Sprintf("%s:categories", keyPrefix)
}
