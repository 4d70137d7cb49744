package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	PlayerID  string
	StateDir  string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("IMPOSTOR_SERVER", "http://localhost:8080"),
		PlayerID:  os.Getenv("IMPOSTOR_PLAYER"),
		StateDir:  getEnvOrDefault("IMPOSTOR_STATE_DIR", defaultStateDir()),
		Output:    "text",
		Verbose:   false,
	}
}

// playerFile is where the player id for a room is kept
func (c *Config) playerFile(code string) string {
	return filepath.Join(c.StateDir, "players", strings.ToUpper(strings.TrimSpace(code)))
}

// LoadPlayer returns the player id saved for a room, or "" if none
func (c *Config) LoadPlayer(code string) (string, error) {
	data, err := os.ReadFile(c.playerFile(code))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SavePlayer remembers the player id used in a room
func (c *Config) SavePlayer(code, playerID string) error {
	path := c.playerFile(code)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(playerID), 0600)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".impostor"
	}
	return filepath.Join(home, ".impostor")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
