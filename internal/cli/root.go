package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "impostor",
		Short: "CLI tool for the impostor party game API",
		Long: `impostor is a CLI tool for interacting with the impostor game JSON API.

It supports every room operation, from creating a room through voting and
restarting, and streams a room's live events.

The player id returned by "room join" is remembered per room, so later
commands act as that player unless --player is given.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.PlayerID)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: IMPOSTOR_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerID, "player", cfg.PlayerID, "Act as this player id (env: IMPOSTOR_PLAYER)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "Where joined player ids are kept (env: IMPOSTOR_STATE_DIR)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newThemeCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// output returns a formatter writing to the command's stdout
func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// actAs selects the player for a room command: the --player flag wins,
// then the id saved when this machine joined the room.
func actAs(code string) (string, error) {
	if cfg.PlayerID != "" {
		return cfg.PlayerID, nil
	}
	id, err := cfg.LoadPlayer(code)
	if err != nil {
		return "", err
	}
	client.SetPlayer(id)
	return id, nil
}
