package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/impostorgame/internal/api/response"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var (
		theme     string
		impostors int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"theme": theme, "impostor_count": impostors}
			var result response.CreateRoomResponse

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Word theme (required, see 'theme list')")
	cmd.Flags().IntVar(&impostors, "impostors", 1, "Number of impostors (1-3)")
	_ = cmd.MarkFlagRequired("theme")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show the room as your player sees it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if _, err := actAs(code); err != nil {
				return err
			}

			var result response.Room

			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s", code), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code> <name>",
		Short: "Join a room, or rejoin it under the same name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, name := args[0], args[1]

			var result response.JoinResponse

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/players", code), map[string]string{"name": name}, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayer(code, result.PlayerID); err != nil {
				return fmt.Errorf("failed to save player id: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
