package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/impostorgame/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newRoomActionCmd("start", "Deal roles and start the first round", "start"))
	cmd.AddCommand(newGamePassCmd())
	cmd.AddCommand(newGameDecideCmd())
	cmd.AddCommand(newGameVoteCmd())
	cmd.AddCommand(newRoomActionCmd("continue", "Leave the results and start the next round", "continue"))
	cmd.AddCommand(newRoomActionCmd("restart", "Deal a new game to the same table", "restart"))

	return cmd
}

// newRoomActionCmd builds a command that posts to a body-less room action
func newRoomActionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <code>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if _, err := actAs(code); err != nil {
				return err
			}

			var result response.Room

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/%s", code, action), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGamePassCmd() *cobra.Command {
	var expect int

	cmd := &cobra.Command{
		Use:   "pass <code>",
		Short: "Finish the current clue and pass the turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if _, err := actAs(code); err != nil {
				return err
			}

			req := map[string]int{}
			if cmd.Flags().Changed("expect") {
				req["expected_index"] = expect
			}
			var result response.Room

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/turn/pass", code), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&expect, "expect", 0, "Only pass if this is still the current turn index")

	return cmd
}

func newGameDecideCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "decide <code> <new_round|vote>",
		Short:     "Choose what happens after a round",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"new_round", "vote"},
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if _, err := actAs(code); err != nil {
				return err
			}

			req := map[string]string{"decision": strings.ToUpper(args[1])}
			var result response.Room

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/decision", code), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameVoteCmd() *cobra.Command {
	var skip bool

	cmd := &cobra.Command{
		Use:   "vote <code> [candidate-id]",
		Short: "Vote to eject a player, or skip",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			voter, err := actAs(code)
			if err != nil {
				return err
			}
			if voter == "" {
				return fmt.Errorf("no player for room %s: join it first or pass --player", code)
			}

			var candidate *string
			switch {
			case skip && len(args) == 2:
				return fmt.Errorf("give a candidate or --skip, not both")
			case len(args) == 2:
				candidate = &args[1]
			case !skip:
				return fmt.Errorf("a candidate id is required (or --skip)")
			}

			req := map[string]any{"voter_id": voter, "candidate_id": candidate}
			var result response.VoteResponse

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/votes", code), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skip, "skip", false, "Abstain this round")

	return cmd
}
