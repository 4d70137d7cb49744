package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/impostorgame/internal/api/response"
)

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Word theme commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the themes a room can use",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.ThemesResponse

			if err := client.Get("/api/v1/themes", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	})

	return cmd
}
