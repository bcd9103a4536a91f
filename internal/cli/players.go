package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var playersUUIDs bool

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List online players",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if playersUUIDs {
			// Not every server build understands "list uuids"; fall back to
			// the plain listing when it is rejected.
			resp, err := s.Execute("list uuids")
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Response(resp))
				return nil
			}
		}

		resp, err := s.Execute("list")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Response(resp))
		return nil
	},
}

func init() {
	playersCmd.Flags().BoolVar(&playersUUIDs, "uuids", false, "show player UUIDs")
	rootCmd.AddCommand(playersCmd)
}
