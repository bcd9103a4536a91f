package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoDetailed bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show server information",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		commands := []string{"list", "version"}
		if infoDetailed {
			commands = append(commands, "seed", "difficulty", "gamerule")
		}

		failures := 0
		for _, command := range commands {
			resp, err := s.Execute(command)
			if err != nil {
				failures++
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Error(fmt.Sprintf("Failed to get %s: %v", command, err)))
				continue
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.Info(fmt.Sprintf("=== %s ===", strings.ToUpper(command))))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Response(resp))
			fmt.Fprintln(cmd.OutOrStdout())
		}

		if failures == len(commands) {
			return fmt.Errorf("all info queries failed")
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoDetailed, "detailed", false, "include detailed server statistics")
	rootCmd.AddCommand(infoCmd)
}
