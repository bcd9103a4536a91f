package cli

import (
	"github.com/spf13/cobra"

	"github.com/craftnet/rcon/internal/repl"
)

var interactivePrompt string

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"repl"},
	Short:   "Start an interactive RCON session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		return repl.Run(s, interactivePrompt)
	},
}

func init() {
	interactiveCmd.Flags().StringVar(&interactivePrompt, "prompt", "rcon> ", "custom prompt for interactive mode")
	rootCmd.AddCommand(interactiveCmd)
}
