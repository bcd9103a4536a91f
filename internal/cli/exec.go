package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var execShowTime bool

var execCmd = &cobra.Command{
	Use:     "exec COMMAND",
	Aliases: []string{"run"},
	Short:   "Execute a single command on the server",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The protocol happily carries an empty command; rejecting it is
		// this layer's job.
		command := strings.TrimSpace(strings.Join(args, " "))
		if command == "" {
			return fmt.Errorf("command cannot be empty")
		}

		s, err := connect(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		start := time.Now()
		resp, err := s.Execute(command)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), formatter.Response(resp))
		if execShowTime {
			elapsed := time.Since(start).Round(time.Millisecond)
			fmt.Fprintln(cmd.ErrOrStderr(), formatter.Info(fmt.Sprintf("Executed in %s", elapsed)))
		}
		return nil
	},
}

func init() {
	execCmd.Flags().BoolVar(&execShowTime, "time", false, "show command execution time")
	rootCmd.AddCommand(execCmd)
}
