package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	pingCount    int
	pingInterval int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test connectivity to the RCON server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pingCount <= 0 {
			return fmt.Errorf("ping count must be greater than 0")
		}
		if pingInterval <= 0 {
			return fmt.Errorf("ping interval must be greater than 0")
		}

		s, err := connect(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		fmt.Fprintln(cmd.OutOrStdout(), formatter.Info(fmt.Sprintf("Pinging %s %d time(s)", s.Addr(), pingCount)))

		successful := 0
		var total time.Duration
		for i := 1; i <= pingCount; i++ {
			start := time.Now()
			if err := s.Ping(); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Error(fmt.Sprintf("Ping %d: Failed - %v", i, err)))
			} else {
				elapsed := time.Since(start)
				total += elapsed
				successful++
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Info(fmt.Sprintf("Ping %d: Connected in %s", i, elapsed.Round(time.Millisecond))))
			}

			if i < pingCount {
				time.Sleep(time.Duration(pingInterval) * time.Second)
			}
		}

		rate := float64(successful) / float64(pingCount) * 100
		avg := time.Duration(0)
		if successful > 0 {
			avg = (total / time.Duration(successful)).Round(time.Millisecond)
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Info(fmt.Sprintf(
			"Summary: %d/%d successful (%.1f%%), average: %s",
			successful, pingCount, rate, avg,
		)))

		if successful == 0 {
			return fmt.Errorf("all pings failed")
		}
		return nil
	},
}

func init() {
	pingCmd.Flags().IntVarP(&pingCount, "count", "c", 1, "number of ping attempts")
	pingCmd.Flags().IntVarP(&pingInterval, "interval", "i", 1, "interval between pings in seconds")
	rootCmd.AddCommand(pingCmd)
}
