// Package cli implements the rconcli command tree. It is glue between the
// terminal and the rcon package: flags and the config file feed a
// [rcon.Config], and the subcommands drive a [rcon.Session].
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/craftnet/rcon"
	"github.com/craftnet/rcon/internal/config"
	"github.com/craftnet/rcon/internal/output"
)

var (
	// Global flags
	cfgFile     string
	address     string
	password    string
	timeoutSecs int
	format      string
	noColor     bool
	verbosity   int

	// Shared state set during PersistentPreRunE
	cfg       *config.Config
	formatter output.Formatter
	logger    *slog.Logger
)

// rootCmd is the base command for rconcli.
var rootCmd = &cobra.Command{
	Use:   "rconcli",
	Short: "A command line client for the Minecraft RCON protocol",
	Long: `rconcli talks to Minecraft (and other Source RCON compatible) servers
over the RCON remote console protocol. It supports single command
execution, liveness checks, server info queries, and an interactive
session.

Examples:
  rconcli -a localhost:25575 -p secret exec "time set day"
  rconcli -a play.example.com:25575 -p secret ping -c 5
  rconcli -a localhost:25575 -p secret interactive`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load the config file, then let flags override it.
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("address") {
			cfg.Address = address
		}
		if cmd.Flags().Changed("password") {
			cfg.Password = password
		}
		if cmd.Flags().Changed("timeout") {
			if timeoutSecs <= 0 {
				return fmt.Errorf("timeout must be greater than 0")
			}
			cfg.TimeoutSeconds = timeoutSecs
		}
		if cmd.Flags().Changed("format") {
			cfg.Format = format
		}

		color := !noColor && cfg.Format != "json" && isatty.IsTerminal(os.Stdout.Fd())
		formatter = output.NewFormatter(cfg.Format, color)
		logger = newLogger(verbosity)

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if formatter != nil {
			fmt.Fprintln(os.Stderr, formatter.Error(err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// RootCmd returns the root cobra.Command for testing purposes.
func RootCmd() *cobra.Command {
	return rootCmd
}

// sessionConfig assembles the protocol-layer config from the resolved CLI
// configuration.
func sessionConfig() rcon.Config {
	return rcon.Config{
		Address:  cfg.Address,
		Password: cfg.Password,
		Timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		Logger:   logger,
	}
}

// newLogger maps -v counts onto slog levels: warnings by default, info at
// -v, packet-level debug at -vv.
func newLogger(verbosity int) *slog.Logger {
	var level slog.Level
	switch verbosity {
	case 0:
		level = slog.LevelWarn
	case 1:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/rconcli/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", "localhost:25575", "RCON server address (host:port)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "RCON server password")
	rootCmd.PersistentFlags().IntVarP(&timeoutSecs, "timeout", "t", 5, "connection timeout in seconds")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: text, json (default \"text\")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging verbosity (-v info, -vv debug)")
}
