package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/craftnet/rcon"
)

const (
	defaultConnectAttempts = 3
	defaultConnectDelay    = time.Second
)

// connectWithRetry dials and authenticates, retrying a bounded number of
// times with a fixed delay between attempts. The protocol layer performs no
// retries of its own; this loop is the whole retry policy. Progress is
// written to w so it lands on stderr rather than mixing with command output.
func connectWithRetry(cfg rcon.Config, attempts int, delay time.Duration, w io.Writer) (*rcon.Session, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		s, err := rcon.Connect(cfg)
		if err == nil {
			if attempt > 1 {
				fmt.Fprintln(w, formatter.Info("Connected successfully"))
			}
			return s, nil
		}
		lastErr = err

		// A rejected password will not get better by retrying.
		if errors.Is(err, rcon.ErrAuthenticationFailed) {
			return nil, err
		}

		if attempt < attempts {
			fmt.Fprintln(w, formatter.Error(fmt.Sprintf("connection attempt %d failed: %v, retrying", attempt, err)))
			time.Sleep(delay)
		}
	}
	return nil, lastErr
}

// connect is the common entry point for subcommands that need a live
// session.
func connect(w io.Writer) (*rcon.Session, error) {
	return connectWithRetry(sessionConfig(), defaultConnectAttempts, defaultConnectDelay, w)
}
