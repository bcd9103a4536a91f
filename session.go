package rcon

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// pingCommand is the low-impact command used to validate liveness. Its
// output is discarded; only success or failure matters.
const pingCommand = "list"

// Config carries everything needed to establish and re-establish a session.
// It is immutable once a connection is made and is reused verbatim by
// [Session.Reconnect].
type Config struct {
	// Address is the server's host:port.
	Address string

	// Password is the RCON password sent during the handshake.
	Password string

	// Timeout bounds establishing the TCP connection. Zero means
	// [DefaultTimeout]. It does not bound reads or writes once connected.
	Timeout time.Duration

	// Logger receives log output. May be nil.
	Logger *slog.Logger

	// LogAuthBodies enables debug logging of outbound authentication packet
	// bodies, exposing the server password in plaintext. Only enable this if
	// you are aware of the implications and are willing to accept the risks.
	LogAuthBodies bool
}

// sessionState tracks where a session is in its lifecycle. Ready is the only
// state from which commands may be executed.
type sessionState int

const (
	stateUnconnected sessionState = iota
	stateConnecting
	stateAuthenticating
	stateReady
	stateClosed
	stateFaulted
)

func (s sessionState) String() string {
	switch s {
	case stateUnconnected:
		return "unconnected"
	case stateConnecting:
		return "connecting"
	case stateAuthenticating:
		return "authenticating"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	case stateFaulted:
		return "faulted"
	}
	return "unknown"
}

// Session is the public surface of the client: connect, execute, ping,
// reconnect. It wraps one [Conn] at a time and performs no implicit retries;
// retry policy belongs to the caller. Like the Conn it owns, a Session
// serves one caller at a time.
type Session struct {
	cfg   Config
	conn  *Conn
	state sessionState
}

// Connect opens a connection to the configured address and performs the
// authentication handshake. On success the session is ready for
// [Session.Execute].
func Connect(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) connect() error {
	s.state = stateConnecting
	conn, err := Dial(s.cfg.Address, s.cfg)
	if err != nil {
		s.state = stateFaulted
		return err
	}

	s.state = stateAuthenticating
	if err := conn.Authenticate(s.cfg.Password); err != nil {
		_ = conn.Close()
		s.state = stateFaulted
		return err
	}

	s.conn = conn
	s.state = stateReady
	return nil
}

// Execute sends command to the server and returns the reassembled response
// text. A network error faults the session; the only recovery from a
// faulted session is [Session.Reconnect]. Errors local to the command, such
// as [ErrPayloadTooLarge] or [ErrProtocol], leave the session usable.
func (s *Session) Execute(command string) (string, error) {
	if s.state != stateReady {
		return "", fmt.Errorf("%w: session is %s", ErrDisconnected, s.state)
	}

	rid, err := s.conn.sendRequest(PacketTypeExecCommand, []byte(command))
	if err != nil {
		s.fault(err)
		return "", err
	}

	resp, err := s.conn.readResponse(rid)
	if err != nil {
		s.fault(err)
		return "", err
	}
	return resp, nil
}

// Ping executes a harmless command purely to validate that the server is
// reachable and the session is still authenticated. The response content is
// discarded.
func (s *Session) Ping() error {
	_, err := s.Execute(pingCommand)
	return err
}

// Alive reports whether the session is authenticated and the server is
// currently reachable. It costs one command round trip.
func (s *Session) Alive() bool {
	return s.Ping() == nil
}

// Reconnect discards the current connection and connects again from scratch
// using the stored config. No state carries over: server-side session state
// is tied to the TCP connection, so a fresh handshake is mandatory.
func (s *Session) Reconnect() error {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	return s.connect()
}

// Close closes the session's connection. A closed session cannot be reused
// except via [Session.Reconnect].
func (s *Session) Close() error {
	s.state = stateClosed
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Addr returns the configured server address.
func (s *Session) Addr() string {
	return s.cfg.Address
}

// fault transitions the session out of ready when err indicates the
// connection itself failed. Command-local failures do not fault: a protocol
// error is fatal to its command, an oversized payload never reached the
// wire.
func (s *Session) fault(err error) {
	if errors.Is(err, ErrPayloadTooLarge) || errors.Is(err, ErrProtocol) {
		return
	}
	s.state = stateFaulted
}
