package rcon

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
)

// DefaultTimeout is the default bound on establishing the TCP connection to
// the server.
const DefaultTimeout = 5 * time.Second

// Conn owns a single connection to an RCON server: the socket, the request
// ID counter, and the authenticated state. The protocol is strictly
// request/response with no pipelining, and a Conn enforces that by
// construction: it is owned by exactly one caller at a time and every write
// is followed by the reads for its logical response before the next write.
// Conns are therefore not safe for concurrent use; callers needing
// concurrency must serialize through a single owner or open independent
// connections, each with its own handshake.
//
// While the RCON protocol specifies transport over TCP, [NewConn] accepts
// anything that satisfies the [net.Conn] interface. RCON is unencrypted by
// default, so wrapping the transport in [crypto/tls.Conn] is one way to
// protect the password on the wire when the server supports it.
type Conn struct {
	// conn is the underlying connection RCON messages are sent and received
	// over.
	conn net.Conn

	// nextID is the request ID the next outgoing packet will carry. It
	// starts at 1 and increments per request, skipping the reserved auth
	// failure sentinel -1.
	nextID int32

	// authed records whether the authentication handshake has completed
	// successfully on this connection.
	authed bool

	// logger receives debug packet dumps. May be nil.
	logger *slog.Logger

	// logAuthBodies must be explicitly enabled to include outbound
	// authentication packet bodies in debug logs. When false (the default,)
	// authentication packets are sanitized to hide both the password text
	// and its length.
	logAuthBodies bool
}

// Dial establishes a TCP connection to address within cfg.Timeout and
// returns a Conn ready for [Conn.Authenticate]. Exceeding the timeout fails
// with [ErrTimeout]. No retry happens at this layer.
func Dial(address string, cfg Config) (*Conn, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.Dial("tcp", address)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, address, timeout)
		}
		return nil, err
	}

	return NewConn(conn, cfg), nil
}

// NewConn wraps an already established connection. Once a conn is provided
// to a NewConn call, the conn should not be used outside of the returned
// Conn in order to ensure reliable message delivery.
func NewConn(conn net.Conn, cfg Config) *Conn {
	return &Conn{
		conn:          conn,
		nextID:        1,
		logger:        cfg.Logger,
		logAuthBodies: cfg.LogAuthBodies,
	}
}

// Close closes the underlying connection. A closed Conn cannot be reused;
// recovery is a fresh [Dial] and handshake.
func (c *Conn) Close() error {
	c.authed = false
	return c.conn.Close()
}

// RemoteAddr returns the remote address of the underlying connection.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Authenticated reports whether the handshake has completed on this
// connection.
func (c *Conn) Authenticated() bool {
	return c.authed
}

// Authenticate performs the handshake: it sends the password in an auth
// packet and reads exactly one response. The exchange succeeds iff the
// response echoes the request ID. A response ID of -1 is the server's
// invalid password sentinel and fails with [ErrAuthenticationFailed]
// regardless of the declared packet type, as does any other ID mismatch.
// The handshake runs once, immediately after the socket opens; no command
// may be sent before it succeeds.
func (c *Conn) Authenticate(password string) error {
	rid, err := c.sendRequest(PacketTypeAuth, []byte(password))
	if err != nil {
		return err
	}

	resp, err := c.readPacket()
	if err != nil {
		return err
	}

	if resp.ID == -1 {
		return fmt.Errorf("%w: server rejected password", ErrAuthenticationFailed)
	}
	if resp.ID != rid {
		return fmt.Errorf("%w: response ID %d does not match request ID %d", ErrAuthenticationFailed, resp.ID, rid)
	}

	c.authed = true
	return nil
}

// sendRequest allocates the next request ID, frames the request, and writes
// it to the connection.
func (c *Conn) sendRequest(packetType int32, body []byte) (int32, error) {
	req := Packet{
		ID:   c.nextRequestID(),
		Type: packetType,
		Body: body,
	}

	c.logPacket("sending packet", req)

	_, err := req.WriteTo(c.conn)
	if err != nil {
		return 0, wrapConnErr(err)
	}
	return req.ID, nil
}

// readPacket reads and decodes a single packet from the connection. There is
// deliberately no read deadline here: the connect timeout bounds dialing
// only, and a stalled server can hang a read until the caller closes the
// socket.
func (c *Conn) readPacket() (Packet, error) {
	var resp Packet
	_, err := resp.ReadFrom(c.conn)
	if err != nil {
		return Packet{}, wrapConnErr(err)
	}

	c.logPacket("received packet", resp)
	return resp, nil
}

// nextRequestID returns the current request ID and advances the counter.
// The increment wraps as a two's complement int32 and skips -1, which is
// reserved as the auth failure sentinel.
func (c *Conn) nextRequestID() int32 {
	id := c.nextID
	c.nextID++
	if c.nextID == -1 {
		c.nextID = 1
	}
	return id
}

// wrapConnErr tags closed-connection failures with [ErrDisconnected] so
// callers can tell a dead peer from other I/O trouble.
func wrapConnErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	return err
}

// logPacket sends a debug record containing the provided message and packet
// to the connection's logger. When the logger is nil or not enabled for
// debug records this is essentially a NOP. Outbound authentication packets
// have their body and length obfuscated unless the Conn was explicitly
// configured otherwise, to keep plaintext passwords out of logs.
func (c *Conn) logPacket(logMsg string, packet Packet) {
	ctx := context.Background()
	if c.logger == nil || !c.logger.Handler().Enabled(ctx, slog.LevelDebug) {
		return
	}

	if packet.Type == PacketTypeAuth && !c.logAuthBodies {
		packet.Body = []byte{'x', 'x', 'x', 'x', 'x'}
	}

	// Inbound fragments can exceed the request body cap that MarshalBinary
	// enforces; log those without the hex dump.
	if len(packet.Body) > MaxRequestPayload {
		c.logger.LogAttrs(
			ctx,
			slog.LevelDebug,
			logMsg,
			slog.Int("id", int(packet.ID)),
			slog.Int("type", int(packet.Type)),
			slog.Int("body_len", len(packet.Body)),
		)
		return
	}

	bs, err := packet.MarshalBinary()
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "failed to marshal packet for logging", slog.String("error", err.Error()))
		return
	}

	c.logger.LogAttrs(
		ctx,
		slog.LevelDebug,
		logMsg,
		slog.Int("id", int(packet.ID)),
		slog.Int("type", int(packet.Type)),
		slog.String("packet", hex.EncodeToString(bs)),
	)
}
