package rcon

import "errors"

// Errors returned by the protocol engine. Wrapping is used throughout the
// package, so callers should match with [errors.Is] rather than direct
// comparison.
var (
	// ErrPayloadTooLarge is returned when a request body exceeds
	// [MaxRequestPayload] bytes. The server would silently truncate or drop
	// such a packet, so it is rejected before it reaches the wire.
	ErrPayloadTooLarge = errors.New("rcon: payload too large")

	// ErrTruncated is returned when a buffer handed to
	// [Packet.UnmarshalBinary] is shorter than the minimum legal frame of
	// twelve bytes.
	ErrTruncated = errors.New("rcon: truncated packet")

	// ErrLengthMismatch is returned when a frame's declared size field does
	// not agree with the number of bytes actually supplied.
	ErrLengthMismatch = errors.New("rcon: packet length mismatch")

	// ErrAuthenticationFailed is returned when the server rejects the
	// supplied password, or when the authentication response carries an
	// unexpected request ID.
	ErrAuthenticationFailed = errors.New("rcon: authentication failed")

	// ErrProtocol is returned for malformed or unexpected packet sequences:
	// implausible frame sizes, a non-response packet type where command
	// output was expected, or a response that never terminates.
	ErrProtocol = errors.New("rcon: protocol error")

	// ErrTimeout is returned when establishing the TCP connection exceeds
	// the configured bound.
	ErrTimeout = errors.New("rcon: connection timeout")

	// ErrDisconnected is returned when an operation is attempted on a
	// session whose connection has been closed or has faulted.
	ErrDisconnected = errors.New("rcon: disconnected")
)
