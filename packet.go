package rcon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// WrapperSize is the cumulative size of non-body bytes that contribute to the
// packet size field that precedes a binary packet. Eight bytes are accounted
// for by the request ID and type, while two bytes are accounted for by the
// null byte termination of the body and packet. The packet size field itself
// is not included in the size calculation.
const WrapperSize = 8 + 2

// MaxRequestPayload is the largest body allowed in a client-to-server packet.
// Servers drop or truncate anything larger, so encoding enforces it.
const MaxRequestPayload = 1446

// MaxResponsePayload is the largest body a server sends in a single packet.
// Responses longer than this arrive fragmented across multiple packets.
const MaxResponsePayload = 4096

// MinFrameSize is the smallest number of bytes that can hold a legal frame:
// the size field plus request ID plus type.
const MinFrameSize = 12

const (
	// PacketTypeAuth represents a client authentication request packet. It
	// indicates that the body will contain the server password.
	PacketTypeAuth = 3

	// PacketTypeAuthResponse represents a server authentication response
	// packet. Note that its value matches [PacketTypeExecCommand] rather
	// than [PacketTypeAuth]; this asymmetry is part of the protocol. If
	// authentication failed, the packet ID will have a value of -1 rather
	// than that of the matching client request packet.
	PacketTypeAuthResponse = 2

	// PacketTypeExecCommand represents a client request packet that contains
	// a command to be executed by the server.
	PacketTypeExecCommand = 2

	// PacketTypeResponseValue represents a server response packet that
	// contains the output of a command initiated by a
	// [PacketTypeExecCommand] client request packet.
	PacketTypeResponseValue = 0
)

// Packet is a singular RCON protocol packet, either as a request from a
// client or a response from a server.
type Packet struct {
	// ID is a field chosen by the client which is echoed by the server and
	// can be used to correlate request packets with response packets. The
	// singular case where this field will not match the request packet is
	// auth failure, where it carries the sentinel value -1. In every other
	// case this field should be a non-negative integer.
	ID int32

	// Type indicates the purpose of the packet. Its value should always be
	// one of [PacketTypeAuth], [PacketTypeAuthResponse],
	// [PacketTypeExecCommand], or [PacketTypeResponseValue].
	Type int32

	// Body contains the data relevant to the provided packet type: the RCON
	// password, the command to be executed, or the server's response to a
	// request. It's possible that the body is empty. Bodies of decoded
	// packets have trailing null bytes stripped.
	Body []byte
}

// Text returns the packet body as a string. Server output is not guaranteed
// to be valid UTF-8, so invalid byte sequences are substituted with the
// Unicode replacement character rather than failing.
func (p Packet) Text() string {
	return strings.ToValidUTF8(string(p.Body), string(utf8.RuneError))
}

// MarshalBinary encodes the receiving [Packet] into binary form and returns
// the result. This satisfies the [encoding.BinaryMarshaler] interface. It
// fails with [ErrPayloadTooLarge] when the body exceeds [MaxRequestPayload]
// bytes.
func (p Packet) MarshalBinary() ([]byte, error) {
	if len(p.Body) > MaxRequestPayload {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(p.Body), MaxRequestPayload)
	}

	// Create an appropriately sized byte buffer and write the binary encoded
	// packet.
	packetSize := int32(len(p.Body) + WrapperSize)
	b := bytes.NewBuffer(make([]byte, 0, packetSize+4))
	err := binary.Write(b, binary.LittleEndian, packetSize)
	if err != nil {
		return nil, err
	}
	err = binary.Write(b, binary.LittleEndian, p.ID)
	if err != nil {
		return nil, err
	}
	err = binary.Write(b, binary.LittleEndian, p.Type)
	if err != nil {
		return nil, err
	}
	_, err = b.Write(p.Body)
	if err != nil {
		return nil, err
	}
	// Body null terminator, then packet padding byte.
	_, err = b.Write([]byte{0, 0})
	if err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// WriteTo writes a binary representation of the packet to [io.Writer] w.
// This method satisfies the [io.WriterTo] interface.
func (p Packet) WriteTo(w io.Writer) (int64, error) {
	bs, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(bs)

	return int64(n), err
}

// UnmarshalBinary decodes the binary encoded packet b into the receiving
// [Packet]. This satisfies the [encoding.BinaryUnmarshaler] interface. It
// fails with [ErrTruncated] when b is shorter than [MinFrameSize] bytes and
// with [ErrLengthMismatch] when the declared size field disagrees with the
// actual length of b.
func (p *Packet) UnmarshalBinary(b []byte) error {
	if len(b) < MinFrameSize {
		return fmt.Errorf("%w: %d bytes (minimum %d)", ErrTruncated, len(b), MinFrameSize)
	}

	packetSize := int32(binary.LittleEndian.Uint32(b[0:4]))
	if packetSize < WrapperSize {
		return fmt.Errorf("%w: declared size %d below minimum %d", ErrProtocol, packetSize, WrapperSize)
	}
	if int(packetSize)+4 != len(b) {
		return fmt.Errorf("%w: declared %d bytes, got %d", ErrLengthMismatch, packetSize+4, len(b))
	}

	p.ID = int32(binary.LittleEndian.Uint32(b[4:8]))
	p.Type = int32(binary.LittleEndian.Uint32(b[8:12]))

	// Everything between the header and the end of the frame is body; the
	// two terminator bytes are covered by stripping trailing nulls, which
	// also tolerates servers that pad bodies with extra nulls.
	p.Body = bytes.TrimRight(b[12:], "\x00")
	if len(p.Body) == 0 {
		p.Body = nil
	}

	return nil
}

// ReadFrom reads a binary representation of a packet from r into the
// receiving [Packet] instance. It reads the four byte size prefix, rejects
// implausible sizes with [ErrProtocol], then reads exactly the declared
// number of bytes. This method satisfies the [io.ReaderFrom] interface.
func (p *Packet) ReadFrom(r io.Reader) (int64, error) {
	// Keep track of bytes read.
	n := int64(0)

	var sizeField [4]byte
	read, err := io.ReadFull(r, sizeField[:])
	n += int64(read)
	if err != nil {
		return n, err
	}

	packetSize := int32(binary.LittleEndian.Uint32(sizeField[:]))

	// Ensure the packet size isn't smaller than allowed by the protocol.
	if packetSize < WrapperSize {
		return n, fmt.Errorf("%w: frame size %d below minimum %d", ErrProtocol, packetSize, WrapperSize)
	}

	// Ensure the packet size isn't implausibly large. A response body caps
	// out at MaxResponsePayload bytes per fragment.
	if packetSize > MaxResponsePayload+WrapperSize {
		return n, fmt.Errorf("%w: frame size %d above maximum %d", ErrProtocol, packetSize, MaxResponsePayload+WrapperSize)
	}

	frame := make([]byte, 4+packetSize)
	copy(frame, sizeField[:])
	read, err = io.ReadFull(r, frame[4:])
	n += int64(read)
	if err != nil {
		return n, err
	}

	return n, p.UnmarshalBinary(frame)
}

// Clone returns a deep copy of the receiving packet.
func (p Packet) Clone() Packet {
	p2 := Packet{
		ID:   p.ID,
		Type: p.Type,
	}
	if p.Body != nil {
		p2.Body = make([]byte, len(p.Body))
		copy(p2.Body, p.Body)
	}
	return p2
}

// EqualTo determines if the provided Packet content matches the receiving
// Packet content.
func (p Packet) EqualTo(p2 Packet) bool {
	switch {
	case p.ID != p2.ID:
		return false
	case p.Type != p2.Type:
		return false
	case !bytes.Equal(p.Body, p2.Body):
		return false
	}
	return true
}
