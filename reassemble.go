package rcon

import (
	"fmt"
	"log/slog"
	"strings"
)

// maxResponsePackets bounds the number of packets one logical response may
// span, guarding against a misbehaving server streaming fragments forever.
const maxResponsePackets = 100

// packetReader is the read side of a [Conn], abstracted so reassembly can be
// tested against canned packet sequences.
type packetReader interface {
	readPacket() (Packet, error)
}

// reassemble folds a possibly fragmented command response into one logical
// string.
//
// Packets carrying a different request ID are late responses to prior
// requests; the protocol offers no way to avoid them except draining and
// filtering, so they are logged and skipped. A packet of any type other than
// [PacketTypeResponseValue] for the expected ID fails with [ErrProtocol]. A
// fragment body shorter than [MaxResponsePayload] marks the end of the
// logical response; a full-size body means another fragment follows.
func reassemble(r packetReader, expectedID int32, logger *slog.Logger) (string, error) {
	var full strings.Builder
	received := 0

	for {
		pkt, err := r.readPacket()
		if err != nil {
			return "", err
		}
		received++

		if pkt.ID != expectedID {
			if logger != nil {
				logger.Warn(
					"discarding packet with unexpected request ID",
					slog.Int("id", int(pkt.ID)),
					slog.Int("expected", int(expectedID)),
				)
			}
			continue
		}

		if pkt.Type != PacketTypeResponseValue {
			return "", fmt.Errorf("%w: expected response value, got packet type %d", ErrProtocol, pkt.Type)
		}

		full.WriteString(pkt.Text())

		if len(pkt.Body) < MaxResponsePayload {
			return full.String(), nil
		}

		if received > maxResponsePackets {
			return "", fmt.Errorf("%w: too many response packets for one command", ErrProtocol)
		}
	}
}

// readResponse runs reassembly against the connection's own packet stream.
func (c *Conn) readResponse(expectedID int32) (string, error) {
	return reassemble(c, expectedID, c.logger)
}
