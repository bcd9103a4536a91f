package rcon

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// scriptedReader feeds a canned sequence of packets to reassembly and counts
// how many reads were taken.
type scriptedReader struct {
	packets []Packet
	reads   int
}

func (r *scriptedReader) readPacket() (Packet, error) {
	if r.reads >= len(r.packets) {
		return Packet{}, io.EOF
	}
	p := r.packets[r.reads]
	r.reads++
	return p, nil
}

func fragment(id int32, body []byte) Packet {
	return Packet{ID: id, Type: PacketTypeResponseValue, Body: body}
}

func TestReassembleFragmentedResponse(t *testing.T) {
	first := bytes.Repeat([]byte{'a'}, MaxResponsePayload)
	second := bytes.Repeat([]byte{'b'}, MaxResponsePayload)
	last := bytes.Repeat([]byte{'c'}, 120)

	r := &scriptedReader{packets: []Packet{
		fragment(7, first),
		fragment(7, second),
		fragment(7, last),
	}}

	got, err := reassemble(r, 7, nil)
	if err != nil {
		t.Fatalf("reassembly failed unexpectedly: %s", err)
	}

	want := string(first) + string(second) + string(last)
	if got != want {
		t.Fatalf("reassembled %d bytes, want %d", len(got), len(want))
	}
	if r.reads != 3 {
		t.Fatalf("reassembly took %d reads, want exactly 3", r.reads)
	}
}

func TestReassembleSingleShortPacket(t *testing.T) {
	body := bytes.Repeat([]byte{'a'}, MaxResponsePayload-1)
	r := &scriptedReader{packets: []Packet{
		fragment(7, body),
		fragment(7, []byte("must never be read")),
	}}

	got, err := reassemble(r, 7, nil)
	if err != nil {
		t.Fatalf("reassembly failed unexpectedly: %s", err)
	}
	if got != string(body) {
		t.Fatalf("reassembled %d bytes, want %d", len(got), len(body))
	}
	if r.reads != 1 {
		t.Fatalf("reassembly took %d reads, want exactly 1", r.reads)
	}
}

func TestReassembleEmptyResponse(t *testing.T) {
	r := &scriptedReader{packets: []Packet{fragment(7, nil)}}

	got, err := reassemble(r, 7, nil)
	if err != nil {
		t.Fatalf("reassembly failed unexpectedly: %s", err)
	}
	if got != "" {
		t.Fatalf("reassembled %q, want empty string", got)
	}
}

func TestReassembleTooManyFragments(t *testing.T) {
	full := bytes.Repeat([]byte{'a'}, MaxResponsePayload)
	packets := make([]Packet, 0, maxResponsePackets+1)
	for i := 0; i <= maxResponsePackets; i++ {
		packets = append(packets, fragment(7, full))
	}
	r := &scriptedReader{packets: packets}

	_, err := reassemble(r, 7, nil)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("runaway response returned %v, want ErrProtocol", err)
	}
	if r.reads != maxResponsePackets+1 {
		t.Fatalf("reassembly took %d reads before aborting, want %d", r.reads, maxResponsePackets+1)
	}
}

func TestReassembleSkipsStalePackets(t *testing.T) {
	full := bytes.Repeat([]byte{'a'}, MaxResponsePayload)
	stale := Packet{ID: 3, Type: PacketTypeResponseValue, Body: []byte("late answer to an old request")}

	r := &scriptedReader{packets: []Packet{
		fragment(7, full),
		stale,
		fragment(7, []byte("tail")),
	}}

	got, err := reassemble(r, 7, nil)
	if err != nil {
		t.Fatalf("reassembly failed unexpectedly: %s", err)
	}

	want := string(full) + "tail"
	if got != want {
		t.Fatalf("reassembled response does not match: got %d bytes, want %d", len(got), len(want))
	}
	if strings.Contains(got, "late answer") {
		t.Fatal("stale packet body leaked into the reassembled response")
	}
}

func TestReassembleUnexpectedType(t *testing.T) {
	r := &scriptedReader{packets: []Packet{
		{ID: 7, Type: PacketTypeAuthResponse, Body: []byte("nope")},
	}}

	_, err := reassemble(r, 7, nil)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("unexpected packet type returned %v, want ErrProtocol", err)
	}
}

func TestReassemblePropagatesReadErrors(t *testing.T) {
	r := &scriptedReader{}

	_, err := reassemble(r, 7, nil)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("read failure returned %v, want io.EOF", err)
	}
}
