package rcon_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/craftnet/rcon"
)

// testServer is a minimal RCON server on a loopback listener. It accepts any
// number of connections, performs the handshake against its password, and
// answers command packets via respond. When respond is nil, commands are
// echoed back prefixed with "ran: ".
type testServer struct {
	ln       net.Listener
	password string
	respond  func(req rcon.Packet) []rcon.Packet

	mu    sync.Mutex
	conns []net.Conn
}

func startTestServer(t *testing.T, password string, respond func(req rcon.Packet) []rcon.Packet) *testServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to open loopback listener")

	s := &testServer{ln: ln, password: password, respond: respond}
	go s.acceptLoop()
	t.Cleanup(func() { _ = ln.Close() })

	return s
}

func (s *testServer) addr() string { return s.ln.Addr().String() }

func (s *testServer) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go s.serve(conn)
	}
}

// dropConns closes every accepted connection, simulating a server restart.
func (s *testServer) dropConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
}

func (s *testServer) serve(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	for {
		var req rcon.Packet
		if _, err := req.ReadFrom(conn); err != nil {
			return
		}

		var resps []rcon.Packet
		switch {
		case req.Type == rcon.PacketTypeAuth:
			id := req.ID
			if string(req.Body) != s.password {
				id = -1
			}
			resps = []rcon.Packet{{ID: id, Type: rcon.PacketTypeAuthResponse}}

		case s.respond != nil:
			resps = s.respond(req)

		default:
			resps = []rcon.Packet{{
				ID:   req.ID,
				Type: rcon.PacketTypeResponseValue,
				Body: append([]byte("ran: "), req.Body...),
			}}
		}

		for _, resp := range resps {
			// Responses are framed by hand: the client codec caps outgoing
			// bodies at the request limit, but a server may legitimately
			// send fragments up to MaxResponsePayload.
			if _, err := conn.Write(encodeFrame(resp)); err != nil {
				return
			}
		}
	}
}

// encodeFrame builds a server-side wire frame for p without the client's
// request size cap.
func encodeFrame(p rcon.Packet) []byte {
	size := int32(len(p.Body) + 10)
	buf := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	return buf
}

func testConfig(addr string) rcon.Config {
	return rcon.Config{
		Address:  addr,
		Password: "hunter2",
		Timeout:  5 * time.Second,
	}
}

func TestSessionConnectAndExecute(t *testing.T) {
	srv := startTestServer(t, "hunter2", nil)

	s, err := rcon.Connect(testConfig(srv.addr()))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	out, err := s.Execute("time set day")
	require.NoError(t, err)
	require.Equal(t, "ran: time set day", out)

	// The session is reusable for further commands.
	out, err = s.Execute("weather clear")
	require.NoError(t, err)
	require.Equal(t, "ran: weather clear", out)
}

func TestSessionConnectBadPassword(t *testing.T) {
	srv := startTestServer(t, "hunter2", nil)

	cfg := testConfig(srv.addr())
	cfg.Password = "wrong"
	_, err := rcon.Connect(cfg)
	require.ErrorIs(t, err, rcon.ErrAuthenticationFailed)
}

func TestSessionExecuteFragmented(t *testing.T) {
	first := bytes.Repeat([]byte{'p'}, rcon.MaxResponsePayload)
	srv := startTestServer(t, "hunter2", func(req rcon.Packet) []rcon.Packet {
		return []rcon.Packet{
			{ID: req.ID, Type: rcon.PacketTypeResponseValue, Body: first},
			{ID: req.ID, Type: rcon.PacketTypeResponseValue, Body: []byte("end")},
		}
	})

	s, err := rcon.Connect(testConfig(srv.addr()))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	out, err := s.Execute("list uuids")
	require.NoError(t, err)
	require.Len(t, out, rcon.MaxResponsePayload+3)
	require.True(t, strings.HasSuffix(out, "end"))
}

func TestSessionPing(t *testing.T) {
	var pinged string
	srv := startTestServer(t, "hunter2", func(req rcon.Packet) []rcon.Packet {
		pinged = string(req.Body)
		return []rcon.Packet{{ID: req.ID, Type: rcon.PacketTypeResponseValue, Body: []byte("players online: 0")}}
	})

	s, err := rcon.Connect(testConfig(srv.addr()))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Ping())
	require.Equal(t, "list", pinged, "ping must use a low-impact command")
	require.True(t, s.Alive())
}

func TestSessionFaultsOnNetworkError(t *testing.T) {
	srv := startTestServer(t, "hunter2", nil)

	s, err := rcon.Connect(testConfig(srv.addr()))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	// Drop the connection out from under the session, as a server restart
	// would. The write may land in the OS buffer, but the read side fails.
	srv.dropConns()
	_, err = s.Execute("list")
	require.Error(t, err)

	// Once faulted, further commands are refused without touching the wire.
	_, err = s.Execute("list")
	require.ErrorIs(t, err, rcon.ErrDisconnected)
	require.False(t, s.Alive())
}

func TestSessionReconnect(t *testing.T) {
	srv := startTestServer(t, "hunter2", nil)

	s, err := rcon.Connect(testConfig(srv.addr()))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	// A fresh connection means a fresh handshake and a reset request ID
	// counter; the session must come back ready.
	require.NoError(t, s.Reconnect())

	out, err := s.Execute("list")
	require.NoError(t, err)
	require.Equal(t, "ran: list", out)
}

func TestSessionCloseRefusesExecute(t *testing.T) {
	srv := startTestServer(t, "hunter2", nil)

	s, err := rcon.Connect(testConfig(srv.addr()))
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, err = s.Execute("list")
	require.ErrorIs(t, err, rcon.ErrDisconnected)
}

func TestSessionOversizedCommandDoesNotFault(t *testing.T) {
	srv := startTestServer(t, "hunter2", nil)

	s, err := rcon.Connect(testConfig(srv.addr()))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Execute(strings.Repeat("x", rcon.MaxRequestPayload+1))
	require.ErrorIs(t, err, rcon.ErrPayloadTooLarge)

	// The oversized command never reached the wire, so the session is still
	// usable.
	out, err := s.Execute("list")
	require.NoError(t, err)
	require.Equal(t, "ran: list", out)
}

func TestSessionAddr(t *testing.T) {
	srv := startTestServer(t, "hunter2", nil)

	s, err := rcon.Connect(testConfig(srv.addr()))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.Equal(t, srv.addr(), s.Addr())
}

func TestConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = rcon.Connect(testConfig(addr))
	require.Error(t, err)
	require.False(t, errors.Is(err, rcon.ErrAuthenticationFailed))
}
