package apiclient_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/macropad/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal VIIPER API endpoint. Management requests are
// answered by respond; requests for which isStream returns true stay open
// and everything written to them is collected.
type fakeServer struct {
	t        *testing.T
	ln       net.Listener
	password string
	respond  func(req string) string
	isStream func(req string) bool
	feedback []byte

	mu       sync.Mutex
	requests []string
	streamed bytes.Buffer
}

func startFakeServer(t *testing.T, password string, respond func(req string) string, opts ...func(*fakeServer)) *fakeServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{t: t, ln: ln, password: password, respond: respond, isStream: func(string) bool { return false }}
	for _, o := range opts {
		o(s)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

func (s *fakeServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	if s.password != "" {
		secured, err := serverHandshake(conn, s.password)
		if err != nil {
			return
		}
		conn = secured
	}

	req, err := readRequest(conn)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.isStream(req) {
		if len(s.feedback) > 0 {
			_, _ = conn.Write(s.feedback)
		}
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			s.mu.Lock()
			s.streamed.Write(buf[:n])
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
	_, _ = conn.Write([]byte(s.respond(req) + "\n"))
}

func (s *fakeServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *fakeServer) streamBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.streamed.Bytes()...)
}

func readRequest(conn net.Conn) (string, error) {
	var buf []byte
	var tmp [1]byte
	for {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, err := conn.Read(tmp[:]); err != nil {
			return "", err
		}
		if tmp[0] == '\x00' {
			_ = conn.SetReadDeadline(time.Time{})
			return string(buf), nil
		}
		buf = append(buf, tmp[0])
	}
}

// serverHandshake is the server half of the authentication handshake.
func serverHandshake(conn net.Conn, password string) (net.Conn, error) {
	key, err := apiclient.DeriveKey(password)
	if err != nil {
		return nil, err
	}
	hello := make([]byte, len(apiclient.HandshakeMagic)+apiclient.NonceSize+32)
	if _, err := io.ReadFull(conn, hello); err != nil {
		return nil, err
	}
	if string(hello[:len(apiclient.HandshakeMagic)]) != apiclient.HandshakeMagic {
		return nil, errors.New("bad magic")
	}
	clientNonce := hello[len(apiclient.HandshakeMagic) : len(apiclient.HandshakeMagic)+apiclient.NonceSize]
	mac := hello[len(apiclient.HandshakeMagic)+apiclient.NonceSize:]
	if !hmac.Equal(mac, apiclient.ClientAuth(key, clientNonce)) {
		return nil, errors.New("bad auth")
	}

	serverNonce := make([]byte, apiclient.NonceSize)
	if _, err := rand.Read(serverNonce); err != nil {
		return nil, err
	}
	if _, err := conn.Write(append([]byte("OK\x00"), serverNonce...)); err != nil {
		return nil, err
	}
	return apiclient.WrapConn(conn, apiclient.DeriveSessionKey(key, serverNonce, clientNonce))
}

func TestTransportPayloadEncoding(t *testing.T) {
	type S struct {
		A int    `json:"a"`
		B string `json:"b"`
	}
	cases := []struct {
		name    string
		payload any
		want    string
	}{
		{name: "nil payload", payload: nil, want: "echo"},
		{name: "empty string payload", payload: "", want: "echo"},
		{name: "bytes payload", payload: []byte("rawbytes"), want: "echo rawbytes"},
		{name: "string payload", payload: "hello world", want: "echo hello world"},
		{name: "string payload with newline", payload: "multi\nline", want: "echo multi\nline"},
		{name: "struct payload json marshaled", payload: S{A: 7, B: "zzz"}, want: `echo {"a":7,"b":"zzz"}`},
	}

	srv := startFakeServer(t, "", func(string) string { return "ok" })
	tr := apiclient.NewTransport(srv.addr(), nil)
	for i, tc := range cases {
		out, err := tr.DoCtx(t.Context(), "echo", tc.payload, nil)
		require.NoError(t, err, tc.name)
		assert.Equal(t, "ok", out, tc.name)
		require.Eventually(t, func() bool { return len(srv.seen()) == i+1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, tc.want, srv.seen()[i], tc.name)
	}
}

func TestTransportPathParams(t *testing.T) {
	srv := startFakeServer(t, "", func(string) string { return "{}" })
	tr := apiclient.NewTransport(srv.addr(), nil)
	_, err := tr.DoCtx(t.Context(), "Bus/{id}/List", nil, map[string]string{"id": "7"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(srv.seen()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "bus/7/list", srv.seen()[0])
}

func TestTransportMultiLineResponse(t *testing.T) {
	srv := startFakeServer(t, "", func(string) string { return "{\n  \"a\": 1,\n  \"b\": 2\n}" })
	out, err := apiclient.NewTransport(srv.addr(), nil).DoCtx(t.Context(), "echo", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}", out)
}

func TestEncryptedTransport(t *testing.T) {
	echo := func(req string) string { return req }

	cases := []struct {
		name    string
		client  string
		server  func(t *testing.T) string
		wantErr string
	}{
		{
			name:   "success",
			client: "test123",
			server: func(t *testing.T) string { return startFakeServer(t, "test123", echo).addr() },
		},
		{
			name:    "wrong password",
			client:  "wrongpass",
			server:  func(t *testing.T) string { return startFakeServer(t, "test123", echo).addr() },
			wantErr: "401 Unauthorized: invalid password",
		},
		{
			name:   "bad handshake response",
			client: "test123",
			server: func(t *testing.T) string {
				return rawServer(t, func(conn net.Conn) {
					_, _ = io.ReadFull(conn, make([]byte, 69))
					_, _ = conn.Write([]byte("NO\x00" + strings.Repeat("x", 32)))
				})
			},
			wantErr: "invalid handshake response",
		},
		{
			name:   "problem response during handshake",
			client: "test123",
			server: func(t *testing.T) string {
				return rawServer(t, func(conn net.Conn) {
					_, _ = io.ReadFull(conn, make([]byte, 69))
					b, _ := json.Marshal(map[string]any{"status": 403, "title": "Forbidden", "detail": "no"})
					_, _ = conn.Write(append(b, '\n'))
				})
			},
			wantErr: "403 Forbidden: no",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := apiclient.NewTransport(tc.server(t), &apiclient.Config{
				DialTimeout:  time.Second,
				ReadTimeout:  2 * time.Second,
				WriteTimeout: 2 * time.Second,
				Password:     tc.client,
			})
			out, err := tr.DoCtx(t.Context(), "echo", "hi", nil)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "echo hi", out)
		})
	}
}

func rawServer(t *testing.T, handle func(conn net.Conn)) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()
	return ln.Addr().String()
}

func TestDeriveKey(t *testing.T) {
	_, err := apiclient.DeriveKey("")
	assert.Error(t, err)

	a, err := apiclient.DeriveKey("pw")
	require.NoError(t, err)
	b, err := apiclient.DeriveKey("pw")
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.Equal(t, a, b)

	s1 := apiclient.DeriveSessionKey(a, []byte("s"), []byte("c"))
	s2 := apiclient.DeriveSessionKey(a, []byte("c"), []byte("s"))
	assert.NotEqual(t, s1, s2)
}

func TestWrapConnRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	left, right := net.Pipe()
	defer left.Close()
	defer right.Close()

	a, err := apiclient.WrapConn(left, key)
	require.NoError(t, err)
	b, err := apiclient.WrapConn(right, key)
	require.NoError(t, err)

	go func() {
		_, _ = a.Write([]byte("hello"))
		_, _ = a.Write([]byte(" world"))
	}()
	got := make([]byte, 11)
	_, err = io.ReadFull(b, got)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}
