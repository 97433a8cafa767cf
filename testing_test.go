package ssdb

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shelocks/ssdb/proto"
)

// frame builds the wire bytes for a sequence of fields.
func frame(fields ...string) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(strconv.Itoa(len(f)))
		sb.WriteByte('\n')
		sb.WriteString(f)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func okFrame(fields ...string) string {
	return frame(append([]string{"ok"}, fields...)...)
}

// fakeServer is an in-process SSDB endpoint that answers each request frame
// with the next scripted reply (raw wire bytes). An empty reply string makes
// it close the connection instead of answering.
type fakeServer struct {
	t  *testing.T
	ln net.Listener

	mu       sync.Mutex
	replies  []string
	requests [][]string
}

func newFakeServer(t *testing.T, replies ...string) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start fake server: %v", err)
	}

	s := &fakeServer{t: t, ln: ln, replies: replies}
	go s.acceptLoop()
	t.Cleanup(s.Close)
	return s
}

func (s *fakeServer) acceptLoop() {
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
	reader := bufio.NewReader(conn)

	for {
		fields, err := proto.ReadReply(reader)
		if err != nil {
			return
		}

		s.mu.Lock()
		request := make([]string, len(fields))
		for i, f := range fields {
			request[i] = string(f)
		}
		s.requests = append(s.requests, request)

		var reply string
		if len(s.replies) > 0 {
			reply = s.replies[0]
			s.replies = s.replies[1:]
		}
		s.mu.Unlock()

		if reply == "" {
			return
		}
		if _, err := conn.Write([]byte(reply)); err != nil {
			return
		}
	}
}

func (s *fakeServer) Addr() string {
	return s.ln.Addr().String()
}

// Requests returns the request frames received so far.
func (s *fakeServer) Requests() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *fakeServer) Close() {
	s.ln.Close()
}

// newHangServer returns the address of a listener that accepts connections
// and then never reads or writes, for exercising deadlines.
func newHangServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start hang server: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()
	return ln.Addr().String()
}

// newTestClient builds a client whose pool dials the fake server.
func newTestClient(t *testing.T, s *fakeServer, config Config) *Client {
	t.Helper()

	addr := s.Addr()
	config.constructor = func(ctx context.Context) (*Connection, error) {
		return Dial(addr, time.Second, time.Second)
	}

	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

// mustRequest builds a request or fails the test.
func mustRequest(t *testing.T, cmd string, args ...any) *proto.Request {
	t.Helper()
	req, err := proto.NewRequest(cmd, args...)
	if err != nil {
		t.Fatalf("NewRequest(%s) error = %v", cmd, err)
	}
	return req
}
