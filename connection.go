package ssdb

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/shelocks/ssdb/proto"
)

// ConnState is the lifecycle state of a Connection.
type ConnState int32

const (
	// StateDisconnected: no socket. The initial state, and the state after
	// Close.
	StateDisconnected ConnState = iota

	// StateConnected: socket open, stream in sync, requests accepted.
	StateConnected

	// StateBroken: an I/O error or framing violation left the stream
	// unusable. Only an explicit Reconnect leaves this state; nothing
	// reconnects implicitly mid-call, because a half-read frame cannot be
	// resumed against a fresh socket.
	StateBroken
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateBroken:
		return "broken"
	}
	return "unknown"
}

var (
	errBroken       = errors.New("connection is broken, reconnect required")
	errDisconnected = errors.New("connection is closed")
	errConnected    = errors.New("reconnect on a live connection")
)

// Connection owns a single TCP socket to an SSDB server and runs one
// request/reply exchange at a time over it.
//
// The protocol carries no request identifiers, so a second request written
// before the first reply is fully read would desynchronize decoding for good.
// Do serializes exchanges with an internal mutex held for the whole
// round-trip; concurrency comes from more connections, not more in-flight
// requests.
type Connection struct {
	addr           string
	connectTimeout time.Duration
	readTimeout    time.Duration

	mu       sync.Mutex
	conn     net.Conn
	reader   *bufio.Reader
	state    ConnState
	lastUsed time.Time
}

// Dial opens a TCP connection to addr (host:port) and returns it in the
// Connected state. connectTimeout bounds the dial; readTimeout bounds each
// exchange on connections used without a context deadline. Zero means no
// limit.
func Dial(addr string, connectTimeout, readTimeout time.Duration) (*Connection, error) {
	c := &Connection{
		addr:           addr,
		connectTimeout: connectTimeout,
		readTimeout:    readTimeout,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dialLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewConnection wraps an already established net.Conn in a Connected
// Connection. Reconnect will re-dial the conn's remote address.
func NewConnection(conn net.Conn, readTimeout time.Duration) *Connection {
	return &Connection{
		addr:        conn.RemoteAddr().String(),
		readTimeout: readTimeout,
		conn:        conn,
		reader:      bufio.NewReader(conn),
		state:       StateConnected,
		lastUsed:    time.Now(),
	}
}

func (c *Connection) dialLocked() error {
	conn, err := net.DialTimeout("tcp", c.addr, c.connectTimeout)
	if err != nil {
		return &proto.ConnError{Op: "dial", Err: err}
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.state = StateConnected
	c.lastUsed = time.Now()
	return nil
}

// Do runs one command exchange: encode, write, read one full reply frame,
// interpret per shape. It blocks until the reply is decoded or the deadline
// (from ctx, falling back to the read timeout) elapses.
//
// On any I/O failure, timeout or framing violation the connection transitions
// to Broken and the error surfaces as a ConnError; the caller must Reconnect
// or discard. DecodeError and ServerError pass through with the connection
// still Connected, since the reply frame was correctly consumed.
//
// A Broken or Disconnected connection rejects the call immediately without
// touching the socket.
func (c *Connection) Do(ctx context.Context, req *proto.Request, shape proto.Shape) (proto.Result, error) {
	if err := ctx.Err(); err != nil {
		return proto.Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateConnected:
	case StateBroken:
		return proto.Result{}, &proto.ConnError{Op: "do", Err: errBroken}
	default:
		return proto.Result{}, &proto.ConnError{Op: "do", Err: errDisconnected}
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else if c.readTimeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.readTimeout))
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	if err := proto.WriteRequest(c.conn, req); err != nil {
		var encodeErr *proto.EncodeError
		if errors.As(err, &encodeErr) {
			// Nothing reached the wire; the stream is still in sync.
			return proto.Result{}, err
		}
		c.markBroken()
		return proto.Result{}, &proto.ConnError{Op: "write", Err: err}
	}

	// An empty frame is the server's "no reply yet"; keep reading until a
	// frame with fields arrives.
	var fields [][]byte
	for len(fields) == 0 {
		var err error
		fields, err = proto.ReadReply(c.reader)
		if err != nil {
			c.markBroken()
			return proto.Result{}, &proto.ConnError{Op: "read", Err: err}
		}
	}

	result, err := proto.Interpret(fields, shape)
	if err != nil {
		if proto.ShouldCloseConnection(err) {
			c.markBroken()
			return result, &proto.ConnError{Op: "read", Err: err}
		}
		// Recoverable per-call failure; the connection stays usable.
		c.lastUsed = time.Now()
		return result, err
	}

	c.lastUsed = time.Now()
	return result, nil
}

// markBroken tears down the socket and records the Broken state.
// Must be called with the mutex held.
func (c *Connection) markBroken() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.reader = nil
	}
	c.state = StateBroken
}

// Close shuts the socket down and moves to Disconnected. Idempotent and safe
// from any state.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Connection) closeLocked() error {
	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
		c.reader = nil
	}
	c.state = StateDisconnected
	return err
}

// Reconnect re-dials with the original address and timeouts. Valid only from
// Broken or Disconnected; a live connection is left untouched.
func (c *Connection) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnected {
		return &proto.ConnError{Op: "reconnect", Err: errConnected}
	}

	c.closeLocked()
	return c.dialLocked()
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Addr returns the server address this connection targets.
func (c *Connection) Addr() string {
	return c.addr
}

// LastUsed returns when the connection last completed an exchange.
func (c *Connection) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}
