package proto

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for SSDB protocol operations. Each type tells the caller whether
// the connection that produced it is still usable; see ShouldCloseConnection.

// EncodeError is returned when a request argument cannot be converted to a
// byte string. The request is never sent, so the connection is untouched.
type EncodeError struct {
	Message string
}

func (e *EncodeError) Error() string {
	return "ssdb: encode: " + e.Message
}

// ShouldCloseConnection returns false - nothing was written to the wire.
func (e *EncodeError) ShouldCloseConnection() bool {
	return false
}

// ProtocolError is returned when bytes received from the server do not form a
// valid frame, or when a reply carries a status outside the known set. The
// read position within the stream is now unknown, so every subsequent reply
// would be misframed.
//
// Connection handling: CLOSE the connection.
type ProtocolError struct {
	Message string
	Err     error // underlying error, if any
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return "ssdb: protocol: " + e.Message + ": " + e.Err.Error()
	}
	return "ssdb: protocol: " + e.Message
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - the stream is desynchronized.
func (e *ProtocolError) ShouldCloseConnection() bool {
	return true
}

// DecodeError is returned when a reply frame was well-formed but its payload
// does not match the shape the command expects (wrong field count, non-numeric
// integer, odd pair count). The frame was fully consumed off the stream, so
// the connection remains usable.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "ssdb: decode: " + e.Message + ": " + e.Err.Error()
	}
	return "ssdb: decode: " + e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns false - the frame was correctly consumed.
func (e *DecodeError) ShouldCloseConnection() bool {
	return false
}

// ServerError is returned when the server answers with an error status
// (error, fail or client_error). The reply was a valid frame; the connection
// remains usable for further commands.
type ServerError struct {
	Status  string
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "ssdb: server returned " + e.Status
	}
	return "ssdb: server returned " + e.Status + ": " + e.Message
}

// ShouldCloseConnection returns false - error replies don't corrupt framing.
func (e *ServerError) ShouldCloseConnection() bool {
	return false
}

// ConnError wraps socket-level failures: dial errors, timeouts, resets, EOF
// mid-exchange. It is also how a ProtocolError escalates out of a connection,
// in which case Unwrap exposes it.
//
// Connection handling: the connection is broken; CLOSE and reconnect.
type ConnError struct {
	Op  string // operation that failed: dial, write, read, do
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("ssdb: connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - the connection is already broken.
func (e *ConnError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is implemented by all protocol error types to
// indicate whether the connection that produced the error must be closed.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err requires discarding the
// connection it came from.
//
// Returns true for ProtocolError and ConnError, false for EncodeError,
// DecodeError, ServerError and nil. Unknown error types are treated as fatal:
// if we cannot prove the stream is intact, it isn't.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return true
}

// joinFields renders error-reply payload fields as a single message.
func joinFields(fields [][]byte) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, " ")
}
