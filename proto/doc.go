// Package proto implements the SSDB wire protocol.
//
// This package serves as a foundation for building higher-level SSDB clients
// with different properties (connection pooling, batching, etc.). It focuses
// on correctness of serialization and parsing without imposing architectural
// decisions on clients.
//
// # Wire format
//
// A request or reply is a frame: a sequence of blocks followed by an empty
// line. Each block is the decimal byte length of its payload, a newline, the
// payload itself, and a newline:
//
//	3
//	get
//	3
//	foo
//	<empty line>
//
// Payloads are opaque byte strings. They may contain newlines or NUL bytes;
// the length prefix makes that safe.
//
// # Serialization and parsing
//
// WriteRequest serializes a request to wire format:
//
//	req, err := proto.NewRequest("set", "foo", "bar")
//	err = proto.WriteRequest(conn, req)
//
// ReadReply parses one reply frame from wire format:
//
//	fields, err := proto.ReadReply(bufio.NewReader(conn))
//	if err != nil {
//	    if proto.ShouldCloseConnection(err) {
//	        conn.Close()
//	    }
//	    return err
//	}
//
// # Interpreting replies
//
// The wire format alone cannot tell a list of four strings from two key/value
// pairs, so the caller supplies the Shape the issuing command expects:
//
//	result, err := proto.Interpret(fields, proto.ShapePairs)
//
// # Error handling
//
// All failures are typed. ProtocolError and ConnError mean the stream is no
// longer trustworthy and the connection must be discarded; DecodeError and
// ServerError are per-call failures that leave the connection usable. Use
// ShouldCloseConnection to pick the right handling without type switches.
package proto
