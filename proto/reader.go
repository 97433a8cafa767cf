package proto

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
)

// MaxBlockSize caps a single block payload. A length line beyond this is
// treated as stream corruption rather than a reason to allocate gigabytes.
const MaxBlockSize = 64 << 20

// ReadReply reads one complete frame from r and returns its fields in wire
// order. It blocks until the terminating empty line arrives.
//
// A frame may legitimately be empty (a bare newline): the returned slice has
// length zero and nil error. Callers below the interpreter treat that as "no
// reply yet" and read again.
//
// Errors:
//   - io.EOF: the connection closed cleanly before any byte of a new frame
//   - ProtocolError: malformed length line, stream truncated mid-frame, or
//     missing block terminator; the stream is desynchronized
//   - other I/O errors (timeouts, resets) pass through untouched
//
// Uses ReadSlice for zero-allocation line reads; payload bytes are read with
// a single io.ReadFull per block.
func ReadReply(r *bufio.Reader) ([][]byte, error) {
	var fields [][]byte

	for {
		line, err := readLine(r)
		if err != nil {
			if err == io.EOF && len(fields) == 0 && len(line) == 0 {
				// Clean close between frames: not corruption.
				return nil, io.EOF
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, &ProtocolError{Message: "stream closed mid-frame", Err: err}
			}
			return nil, err
		}

		// Empty line terminates the frame.
		if len(line) == 0 {
			return fields, nil
		}

		size, err := parseBlockLength(line)
		if err != nil {
			return nil, err
		}

		// Payload plus its trailing newline in one read.
		block := make([]byte, size+1)
		if _, err := io.ReadFull(r, block); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, &ProtocolError{Message: "stream truncated inside block", Err: err}
			}
			return nil, err
		}
		if block[size] != '\n' {
			return nil, &ProtocolError{Message: "block missing newline terminator"}
		}

		fields = append(fields, block[:size])
	}
}

// readLine reads up to the next newline and returns the line without its
// terminator. A lone \r before the \n is tolerated and stripped.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		// Line exceeds the read buffer. ReadSlice already consumed the bytes
		// it returned, so keep them and read the remainder with the
		// allocating read; dropping the prefix would let a corrupt length
		// line be parsed from its tail alone.
		head := append([]byte(nil), line...)
		var tail []byte
		tail, err = r.ReadBytes('\n')
		line = append(head, tail...)
	}
	if err != nil {
		return line, err
	}

	line = line[:len(line)-1]
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, nil
}

// parseBlockLength parses a length line. Only plain decimal digits are
// accepted: a sign, spaces or anything else means the stream is corrupt.
func parseBlockLength(line []byte) (int, error) {
	for _, c := range line {
		if c < '0' || c > '9' {
			return 0, &ProtocolError{Message: "invalid block length " + strconv.Quote(string(line))}
		}
	}

	size, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, &ProtocolError{Message: "invalid block length " + strconv.Quote(string(line)), Err: err}
	}
	if size > MaxBlockSize {
		return 0, &ProtocolError{Message: "block length " + strconv.Itoa(size) + " exceeds limit"}
	}
	return size, nil
}
