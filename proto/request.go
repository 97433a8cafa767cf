package proto

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// Request represents an SSDB command: an ordered sequence of byte-string
// fields whose first element is the command name. It is a pure data container
// without serialization state; build one per call and discard it.
type Request struct {
	Fields [][]byte
}

// NewRequest builds a Request from a command name and native argument values.
//
// Supported argument types, converted the way redis clients conventionally do:
//
//	string, []byte          used as-is
//	int, int8..int64        canonical decimal text
//	uint, uint8..uint64     canonical decimal text
//	float32, float64        shortest decimal text ('g' format)
//	bool                    "1" or "0"
//	fmt.Stringer            its String() value
//
// Any other type fails with EncodeError before anything touches the wire.
func NewRequest(cmd string, args ...any) (*Request, error) {
	if cmd == "" {
		return nil, &EncodeError{Message: "empty command name"}
	}

	fields := make([][]byte, 0, len(args)+1)
	fields = append(fields, []byte(cmd))

	for i, arg := range args {
		b, err := appendArg(arg)
		if err != nil {
			return nil, &EncodeError{Message: fmt.Sprintf("%s: argument %d: %s", cmd, i, err)}
		}
		fields = append(fields, b)
	}

	return &Request{Fields: fields}, nil
}

// Command returns the command name, or "" for a malformed empty request.
func (r *Request) Command() string {
	if len(r.Fields) == 0 {
		return ""
	}
	return string(r.Fields[0])
}

func appendArg(arg any) ([]byte, error) {
	switch v := arg.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case int:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int8:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int16:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(v), 10), nil
	case int64:
		return strconv.AppendInt(nil, v, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint8:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint16:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(v), 10), nil
	case uint64:
		return strconv.AppendUint(nil, v, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
	case bool:
		if v {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", arg)
	}
}

// Buffer pool for building requests. A typical request is well under 256
// bytes; oversized buffers are dropped instead of pooled.
var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

const maxPooledBuffer = 64 << 10

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}

// WriteRequest serializes req to wire format and writes it to w.
//
// Each field becomes `<decimal length>\n<bytes>\n`; the frame ends with a
// bare newline. The length is the exact byte count, so fields may contain
// newlines or any other byte.
//
// When w is a bufio.Writer the frame is assembled directly into its buffer
// and flushed. For other writers the frame is staged in a pooled buffer and
// written out whole, retrying on partial writes.
func WriteRequest(w io.Writer, req *Request) error {
	if len(req.Fields) == 0 {
		return &EncodeError{Message: "empty request"}
	}

	if bw, ok := w.(*bufio.Writer); ok {
		return writeRequestBuffered(bw, req)
	}
	return writeRequestUnbuffered(w, req)
}

func writeRequestBuffered(bw *bufio.Writer, req *Request) error {
	for _, field := range req.Fields {
		var lenBuf [20]byte
		bw.Write(strconv.AppendInt(lenBuf[:0], int64(len(field)), 10))
		bw.WriteByte('\n')
		bw.Write(field)
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

func writeRequestUnbuffered(w io.Writer, req *Request) error {
	buf := getBuffer()
	defer putBuffer(buf)

	for _, field := range req.Fields {
		var lenBuf [20]byte
		buf.Write(strconv.AppendInt(lenBuf[:0], int64(len(field)), 10))
		buf.WriteByte('\n')
		buf.Write(field)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	// Loop on partial writes so transports that accept small chunks still
	// receive the full frame.
	data := buf.Bytes()
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrNoProgress
		}
		data = data[n:]
	}
	return nil
}
