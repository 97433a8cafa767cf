package proto

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReader(data string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(data))
}

func TestReadReply(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{
			name: "status only",
			data: "2\nok\n\n",
			want: []string{"ok"},
		},
		{
			name: "status and value",
			data: "2\nok\n3\nbar\n\n",
			want: []string{"ok", "bar"},
		},
		{
			name: "not found",
			data: "9\nnot_found\n\n",
			want: []string{"not_found"},
		},
		{
			name: "scan reply",
			data: "2\nok\n2\nk1\n2\nv1\n2\nk2\n2\nv2\n\n",
			want: []string{"ok", "k1", "v1", "k2", "v2"},
		},
		{
			name: "payload containing newline",
			data: "2\nok\n5\na\nb\nc\n\n",
			want: []string{"ok", "a\nb\nc"},
		},
		{
			name: "payload containing NUL",
			data: "2\nok\n3\n\x00\x01\x02\n\n",
			want: []string{"ok", "\x00\x01\x02"},
		},
		{
			name: "empty payload",
			data: "2\nok\n0\n\n\n",
			want: []string{"ok", ""},
		},
		{
			name: "crlf length lines tolerated",
			data: "2\r\nok\n3\r\nbar\n\r\n",
			want: []string{"ok", "bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ReadReply(newTestReader(tt.data))
			require.NoError(t, err)
			require.Len(t, fields, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, string(fields[i]))
			}
		})
	}
}

func TestReadReplyEmptyFrame(t *testing.T) {
	fields, err := ReadReply(newTestReader("\n"))
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestReadReplyCleanEOF(t *testing.T) {
	// A close between frames is a closed connection, not corruption.
	_, err := ReadReply(newTestReader(""))
	assert.Equal(t, io.EOF, err)
}

func TestReadReplyProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "non-numeric length", data: "abc\nok\n\n"},
		{name: "negative length", data: "-1\nok\n\n"},
		{name: "signed length", data: "+2\nok\n\n"},
		{name: "length with spaces", data: " 2\nok\n\n"},
		{name: "eof inside length line", data: "2\nok\n3"},
		{name: "eof inside payload", data: "2\nok\n5\nba"},
		{name: "eof before block terminator", data: "2\nok"},
		{name: "eof before frame terminator", data: "2\nok\n"},
		{name: "missing block terminator", data: "2\nokX\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadReply(newTestReader(tt.data))
			var protoErr *ProtocolError
			require.ErrorAs(t, err, &protoErr, "got %v", err)
			assert.True(t, ShouldCloseConnection(err))
		})
	}
}

func TestReadReplyLongField(t *testing.T) {
	// A payload larger than the bufio buffer must still arrive intact.
	payload := strings.Repeat("x", 64<<10)
	data := "2\nok\n65536\n" + payload + "\n\n"

	fields, err := ReadReply(bufio.NewReaderSize(strings.NewReader(data), 256))
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, payload, string(fields[1]))
}

func TestReadReplyLongLengthLineRejectedWhole(t *testing.T) {
	// A length line longer than the reader buffer must be judged in full.
	// If the buffered prefix were dropped, the tail alone ("2") would parse
	// as a small valid length and the corrupt stream would be mis-framed
	// silently instead of failing.
	tests := []struct {
		name string
		data string
	}{
		{
			name: "corrupt line with digit tail",
			data: strings.Repeat("a", 16) + "2\nok\n\n",
		},
		{
			name: "oversized digits-only line",
			data: strings.Repeat("1", 17) + "\nx\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReaderSize(strings.NewReader(tt.data), 16)
			_, err := ReadReply(r)
			var protoErr *ProtocolError
			require.ErrorAs(t, err, &protoErr, "got %v", err)
		})
	}
}

func TestReadReplyConsumesExactlyOneFrame(t *testing.T) {
	raw := "2\nok\n1\na\n\n" + "2\nok\n1\nb\n\n"
	r := newTestReader(raw)

	first, err := ReadReply(r)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "a", string(first[1]))

	second, err := ReadReply(r)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "b", string(second[1]))

	_, err = ReadReply(r)
	assert.Equal(t, io.EOF, err)
}

func TestRoundTrip(t *testing.T) {
	// decode(encode(cmd)) must reproduce the fields exactly, including
	// payloads with newlines and NUL bytes.
	args := []any{"key\nwith\nnewlines", []byte{0, 1, 2, '\n', 0}, "", "plain"}

	req, err := NewRequest("multi_set", args...)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, req))

	fields, err := ReadReply(bufio.NewReader(&buf))
	require.NoError(t, err)

	require.Len(t, fields, len(req.Fields))
	for i := range req.Fields {
		assert.Equal(t, string(req.Fields[i]), string(fields[i]))
	}
}
