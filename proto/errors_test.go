package proto

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldCloseConnection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "encode", err: &EncodeError{Message: "bad arg"}, want: false},
		{name: "decode", err: &DecodeError{Message: "odd pairs"}, want: false},
		{name: "server", err: &ServerError{Status: StatusError}, want: false},
		{name: "protocol", err: &ProtocolError{Message: "bad length"}, want: true},
		{name: "connection", err: &ConnError{Op: "read", Err: io.EOF}, want: true},
		{name: "wrapped protocol", err: fmt.Errorf("call failed: %w", &ProtocolError{Message: "x"}), want: true},
		{name: "unknown error is fatal", err: errors.New("mystery"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldCloseConnection(tt.err))
		})
	}
}

func TestConnErrorUnwrapsProtocolError(t *testing.T) {
	// A ProtocolError escalated to a ConnError stays visible to errors.As.
	inner := &ProtocolError{Message: "stream truncated"}
	err := error(&ConnError{Op: "read", Err: inner})

	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
	assert.True(t, ShouldCloseConnection(err))
}

func TestServerErrorMessage(t *testing.T) {
	assert.Equal(t, "ssdb: server returned fail", (&ServerError{Status: StatusFail}).Error())
	assert.Equal(t, "ssdb: server returned client_error: bad argument",
		(&ServerError{Status: StatusClientError, Message: "bad argument"}).Error())
}
