package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func TestInterpretOK(t *testing.T) {
	tests := []struct {
		name   string
		fields [][]byte
		shape  Shape
		check  func(t *testing.T, r Result)
	}{
		{
			name:   "status only ignores payload",
			fields: fields("ok", "1"),
			shape:  ShapeStatusOnly,
			check:  func(t *testing.T, r Result) { assert.True(t, r.Found) },
		},
		{
			name:   "none ignores payload",
			fields: fields("ok"),
			shape:  ShapeNone,
			check:  func(t *testing.T, r Result) { assert.True(t, r.Found) },
		},
		{
			name:   "scalar",
			fields: fields("ok", "bar"),
			shape:  ShapeScalar,
			check:  func(t *testing.T, r Result) { assert.Equal(t, "bar", r.Str) },
		},
		{
			name:   "integer",
			fields: fields("ok", "5"),
			shape:  ShapeInt,
			check:  func(t *testing.T, r Result) { assert.Equal(t, int64(5), r.Int) },
		},
		{
			name:   "negative integer",
			fields: fields("ok", "-42"),
			shape:  ShapeInt,
			check:  func(t *testing.T, r Result) { assert.Equal(t, int64(-42), r.Int) },
		},
		{
			name:   "float",
			fields: fields("ok", "2.75"),
			shape:  ShapeFloat,
			check:  func(t *testing.T, r Result) { assert.Equal(t, 2.75, r.Float) },
		},
		{
			name:   "boolean true",
			fields: fields("ok", "1"),
			shape:  ShapeBool,
			check:  func(t *testing.T, r Result) { assert.True(t, r.Bool) },
		},
		{
			name:   "boolean false",
			fields: fields("ok", "0"),
			shape:  ShapeBool,
			check:  func(t *testing.T, r Result) { assert.False(t, r.Bool) },
		},
		{
			name:   "list preserves wire order",
			fields: fields("ok", "c", "a", "b"),
			shape:  ShapeList,
			check: func(t *testing.T, r Result) {
				assert.Equal(t, []string{"c", "a", "b"}, r.List)
			},
		},
		{
			name:   "empty list",
			fields: fields("ok"),
			shape:  ShapeList,
			check:  func(t *testing.T, r Result) { assert.Empty(t, r.List) },
		},
		{
			name:   "pairs preserve wire order",
			fields: fields("ok", "k1", "v1", "k2", "v2"),
			shape:  ShapePairs,
			check: func(t *testing.T, r Result) {
				assert.Equal(t, []Entry{{"k1", "v1"}, {"k2", "v2"}}, r.Pairs)
			},
		},
		{
			name:   "empty pairs",
			fields: fields("ok"),
			shape:  ShapePairs,
			check:  func(t *testing.T, r Result) { assert.Empty(t, r.Pairs) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Interpret(tt.fields, tt.shape)
			require.NoError(t, err)
			assert.True(t, result.Found)
			assert.Equal(t, tt.shape, result.Shape)
			tt.check(t, result)
		})
	}
}

func TestInterpretNotFound(t *testing.T) {
	// Every shape maps not_found to its zero value with Found=false.
	for _, shape := range []Shape{ShapeStatusOnly, ShapeNone, ShapeScalar, ShapeInt, ShapeFloat, ShapeBool, ShapeList, ShapePairs} {
		t.Run(shape.String(), func(t *testing.T) {
			result, err := Interpret(fields("not_found"), shape)
			require.NoError(t, err)
			assert.False(t, result.Found)
			assert.Zero(t, result.Str)
			assert.Zero(t, result.Int)
			assert.Zero(t, result.Float)
			assert.False(t, result.Bool)
			assert.Empty(t, result.List)
			assert.Empty(t, result.Pairs)
		})
	}
}

func TestInterpretServerErrors(t *testing.T) {
	for _, status := range []string{"error", "fail", "client_error"} {
		t.Run(status, func(t *testing.T) {
			_, err := Interpret(fields(status, "something", "broke"), ShapeScalar)

			var serverErr *ServerError
			require.ErrorAs(t, err, &serverErr)
			assert.Equal(t, status, serverErr.Status)
			assert.Equal(t, "something broke", serverErr.Message)
			assert.False(t, ShouldCloseConnection(err))
		})
	}
}

func TestInterpretUnknownStatus(t *testing.T) {
	_, err := Interpret(fields("weird"), ShapeStatusOnly)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.True(t, ShouldCloseConnection(err))
}

func TestInterpretEmptyReply(t *testing.T) {
	_, err := Interpret(nil, ShapeStatusOnly)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestInterpretDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields [][]byte
		shape  Shape
	}{
		{name: "scalar missing payload", fields: fields("ok"), shape: ShapeScalar},
		{name: "scalar extra payload", fields: fields("ok", "a", "b"), shape: ShapeScalar},
		{name: "integer not a number", fields: fields("ok", "abc"), shape: ShapeInt},
		{name: "integer extra payload", fields: fields("ok", "1", "2"), shape: ShapeInt},
		{name: "float not a number", fields: fields("ok", "x"), shape: ShapeFloat},
		{name: "boolean out of domain", fields: fields("ok", "2"), shape: ShapeBool},
		{name: "boolean empty", fields: fields("ok", ""), shape: ShapeBool},
		{name: "odd pair count", fields: fields("ok", "k1"), shape: ShapePairs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpret(tt.fields, tt.shape)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr, "got %v", err)
			// Decode failures must not cost the connection.
			assert.False(t, ShouldCloseConnection(err))
		})
	}
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "ordered_pairs", ShapePairs.String())
	assert.Equal(t, "integer", ShapeInt.String())
	assert.Equal(t, "shape(99)", Shape(99).String())
}
