package proto

import (
	"strconv"
)

// Shape describes how a reply's payload fields decode for the command that
// produced them. The wire format cannot distinguish a flat list from
// key/value pairs, so the issuing command must supply its shape explicitly;
// never infer it from field count or content.
type Shape int

const (
	// ShapeStatusOnly ignores payload fields; only the status matters.
	// Update commands (set, del, hset, ...) use this: their change count
	// payload carries no information the caller acts on.
	ShapeStatusOnly Shape = iota

	// ShapeNone is for maintenance commands with no meaningful reply body.
	ShapeNone

	// ShapeScalar expects exactly one payload field, returned as a string.
	ShapeScalar

	// ShapeInt expects exactly one payload field parseable as a base-10 int64.
	ShapeInt

	// ShapeFloat expects exactly one payload field parseable as a float64.
	ShapeFloat

	// ShapeBool expects exactly one payload field, "1" or "0".
	ShapeBool

	// ShapeList takes all payload fields, in wire order.
	ShapeList

	// ShapePairs pairs payload fields (fields[0],fields[1]), (fields[2],
	// fields[3]), ... preserving wire order. Field count must be even.
	ShapePairs
)

func (s Shape) String() string {
	switch s {
	case ShapeStatusOnly:
		return "status_only"
	case ShapeNone:
		return "none"
	case ShapeScalar:
		return "scalar"
	case ShapeInt:
		return "integer"
	case ShapeFloat:
		return "float"
	case ShapeBool:
		return "boolean"
	case ShapeList:
		return "list"
	case ShapePairs:
		return "ordered_pairs"
	}
	return "shape(" + strconv.Itoa(int(s)) + ")"
}

// Entry is one key/value pair of an ordered_pairs reply. Order matches the
// wire, which for scan commands is the server's iteration order.
type Entry struct {
	Key   string
	Value string
}

// Result is an interpreted reply. Exactly one of the typed fields is
// populated, according to Shape. Found is false when the server answered
// not_found; the typed field then holds its zero value.
type Result struct {
	Shape Shape
	Found bool

	Str   string
	Int   int64
	Float float64
	Bool  bool
	List  []string
	Pairs []Entry
}

// Interpret maps a decoded frame to a typed Result for the given shape.
//
// The first field is the status code:
//   - "ok": payload decodes per shape; mismatches fail with DecodeError and
//     leave the connection usable
//   - "not_found": Result.Found is false, payload ignored
//   - "error", "fail", "client_error": ServerError with the payload joined
//     as the message
//   - anything else: ProtocolError; the server is speaking a dialect we do
//     not understand and the connection must be discarded
//
// An empty frame is a ProtocolError here: a fully decoded reply always has a
// status. The "no reply yet" empty frame is consumed below this layer, by the
// read loop feeding ReadReply.
func Interpret(fields [][]byte, shape Shape) (Result, error) {
	result := Result{Shape: shape}

	if len(fields) == 0 {
		return result, &ProtocolError{Message: "reply has no status field"}
	}

	status := string(fields[0])
	payload := fields[1:]

	switch status {
	case StatusOK:
	case StatusNotFound:
		return result, nil
	case StatusError, StatusFail, StatusClientError:
		return result, &ServerError{Status: status, Message: joinFields(payload)}
	default:
		return result, &ProtocolError{Message: "unknown status " + strconv.Quote(status)}
	}

	result.Found = true

	switch shape {
	case ShapeStatusOnly, ShapeNone:
		return result, nil

	case ShapeScalar:
		if len(payload) != 1 {
			return result, &DecodeError{Message: scalarCountMsg(shape, len(payload))}
		}
		result.Str = string(payload[0])
		return result, nil

	case ShapeInt:
		if len(payload) != 1 {
			return result, &DecodeError{Message: scalarCountMsg(shape, len(payload))}
		}
		n, err := strconv.ParseInt(string(payload[0]), 10, 64)
		if err != nil {
			return result, &DecodeError{Message: "not an integer: " + strconv.Quote(string(payload[0])), Err: err}
		}
		result.Int = n
		return result, nil

	case ShapeFloat:
		if len(payload) != 1 {
			return result, &DecodeError{Message: scalarCountMsg(shape, len(payload))}
		}
		f, err := strconv.ParseFloat(string(payload[0]), 64)
		if err != nil {
			return result, &DecodeError{Message: "not a float: " + strconv.Quote(string(payload[0])), Err: err}
		}
		result.Float = f
		return result, nil

	case ShapeBool:
		if len(payload) != 1 {
			return result, &DecodeError{Message: scalarCountMsg(shape, len(payload))}
		}
		switch string(payload[0]) {
		case "1":
			result.Bool = true
		case "0":
			result.Bool = false
		default:
			return result, &DecodeError{Message: "not a boolean: " + strconv.Quote(string(payload[0]))}
		}
		return result, nil

	case ShapeList:
		list := make([]string, len(payload))
		for i, f := range payload {
			list[i] = string(f)
		}
		result.List = list
		return result, nil

	case ShapePairs:
		if len(payload)%2 != 0 {
			return result, &DecodeError{Message: "odd field count " + strconv.Itoa(len(payload)) + " for ordered_pairs reply"}
		}
		pairs := make([]Entry, 0, len(payload)/2)
		for i := 0; i < len(payload); i += 2 {
			pairs = append(pairs, Entry{Key: string(payload[i]), Value: string(payload[i+1])})
		}
		result.Pairs = pairs
		return result, nil
	}

	return result, &DecodeError{Message: "unsupported shape " + shape.String()}
}

func scalarCountMsg(shape Shape, n int) string {
	return shape.String() + " reply wants 1 payload field, got " + strconv.Itoa(n)
}
