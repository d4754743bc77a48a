package value

import (
	"math"

	jsoniter "github.com/json-iterator/go"
)

var encoderConfig = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            false,
	ValidateJsonRawMessage: true,
}.Froze()

// MarshalJSON encodes v as JSON, keeping object fields in insertion order.
// NaN and infinities have no JSON literal and are written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	stream := encoderConfig.BorrowStream(nil)
	defer encoderConfig.ReturnStream(stream)

	writeValue(stream, v)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func writeValue(stream *jsoniter.Stream, v Value) {
	switch v.kind {
	case KindBool:
		stream.WriteBool(v.b)
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			stream.WriteNil()
			return
		}
		stream.WriteFloat64(v.n)
	case KindString:
		stream.WriteString(v.s)
	case KindArray:
		stream.WriteArrayStart()
		for i, item := range v.items {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, item)
		}
		stream.WriteArrayEnd()
	case KindObject:
		stream.WriteObjectStart()
		for i, key := range v.obj.keys {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(key)
			writeValue(stream, v.obj.values[i])
		}
		stream.WriteObjectEnd()
	default:
		stream.WriteNil()
	}
}
