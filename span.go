package bmt

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// SpanSize is the byte length of the serialized span prefixing every chunk.
	SpanSize = 8

	// MaxSpanValue caps span values at 32 bits. The upper 4 bytes of a span
	// are always zero, which keeps spans within safe integer range for
	// implementations without 64 bit integers.
	MaxSpanValue = 1<<32 - 1
)

var ErrSpanTooLarge = errors.New("span value exceeds the 32 bit limit")

// NewSpan serializes a span value into a length byte little endian buffer.
//
// Only the low 32 bits of value are significant; values above MaxSpanValue
// are rejected rather than truncated. Lengths below the 4 bytes needed for
// the value select the default SpanSize.
func NewSpan(value uint64, length int) ([]byte, error) {
	if value > MaxSpanValue {
		return nil, fmt.Errorf("%w: %d", ErrSpanTooLarge, value)
	}
	if length < 4 {
		length = SpanSize
	}
	span := make([]byte, length)
	binary.LittleEndian.PutUint32(span, uint32(value))
	return span, nil
}

// SpanValue reads the value of a serialized span.
//
// The first 4 bytes are interpreted little endian, any remaining bytes are
// ignored. The span must be at least 4 bytes.
func SpanValue(span []byte) uint64 {
	return uint64(binary.LittleEndian.Uint32(span))
}
