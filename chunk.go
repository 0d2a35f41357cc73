package bmt

import (
	"bytes"
	"errors"
	"fmt"
)

var ErrPayloadTooLarge = errors.New("payload exceeds the maximum chunk payload size")

// Chunk is a single BMT chunk: at most maxPayloadSize bytes of payload and a
// span recording the byte count the chunk covers. For leaf chunks the span
// equals the payload length; for intermediate file tree chunks it is the sum
// of the child spans.
//
// A Chunk is immutable once constructed and safe for concurrent use. The
// address is computed at construction; Data and BMT recompute
// deterministically from the stored payload.
type Chunk struct {
	payload []byte
	span    []byte
	address []byte
	cfg     config
}

// NewChunk constructs a chunk over payload and computes its address.
//
// The span value defaults to the payload length and can be overridden with
// WithSpanValue. Returns ErrPayloadTooLarge when the payload exceeds the
// configured capacity, or ErrSpanTooLarge for an overriding span value
// beyond 32 bits.
func NewChunk(payload []byte, opts ...Option) (*Chunk, error) {
	cfg := newConfig(opts...)

	if len(payload) > cfg.maxPayloadSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), cfg.maxPayloadSize)
	}

	spanValue := uint64(len(payload))
	if cfg.spanValue != nil {
		spanValue = *cfg.spanValue
	}
	span, err := NewSpan(spanValue, cfg.spanLength)
	if err != nil {
		return nil, err
	}

	c := &Chunk{
		payload: payload,
		span:    span,
		cfg:     cfg,
	}
	c.address = cfg.hasher(span, bmtRootHash(c.Data(), cfg.hasher))
	return c, nil
}

// Payload returns the raw, unpadded chunk payload.
func (c *Chunk) Payload() []byte {
	return c.payload
}

// Data returns the payload zero padded to the chunk payload capacity.
func (c *Chunk) Data() []byte {
	data := make([]byte, c.cfg.maxPayloadSize)
	copy(data, c.payload)
	return data
}

// Span returns the serialized span.
func (c *Chunk) Span() []byte {
	return c.span
}

// SpanValue returns the byte count the chunk covers.
func (c *Chunk) SpanValue() uint64 {
	return SpanValue(c.span)
}

// Address returns the chunk address, H(span || bmt root).
func (c *Chunk) Address() []byte {
	return c.address
}

// MaxPayloadSize returns the configured payload capacity.
func (c *Chunk) MaxPayloadSize() int {
	return c.cfg.maxPayloadSize
}

// SpanLength returns the configured serialized span length.
func (c *Chunk) SpanLength() int {
	return c.cfg.spanLength
}

// Equal reports whether two chunks have the same address.
func (c *Chunk) Equal(other *Chunk) bool {
	return bytes.Equal(c.address, other.Address())
}

// WireBytes returns the chunk in wire layout, span followed by the zero
// padded payload.
func (c *Chunk) WireBytes() []byte {
	wire := make([]byte, 0, len(c.span)+c.cfg.maxPayloadSize)
	wire = append(wire, c.span...)
	return append(wire, c.Data()...)
}

// BMT returns every level of the chunk's binary Merkle tree, the padded data
// level first and the 32 byte root hash last. A standard chunk yields 8
// levels: 128, 64, 32, 16, 8, 4, 2 and 1 segments.
func (c *Chunk) BMT() [][]byte {
	level := c.Data()
	tree := [][]byte{level}
	for len(level) != HashSize {
		level = bmtNextLevel(level, c.cfg.hasher)
		tree = append(tree, level)
	}
	return tree
}

// bmtNextLevel hashes each 64 byte segment pair of level into one segment of
// the level above, halving the buffer.
func bmtNextLevel(level []byte, hasher HasherFn) []byte {
	next := make([]byte, len(level)/2)
	for offset := 0; offset < len(level); offset += SegmentPairSize {
		copy(next[offset/2:], hasher(level[offset:offset+SegmentPairSize]))
	}
	return next
}

// bmtRootHash folds the padded chunk data down to the BMT root segment.
func bmtRootHash(data []byte, hasher HasherFn) []byte {
	for len(data) != HashSize {
		data = bmtNextLevel(data, hasher)
	}
	return data
}
