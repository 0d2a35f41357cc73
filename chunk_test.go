package bmt

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunk(t *testing.T) {
	payload := []byte{1, 2, 3}

	chunk, err := NewChunk(payload)
	require.NoError(t, err)

	assert.Equal(t, payload, chunk.Payload())
	assert.Equal(t, []byte{3, 0, 0, 0, 0, 0, 0, 0}, chunk.Span())
	assert.Equal(t, uint64(3), chunk.SpanValue())
	assert.Len(t, chunk.Data(), 4096)
	assert.Len(t, chunk.Address(), 32)
	assert.Equal(t, DefaultMaxPayloadSize, chunk.MaxPayloadSize())
	assert.Equal(t, SpanSize, chunk.SpanLength())
}

func TestChunkAddress(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		address string
	}{
		{
			name:    "empty chunk",
			payload: nil,
			address: "b34ca8c22b9e982354f9c7f50b470d66db428d880c8a904d5fe4ec9713171526",
		},
		{
			name:    "three bytes",
			payload: []byte{1, 2, 3},
			address: "ca6357a08e317d15ec560fef34e4c45f8f19f01c372aa70f1da72bfa7f1a4338",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, err := NewChunk(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.address, hex.EncodeToString(chunk.Address()))
		})
	}
}

func TestChunkBMT(t *testing.T) {
	chunk, err := NewChunk(testPayload(t, 4096))
	require.NoError(t, err)

	tree := chunk.BMT()
	require.Len(t, tree, 8)

	// 128 segments halve down to the single root segment.
	for level, want := 0, 4096; level < len(tree); level, want = level+1, want/2 {
		assert.Len(t, tree[level], want)
	}

	assert.Equal(t, chunk.Data(), tree[0])

	root := tree[len(tree)-1]
	assert.Equal(t, Keccak256(chunk.Span(), root), chunk.Address())
}

func TestChunkPayloadTooLarge(t *testing.T) {
	_, err := NewChunk(make([]byte, DefaultMaxPayloadSize+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	// The bound follows the configured capacity.
	_, err = NewChunk(make([]byte, 129), WithMaxPayloadSize(128))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestChunkSpanValueOption(t *testing.T) {
	chunk, err := NewChunk([]byte{1, 2, 3}, WithSpanValue(4096))
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), chunk.SpanValue())

	_, err = NewChunk([]byte{1, 2, 3}, WithSpanValue(MaxSpanValue+1))
	assert.ErrorIs(t, err, ErrSpanTooLarge)
}

func TestChunkEqual(t *testing.T) {
	a, err := NewChunk([]byte{1, 2, 3})
	require.NoError(t, err)
	b, err := NewChunk([]byte{1, 2, 3})
	require.NoError(t, err)
	c, err := NewChunk([]byte{1, 2, 4})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestChunkWireBytes(t *testing.T) {
	payload := []byte{1, 2, 3}
	chunk, err := NewChunk(payload)
	require.NoError(t, err)

	wire := chunk.WireBytes()
	require.Len(t, wire, SpanSize+DefaultMaxPayloadSize)
	assert.Equal(t, chunk.Span(), wire[:SpanSize])
	assert.Equal(t, chunk.Data(), wire[SpanSize:])
}

func TestChunkCustomHasher(t *testing.T) {
	sha := func(data ...[]byte) []byte {
		h := sha256.New()
		for _, d := range data {
			h.Write(d)
		}
		return h.Sum(nil)
	}

	chunk, err := NewChunk([]byte{1, 2, 3}, WithHasher(sha))
	require.NoError(t, err)
	keccakChunk, err := NewChunk([]byte{1, 2, 3})
	require.NoError(t, err)

	assert.NotEqual(t, keccakChunk.Address(), chunk.Address())

	root := chunk.BMT()[7]
	assert.Equal(t, sha(chunk.Span(), root), chunk.Address())
}

// testPayload returns size deterministic pseudo random bytes so that
// segments and their sisters are distinct.
func testPayload(t *testing.T, size int) []byte {
	t.Helper()
	payload := make([]byte, size)
	seed := byte(1)
	for i := range payload {
		seed = seed*31 + byte(i)
		payload[i] = seed
	}
	return payload
}
