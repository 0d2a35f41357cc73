package bmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkInclusionProof(t *testing.T) {
	chunk, err := NewChunk(testPayload(t, 4096))
	require.NoError(t, err)
	data := chunk.Data()

	// Both parities, both ends and the pair boundaries.
	for _, segmentIndex := range []int{0, 1, 63, 64, 101, 126, 127} {
		sisterSegments, err := chunk.InclusionProof(segmentIndex)
		require.NoError(t, err)
		require.Len(t, sisterSegments, 7)

		segment := data[segmentIndex*SegmentSize : (segmentIndex+1)*SegmentSize]
		root := RootHashFromInclusionProof(sisterSegments, segment, segmentIndex)
		assert.Equal(t, chunk.Address(), Keccak256(chunk.Span(), root), "segment %d", segmentIndex)
	}
}

func TestChunkInclusionProofShortPayload(t *testing.T) {
	// Indexing is over the padded data, so segments beyond the raw payload
	// are provable zero segments.
	chunk, err := NewChunk([]byte{1, 2, 3})
	require.NoError(t, err)

	sisterSegments, err := chunk.InclusionProof(127)
	require.NoError(t, err)

	root := RootHashFromInclusionProof(sisterSegments, make([]byte, SegmentSize), 127)
	assert.Equal(t, chunk.Address(), Keccak256(chunk.Span(), root))
}

func TestChunkInclusionProofOutOfRange(t *testing.T) {
	chunk, err := NewChunk(testPayload(t, 4096))
	require.NoError(t, err)

	_, err = chunk.InclusionProof(128)
	assert.ErrorIs(t, err, ErrSegmentIndexOutOfRange)

	_, err = chunk.InclusionProof(-1)
	assert.ErrorIs(t, err, ErrSegmentIndexOutOfRange)
}

func TestRootHashFromInclusionProofTamperedSister(t *testing.T) {
	chunk, err := NewChunk(testPayload(t, 4096))
	require.NoError(t, err)
	data := chunk.Data()

	sisterSegments, err := chunk.InclusionProof(5)
	require.NoError(t, err)

	tampered := make([][]byte, len(sisterSegments))
	copy(tampered, sisterSegments)
	forged := make([]byte, SegmentSize)
	copy(forged, tampered[3])
	forged[0] ^= 1
	tampered[3] = forged

	segment := data[5*SegmentSize : 6*SegmentSize]
	root := RootHashFromInclusionProof(tampered, segment, 5)
	assert.NotEqual(t, chunk.Address(), Keccak256(chunk.Span(), root))
}
