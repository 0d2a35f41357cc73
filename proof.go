package bmt

import (
	"errors"
	"fmt"
)

var ErrSegmentIndexOutOfRange = errors.New("segment index out of range")

// InclusionProof returns the sister segments proving that the segment at
// segmentIndex is included in the chunk's BMT root.
//
// The proof is ordered bottom up: the first element is the sister of the
// data segment itself, the last is the sister one level below the root. A
// standard chunk proof is 7 segments. Indexing is over the padded data, so
// every index below the branching factor is valid even for short payloads.
//
// Returns ErrSegmentIndexOutOfRange when segmentIndex does not address a
// segment of the padded data.
func (c *Chunk) InclusionProof(segmentIndex int) ([][]byte, error) {
	if segmentIndex < 0 || segmentIndex*SegmentSize >= c.cfg.maxPayloadSize {
		return nil, fmt.Errorf("%w: segment %d of %d", ErrSegmentIndexOutOfRange, segmentIndex, c.cfg.maxSegmentCount())
	}

	tree := c.BMT()
	rootLevel := len(tree) - 1

	sisterSegments := make([][]byte, 0, rootLevel)
	for level := 0; level < rootLevel; level++ {
		// The sister of an even segment is to the right, of an odd one to
		// the left.
		sisterIndex := segmentIndex ^ 1
		sisterSegments = append(sisterSegments, tree[level][sisterIndex*SegmentSize:(sisterIndex+1)*SegmentSize])
		segmentIndex >>= 1
	}
	return sisterSegments, nil
}

// RootHashFromInclusionProof recomputes a chunk's BMT root hash from one
// known segment, its index and the sister segments returned by
// InclusionProof.
//
// The result is the payload level root, not the chunk address; hash it with
// the chunk span to obtain the address:
//
//	address = H(span || root)
func RootHashFromInclusionProof(proofSegments [][]byte, segment []byte, segmentIndex int, opts ...Option) []byte {
	cfg := newConfig(opts...)

	calculated := segment
	for _, proofSegment := range proofSegments {
		if segmentIndex%2 == 0 {
			calculated = cfg.hasher(calculated, proofSegment)
		} else {
			calculated = cfg.hasher(proofSegment, calculated)
		}
		segmentIndex >>= 1
	}
	return calculated
}
