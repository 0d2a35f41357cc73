package bmt

import (
	"errors"
	"fmt"
	"math/bits"
)

var ErrInvalidProof = errors.New("malformed file inclusion proof")

// ChunkInclusionProof is the per level element of a file inclusion proof:
// the span of the chunk traversed at that level together with the sister
// segments of its intra chunk BMT path.
type ChunkInclusionProof struct {
	Span           []byte
	SisterSegments [][]byte
}

// FileInclusionProof collects the proof that the segment at segmentIndex of
// the file payload is included under the file address.
//
// The proof is ordered bottom up, one ChunkInclusionProof per traversed tree
// level, the leaf chunk's first and the root chunk's last. When the indexed
// segment lives in a deferred carrier chunk the walk ascends through the
// levels the carrier propagated through, so the proof can be shorter than
// the leaf-to-root distance of a naive tree.
//
// Returns ErrSegmentIndexOutOfRange when segmentIndex does not address a
// byte of the file payload.
func FileInclusionProof(f *ChunkedFile, segmentIndex int) ([]ChunkInclusionProof, error) {
	if segmentIndex < 0 || uint64(segmentIndex)*SegmentSize >= f.SpanValue() {
		return nil, fmt.Errorf("%w: segment %d of a %d byte file", ErrSegmentIndexOutOfRange, segmentIndex, f.SpanValue())
	}

	levelChunks, carrier := popCarrierChunk(f.LeafChunks())
	maxSegmentCount := f.cfg.maxSegmentCount()
	chunkBMTLevels := bits.Len(uint(maxSegmentCount)) - 1

	var proofs []ChunkInclusionProof
	for len(levelChunks) != 1 || carrier != nil {
		chunkSegmentIndex := segmentIndex % maxSegmentCount
		chunkIndex := segmentIndex / maxSegmentCount

		if chunkIndex == len(levelChunks) {
			// The segment is inside the carrier chunk. Fold levels upwards
			// until the carrier surfaces as the last chunk of a level.
			if carrier == nil {
				return nil, fmt.Errorf("%w: segment %d has no containing chunk", ErrSegmentIndexOutOfRange, segmentIndex)
			}
			segmentIndex >>= chunkBMTLevels
			for segmentIndex%maxSegmentCount == 0 {
				var err error
				levelChunks, carrier, err = nextBMTLevel(levelChunks, carrier)
				if err != nil {
					return nil, err
				}
				segmentIndex >>= chunkBMTLevels
			}
			chunkIndex = len(levelChunks) - 1
		}

		chunk := levelChunks[chunkIndex]
		sisterSegments, err := chunk.InclusionProof(chunkSegmentIndex)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, ChunkInclusionProof{Span: chunk.Span(), SisterSegments: sisterSegments})

		segmentIndex = chunkIndex
		levelChunks, carrier, err = nextBMTLevel(levelChunks, carrier)
		if err != nil {
			return nil, err
		}
	}

	sisterSegments, err := levelChunks[0].InclusionProof(segmentIndex)
	if err != nil {
		return nil, err
	}
	return append(proofs, ChunkInclusionProof{Span: levelChunks[0].Span(), SisterSegments: sisterSegments}), nil
}

// FileAddressFromInclusionProof folds a file inclusion proof back into the
// file address.
//
// segment is the proven 32 byte segment (zero padded when it is the tail of
// the payload) and segmentIndex its payload wide index. Each proof chunk's
// sister segments are reduced to that chunk's BMT root, the root is hashed
// with the chunk span into the chunk address, and the address becomes the
// proven segment of the next level up. The span of the final proof chunk is
// the file size, from which the carrier positions are re-derived level by
// level.
//
// Returns ErrInvalidProof when the proof list is empty or its fields do not
// have the required shapes.
func FileAddressFromInclusionProof(proofChunks []ChunkInclusionProof, segment []byte, segmentIndex int, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts...)
	maxSegmentCount := cfg.maxSegmentCount()
	chunkBMTLevels := bits.Len(uint(maxSegmentCount)) - 1

	if len(proofChunks) == 0 {
		return nil, fmt.Errorf("%w: no proof chunks", ErrInvalidProof)
	}
	for _, proofChunk := range proofChunks {
		if len(proofChunk.Span) < 4 {
			return nil, fmt.Errorf("%w: span shorter than 4 bytes", ErrInvalidProof)
		}
		for _, sister := range proofChunk.SisterSegments {
			if len(sister) != SegmentSize {
				return nil, fmt.Errorf("%w: sister segment is not %d bytes", ErrInvalidProof, SegmentSize)
			}
		}
	}

	fileSize := SpanValue(proofChunks[len(proofChunks)-1].Span)
	if fileSize == 0 {
		return nil, fmt.Errorf("%w: zero file span", ErrInvalidProof)
	}
	if segmentIndex < 0 || uint64(segmentIndex)*SegmentSize >= fileSize {
		return nil, fmt.Errorf("%w: segment %d of a %d byte file", ErrSegmentIndexOutOfRange, segmentIndex, fileSize)
	}
	lastChunkIndex := int((fileSize - 1) / uint64(cfg.maxPayloadSize))

	calculated := segment
	for _, proofChunk := range proofChunks {
		parentChunkIndex, level := BMTIndexOfSegment(segmentIndex, lastChunkIndex, cfg.maxPayloadSize)

		for _, sister := range proofChunk.SisterSegments {
			if segmentIndex%2 == 0 {
				calculated = cfg.hasher(calculated, sister)
			} else {
				calculated = cfg.hasher(sister, calculated)
			}
			segmentIndex >>= 1
		}
		calculated = cfg.hasher(proofChunk.Span, calculated)

		// Carries the index across any levels consumed by a carrier chunk.
		segmentIndex = parentChunkIndex
		lastChunkIndex >>= chunkBMTLevels + level*chunkBMTLevels
	}

	return calculated, nil
}
