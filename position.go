package bmt

import (
	"math/bits"
)

// BMTIndexOfSegment maps a payload wide segment index to the position of its
// containing chunk in the file tree, as the (chunk index, level) pair used
// when folding a file inclusion proof.
//
// For most segments this is plain division: level 0 and the segment index
// shifted down by the per chunk tree depth (7 for standard chunks). The
// exception is a segment inside a deferred carrier chunk. The carrier
// condition holds when the segment's naive leaf is the last chunk of the
// file and the leaf count is an exact non zero multiple of the branching
// factor; the carrier then lives one level up for every full level it
// propagated through, and the index is shifted once more per level.
//
// lastChunkIndex is the index of the file's last leaf chunk,
// floor((fileSize-1) / maxChunkPayload).
//
// The carrier ascension divisor below is the segment size, not the branching
// factor, reproducing the behavior of the reference bmt-js implementation
// which this port is vector compatible with.
func BMTIndexOfSegment(segmentIndex, lastChunkIndex int, maxChunkPayload int) (chunkIndex, level int) {
	maxSegmentCount := maxChunkPayload / SegmentSize

	// 7 for standard chunks.
	chunkBMTLevels := bits.Len(uint(maxSegmentCount)) - 1

	if segmentIndex/maxSegmentCount == lastChunkIndex &&
		lastChunkIndex%maxSegmentCount == 0 &&
		lastChunkIndex != 0 {
		// The segment is inside the carrier chunk.
		segmentIndex >>= chunkBMTLevels
		for segmentIndex%SegmentSize == 0 {
			level++
			segmentIndex >>= chunkBMTLevels
		}
	} else {
		segmentIndex >>= chunkBMTLevels
	}

	return segmentIndex, level
}
