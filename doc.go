// Package bmt implements the Binary Merkle Tree (BMT) chunking scheme used
// for content addressing in Swarm style distributed storage.
package bmt

/*

# Chunks and the BMT

The unit of storage is the chunk: at most 4096 bytes of payload plus an 8 byte
little endian span recording how many bytes of content the chunk covers. The
payload is zero padded to 4096 bytes and treated as 128 segments of 32 bytes.
Pairs of adjacent segments are hashed together with Keccak-256, halving the
buffer, and the halving repeats until a single 32 byte root remains:

	          r
	        /   \
	      h     h        <- 2 segments after 6 rounds
	     ...   ...
	    /  \   /  \
	   s0  s1 s2  s3 ..  <- 128 data segments

The chunk address commits to the span as well:

	address = H(span || root)

so two chunks with identical payloads but different spans have different
addresses. Because the padded buffer always holds 128 segments, every chunk
BMT has exactly 7 hashing rounds and an inclusion proof for any one segment
is exactly 7 sister segments.

# Files and carrier chunks

Payloads larger than one chunk are split into consecutive leaf chunks. Each
group of 128 chunks becomes the children of an intermediate chunk whose
payload is the concatenation of the 128 child addresses and whose span is the
sum of the child spans. Levels are built bottom up until a single root chunk
remains; the root chunk's address is the file address.

When a level holds exactly one chunk more than a multiple of 128, the
trailing chunk would become the sole child of a degenerate parent. Instead it
is withheld from the level - it becomes the carrier chunk - and is appended
as the final child of the first higher level with room for it. A carrier can
propagate through several full levels before it is absorbed. Inclusion proofs
over a file must account for this: the segments of a carrier chunk live one
or more levels above where plain division would place them, which is what
BMTIndexOfSegment computes.

# Sources

This package is a port of the bmt-js / bmt-py libraries and follows the chunk
definition in The Book of Swarm:

  - https://github.com/fairDataSociety/bmt-js
  - https://papers.ethswarm.org/p/book-of-swarm/

The hash function is pluggable (see WithHasher); the Swarm network uses
Keccak-256, which is the default.

*/
