package bmt

import (
	"errors"
	"runtime"
	"sync"
)

var ErrEmptyChunks = errors.New("the given chunk list is empty")

// ChunkedFile is a payload of arbitrary length split into leaf chunks and
// committed to by a tree of intermediate chunks. The address of the single
// root chunk is the file address.
//
// A ChunkedFile is immutable once constructed and safe for concurrent use.
type ChunkedFile struct {
	payload []byte
	span    []byte
	leaves  []*Chunk
	root    *Chunk
	cfg     config
}

// NewChunkedFile splits payload into leaf chunks and builds the file tree up
// to its root chunk. An empty payload yields a single empty chunk.
//
// Leaf chunks are hashed concurrently; the result is identical to serial
// construction since the leaves are independent.
func NewChunkedFile(payload []byte, opts ...Option) (*ChunkedFile, error) {
	cfg := newConfig(opts...)
	// A fixed span value only makes sense for a single chunk; leaf and
	// intermediate spans are always derived.
	cfg.spanValue = nil

	span, err := NewSpan(uint64(len(payload)), cfg.spanLength)
	if err != nil {
		return nil, err
	}

	leaves, err := splitToLeafChunks(payload, cfg)
	if err != nil {
		return nil, err
	}

	root, err := rootChunk(leaves)
	if err != nil {
		return nil, err
	}

	return &ChunkedFile{
		payload: payload,
		span:    span,
		leaves:  leaves,
		root:    root,
		cfg:     cfg,
	}, nil
}

// Payload returns the raw file payload.
func (f *ChunkedFile) Payload() []byte {
	return f.payload
}

// LeafChunks returns the ordered leaf chunks of the file. The returned slice
// is a copy and may be modified by the caller.
func (f *ChunkedFile) LeafChunks() []*Chunk {
	leaves := make([]*Chunk, len(f.leaves))
	copy(leaves, f.leaves)
	return leaves
}

// RootChunk returns the root chunk of the file tree.
func (f *ChunkedFile) RootChunk() *Chunk {
	return f.root
}

// Address returns the file address, the address of the root chunk.
func (f *ChunkedFile) Address() []byte {
	return f.root.Address()
}

// Span returns the serialized span of the whole file.
func (f *ChunkedFile) Span() []byte {
	return f.span
}

// SpanValue returns the file length in bytes.
func (f *ChunkedFile) SpanValue() uint64 {
	return SpanValue(f.span)
}

// BMT returns every level of the file tree, the leaf level first and the
// single root chunk last.
//
// When the leaf count is one above a multiple of the branching factor the
// trailing leaf is a carrier chunk: it is withheld from level 0 and appears
// verbatim as the final child of the first higher level with room for it.
func (f *ChunkedFile) BMT() ([][]*Chunk, error) {
	level, carrier := popCarrierChunk(f.LeafChunks())
	levels := [][]*Chunk{level}
	for len(levels[len(levels)-1]) != 1 {
		next, nextCarrier, err := nextBMTLevel(levels[len(levels)-1], carrier)
		if err != nil {
			return nil, err
		}
		levels = append(levels, next)
		carrier = nextCarrier
	}
	return levels, nil
}

// splitToLeafChunks slices payload into consecutive chunks of at most the
// configured payload capacity, hashing them on a bounded worker pool.
func splitToLeafChunks(payload []byte, cfg config) ([]*Chunk, error) {
	if len(payload) == 0 {
		empty, err := newChunk(nil, cfg)
		if err != nil {
			return nil, err
		}
		return []*Chunk{empty}, nil
	}

	n := (len(payload) + cfg.maxPayloadSize - 1) / cfg.maxPayloadSize
	leaves := make([]*Chunk, n)
	errs := make([]error, n)

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	work := make(chan int, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				offset := i * cfg.maxPayloadSize
				end := offset + cfg.maxPayloadSize
				if end > len(payload) {
					end = len(payload)
				}
				leaves[i], errs[i] = newChunk(payload[offset:end], cfg)
			}
		}()
	}
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return leaves, nil
}

// newChunk constructs a chunk from an already resolved config.
func newChunk(payload []byte, cfg config) (*Chunk, error) {
	opts := []Option{
		WithHasher(cfg.hasher),
		WithMaxPayloadSize(cfg.maxPayloadSize),
		WithSpanLength(cfg.spanLength),
	}
	if cfg.spanValue != nil {
		opts = append(opts, WithSpanValue(*cfg.spanValue))
	}
	return NewChunk(payload, opts...)
}

// popCarrierChunk withholds the trailing chunk of a level when the chunk
// count is one above a multiple of the branching factor. The withheld chunk
// would otherwise become the sole child of a degenerate parent; instead it
// is deferred to merge into a higher level. Returns the possibly shortened
// level and the carrier, or nil when the level has no carrier.
func popCarrierChunk(chunks []*Chunk) ([]*Chunk, *Chunk) {
	if len(chunks) <= 1 {
		return chunks, nil
	}
	if len(chunks)%chunks[0].cfg.maxSegmentCount() != 1 {
		return chunks, nil
	}
	return chunks[:len(chunks)-1], chunks[len(chunks)-1]
}

// nextBMTLevel builds one level of the file tree above chunks.
//
// Every group of maxSegmentCount chunks becomes one intermediate chunk whose
// payload is the concatenation of the group's addresses and whose span is
// the sum of the group's spans. A pending carrier chunk is appended as the
// final chunk of the new level unless the new level is itself an exact
// multiple of the branching factor, in which case it keeps propagating
// upwards. With no carrier pending, the new level is checked for a carrier
// of its own.
func nextBMTLevel(chunks []*Chunk, carrier *Chunk) ([]*Chunk, *Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil, ErrEmptyChunks
	}

	cfg := chunks[0].cfg
	maxSegmentCount := cfg.maxSegmentCount()

	nextLevel := make([]*Chunk, 0, (len(chunks)+maxSegmentCount-1)/maxSegmentCount)
	for offset := 0; offset < len(chunks); offset += maxSegmentCount {
		end := offset + maxSegmentCount
		if end > len(chunks) {
			end = len(chunks)
		}
		parent, err := newIntermediateChunk(chunks[offset:end], cfg)
		if err != nil {
			return nil, nil, err
		}
		nextLevel = append(nextLevel, parent)
	}

	if carrier != nil {
		if len(nextLevel)%maxSegmentCount != 0 {
			// There is room at the end of the new level, merge the carrier.
			return append(nextLevel, carrier), nil, nil
		}
		return nextLevel, carrier, nil
	}

	nextLevel, carrier = popCarrierChunk(nextLevel)
	return nextLevel, carrier, nil
}

// newIntermediateChunk creates the parent committing to children: its
// payload is the child addresses in order and its span value the sum of the
// child span values.
func newIntermediateChunk(children []*Chunk, cfg config) (*Chunk, error) {
	payload := make([]byte, 0, len(children)*HashSize)
	var spanSum uint64
	for _, child := range children {
		payload = append(payload, child.Address()...)
		spanSum += child.SpanValue()
	}
	cfg.spanValue = &spanSum
	return newChunk(payload, cfg)
}

// rootChunk folds levels upwards until a single chunk remains and no carrier
// is pending.
func rootChunk(leaves []*Chunk) (*Chunk, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyChunks
	}

	level, carrier := popCarrierChunk(leaves)
	for len(level) != 1 || carrier != nil {
		var err error
		level, carrier, err = nextBMTLevel(level, carrier)
		if err != nil {
			return nil, err
		}
	}
	return level[0], nil
}
