package bmt

const (
	// SegmentSize is the byte length of one BMT segment, equal to the hash size.
	SegmentSize = 32

	// SegmentPairSize is the input length of one pairwise hashing step.
	SegmentPairSize = 2 * SegmentSize

	// HashSize is the digest length of the BMT hash primitive.
	HashSize = 32

	// DefaultMaxPayloadSize is the payload capacity of a standard chunk,
	// 128 segments.
	DefaultMaxPayloadSize = 4096
)

// config collects the knobs shared by chunk, file and proof construction.
type config struct {
	hasher         HasherFn
	maxPayloadSize int
	spanLength     int
	spanValue      *uint64
}

// Option customizes chunk, file and proof computations.
type Option func(*config)

// WithHasher replaces the default Keccak256 hash primitive. The same hasher
// must be used on both sides of a proof exchange.
func WithHasher(hasher HasherFn) Option {
	return func(c *config) {
		c.hasher = hasher
	}
}

// WithMaxPayloadSize sets the chunk payload capacity. It must be a power of
// two multiple of SegmentSize for the pairwise hashing rounds to terminate
// on a single root segment.
func WithMaxPayloadSize(size int) Option {
	return func(c *config) {
		c.maxPayloadSize = size
	}
}

// WithSpanLength sets the serialized span length in bytes.
func WithSpanLength(length int) Option {
	return func(c *config) {
		c.spanLength = length
	}
}

// WithSpanValue fixes the span value of a chunk instead of deriving it from
// the payload length. Intermediate file tree chunks use this: their span is
// the total byte count covered by their subtree, not their own payload
// length.
func WithSpanValue(value uint64) Option {
	return func(c *config) {
		c.spanValue = &value
	}
}

func newConfig(opts ...Option) config {
	c := config{
		hasher:         Keccak256,
		maxPayloadSize: DefaultMaxPayloadSize,
		spanLength:     SpanSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// maxSegmentCount is the branching factor implied by the payload capacity,
// 128 for standard chunks.
func (c config) maxSegmentCount() int {
	return c.maxPayloadSize / SegmentSize
}
