package radixjoin

import "fmt"

// CacheLineSize is the assumed L1 cache line width in bytes.
const CacheLineSize = 64

// TuplesPerCacheLine is how many Tuples fit in one cache line.
const TuplesPerCacheLine = CacheLineSize / TupleSize

// SmallPaddingTuples is the per-bucket padding used by a pass that is not
// followed by a further subdivision. Three cache lines (an odd
// multiple) is chosen deliberately to break L1 associativity conflicts
// during scatter — an even padding tends to line buckets up on the same
// associativity set.
const SmallPaddingTuples = 3 * TuplesPerCacheLine

// Config is the runtime (not process-global, see DESIGN.md) parameter pack
// threaded through a single join run: the pass-1/pass-2 bit-width split,
// padding sizes derived from it, and the optional feature flags.
type Config struct {
	// RadixBits is the total number of low key bits consumed across all
	// passes (spec.md calls this NUM_RADIX_BITS), typically 8-18.
	RadixBits uint

	// Passes is 1 or 2. With Passes==1, pass-1's job descriptors are the
	// join tasks directly; no pass-2 re-radix runs.
	Passes int

	// Bits1 is pass-1's width; Bits2 is pass-2's width. Bits1+Bits2 ==
	// RadixBits. Pass-1 reads bits [0, Bits1); pass-2 reads bits
	// [Bits1, Bits1+Bits2) — together a bijection on the RadixBits low
	// bits of the key, per spec.md §4.I's R=Bits1, D=Bits2 re-radix offset.
	Bits1, Bits2 uint

	// SkewHandling toggles the optional cooperative skew-splitter path
	// (component J). Implementations without it still produce correct —
	// just not load-balanced — results on skewed inputs.
	SkewHandling bool

	// SkewFactor is the multiplier k in the oversized-partition threshold
	// T1(nthreads) = max(fanout1, fanout2) * k.
	SkewFactor int

	// NonTemporalScatter selects the software-write-combining scatter
	// variant (buffered cache-line-sized writes) over the plain one. Purely
	// a performance knob; both variants satisfy the same invariants.
	NonTemporalScatter bool

	// HugePages requests the Linux huge-page allocation path for the
	// partition scratch buffers. Falls back silently where unsupported.
	HugePages bool
}

// DefaultSkewFactor is used by NewConfig when SkewFactor is left at 0.
const DefaultSkewFactor = 4

// NewConfig builds a validated Config from the total radix bit width and
// pass count. With two passes the bits are split pass-1-heavy: pass 1 gets
// the larger half (rounded up) and reads the low bits [0, Bits1); pass 2
// gets the remainder and reads the bits just above them.
func NewConfig(radixBits uint, passes int, opts ...ConfigOption) (Config, error) {
	if radixBits == 0 {
		return Config{}, fmt.Errorf("radixjoin: radix bit width must be positive, got %d", radixBits)
	}
	if passes != 1 && passes != 2 {
		return Config{}, fmt.Errorf("radixjoin: passes must be 1 or 2, got %d", passes)
	}

	cfg := Config{
		RadixBits:    radixBits,
		Passes:       passes,
		SkewFactor:   DefaultSkewFactor,
	}
	if passes == 2 {
		cfg.Bits1 = radixBits - radixBits/2
		cfg.Bits2 = radixBits / 2
	} else {
		cfg.Bits1 = radixBits
		cfg.Bits2 = 0
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.SkewFactor <= 0 {
		return Config{}, fmt.Errorf("radixjoin: skew factor must be positive, got %d", cfg.SkewFactor)
	}
	return cfg, nil
}

// ConfigOption mutates a Config under construction; used by NewConfig.
type ConfigOption func(*Config)

// WithSkewHandling enables the cooperative skew-splitter path.
func WithSkewHandling(factor int) ConfigOption {
	return func(c *Config) {
		c.SkewHandling = true
		if factor > 0 {
			c.SkewFactor = factor
		}
	}
}

// WithNonTemporalScatter selects the software-write-combining scatter
// variant.
func WithNonTemporalScatter() ConfigOption {
	return func(c *Config) { c.NonTemporalScatter = true }
}

// WithHugePages requests the huge-page scratch allocation path.
func WithHugePages() ConfigOption {
	return func(c *Config) { c.HugePages = true }
}

// fanout1 is 2^Bits1, the pass-1 bucket count.
func (c Config) fanout1() int { return fanout(c.Bits1) }

// fanout2 is 2^Bits2, the pass-2 bucket count (1 if Passes==1: a
// degenerate single "sub-bucket" per pass-1 bucket).
func (c Config) fanout2() int {
	if c.Passes == 1 {
		return 1
	}
	return fanout(c.Bits2)
}

// pass1Padding is the per-bucket padding reserved in the pass-1 scratch
// buffer. When a pass-2 follows, extra slack is reserved per spec.md §4.H's
// padding contract (pass-2 itself scatters into buffers of its own, see
// partitionPass2); with a single pass there is no further subdivision, so
// plain SmallPaddingTuples padding suffices.
func (c Config) pass1Padding() int {
	if c.Passes == 1 {
		return SmallPaddingTuples
	}
	return SmallPaddingTuples * (c.fanout2() + 1)
}

// pass2Padding is the per-bucket padding used within a pass-2 re-radix.
func (c Config) pass2Padding() int {
	return SmallPaddingTuples
}

// relationPadding is the total extra tuple slots a scratch buffer needs
// beyond the input length to hold every bucket's padding.
func (c Config) relationPadding() int {
	return c.pass1Padding() * c.fanout1()
}
