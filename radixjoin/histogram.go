package radixjoin

import "github.com/ajroetker/go-highway/hwy"

// histogram computes, for tuples[start:end), a fanout(d)-sized count of
// how many keys fall in each radix(key, r, d) bucket, then turns it
// in-place into a local prefix sum: on return, h[b] is this slice's
// end-offset for bucket b within the slice (spec.md §4.F). Workers cross
// a barrier after this before reading anyone else's histogram.
//
// Digit extraction uses the SIMD-dispatched shift/and ops from the hwy
// package where the slice is wide enough to amortize vector setup,
// falling back to a scalar loop otherwise — the same dual-path shape as
// a portable radix sort pass: bucket counting itself is a scalar,
// data-dependent increment regardless of how the digits were extracted.
func histogram(tuples []Tuple, start, end int, r, d uint) []int {
	h := make([]int, fanout(d))
	n := end - start
	if n <= 0 {
		return prefixSumInPlace(h)
	}

	mask := uint32(fanout(d) - 1)
	lanes := hwy.MaxLanes[uint32]()
	i := start
	if n >= lanes*4 {
		keys := make([]uint32, lanes)
		maskVec := hwy.Set(mask)
		for ; i+lanes <= end; i += lanes {
			for j := 0; j < lanes; j++ {
				keys[j] = tuples[i+j].Key
			}
			v := hwy.Load(keys)
			shifted := hwy.ShiftRight(v, int(r))
			digits := hwy.And(shifted, maskVec)
			var buf [64]uint32
			hwy.Store(digits, buf[:lanes])
			for j := 0; j < lanes; j++ {
				h[buf[j]]++
			}
		}
	}
	for ; i < end; i++ {
		h[radix(tuples[i].Key, r, d)]++
	}

	return prefixSumInPlace(h)
}

// workerHistogram computes this worker's histogram over its own
// cache-line-aligned share of tuples (see workerSlice), for use by any
// phase that runs the cooperative histogram/offset/scatter pipeline: the
// top-level pass-1 phase and the optional cooperative skew re-partition
// both call this with different (input, r, d, padding).
func workerHistogram(tuples []Tuple, nthreads, id int, r, d uint) []int {
	start, end := workerSlice(len(tuples), nthreads, id)
	return histogram(tuples, start, end, r, d)
}

// prefixSumInPlace turns a histogram of per-bucket counts into a running
// total so h[b] becomes the slice-local end-offset for bucket b.
func prefixSumInPlace(h []int) []int {
	sum := 0
	for b := range h {
		sum += h[b]
		h[b] = sum
	}
	return h
}
