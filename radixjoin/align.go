package radixjoin

import "unsafe"

// allocAligned returns a slice of n Tuples whose first element starts on a
// CacheLineSize-byte boundary, by over-allocating and trimming the head.
// Go's allocator gives no alignment guarantee beyond the type's own
// alignment, so this does the pointer arithmetic by hand — the same
// technique the teacher's SIMD load/store helpers use to find lane
// boundaries, adapted here to slice offsets instead of vector lanes.
func allocAligned(n int) []Tuple {
	if n <= 0 {
		return nil
	}
	slack := CacheLineSize / TupleSize
	buf := make([]Tuple, n+slack)
	base := uintptr(unsafe.Pointer(&buf[0]))
	misalign := int(base % CacheLineSize)
	var skip int
	if misalign != 0 {
		skip = (CacheLineSize - misalign) / TupleSize
		if (CacheLineSize-misalign)%TupleSize != 0 {
			skip++
		}
	}
	return buf[skip : skip+n : skip+n]
}

// newScratch allocates the tmpR/tmpS scratch buffers for a run: num_tuples
// plus padding slots (RELATION_PADDING in spec.md §6), cache-line aligned,
// optionally via the huge-page path.
func newScratch(n int, padding int, hugePages bool) ([]Tuple, error) {
	total := n + padding
	if hugePages {
		if buf, err := allocHugePage(total); err == nil {
			return buf, nil
		}
		// Huge pages unsupported or unavailable: fall back silently, this
		// is a performance knob, not a correctness requirement.
	}
	return allocAligned(total), nil
}
