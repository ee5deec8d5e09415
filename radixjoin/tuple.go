// Package radixjoin implements a parallel, cache-conscious radix hash join
// between a build relation (primary-key side) and a probe relation
// (foreign-key side): two-pass radix partitioning of both relations
// followed by a parallel per-partition array-probe join.
package radixjoin

// Tuple is the fixed-width (key, payload) pair the join operates on.
// Payload 0 on the build side is reserved as the "absent" sentinel for the
// array-probe join (see Relation and the direct-addressed probe in
// join.go).
type Tuple struct {
	Key     uint32
	Payload uint32
}

// TupleSize is sizeof(Tuple) in bytes: a 32-bit key and a 32-bit payload.
const TupleSize = 8

// Relation is a contiguous array of tuples plus the density metadata the
// join needs to size its probe array.
//
// Keys are unique on the build (R) side; they may repeat on the probe (S)
// side. RatioHoles is only ever consulted on the build side (see join.go
// and Run) — it is carried here on both relations for symmetry with the
// generator contract, but a Relation used purely as a probe side may leave
// it at its zero value.
type Relation struct {
	Tuples []Tuple

	// RatioHoles is the expected ratio of key range to tuple count: 1 means
	// the key space is dense, 2 means half of it is vacant, etc. It sizes
	// the build-side direct-addressed lookup array used by the join.
	RatioHoles int
}

// Len returns the number of tuples in the relation.
func (r Relation) Len() int { return len(r.Tuples) }

// view is an internal (base, density) slice reference used to pass
// partition content between phases without copying. A view never aliases
// padding slots: its length is exactly the tuple count it holds.
type view struct {
	tuples     []Tuple
	ratioHoles int
}

func (v view) len() int { return len(v.tuples) }

// relationView returns a view of the whole relation. The pass-1 phase in
// orchestrator.go reads Relation.Tuples directly and does not call it.
func relationView(r Relation) view {
	return view{tuples: r.Tuples, ratioHoles: r.RatioHoles}
}
