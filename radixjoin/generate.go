package radixjoin

import "math/rand"

// CreateRelationPK fills a build-side relation with a permutation of
// [1..n] as keys and matching non-zero payloads — the dense,
// unique-key-per-tuple contract the array-probe join (component K)
// requires. rnd selects the permutation; nil uses a new source seeded
// with 1.
func CreateRelationPK(n int, rnd *rand.Rand) Relation {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = uint32(i + 1)
	}
	rnd.Shuffle(n, func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	tuples := make([]Tuple, n)
	for i, k := range keys {
		tuples[i] = Tuple{Key: k, Payload: k}
	}
	return Relation{Tuples: tuples, RatioHoles: 1}
}

// CreateRelationFK fills a probe-side relation of n tuples whose keys are
// drawn from [1..rLen]. skew is the fraction (0..1) of tuples drawn
// repeatedly from a single hot key (key 1); the remainder is drawn
// uniformly from [1..rLen]. skew==0 gives a uniform foreign-key
// distribution; skew close to 1 produces the heavily-skewed probe side
// spec.md §8 scenario 4 exercises.
func CreateRelationFK(n, rLen int, skew float64, rnd *rand.Rand) Relation {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(2))
	}
	if rLen <= 0 {
		rLen = 1
	}
	tuples := make([]Tuple, n)
	hotCount := int(float64(n) * skew)
	for i := 0; i < n; i++ {
		var key uint32
		if i < hotCount {
			key = 1
		} else {
			key = uint32(rnd.Intn(rLen) + 1)
		}
		tuples[i] = Tuple{Key: key, Payload: uint32(rnd.Intn(1<<20) + 1)}
	}
	// The hot-key tuples are all at the front; shuffle so the skew isn't
	// artificially clustered by input position (which would make the
	// radix partitioner's per-worker slices, not the buckets themselves,
	// absorb the skew).
	rnd.Shuffle(n, func(i, j int) { tuples[i], tuples[j] = tuples[j], tuples[i] })
	return Relation{Tuples: tuples}
}
