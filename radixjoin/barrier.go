package radixjoin

import "sync"

// barrier is an N-party reusable barrier: n goroutines call wait, and all
// n are released together once the last one arrives. Unlike a
// sync.WaitGroup, the same barrier can be waited on again immediately
// after release — which the orchestrator needs, since workers cross six
// or more barriers per run in sequence without being re-spawned.
//
// Release is deterministic: the goroutine that observes the last arrival
// is the one that advances the generation and wakes everyone else, so
// "happens-before" holds between every arrival and every release (spec.md
// §5's ordering requirement between scatter writes and the subsequent
// read of the same buffer).
type barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n          int
	count      int
	generation uint64
}

// newBarrier creates a barrier for n parties. n must be positive.
func newBarrier(n int) *barrier {
	b := &barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// wait blocks until all n parties have called wait for the current
// generation, then releases them all.
func (b *barrier) wait() {
	b.mu.Lock()
	gen := b.generation
	b.count++
	if b.count == b.n {
		b.count = 0
		b.generation++
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
	b.mu.Unlock()
}
