package radixjoin

import (
	"fmt"
	"sync"
	"time"
)

// workerResult is one worker's contribution to the final Result: its
// share of the matches and the commutative checksum (spec.md §3's
// "sum over all workers of matches equals..." invariant).
type workerResult struct {
	matches, checksum uint64
}

// skewShared is the state worker 0 publishes to the rest of the team for
// one skew-queue task at a time; every field is written only by worker 0
// and only between two barrier crossings that every worker (including
// worker 0) participates in, so the barrier's happens-before edge is what
// makes these plain fields safe to read from any worker without further
// synchronization.
type skewShared struct {
	task       partitionTask
	ok         bool
	histR      [][]int
	histS      [][]int
	dstR, dstS []Tuple
}

// run is the shared, per-invocation state for one Run call: the
// orchestrator (component L) spawns nthreads workers that all close over
// a *run and execute run.worker(id).
type run struct {
	relR, relS Relation
	cfg        Config
	nthreads   int
	mapping    CPUMapping

	tmpR, tmpS []Tuple
	histR      [][]int
	histS      [][]int

	barrier   *barrier
	partQueue *taskBag[partitionTask]
	skewQueue *taskBag[partitionTask]
	joinQueue *taskBag[joinTask]

	skew skewShared

	probeN int

	results []workerResult

	partitionDone time.Time
	joinDone      time.Time
}

// Run executes one parallel radix hash join of relR (build side) against
// relS (probe side) using nthreads workers, per spec.md §6's invocation
// contract. Worker CPU pinning uses DefaultCPUMapping; use RunWithMapping
// to supply a topology-aware mapping.
func Run(relR, relS Relation, nthreads int, cfg Config) (Result, error) {
	return RunWithMapping(relR, relS, nthreads, cfg, DefaultCPUMapping)
}

// RunWithMapping is Run with an injectable logical->physical CPU mapping,
// the external collaborator spec.md §6 calls get_cpu_id.
func RunWithMapping(relR, relS Relation, nthreads int, cfg Config, mapping CPUMapping) (Result, error) {
	if nthreads <= 0 {
		return Result{}, fmt.Errorf("radixjoin: nthreads must be positive, got %d", nthreads)
	}
	if mapping == nil {
		mapping = DefaultCPUMapping
	}

	start := time.Now()

	r := &run{
		relR:     relR,
		relS:     relS,
		cfg:      cfg,
		nthreads: nthreads,
		mapping:  mapping,
		histR:    make([][]int, nthreads),
		histS:    make([][]int, nthreads),
		barrier:  newBarrier(nthreads),
		probeN:   computeProbeRange(len(relR.Tuples), relR.RatioHoles, cfg.RadixBits),
		results:  make([]workerResult, nthreads),
	}
	r.partQueue = newTaskBag[partitionTask](r.cfg.fanout1())
	r.skewQueue = newTaskBag[partitionTask](r.cfg.fanout1())
	r.joinQueue = newTaskBag[joinTask](r.cfg.fanout1() * r.cfg.fanout2())

	var err error
	r.tmpR, err = newScratch(len(relR.Tuples), cfg.relationPadding(), cfg.HugePages)
	if err != nil {
		return Result{}, fmt.Errorf("radixjoin: allocate R scratch: %w", err)
	}
	r.tmpS, err = newScratch(len(relS.Tuples), cfg.relationPadding(), cfg.HugePages)
	if err != nil {
		return Result{}, fmt.Errorf("radixjoin: allocate S scratch: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(nthreads)
	for id := 0; id < nthreads; id++ {
		go func(id int) {
			defer wg.Done()
			r.worker(id)
		}(id)
	}
	wg.Wait()

	var matches, checksum uint64
	for _, res := range r.results {
		matches += res.matches
		checksum += res.checksum
	}

	total := time.Since(start)
	partition := r.partitionDone.Sub(start)
	join := r.joinDone.Sub(r.partitionDone)

	return Result{
		Matches:       matches,
		Checksum:      checksum,
		TotalUsec:     total.Microseconds(),
		PartitionUsec: partition.Microseconds(),
		JoinUsec:      join.Microseconds(),
	}, nil
}

// worker is the body every spawned goroutine runs: the phase sequence of
// spec.md §4.L step 4.
func (r *run) worker(id int) {
	pin(r.mapping(id))

	pad1 := r.cfg.pass1Padding()

	// Phase 1: histogram(R) -> barrier -> scatter(R).
	r.histR[id] = workerHistogram(r.relR.Tuples, r.nthreads, id, 0, r.cfg.Bits1)
	r.barrier.wait()
	rBase, rBucketStart := globalOffsets(r.histR, pad1)
	workerScatter(r.relR.Tuples, r.nthreads, id, 0, r.cfg.Bits1, r.tmpR, rBase[id], r.cfg.NonTemporalScatter)

	// Phase 2: histogram(S) -> barrier -> scatter(S) -> barrier.
	r.histS[id] = workerHistogram(r.relS.Tuples, r.nthreads, id, 0, r.cfg.Bits1)
	r.barrier.wait()
	sBase, sBucketStart := globalOffsets(r.histS, pad1)
	workerScatter(r.relS.Tuples, r.nthreads, id, 0, r.cfg.Bits1, r.tmpS, sBase[id], r.cfg.NonTemporalScatter)
	r.barrier.wait()

	if id == 0 {
		r.partitionDone = time.Now()
		r.dispatchPass1Buckets(rBucketStart, sBucketStart, pad1)
	}
	r.barrier.wait()

	r.runPass2Loop()
	r.barrier.wait()

	if r.cfg.SkewHandling {
		if r.cfg.Passes == 1 {
			r.runSkewLoopSinglePass(id)
		} else {
			r.runSkewLoopTwoPass(id)
		}
	}
	r.barrier.wait()

	matches, checksum := r.runJoinLoop()
	r.results[id] = workerResult{matches: matches, checksum: checksum}
	r.barrier.wait()

	if id == 0 {
		r.joinDone = time.Now()
	}
}

// dispatchPass1Buckets walks the pass-1 output (worker 0 only, called
// between two barriers so its writes to the shared queues are visible to
// every worker by the time they start consuming) and routes each
// non-empty (R_b,S_b) pair to the skew queue, the pass-2 partitioning
// queue, or directly to the join queue (single-pass case), per spec.md
// §4.I/§4.J.
func (r *run) dispatchPass1Buckets(rBucketStart, sBucketStart []int, pad1 int) {
	nb1 := r.cfg.fanout1()
	for b := 0; b < nb1; b++ {
		rLen := rBucketStart[b+1] - pad1 - rBucketStart[b]
		sLen := sBucketStart[b+1] - pad1 - sBucketStart[b]
		if rLen == 0 || sLen == 0 {
			continue
		}
		rv := view{tuples: r.tmpR[rBucketStart[b] : rBucketStart[b]+rLen], ratioHoles: r.relR.RatioHoles}
		sv := view{tuples: r.tmpS[sBucketStart[b] : sBucketStart[b]+sLen]}
		task := partitionTask{r: rv, s: sv}

		if r.cfg.SkewHandling && isSkewed(task, r.cfg) {
			r.skewQueue.add(task)
			continue
		}
		if r.cfg.Passes == 1 {
			r.joinQueue.add(joinTask{r: rv, s: sv})
		} else {
			r.partQueue.add(task)
		}
	}
}

// runPass2Loop drains the pass-2 partitioning queue: each task is
// re-radixed serially by whichever worker pops it (spec.md §4.I), but
// many tasks drain concurrently across the team.
func (r *run) runPass2Loop() {
	for {
		task, ok := r.partQueue.get()
		if !ok {
			return
		}
		for _, jt := range partitionPass2(task, r.cfg) {
			r.joinQueue.add(jt)
		}
	}
}

// runSkewLoopSinglePass handles the skew queue when Config.Passes==1:
// there is no pass-2 bit budget left to re-radix with, so an oversized
// partition can only be absorbed by fan-splitting its S side across the
// team directly (spec.md §4.J's join-phase-absorbs-the-outlier path).
func (r *run) runSkewLoopSinglePass(id int) {
	for {
		r.barrier.wait()
		if id == 0 {
			task, ok := r.skewQueue.get()
			r.skew.task, r.skew.ok = task, ok
		}
		r.barrier.wait()
		if !r.skew.ok {
			return
		}
		if id == 0 {
			for _, jt := range fanSplitJoinTasks(r.skew.task.r, r.skew.task.s, r.nthreads) {
				r.joinQueue.add(jt)
			}
		}
		r.barrier.wait()
	}
}

// runSkewLoopTwoPass handles the skew queue when Config.Passes==2: the
// whole team cooperatively re-radixes one oversized pass-1 partition at a
// time using pass-2's bit offset/width (the same histogram/offset/scatter
// primitives the top-level pass-1 phase uses, just scoped to one
// partition and parameterized differently), then fan-splits any sub-
// partition that is still oversized (spec.md §4.J).
func (r *run) runSkewLoopTwoPass(id int) {
	pad2 := r.cfg.pass2Padding()
	nb2 := r.cfg.fanout2()

	for {
		r.barrier.wait()
		if id == 0 {
			task, ok := r.skewQueue.get()
			r.skew.task, r.skew.ok = task, ok
			if ok {
				r.skew.histR = make([][]int, r.nthreads)
				r.skew.histS = make([][]int, r.nthreads)
				r.skew.dstR = allocAligned(task.r.len() + nb2*pad2)
				r.skew.dstS = allocAligned(task.s.len() + nb2*pad2)
			}
		}
		r.barrier.wait()
		if !r.skew.ok {
			return
		}

		r.skew.histR[id] = workerHistogram(r.skew.task.r.tuples, r.nthreads, id, r.cfg.Bits1, r.cfg.Bits2)
		r.skew.histS[id] = workerHistogram(r.skew.task.s.tuples, r.nthreads, id, r.cfg.Bits1, r.cfg.Bits2)
		r.barrier.wait()

		rBase, rBucketStart := globalOffsets(r.skew.histR, pad2)
		sBase, sBucketStart := globalOffsets(r.skew.histS, pad2)
		workerScatter(r.skew.task.r.tuples, r.nthreads, id, r.cfg.Bits1, r.cfg.Bits2, r.skew.dstR, rBase[id], r.cfg.NonTemporalScatter)
		workerScatter(r.skew.task.s.tuples, r.nthreads, id, r.cfg.Bits1, r.cfg.Bits2, r.skew.dstS, sBase[id], r.cfg.NonTemporalScatter)
		r.barrier.wait()

		if id == 0 {
			for b := 0; b < nb2; b++ {
				rLen := rBucketStart[b+1] - pad2 - rBucketStart[b]
				sLen := sBucketStart[b+1] - pad2 - sBucketStart[b]
				if rLen == 0 || sLen == 0 {
					continue
				}
				rv := view{tuples: r.skew.dstR[rBucketStart[b] : rBucketStart[b]+rLen], ratioHoles: r.skew.task.r.ratioHoles}
				sv := view{tuples: r.skew.dstS[sBucketStart[b] : sBucketStart[b]+sLen]}
				if sLen > skewThreshold(r.cfg) {
					for _, jt := range fanSplitJoinTasks(rv, sv, r.nthreads) {
						r.joinQueue.add(jt)
					}
				} else {
					r.joinQueue.add(joinTask{r: rv, s: sv})
				}
			}
		}
	}
}

// runJoinLoop drains the join queue, accumulating this worker's share of
// matches and checksum (spec.md §4.K/§4.L).
func (r *run) runJoinLoop() (matches, checksum uint64) {
	for {
		task, ok := r.joinQueue.get()
		if !ok {
			return matches, checksum
		}
		m, c := joinPartition(task, r.cfg.RadixBits, r.probeN)
		matches += m
		checksum += c
	}
}
