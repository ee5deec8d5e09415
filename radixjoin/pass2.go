package radixjoin

// partitionTask is a single non-empty pass-1 (R,S) bucket pair awaiting
// serial re-radix into pass-2 sub-partitions (spec.md §4.I). Multiple
// partitionTasks run in parallel — one worker per task — even though each
// task's own re-radix is single-threaded.
type partitionTask struct {
	r, s view
}

// joinTask is a final (R,S) partition pair whose radix bits agree, ready
// for the per-partition join (spec.md §4.K). With Config.Passes==1, the
// pass-1 buckets are join tasks directly and partitionPass2 is never
// called.
type joinTask struct {
	r, s view
}

// partitionPass2 re-radixes one pass-1 bucket pair using bit offset
// Bits1 and width Bits2, producing the non-empty pass-2 sub-pairs as join
// tasks. This runs serially within a single task — the parallelism comes
// from many tasks running concurrently across workers, not from
// parallelizing a single task's re-radix.
func partitionPass2(t partitionTask, cfg Config) []joinTask {
	r, d := cfg.Bits1, cfg.Bits2
	padding := cfg.pass2Padding()
	nb := fanout(d)

	rTmp := allocAligned(t.r.len() + nb*padding)
	sTmp := allocAligned(t.s.len() + nb*padding)

	rHist := histogram(t.r.tuples, 0, t.r.len(), r, d)
	sHist := histogram(t.s.tuples, 0, t.s.len(), r, d)

	rBase, rBucketStart := globalOffsets([][]int{rHist}, padding)
	sBase, sBucketStart := globalOffsets([][]int{sHist}, padding)
	rCursors := append([]int(nil), rBase[0]...)
	sCursors := append([]int(nil), sBase[0]...)

	scatter(t.r.tuples, 0, t.r.len(), r, d, rTmp, rCursors)
	scatter(t.s.tuples, 0, t.s.len(), r, d, sTmp, sCursors)

	tasks := make([]joinTask, 0, nb)
	for b := 0; b < nb; b++ {
		rLen := rCursors[b] - rBucketStart[b]
		sLen := sCursors[b] - sBucketStart[b]
		if rLen == 0 || sLen == 0 {
			continue
		}
		tasks = append(tasks, joinTask{
			r: view{tuples: rTmp[rBucketStart[b] : rBucketStart[b]+rLen], ratioHoles: t.r.ratioHoles},
			s: view{tuples: sTmp[sBucketStart[b] : sBucketStart[b]+sLen]},
		})
	}
	return tasks
}
