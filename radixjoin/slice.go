package radixjoin

// workerSlice divides n items into nthreads contiguous, cache-line-aligned
// chunks for worker id (0-based). Items are handed out a cache line at a
// time to low-id workers first; the remainder that doesn't fill a whole
// line goes to the last worker, per spec.md §4.L item 2.
func workerSlice(n, nthreads, id int) (start, end int) {
	if nthreads <= 0 || n <= 0 {
		return 0, 0
	}
	lines := n / TuplesPerCacheLine
	tailTuples := n - lines*TuplesPerCacheLine

	linesPerWorker := lines / nthreads
	extraLines := lines % nthreads

	// Workers with id < extraLines get one additional whole cache line.
	startLine := id*linesPerWorker + min(id, extraLines)
	myLines := linesPerWorker
	if id < extraLines {
		myLines++
	}
	start = startLine * TuplesPerCacheLine
	end = start + myLines*TuplesPerCacheLine

	if id == nthreads-1 {
		end += tailTuples
	}
	return start, end
}
