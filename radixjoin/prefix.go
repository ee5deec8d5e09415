package radixjoin

// globalOffsets composes the per-worker local histograms (already
// slice-local prefix sums, see histogram) into disjoint, padded write
// offsets into the shared scratch buffer (spec.md §4.G).
//
// Buckets are concatenated in bucket order; within a bucket, workers are
// concatenated in id order (worker 0's tuples for bucket b, then worker
// 1's, ...), and each bucket is followed by padding untouched slots so
// distinct buckets never share a cache line.
//
// base[t][b] is the cursor worker t should start scattering bucket b's
// tuples at. bucketStart[b] is bucket b's first slot (post-padding);
// bucketStart[len(bucketStart)-1] equals the total output length
// (sum of all tuples plus fanout*padding), the invariant spec.md §3
// requires to be pass-decomposition-invariant.
func globalOffsets(histograms [][]int, padding int) (base [][]int, bucketStart []int) {
	nthreads := len(histograms)
	fanoutN := len(histograms[0])

	totals := make([][]int, nthreads)
	columnSum := make([]int, fanoutN)
	for t := 0; t < nthreads; t++ {
		totals[t] = make([]int, fanoutN)
		prev := 0
		for b := 0; b < fanoutN; b++ {
			totals[t][b] = histograms[t][b] - prev
			prev = histograms[t][b]
			columnSum[b] += totals[t][b]
		}
	}

	bucketStart = make([]int, fanoutN+1)
	for b := 0; b < fanoutN; b++ {
		bucketStart[b+1] = bucketStart[b] + columnSum[b] + padding
	}

	base = make([][]int, nthreads)
	runningPerBucket := make([]int, fanoutN)
	for t := 0; t < nthreads; t++ {
		base[t] = make([]int, fanoutN)
		for b := 0; b < fanoutN; b++ {
			base[t][b] = bucketStart[b] + runningPerBucket[b]
			runningPerBucket[b] += totals[t][b]
		}
	}
	return base, bucketStart
}
