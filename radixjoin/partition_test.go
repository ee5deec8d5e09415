package radixjoin

import "testing"

func TestRadix(t *testing.T) {
	tests := []struct {
		key  uint32
		r, d uint
		want uint32
	}{
		{0b10110, 0, 3, 0b110},
		{0b10110, 2, 3, 0b101},
		{0xFF, 0, 0, 0},
		{1, 0, 1, 1},
	}
	for _, tt := range tests {
		if got := radix(tt.key, tt.r, tt.d); got != tt.want {
			t.Errorf("radix(%b, %d, %d) = %b, want %b", tt.key, tt.r, tt.d, got, tt.want)
		}
	}
}

func TestHistogramPurityAndCoverage(t *testing.T) {
	tuples := make([]Tuple, 200)
	for i := range tuples {
		tuples[i] = Tuple{Key: uint32(i * 7 % 997), Payload: uint32(i)}
	}
	const r, d = 2, 4
	h := histogram(tuples, 0, len(tuples), r, d)
	if len(h) != fanout(d) {
		t.Fatalf("len(h) = %d, want %d", len(h), fanout(d))
	}
	if h[len(h)-1] != len(tuples) {
		t.Errorf("h[last] = %d, want %d (total coverage)", h[len(h)-1], len(tuples))
	}
	for b := range h {
		if h[b] < 0 {
			t.Errorf("h[%d] = %d, must be non-negative", b, h[b])
		}
	}
	want := make([]int, fanout(d))
	for _, tup := range tuples {
		want[radix(tup.Key, r, d)]++
	}
	for b := range h {
		got := h[b]
		if b > 0 {
			got -= h[b-1]
		}
		if got != want[b] {
			t.Errorf("bucket %d count = %d, want %d", b, got, want[b])
		}
	}
}

func TestGlobalOffsetsDisjointAndOrdered(t *testing.T) {
	// Two workers, fanout 4, each with its own local histogram (already a
	// prefix sum, as histogram() returns).
	hist := [][]int{
		{2, 3, 3, 5}, // worker 0: 2 in bucket0, 1 in bucket1, 0 in bucket2, 2 in bucket3
		{1, 1, 4, 6}, // worker 1: 1 in bucket0, 0 in bucket1, 3 in bucket2, 2 in bucket3
	}
	const padding = 4
	base, bucketStart := globalOffsets(hist, padding)

	wantBucketCounts := []int{3, 1, 3, 4} // 2+1, 1+0, 0+3, 2+2
	for b, want := range wantBucketCounts {
		got := bucketStart[b+1] - padding - bucketStart[b]
		if got != want {
			t.Errorf("bucket %d length = %d, want %d", b, got, want)
		}
	}

	// Worker 0's bucket-b run must end exactly where worker 1's begins.
	for b := range wantBucketCounts {
		w0Count := hist[0][b]
		if b > 0 {
			w0Count -= hist[0][b-1]
		}
		if base[1][b] != base[0][b]+w0Count {
			t.Errorf("bucket %d: worker1 base %d != worker0 base %d + count %d",
				b, base[1][b], base[0][b], w0Count)
		}
	}

	total := bucketStart[len(bucketStart)-1]
	wantTotal := 0
	for _, c := range wantBucketCounts {
		wantTotal += c
	}
	wantTotal += padding * len(wantBucketCounts)
	if total != wantTotal {
		t.Errorf("total output length = %d, want %d", total, wantTotal)
	}
}

func TestScatterPurityAndCoverage(t *testing.T) {
	tuples := []Tuple{{Key: 0}, {Key: 1}, {Key: 2}, {Key: 3}, {Key: 0}, {Key: 2}}
	const r, d = 0, 2
	h := histogram(tuples, 0, len(tuples), r, d)
	base, bucketStart := globalOffsets([][]int{h}, 2)
	dst := make([]Tuple, bucketStart[len(bucketStart)-1])
	cursors := append([]int(nil), base[0]...)
	scatter(tuples, 0, len(tuples), r, d, dst, cursors)

	for b := 0; b < fanout(d); b++ {
		start, end := bucketStart[b], cursors[b]
		for i := start; i < end; i++ {
			if radix(dst[i].Key, r, d) != uint32(b) {
				t.Errorf("dst[%d].Key=%d landed in bucket %d's range but radixes to %d",
					i, dst[i].Key, b, radix(dst[i].Key, r, d))
			}
		}
	}

	seen := make(map[uint32]int)
	for b := 0; b < fanout(d); b++ {
		for i := bucketStart[b]; i < cursors[b]; i++ {
			seen[dst[i].Key]++
		}
	}
	for _, in := range tuples {
		seen[in.Key]--
	}
	for k, c := range seen {
		if c != 0 {
			t.Errorf("key %d: scatter lost or duplicated a tuple (delta %d)", k, c)
		}
	}
}

func TestScatterWriteCombiningMatchesPlain(t *testing.T) {
	tuples := make([]Tuple, 500)
	for i := range tuples {
		tuples[i] = Tuple{Key: uint32(i*31 + 1), Payload: uint32(i)}
	}
	const r, d = 1, 5
	padding := SmallPaddingTuples

	hPlain := histogram(tuples, 0, len(tuples), r, d)
	basePlain, bucketStartPlain := globalOffsets([][]int{hPlain}, padding)
	dstPlain := make([]Tuple, bucketStartPlain[len(bucketStartPlain)-1])
	cursorsPlain := append([]int(nil), basePlain[0]...)
	scatter(tuples, 0, len(tuples), r, d, dstPlain, cursorsPlain)

	hWC := histogram(tuples, 0, len(tuples), r, d)
	baseWC, bucketStartWC := globalOffsets([][]int{hWC}, padding)
	dstWC := make([]Tuple, bucketStartWC[len(bucketStartWC)-1])
	cursorsWC := append([]int(nil), baseWC[0]...)
	scatterWriteCombining(tuples, 0, len(tuples), r, d, dstWC, cursorsWC)

	for b := 0; b < fanout(d); b++ {
		if cursorsPlain[b] != cursorsWC[b] {
			t.Fatalf("bucket %d: plain cursor %d != write-combining cursor %d",
				b, cursorsPlain[b], cursorsWC[b])
		}
		plainKeys := make(map[uint32]int)
		wcKeys := make(map[uint32]int)
		for i := bucketStartPlain[b]; i < cursorsPlain[b]; i++ {
			plainKeys[dstPlain[i].Key]++
		}
		for i := bucketStartWC[b]; i < cursorsWC[b]; i++ {
			wcKeys[dstWC[i].Key]++
		}
		for k, c := range plainKeys {
			if wcKeys[k] != c {
				t.Errorf("bucket %d: key %d count plain=%d write-combining=%d", b, k, c, wcKeys[k])
			}
		}
	}
}

func TestPartitionPass2Purity(t *testing.T) {
	rTuples := make([]Tuple, 64)
	for i := range rTuples {
		rTuples[i] = Tuple{Key: uint32(i), Payload: uint32(i)}
	}
	sTuples := make([]Tuple, 64)
	for i := range sTuples {
		sTuples[i] = Tuple{Key: uint32(i), Payload: uint32(i * 10)}
	}
	cfg := mustConfig(t, 6, 2)
	task := partitionTask{
		r: view{tuples: rTuples, ratioHoles: 1},
		s: view{tuples: sTuples},
	}
	joinTasks := partitionPass2(task, cfg)

	var totalR, totalS int
	for _, jt := range joinTasks {
		totalR += jt.r.len()
		totalS += jt.s.len()
		for _, tup := range jt.r.tuples {
			b := radix(tup.Key, cfg.Bits1, cfg.Bits2)
			for _, other := range jt.r.tuples {
				if radix(other.Key, cfg.Bits1, cfg.Bits2) != b {
					t.Fatalf("pass-2 sub-partition mixes buckets: keys %d and %d", tup.Key, other.Key)
				}
			}
		}
	}
	if totalR != len(rTuples) {
		t.Errorf("total R across sub-partitions = %d, want %d", totalR, len(rTuples))
	}
	if totalS != len(sTuples) {
		t.Errorf("total S across sub-partitions = %d, want %d", totalS, len(sTuples))
	}
}

func TestIsSkewed(t *testing.T) {
	cfg := mustConfig(t, 8, 2, WithSkewHandling(2))
	threshold := skewThreshold(cfg)

	small := partitionTask{
		r: view{tuples: make([]Tuple, threshold-1)},
		s: view{tuples: make([]Tuple, threshold-1)},
	}
	if isSkewed(small, cfg) {
		t.Errorf("partition just under threshold (%d) reported skewed", threshold)
	}

	big := partitionTask{
		r: view{tuples: make([]Tuple, 1)},
		s: view{tuples: make([]Tuple, threshold+1)},
	}
	if !isSkewed(big, cfg) {
		t.Errorf("partition with S over threshold (%d) not reported skewed", threshold)
	}
}

func TestFanSplitJoinTasksCoversAllTuples(t *testing.T) {
	r := view{tuples: []Tuple{{Key: 1, Payload: 1}}}
	s := view{tuples: make([]Tuple, 97)}
	for i := range s.tuples {
		s.tuples[i] = Tuple{Key: uint32(i)}
	}

	tasks := fanSplitJoinTasks(r, s, 8)
	if len(tasks) == 0 {
		t.Fatal("fanSplitJoinTasks returned no tasks")
	}
	total := 0
	for _, task := range tasks {
		if task.r.len() != r.len() {
			t.Errorf("task.r.len() = %d, want %d (r is shared across all splits)", task.r.len(), r.len())
		}
		total += task.s.len()
	}
	if total != s.len() {
		t.Errorf("total S across fan-split tasks = %d, want %d", total, s.len())
	}
}

func TestWorkerSliceCoversRange(t *testing.T) {
	const n, nthreads = 1000, 6
	seen := make([]bool, n)
	for id := 0; id < nthreads; id++ {
		start, end := workerSlice(n, nthreads, id)
		if start < 0 || end > n || start > end {
			t.Fatalf("workerSlice(%d,%d,%d) = (%d,%d) out of range", n, nthreads, id, start, end)
		}
		for i := start; i < end; i++ {
			if seen[i] {
				t.Fatalf("index %d assigned to more than one worker", i)
			}
			seen[i] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			t.Errorf("index %d not assigned to any worker", i)
		}
	}
}
