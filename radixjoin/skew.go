package radixjoin

// skewThreshold is T1(nthreads) = max(fanout1, fanout2) * k from spec.md
// §4.J: a pass-1 partition whose R or S side exceeds this is routed to
// the skew queue instead of the ordinary (serial, single-worker) pass-2
// partitioner.
func skewThreshold(cfg Config) int {
	f1, f2 := cfg.fanout1(), cfg.fanout2()
	k := max(f1, f2)
	return k * cfg.SkewFactor
}

// isSkewed reports whether t's R or S side is large enough to warrant
// cooperative (all-worker) re-partitioning rather than the ordinary
// single-worker serial pass-2.
func isSkewed(t partitionTask, cfg Config) bool {
	threshold := skewThreshold(cfg)
	return t.r.len() > threshold || t.s.len() > threshold
}

// fanSplitJoinTasks cuts s into contiguous chunks of ceil(len(s)/nthreads)
// tuples (at most nthreads chunks; the last may be shorter), each paired
// with the same r, so the join phase can absorb a still-oversized S side via
// parallelism rather than further radix subdivision (spec.md §4.J: "this
// lets the join phase absorb the outlier via parallelism rather than code
// changes in K").
func fanSplitJoinTasks(r, s view, nthreads int) []joinTask {
	if nthreads <= 1 || s.len() == 0 {
		return []joinTask{{r: r, s: s}}
	}
	tasks := make([]joinTask, 0, nthreads)
	n := s.len()
	chunk := (n + nthreads - 1) / nthreads
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		tasks = append(tasks, joinTask{
			r: r,
			s: view{tuples: s.tuples[start:end]},
		})
	}
	return tasks
}
