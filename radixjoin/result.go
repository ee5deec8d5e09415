package radixjoin

// Result is the deliverable of a successful run: the join aggregates plus
// timing breakdowns for the partition and join phases (spec.md §6).
type Result struct {
	Matches  uint64
	Checksum uint64

	TotalUsec     int64
	PartitionUsec int64
	JoinUsec      int64
}
