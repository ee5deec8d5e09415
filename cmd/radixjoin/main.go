// Command radixjoin runs a synthetic parallel radix hash join and reports
// its match count, checksum, and phase timings.
//
// Usage:
//
//	radixjoin -rsize 16000000 -sratio 16 -threads 8 -radixbits 14 -passes 2
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/ajroetker/radixjoin/radixjoin"
)

var (
	rSize        = flag.Int("rsize", 16*1024*1024, "number of tuples in the build (R) relation")
	sRatio       = flag.Int("sratio", 4, "S size as a multiple of R size")
	threads      = flag.Int("threads", 4, "number of worker goroutines")
	radixBits    = flag.Uint("radixbits", 14, "total low key bits consumed by partitioning")
	passes       = flag.Int("passes", 2, "number of partitioning passes (1 or 2)")
	skew         = flag.Bool("skew", false, "enable the cooperative skew-splitter path")
	skewFactor   = flag.Int("skewfactor", radixjoin.DefaultSkewFactor, "oversized-partition threshold multiplier")
	writeCombine = flag.Bool("writecombine", false, "use the software write-combining scatter variant")
	hugePages    = flag.Bool("hugepages", false, "allocate scratch buffers from huge pages where supported")
	fkSkew       = flag.Float64("fkskew", 0, "fraction of S tuples drawn from a single hot key (0..1)")
)

func main() {
	flag.Parse()

	if *rSize <= 0 {
		fmt.Fprintf(os.Stderr, "Error: -rsize must be positive\n\n")
		flag.Usage()
		os.Exit(1)
	}

	var opts []radixjoin.ConfigOption
	if *skew {
		opts = append(opts, radixjoin.WithSkewHandling(*skewFactor))
	}
	if *writeCombine {
		opts = append(opts, radixjoin.WithNonTemporalScatter())
	}
	if *hugePages {
		opts = append(opts, radixjoin.WithHugePages())
	}

	cfg, err := radixjoin.NewConfig(*radixBits, *passes, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	relR := radixjoin.CreateRelationPK(*rSize, rand.New(rand.NewSource(1)))
	relS := radixjoin.CreateRelationFK(*rSize**sRatio, *rSize, *fkSkew, rand.New(rand.NewSource(2)))

	result, err := radixjoin.Run(relR, relS, *threads, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("matches=%d checksum=%d total_usec=%d partition_usec=%d join_usec=%d\n",
		result.Matches, result.Checksum, result.TotalUsec, result.PartitionUsec, result.JoinUsec)
}
