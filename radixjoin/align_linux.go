//go:build linux

package radixjoin

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// hugePageSize is the size of a Linux transparent huge page.
const hugePageSize = 2 << 20

// allocHugePage maps an anonymous region sized to cover n Tuples plus one
// huge-page's worth of slack (so the returned slice can be trimmed to a
// huge-page-aligned start), and advises the kernel to back it with
// transparent huge pages. Grounded on grailbio-bio's k-mer table allocator,
// which bypasses Go's allocator the same way for the same reason: Ubuntu's
// default THP policy only applies to madvised regions.
func allocHugePage(n int) ([]Tuple, error) {
	if n <= 0 {
		return nil, nil
	}
	size := n*TupleSize + hugePageSize
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("radixjoin: huge-page mmap: %w", err)
	}
	if err := unix.Madvise(data, unix.MADV_HUGEPAGE); err != nil {
		return nil, fmt.Errorf("radixjoin: huge-page madvise: %w", err)
	}

	start := uintptr(unsafe.Pointer(&data[0]))
	aligned := (start-1)/hugePageSize*hugePageSize + hugePageSize
	skip := int(aligned - start)
	tuples := unsafe.Slice((*Tuple)(unsafe.Pointer(&data[skip])), n)
	return tuples, nil
}
