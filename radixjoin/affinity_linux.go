//go:build linux

package radixjoin

import "golang.org/x/sys/unix"

// pinOS pins the calling (already OS-thread-locked) goroutine to cpu via
// sched_setaffinity. Errors are swallowed: pinning is a performance knob,
// not a correctness requirement (spec.md §5).
func pinOS(cpu int) {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}
