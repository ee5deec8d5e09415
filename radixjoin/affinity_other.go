//go:build !linux

package radixjoin

// pinOS is a no-op on platforms without a sched_setaffinity-style syscall
// exposed through golang.org/x/sys/unix (e.g. Darwin). The run still
// completes correctly, just without CPU pinning.
func pinOS(cpu int) {}
