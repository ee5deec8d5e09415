//go:build !linux

package radixjoin

import "errors"

// allocHugePage is unsupported outside Linux; callers fall back to the
// plain aligned allocator.
func allocHugePage(n int) ([]Tuple, error) {
	return nil, errors.New("radixjoin: huge pages not supported on this platform")
}
