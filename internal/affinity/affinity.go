// Package affinity pins the calling OS thread to a single logical CPU and
// exposes the cache-line size used to pad cross-thread atomics.
//
// Pinning is best-effort: on platforms or containers where
// sched_setaffinity is unavailable or denied, Pin returns ErrUnsupported and
// the caller is expected to log a warning and continue unpinned rather than
// fail the run.
package affinity

import (
	"errors"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrUnsupported is returned by Pin when CPU affinity cannot be set on this
// platform or for this process. It is never fatal.
var ErrUnsupported = errors.New("affinity: cpu pinning unsupported")

// DefaultCacheLineSize is used when the environment does not override it.
// Matches the common x86-64 / arm64 L1 line size.
const DefaultCacheLineSize = 64

// CacheLineSize returns the L1 data cache line size in bytes, read from the
// L1_CACHE_LINESIZE environment variable if set (mirroring the original
// build-time L1_CACHE_LINESIZE macro), falling back to DefaultCacheLineSize.
func CacheLineSize() int {
	if v := os.Getenv("L1_CACHE_LINESIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultCacheLineSize
}

// PageSize returns the system page size, read from the PAGESIZE environment
// variable if set, falling back to runtime-reported value.
func PageSize() int {
	if v := os.Getenv("PAGESIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return os.Getpagesize()
}

// Pin locks the calling goroutine to its current OS thread and restricts
// that thread to run only on logical CPU cpuID.
//
// The caller must not call runtime.UnlockOSThread afterwards for the
// lifetime of the worker; pinning is meant to last for the duration of a
// single benchmark worker goroutine.
func Pin(cpuID int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return errors.Join(ErrUnsupported, err)
	}
	return nil
}
