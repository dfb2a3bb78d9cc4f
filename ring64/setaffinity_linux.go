//go:build linux
// +build linux

// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: setaffinity_linux.go — Thread-to-core binding (Linux)
//
// Purpose:
//   - Pins the calling OS thread to a single CPU core via a direct
//     sched_setaffinity syscall, avoiding any wrapper overhead.
//
// Notes:
//   - Masks are pre-computed for cores 0..63; out-of-range requests are
//     ignored rather than failed, since affinity is an optimization.
// ─────────────────────────────────────────────────────────────────────────────

package ring64

import (
	"syscall"
	"unsafe"
)

var cpuMasks = [...][1]uintptr{
	{1 << 0}, {1 << 1}, {1 << 2}, {1 << 3}, {1 << 4}, {1 << 5}, {1 << 6}, {1 << 7},
	{1 << 8}, {1 << 9}, {1 << 10}, {1 << 11}, {1 << 12}, {1 << 13}, {1 << 14}, {1 << 15},
	{1 << 16}, {1 << 17}, {1 << 18}, {1 << 19}, {1 << 20}, {1 << 21}, {1 << 22}, {1 << 23},
	{1 << 24}, {1 << 25}, {1 << 26}, {1 << 27}, {1 << 28}, {1 << 29}, {1 << 30}, {1 << 31},
	{1 << 32}, {1 << 33}, {1 << 34}, {1 << 35}, {1 << 36}, {1 << 37}, {1 << 38}, {1 << 39},
	{1 << 40}, {1 << 41}, {1 << 42}, {1 << 43}, {1 << 44}, {1 << 45}, {1 << 46}, {1 << 47},
	{1 << 48}, {1 << 49}, {1 << 50}, {1 << 51}, {1 << 52}, {1 << 53}, {1 << 54}, {1 << 55},
	{1 << 56}, {1 << 57}, {1 << 58}, {1 << 59}, {1 << 60}, {1 << 61}, {1 << 62}, {1 << 63},
}

func setAffinity(cpu int) {
	// Validate CPU index
	if cpu < 0 || cpu >= len(cpuMasks) {
		return
	}

	// Get pre-computed mask
	mask := &cpuMasks[cpu]

	// Direct syscall for minimum overhead
	_, _, _ = syscall.RawSyscall(
		syscall.SYS_SCHED_SETAFFINITY,
		0,                               // Current thread
		uintptr(unsafe.Sizeof(mask[0])), // Mask size
		uintptr(unsafe.Pointer(mask)),   // Mask pointer
	)
}
