//go:build !linux
// +build !linux

// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: setaffinity_stub.go — Thread-to-core binding (non-Linux)
//
// Purpose:
//   - No-op affinity stub for platforms without sched_setaffinity.
//     LockOSThread still provides thread stability; core placement is
//     left to the scheduler.
// ─────────────────────────────────────────────────────────────────────────────

package ring64

func setAffinity(cpu int) {
	_ = cpu
}
