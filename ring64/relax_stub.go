// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - Fallback Implementation
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Feed Handler
// Component: Cross-Platform Compatibility Layer
//
// Description:
//   Fallback implementation for architectures without specialized spin-wait instructions.
//   Provides API compatibility while allowing platform-specific optimizations where available.
//
// Compilation Targets:
//   - RISC-V, MIPS, PowerPC, s390x, and other architectures
//   - Builds with assembly disabled (noasm tag)
//   - Builds with CGO disabled (nocgo tag)
//
// Supported Architectures (with dedicated implementations):
//   - amd64: Uses PAUSE instruction (relax_amd64.go)
//   - arm64: Uses YIELD instruction (relax_arm64.go)
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build (!amd64 && !arm64) || noasm || nocgo

package ring64

import "runtime"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CPU RELAXATION FUNCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// cpuRelax yields the processor on platforms without a dedicated
// spin-wait hint instruction. Gosched keeps the spin loop from starving
// the runtime while preserving the polling contract.
//
//go:nosplit
//go:inline
//go:registerparams
func cpuRelax() {
	runtime.Gosched()
}
