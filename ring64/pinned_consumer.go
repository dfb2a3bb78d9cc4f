// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ CORE-PINNED CONSUMER SYSTEM
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Feed Handler
// Component: Dedicated Core Record Processing
//
// Description:
//   CPU core-bound consumer implementation for the normalized-record ring. Provides adaptive
//   polling strategies with hot/cold detection and automatic CPU relaxation to balance
//   latency and power consumption while draining the feed handler's output.
//
// Adaptive Behavior:
//   - Hot mode: Continuous polling while packets are flowing
//   - Cool mode: CPU relaxation after idle threshold
//   - Automatic transition based on record arrival patterns
//   - Cooldown variant additionally manages the global activity flag
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package ring64

import (
	"runtime"
	"time"

	"itchfeed/control"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION CONSTANTS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

const (
	// hotWindow defines the duration to maintain aggressive polling after activity.
	// During this window, the consumer assumes more records are likely to arrive.
	hotWindow = 5 * time.Second

	// spinBudget sets the number of failed polls before CPU relaxation.
	// Balances responsiveness with power efficiency.
	spinBudget = 224
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// STANDARD PINNED CONSUMER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// PinnedConsumer launches a goroutine bound to a specific CPU core for ring consumption.
// The consumer adaptively adjusts its polling strategy based on record traffic patterns.
//
// PARAMETERS:
//   - core: Target CPU core index (0-based)
//   - ring: SPSC ring buffer to consume from
//   - stop: Pointer to shutdown flag (non-zero triggers drain and exit)
//   - hot: Pointer to producer activity flag (1 = active ingest)
//   - handler: Callback invoked with each dequeued payload; the pointer
//     references a stack copy valid for the duration of the call
//   - done: Channel closed when the consumer terminates
//
// THREADING MODEL:
//
//	The goroutine locks to an OS thread and sets CPU affinity to ensure
//	consistent NUMA locality and predictable cache behavior.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func PinnedConsumer(
	core int,
	ring *Ring,
	stop *uint32,
	hot *uint32,
	handler func(*[PayloadSize]byte),
	done chan<- struct{},
) {
	go func() {
		// Lock goroutine to OS thread for CPU affinity
		runtime.LockOSThread()
		setAffinity(core) // Platform-specific CPU binding

		// Ensure cleanup on exit
		defer func() {
			runtime.UnlockOSThread()
			close(done)
		}()

		// Polling state management
		var rec [PayloadSize]byte // Reused dequeue target
		var miss int              // Consecutive failed polls
		lastHit := time.Now()     // Last successful record receipt

		// Main consumption loop
		for {
			// Priority 1: Check for shutdown signal
			if *stop != 0 {
				// Drain whatever the producer already published
				for ring.Pop(&rec) {
					handler(&rec)
				}
				return
			}

			// Priority 2: Attempt record consumption
			if ring.Pop(&rec) {
				handler(&rec)
				miss = 0
				lastHit = time.Now()
				continue
			}

			// Priority 3: Determine polling strategy
			// Stay in hot mode if producer is active or recent activity
			if *hot == 1 || time.Since(lastHit) <= hotWindow {
				continue // Keep spinning for low latency
			}

			// Priority 4: Apply CPU relaxation after threshold
			if miss++; miss >= spinBudget {
				miss = 0
				cpuRelax() // Reduce power consumption
			}
		}
	}()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// COOLDOWN-MANAGING CONSUMER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// PinnedConsumerWithCooldown is the variant for the primary consumer core.
// In addition to standard record consumption, it polls the global cooldown
// state so the hot flag clears once the feed goes quiet.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func PinnedConsumerWithCooldown(
	core int,
	ring *Ring,
	stop *uint32,
	hot *uint32,
	handler func(*[PayloadSize]byte),
	done chan<- struct{},
) {
	go func() {
		// Thread affinity setup
		runtime.LockOSThread()
		setAffinity(core)

		// Cleanup on termination
		defer func() {
			runtime.UnlockOSThread()
			close(done)
		}()

		// Polling state
		var rec [PayloadSize]byte
		var miss int
		lastHit := time.Now()

		// Main loop with cooldown polling
		for {
			// Check shutdown
			if *stop != 0 {
				for ring.Pop(&rec) {
					handler(&rec)
				}
				return
			}

			// Attempt consumption
			if ring.Pop(&rec) {
				handler(&rec)
				miss = 0
				lastHit = time.Now()
				continue
			}

			// Primary core special: poll global cooldown state
			control.PollCooldown()

			// Adaptive polling decision
			if *hot == 1 || time.Since(lastHit) <= hotWindow {
				continue
			}

			// CPU relaxation
			if miss++; miss >= spinBudget {
				miss = 0
				cpuRelax()
			}
		}
	}()
}
