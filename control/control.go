// control.go — Global control flags and activity management for pinned consumers
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides lightweight global signaling infrastructure for
// coordinating activity states and graceful shutdown between the packet
// ingest context and the pinned ring consumer with nanosecond-precision
// timing and zero-allocation operations.
//
// Architecture overview:
//   • Global hot/stop flags for lock-free inter-thread communication
//   • Nanosecond-precision activity tracking with automatic cooldown
//   • Zero-allocation flag access for hot path performance
//   • Graceful shutdown coordination across consumer cores
//
// Threading model:
//   • The packet ingest path signals activity via SignalActivity()
//   • Consumer threads poll flags via Flags() for coordination
//   • Automatic cooldown prevents unnecessary hot spinning between bursts
//   • Graceful shutdown ensures clean resource cleanup

package control

import "time"

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	// Global coordination flags - accessed by all consumer threads
	hot  uint32 // Activity indicator: 1 = packets arriving, 0 = idle
	stop uint32 // Shutdown signal: 1 = initiate graceful shutdown, 0 = running

	// Activity timing for automatic cooldown management
	lastHot    int64                    // Nanosecond timestamp of last packet activity
	cooldownNs = int64(1 * time.Second) // Cooldown duration: 1 second idle period
)

// ============================================================================
// ACTIVITY SIGNALING (INGEST INTEGRATION)
// ============================================================================

// SignalActivity marks the system as active and records precise timing
// for automatic cooldown management. Called from the packet ingest layer
// each time a datagram reaches the session decoder.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func SignalActivity() {
	hot = 1
	lastHot = time.Now().UnixNano()
}

// ============================================================================
// COOLDOWN MANAGEMENT (AUTOMATIC EFFICIENCY)
// ============================================================================

// PollCooldown implements automatic hot-flag clearance based on elapsed
// time since last activity. Integrates into consumer hot loops to stop
// unnecessary CPU spinning once the feed goes quiet.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func PollCooldown() {
	if hot == 1 && time.Now().UnixNano()-lastHot > cooldownNs {
		hot = 0
	}
}

// ============================================================================
// SYSTEM SHUTDOWN (GRACEFUL TERMINATION)
// ============================================================================

// Shutdown initiates graceful system termination by setting the global
// stop flag. All pinned consumer threads monitor this flag and drain on
// their next polling turn.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Shutdown() {
	stop = 1
}

// ============================================================================
// FLAG ACCESS (CONSUMER INTEGRATION)
// ============================================================================

// Flags returns direct pointers to the global coordination flags for
// zero-allocation polling by pinned consumer threads.
//
// Return values: (*stop_flag, *hot_flag) for PinnedConsumer integration
// Memory safety: Returned pointers remain valid for application lifetime
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Flags() (*uint32, *uint32) {
	return &stop, &hot
}
