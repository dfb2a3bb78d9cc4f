// ============================================================================
// CONTROL FLAG COORDINATION TEST SUITE
// ============================================================================
//
// Validates the global hot/stop flag lifecycle: activity signaling,
// automatic cooldown clearance, and shutdown propagation to the flag
// pointers the pinned consumers poll.

package control

import (
	"testing"
	"time"
)

// resetFlags restores the package globals between tests.
func resetFlags() {
	hot = 0
	stop = 0
	lastHot = 0
}

// TestSignalActivity validates that activity raises the hot flag and
// stamps the timestamp the cooldown check reads.
func TestSignalActivity(t *testing.T) {
	resetFlags()

	_, hotPtr := Flags()
	if *hotPtr != 0 {
		t.Fatal("hot flag set before activity")
	}

	SignalActivity()
	if *hotPtr != 1 {
		t.Error("SignalActivity did not raise the hot flag")
	}
	if lastHot == 0 {
		t.Error("SignalActivity did not stamp the activity time")
	}
}

// TestPollCooldownClearsAfterIdle validates the automatic hot-flag
// clearance once the cooldown window has elapsed.
func TestPollCooldownClearsAfterIdle(t *testing.T) {
	resetFlags()

	SignalActivity()

	// Inside the window: flag must survive
	PollCooldown()
	if hot != 1 {
		t.Fatal("cooldown cleared an active flag")
	}

	// Age the last-activity stamp past the window
	lastHot = time.Now().UnixNano() - cooldownNs - 1
	PollCooldown()
	if hot != 0 {
		t.Error("cooldown did not clear an idle flag")
	}
}

// TestShutdown validates stop-flag propagation through Flags().
func TestShutdown(t *testing.T) {
	resetFlags()

	stopPtr, _ := Flags()
	if *stopPtr != 0 {
		t.Fatal("stop flag set before shutdown")
	}

	Shutdown()
	if *stopPtr != 1 {
		t.Error("Shutdown did not raise the stop flag")
	}
}

// TestFlagsStable validates that Flags returns the same pointers across
// calls, as consumers cache them for the process lifetime.
func TestFlagsStable(t *testing.T) {
	s1, h1 := Flags()
	s2, h2 := Flags()
	if s1 != s2 || h1 != h2 {
		t.Error("Flags returned different pointers across calls")
	}
}
