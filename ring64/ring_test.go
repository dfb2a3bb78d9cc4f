// ============================================================================
// SPSC RING BUFFER CORRECTNESS VALIDATION SUITE
// ============================================================================
//
// Test categories:
//   - Constructor validation: power-of-2 sizing and initialization
//   - Basic operations: Push/Pop semantics and data integrity
//   - Capacity management: one-empty-slot fullness and recovery
//   - Wraparound logic: circular cursor arithmetic validation
//   - Observers: Len/Free/Cap/Empty/Full consistency
//   - Concurrency: producer/consumer FIFO across wraparound
//
// Validation methodology:
//   - Single-threaded operation validation under SPSC discipline
//   - Data integrity verification across operation cycles
//   - A two-goroutine stream test proving exactly-once in-order delivery

package ring64

import (
	"fmt"
	"testing"
)

// ============================================================================
// TEST UTILITIES AND HELPERS
// ============================================================================

// payload builds a deterministic 64-byte test payload from a seed.
func payload(seed uint64) *[PayloadSize]byte {
	p := &[PayloadSize]byte{}
	for i := range p {
		p[i] = byte(seed + uint64(i))
	}
	return p
}

// u64payload encodes a counter into the first 8 bytes of a payload.
func u64payload(v uint64) *[PayloadSize]byte {
	p := &[PayloadSize]byte{}
	p[0] = byte(v >> 56)
	p[1] = byte(v >> 48)
	p[2] = byte(v >> 40)
	p[3] = byte(v >> 32)
	p[4] = byte(v >> 24)
	p[5] = byte(v >> 16)
	p[6] = byte(v >> 8)
	p[7] = byte(v)
	return p
}

func payloadU64(p *[PayloadSize]byte) uint64 {
	return uint64(p[0])<<56 | uint64(p[1])<<48 | uint64(p[2])<<40 |
		uint64(p[3])<<32 | uint64(p[4])<<24 | uint64(p[5])<<16 |
		uint64(p[6])<<8 | uint64(p[7])
}

// ============================================================================
// CONSTRUCTOR VALIDATION
// ============================================================================

// TestNewValidSizes validates constructor with valid power-of-2 sizes.
func TestNewValidSizes(t *testing.T) {
	validSizes := []int{2, 4, 8, 16, 64, 256, 1024, 65536}

	for _, size := range validSizes {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			r := New(size)
			if r == nil {
				t.Fatalf("New(%d) returned nil", size)
			}
			if r.mask != uint64(size-1) {
				t.Errorf("mask = %d, want %d", r.mask, size-1)
			}
			if r.Cap() != size {
				t.Errorf("Cap() = %d, want %d", r.Cap(), size)
			}
			if !r.Empty() || r.Len() != 0 {
				t.Errorf("fresh ring not empty: len=%d", r.Len())
			}
			if r.Free() != size-1 {
				t.Errorf("Free() = %d, want %d", r.Free(), size-1)
			}
		})
	}
}

// TestNewPanicsOnInvalidSize validates constructor input validation.
func TestNewPanicsOnInvalidSize(t *testing.T) {
	invalid := []int{0, -1, 3, 5, 6, 7, 100, 1000}

	for _, size := range invalid {
		t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("New(%d) did not panic", size)
				}
			}()
			New(size)
		})
	}
}

// ============================================================================
// BASIC OPERATIONS
// ============================================================================

// TestPushPopSingle validates a single enqueue/dequeue cycle.
func TestPushPopSingle(t *testing.T) {
	r := New(8)
	want := payload(7)

	if !r.Push(want) {
		t.Fatal("Push failed on empty ring")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}

	var got [PayloadSize]byte
	if !r.Pop(&got) {
		t.Fatal("Pop failed on non-empty ring")
	}
	if got != *want {
		t.Errorf("payload mismatch: got %v, want %v", got[:8], want[:8])
	}
	if !r.Empty() {
		t.Error("ring not empty after draining")
	}
}

// TestPopEmptyRing validates empty-ring dequeue behavior.
func TestPopEmptyRing(t *testing.T) {
	r := New(8)
	var got [PayloadSize]byte
	got[0] = 0xAA

	if r.Pop(&got) {
		t.Fatal("Pop succeeded on empty ring")
	}
	if got[0] != 0xAA {
		t.Error("Pop mutated dst on failure")
	}
}

// TestPeek validates non-destructive front access.
func TestPeek(t *testing.T) {
	r := New(8)

	var got [PayloadSize]byte
	if r.Peek(&got) {
		t.Fatal("Peek succeeded on empty ring")
	}

	first := payload(1)
	second := payload(100)
	r.Push(first)
	r.Push(second)

	if !r.Peek(&got) || got != *first {
		t.Fatal("Peek did not return the front payload")
	}
	if r.Len() != 2 {
		t.Errorf("Peek changed occupancy: len=%d", r.Len())
	}

	// Peek again - still the same front
	if !r.Peek(&got) || got != *first {
		t.Fatal("second Peek disagreed with first")
	}

	// Pop removes exactly what Peek saw
	if !r.Pop(&got) || got != *first {
		t.Fatal("Pop disagreed with Peek")
	}
	if !r.Peek(&got) || got != *second {
		t.Fatal("Peek after Pop did not advance to second payload")
	}
}

// ============================================================================
// CAPACITY MANAGEMENT
// ============================================================================

// TestFullnessBoundary validates the one-empty-slot protocol: a ring of
// capacity N accepts exactly N-1 records, rejects the Nth, and accepts
// again after a single dequeue.
func TestFullnessBoundary(t *testing.T) {
	const size = 8
	r := New(size)

	// Enqueue 1..7 - all must succeed
	for v := uint64(1); v <= size-1; v++ {
		if !r.Push(u64payload(v)) {
			t.Fatalf("Push %d failed below capacity", v)
		}
	}
	if !r.Full() {
		t.Error("ring not Full at N-1 occupancy")
	}
	if r.Free() != 0 {
		t.Errorf("Free = %d, want 0", r.Free())
	}

	// The Nth enqueue must fail
	if r.Push(u64payload(8)) {
		t.Fatal("Push succeeded on full ring")
	}

	// One dequeue frees exactly one slot
	var got [PayloadSize]byte
	if !r.Pop(&got) || payloadU64(&got) != 1 {
		t.Fatalf("Pop returned %d, want 1", payloadU64(&got))
	}
	if !r.Push(u64payload(8)) {
		t.Fatal("Push failed after freeing a slot")
	}

	// Drain: strict FIFO 2..8
	for want := uint64(2); want <= 8; want++ {
		if !r.Pop(&got) {
			t.Fatalf("Pop failed draining, want %d", want)
		}
		if v := payloadU64(&got); v != want {
			t.Fatalf("FIFO violation: got %d, want %d", v, want)
		}
	}
	if !r.Empty() {
		t.Error("ring not empty after drain")
	}
}

// ============================================================================
// WRAPAROUND LOGIC
// ============================================================================

// TestWraparoundFIFO validates ordering across many cursor wraps.
func TestWraparoundFIFO(t *testing.T) {
	const size = 4
	r := New(size)

	var next uint64 // Next value to dequeue
	var got [PayloadSize]byte

	// 100 cycles of fill-3/drain-3 wraps the cursors 75 times
	for cycle := 0; cycle < 100; cycle++ {
		base := uint64(cycle) * 3
		for i := uint64(0); i < 3; i++ {
			if !r.Push(u64payload(base + i)) {
				t.Fatalf("cycle %d: Push %d failed", cycle, base+i)
			}
		}
		for i := 0; i < 3; i++ {
			if !r.Pop(&got) {
				t.Fatalf("cycle %d: Pop failed", cycle)
			}
			if v := payloadU64(&got); v != next {
				t.Fatalf("cycle %d: got %d, want %d", cycle, v, next)
			}
			next++
		}
	}
}

// TestObserverConsistency validates Len/Free under mixed operations.
func TestObserverConsistency(t *testing.T) {
	const size = 16
	r := New(size)
	var got [PayloadSize]byte

	live := 0
	for step := 0; step < 200; step++ {
		if step%3 != 0 {
			if r.Push(u64payload(uint64(step))) {
				live++
			}
		} else {
			if r.Pop(&got) {
				live--
			}
		}
		if r.Len() != live {
			t.Fatalf("step %d: Len = %d, want %d", step, r.Len(), live)
		}
		if r.Free() != size-1-live {
			t.Fatalf("step %d: Free = %d, want %d", step, r.Free(), size-1-live)
		}
		if r.Empty() != (live == 0) {
			t.Fatalf("step %d: Empty = %v with live=%d", step, r.Empty(), live)
		}
		if r.Full() != (live == size-1) {
			t.Fatalf("step %d: Full = %v with live=%d", step, r.Full(), live)
		}
	}
}

// ============================================================================
// CONCURRENCY VALIDATION
// ============================================================================

// TestConcurrentStream validates exactly-once in-order delivery of one
// million records across wraparound with a live producer and consumer on
// separate goroutines.
func TestConcurrentStream(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping million-record stream in short mode")
	}

	const total = 1_000_001 // 0..=10^6
	r := New(65536)

	done := make(chan error, 1)

	// Consumer: every value exactly once, strictly increasing
	go func() {
		var got [PayloadSize]byte
		for want := uint64(0); want < total; want++ {
			for !r.Pop(&got) {
				// Spin; producer is live
			}
			if v := payloadU64(&got); v != want {
				done <- fmt.Errorf("got %d, want %d", v, want)
				return
			}
		}
		done <- nil
	}()

	// Producer: spin-retry on full
	for v := uint64(0); v < total; v++ {
		p := u64payload(v)
		for !r.Push(p) {
			// Ring full; consumer is draining
		}
	}

	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !r.Empty() {
		t.Error("ring not empty after stream")
	}
}
