// ============================================================================
// LOCK-FREE SPSC RING BUFFER SYSTEM
// ============================================================================
//
// High-performance single-producer/single-consumer ring queue that decouples
// the packet ingest context from the downstream record consumer.
//
// Core capabilities:
//   - Lock-free SPSC operation with wait-free guarantees
//   - Fixed 64-byte payload matching the normalized record footprint
//   - Power-of-2 sizing with bit masking for O(1) operations
//   - Cache line isolation for producer/consumer separation
//
// Architecture overview:
//   - Separated head/tail cursors on isolated cache lines
//   - One slot kept permanently empty so fullness and emptiness are
//     distinguishable from the cursors alone: a ring of capacity N
//     holds at most N-1 live records
//   - Release store on the producer cursor publishes the slot write;
//     acquire load on the consumer side observes it
//
// Memory ordering contract:
//   - Producer: store payload into slot, then store head with release
//   - Consumer: load head with acquire, then read payload, then store
//     tail with release
//   - Producer checks fullness by loading tail with acquire
//   - Consumer checks emptiness by loading head with acquire
//
// Safety model:
//   - SPSC discipline required: single producer, single consumer only
//   - External overflow management: Push returns false when full and the
//     caller decides drop policy
//
// Use cases:
//   - Market-data record hand-off between pinned cores
//   - Low-latency inter-thread FIFO of trivially copyable payloads

package ring64

import (
	"sync/atomic"
)

// PayloadSize is the fixed per-slot payload footprint. Matches the
// normalized record layout exactly; the feed layer casts.
const PayloadSize = 64

// ============================================================================
// CORE DATA STRUCTURES
// ============================================================================

// Ring implements a cache-optimized SPSC ring buffer with isolation padding.
//
// Memory layout:
//   - Cache line 0: padding
//   - Cache line 1: head cursor (producer-owned write position)
//   - Cache line 2: tail cursor (consumer-owned read position)
//   - Cache line 3: ring metadata (mask, buffer)
//
// Isolation strategy:
//   - Producer and consumer cursors on separate cache lines
//   - 56-byte padding blocks eliminate false sharing
//
// Cursor protocol:
//   - head and tail are slot indices in [0, size)
//   - empty:  head == tail
//   - full:   (head+1) & mask == tail
//   - live:   (head - tail) & mask
//
//go:align 64
type Ring struct {
	_    [64]byte // Cache line isolation before head cursor
	head uint64   // Producer write position (mutated by producer only)

	_    [56]byte // Cache line isolation for tail cursor
	tail uint64   // Consumer read position (mutated by consumer only)

	_ [56]byte // Isolation before shared metadata

	mask uint64              // Size - 1 for efficient modulo via bit masking
	buf  [][PayloadSize]byte // Backing slot array

	_ [4]uint64 // Tail padding to complete the metadata cache line
}

// ============================================================================
// CONSTRUCTOR
// ============================================================================

// New creates a ring buffer with the specified slot count.
// Capacity must be a positive power of two; one slot is kept empty, so a
// ring of size N accepts at most N-1 records before Push fails.
//
// Panics:
//   - size <= 0: invalid capacity specification
//   - non-power-of-2: required for efficient bit masking
func New(size int) *Ring {
	if size <= 0 || size&(size-1) != 0 {
		panic("ring64: size must be >0 and power of two")
	}

	return &Ring{
		mask: uint64(size - 1),
		buf:  make([][PayloadSize]byte, size),
	}
}

// ============================================================================
// PRODUCER OPERATIONS
// ============================================================================

// Push attempts to enqueue a 64-byte payload into the ring buffer.
//
// Algorithm:
//  1. Load producer cursor (plain load - producer-owned)
//  2. Load consumer cursor with acquire to observe the latest dequeues
//  3. Fail if advancing head would collide with tail (ring full)
//  4. Copy payload into the head slot
//  5. Publish the new head with a release store
//
// The release store on head is the publication point: a consumer that
// observes the new head with acquire is guaranteed to observe every byte
// of the payload written in step 4.
//
// ⚠️  SAFETY REQUIREMENTS:
//   - Single producer only: concurrent Push calls cause corruption
//   - Capacity management: external logic must handle false returns
//
// Returns:
//
//	true:  payload successfully enqueued
//	false: ring full at observation time, nothing written
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func (r *Ring) Push(val *[PayloadSize]byte) bool {
	h := r.head
	next := (h + 1) & r.mask

	// Full check against the consumer's most recently published advance
	if next == atomic.LoadUint64(&r.tail) {
		return false
	}

	// Copy payload into the claimed slot
	r.buf[h] = *val

	// Publish: slot bytes become visible before the cursor moves
	atomic.StoreUint64(&r.head, next)
	return true
}

// ============================================================================
// CONSUMER OPERATIONS
// ============================================================================

// Pop attempts to dequeue the next available payload into dst.
//
// Algorithm:
//  1. Load consumer cursor (plain load - consumer-owned)
//  2. Load producer cursor with acquire; empty if equal
//  3. Copy the tail slot into dst
//  4. Publish the new tail with a release store, freeing the slot
//
// The payload is copied out before the slot is released, so dst remains
// valid regardless of later producer writes.
//
// ⚠️  SAFETY REQUIREMENTS:
//   - Single consumer only: concurrent Pop calls cause corruption
//
// Returns:
//
//	true:  dst holds the dequeued payload
//	false: ring empty at observation time, dst untouched
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func (r *Ring) Pop(dst *[PayloadSize]byte) bool {
	t := r.tail

	// Empty check against the producer's most recently published advance
	if t == atomic.LoadUint64(&r.head) {
		return false
	}

	// Copy out before releasing the slot back to the producer
	*dst = r.buf[t]

	atomic.StoreUint64(&r.tail, (t+1)&r.mask)
	return true
}

// Peek copies the front payload into dst without removing it.
// Consumer-side only; the slot remains live until the next Pop.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func (r *Ring) Peek(dst *[PayloadSize]byte) bool {
	t := r.tail
	if t == atomic.LoadUint64(&r.head) {
		return false
	}
	*dst = r.buf[t]
	return true
}

// PopWait provides blocking consumption with active polling.
// Spins with CPU relaxation hints until a payload arrives. Optional
// wrapper; not part of the wait-free contract.
//
// ⚠️  USAGE WARNINGS:
//   - High CPU utilization during empty periods
//   - Requires dedicated CPU core for optimal performance
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func (r *Ring) PopWait(dst *[PayloadSize]byte) {
	for !r.Pop(dst) {
		cpuRelax() // Yield CPU resources during wait
	}
}

// ============================================================================
// OBSERVERS
// ============================================================================
//
// Observers are safe to call from either side; a caller on the opposite
// side of a cursor may see a slightly stale snapshot, which is the
// accepted contract for SPSC occupancy checks.

// Len returns the number of live records at observation time.
//
//go:nosplit
//go:inline
func (r *Ring) Len() int {
	h := atomic.LoadUint64(&r.head)
	t := atomic.LoadUint64(&r.tail)
	return int((h - t) & r.mask)
}

// Free returns the number of records that can still be enqueued.
//
//go:nosplit
//go:inline
func (r *Ring) Free() int {
	return int(r.mask) - r.Len()
}

// Cap returns the slot count. Usable capacity is Cap()-1.
//
//go:nosplit
//go:inline
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Empty reports whether the ring held no records at observation time.
//
//go:nosplit
//go:inline
func (r *Ring) Empty() bool {
	return atomic.LoadUint64(&r.head) == atomic.LoadUint64(&r.tail)
}

// Full reports whether the ring was at capacity at observation time.
//
//go:nosplit
//go:inline
func (r *Ring) Full() bool {
	h := atomic.LoadUint64(&r.head)
	t := atomic.LoadUint64(&r.tail)
	return (h+1)&r.mask == t
}
