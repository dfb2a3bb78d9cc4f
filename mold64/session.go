// ============================================================================
// MOLDUDP64 SESSION DECODER - SEQUENCING, GAPS, AND DISPATCH
// ============================================================================
//
// The session decoder wraps sequencing semantics around the per-packet
// payload: it verifies session identity, classifies each packet against
// the expected sequence, walks the embedded message blocks in wire order,
// and maintains the pending gap list that downstream recovery tooling
// reads.
//
// Sequencing model:
//   - expected sequence starts at 1 and only ever moves forward
//   - a packet ahead of expected opens a gap [expected, seq-1] and the
//     packet's own messages are still dispatched
//   - a packet behind expected is dispatched as duplicate or
//     retransmission data and run through gap-fill, without ever moving
//     the expected sequence backwards
//   - the expected sequence advances by the number of message blocks
//     actually dispatched, so a truncated packet leaves it at the first
//     sequence whose bytes were never seen
//
// Threading model:
//   - Owned exclusively by the producer (ingest) context. Counters are
//     plain fields; operators reading them cross-thread accept torn
//     snapshots.
//
// Allocation model:
//   - The pending gap list is the only growth point and is pre-sized to
//     its hard bound at construction; overflowing it is a session error.

package mold64

import (
	"time"

	"itchfeed/constants"
	"itchfeed/utils"
)

// ============================================================================
// STATE MACHINE
// ============================================================================

// State is the session lifecycle position.
//
// Transitions:
//
//	Unknown --first packet--> Active
//	Active  --seq > expected--> Stale  (emits Gap)
//	Stale   --all gaps filled--> Active
//	any     --end-of-session packet--> EndOfSession  (terminal)
//	any     --session id mismatch--> Error           (terminal)
type State uint8

const (
	StateUnknown State = iota
	StateActive
	StateStale
	StateEndOfSession
	StateError
)

// String renders the state for diagnostics.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateActive:
		return "active"
	case StateStale:
		return "stale"
	case StateEndOfSession:
		return "end-of-session"
	case StateError:
		return "error"
	}
	return "invalid"
}

// ============================================================================
// GAP TRACKING
// ============================================================================

// Gap is a contiguous range of sequence numbers that were skipped over.
// Invariants: Start <= End; every pending gap lies strictly below the
// current expected sequence; pending gaps are mutually disjoint.
type Gap struct {
	Start        uint64 // First missing sequence number
	End          uint64 // Last missing sequence number (inclusive)
	DetectedAtNs uint64 // Wall-clock nanoseconds at detection time
}

// MessageFunc receives one message body plus the sequence number it was
// carried under. The slice borrows the packet buffer and is only valid
// for the duration of the call.
type MessageFunc func(msg []byte, seq uint64)

// GapFunc is invoked once per newly detected gap, from the producer
// context, before the triggering packet's own messages are dispatched.
type GapFunc func(Gap)

// Stats is the session counter block. Producer-written, relaxed reads.
type Stats struct {
	PacketsReceived    uint64
	MessagesReceived   uint64
	GapsDetected       uint64
	HeartbeatsReceived uint64
}

// ============================================================================
// SESSION
// ============================================================================

// Session tracks one MoldUDP64 stream. Multi-stream deployments run one
// Session per stream on the collaborator side; the decoder itself is
// single-session.
//
// ⚠️ Not safe for concurrent use. The owning packet handler drives every
// method from the ingest context.
type Session struct {
	sessionID [constants.SessionIDLen]byte // Adopted from the first packet
	expected  uint64                       // Next sequence we have not yet dispatched
	state     State

	gaps []Gap // Pending (unfilled) gaps, disjoint, below expected

	stats Stats

	onMessage MessageFunc
	onGap     GapFunc
}

// NewSession creates a decoder in the Unknown state expecting sequence 1.
// The gap list is pre-sized to its hard bound so the steady-state path
// never allocates.
func NewSession() *Session {
	return &Session{
		expected: constants.FirstSequence,
		state:    StateUnknown,
		gaps:     make([]Gap, 0, constants.MaxPendingGaps),
	}
}

// SetMessageCallback installs the per-message dispatch target.
func (s *Session) SetMessageCallback(cb MessageFunc) { s.onMessage = cb }

// SetGapCallback installs the one-shot-per-gap notification target.
func (s *Session) SetGapCallback(cb GapFunc) { s.onGap = cb }

// ============================================================================
// PACKET PROCESSING
// ============================================================================

// ProcessPacket decodes one session-layer packet.
//
// Classification against the expected sequence S:
//   - seq == S:            in-order; dispatch, advance by blocks dispatched
//   - seq  > S:            gap [S, seq-1] recorded, state Stale, then the
//     packet's own messages dispatch as seq, seq+1, …
//   - seq+count <= S:      full duplicate; gap-fill check, dispatch for
//     recovery, expected untouched
//   - seq < S < seq+count: partial duplicate; gap-fill check over the whole
//     range, dispatch everything, expected never decreases
//
// A truncated message block ends dispatch at the last whole block; the
// packet is still accepted. Returns false only for a short header, a
// session identifier mismatch, or gap-list overflow.
func (s *Session) ProcessPacket(buf []byte) bool {
	var h Header
	if !ParseHeader(buf, &h) {
		return false // Malformed: too short for a header, state untouched
	}

	// Session identity: first packet adopts, every later packet must match.
	if s.state == StateUnknown {
		s.sessionID = h.Session
		s.state = StateActive
	} else if s.sessionID != h.Session {
		s.state = StateError
		return false
	}

	s.stats.PacketsReceived++

	// Special packets carry no message data.
	if h.IsHeartbeat() {
		s.stats.HeartbeatsReceived++
		return true
	}
	if h.IsEndOfSession() {
		s.state = StateEndOfSession
		return true
	}

	switch {
	case h.Sequence > s.expected:
		// Gap: everything between expected and this packet is missing.
		if !s.recordGap(s.expected, h.Sequence-1) {
			return false // Gap list overflow, session is now in Error
		}
		dispatched := s.dispatch(buf, &h)
		s.expected = h.Sequence + uint64(dispatched)

	case h.Sequence == s.expected:
		dispatched := s.dispatch(buf, &h)
		s.expected += uint64(dispatched)

	default:
		// Duplicate or retransmission: may close a pending gap, and the
		// messages still go downstream so recovery data is not lost.
		if h.Count > 0 {
			s.checkGapFill(h.Sequence, h.Sequence+uint64(h.Count)-1)
		}
		dispatched := s.dispatch(buf, &h)
		if next := h.Sequence + uint64(dispatched); next > s.expected {
			s.expected = next
		}
	}

	// A retransmission that closed the last gap reactivates the session.
	if s.state == StateStale && len(s.gaps) == 0 {
		s.state = StateActive
	}

	return true
}

// dispatch walks the message blocks and returns how many were delivered.
// Iteration stops at the first block that extends past the packet end;
// blocks already dispatched are not rolled back.
func (s *Session) dispatch(buf []byte, h *Header) int {
	offset := constants.MoldHeaderSize
	dispatched := 0

	for i := 0; i < int(h.Count); i++ {
		if offset+constants.MessageBlockPrefix > len(buf) {
			break // Truncated before the length prefix
		}
		msgLen := int(utils.LoadBE16(buf[offset:]))
		offset += constants.MessageBlockPrefix

		if offset+msgLen > len(buf) {
			break // Block extends past the packet end
		}

		if s.onMessage != nil {
			s.onMessage(buf[offset:offset+msgLen], h.Sequence+uint64(i))
		}
		s.stats.MessagesReceived++
		dispatched++
		offset += msgLen
	}

	return dispatched
}

// recordGap appends a newly detected gap and fires the notification.
// Returns false when the pending list is already at its hard bound, in
// which case the session transitions to Error.
func (s *Session) recordGap(start, end uint64) bool {
	if len(s.gaps) >= constants.MaxPendingGaps {
		s.state = StateError
		return false
	}

	g := Gap{
		Start:        start,
		End:          end,
		DetectedAtNs: uint64(time.Now().UnixNano()),
	}
	s.gaps = append(s.gaps, g)
	s.stats.GapsDetected++
	if s.state != StateEndOfSession && s.state != StateError {
		s.state = StateStale // Terminal states are never left
	}

	if s.onGap != nil {
		s.onGap(g)
	}
	return true
}

// checkGapFill walks the pending gaps and shrinks or removes any that
// the range [start, end] covers or touches.
//
// A fill range strictly inside a gap leaves the gap untouched: the list
// is never split, so a middle fill must be followed by edge fills before
// the gap clears. Disjointness of the pending list is preserved.
func (s *Session) checkGapFill(start, end uint64) {
	keep := s.gaps[:0]
	for _, g := range s.gaps {
		switch {
		case start <= g.Start && end >= g.End:
			// Covered entirely: drop
			continue
		case start <= g.Start && end >= g.Start:
			// Touches from the low side
			g.Start = end + 1
		case start <= g.End && end >= g.End:
			// Touches from the high side
			g.End = start - 1
		}
		keep = append(keep, g)
	}
	s.gaps = keep
}

// ============================================================================
// OBSERVERS
// ============================================================================

// State returns the current lifecycle position.
func (s *Session) State() State { return s.state }

// ExpectedSequence returns the next sequence not yet dispatched in-order.
func (s *Session) ExpectedSequence() uint64 { return s.expected }

// HasGaps reports whether any detected gap remains unfilled.
func (s *Session) HasGaps() bool { return len(s.gaps) > 0 }

// PendingGaps exposes the live gap list for monitoring. The slice aliases
// decoder state; callers must not mutate or retain it across packets.
func (s *Session) PendingGaps() []Gap { return s.gaps }

// Stats returns a copy of the session counter block.
func (s *Session) Stats() Stats { return s.stats }

// SessionID returns the adopted 10-byte identifier (zero until the first
// packet arrives).
func (s *Session) SessionID() [constants.SessionIDLen]byte { return s.sessionID }

// IsHealthy reports an active session with no outstanding gaps.
func (s *Session) IsHealthy() bool {
	return s.state == StateActive && len(s.gaps) == 0
}

// Reset restores the decoder to its initial state for reuse: Unknown,
// expecting sequence 1, empty gap list, all counters zero.
func (s *Session) Reset() {
	s.sessionID = [constants.SessionIDLen]byte{}
	s.expected = constants.FirstSequence
	s.state = StateUnknown
	s.gaps = s.gaps[:0]
	s.stats = Stats{}
}
