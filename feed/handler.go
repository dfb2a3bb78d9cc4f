// ============================================================================
// PACKET HANDLER - INGEST ORCHESTRATION
// ============================================================================
//
// The handler is the glue between the external ingest collaborator (live
// NIC poller or capture replay) and the downstream ring: it strips
// link-layer framing when present, hands the session payload to the
// MoldUDP64 decoder, receives the per-message callback, runs the ITCH
// parser, and pushes one normalized 64-byte record per decoded order
// event into the SPSC ring.
//
// Input modes, all sharing the downstream path:
//   - FeedFramed:  Ethernet/IPv4/UDP datagram; headers are validated and
//     skipped, the UDP payload goes to the session decoder
//   - FeedSession: bare session-layer packet (no link framing)
//   - FeedFile:    raw stream of 2-byte-length-prefixed messages; feeds
//     the parser directly, bypassing session sequencing (offline replay)
//
// Backpressure policy:
//   The producer never blocks on the consumer. A full ring drops the
//   record and moves the buffer_full counter; the consumer side decides
//   whether that loss matters.
//
// Threading model:
//   One handler instance is owned by one ingest context. Counters are
//   producer-written; operator reads accept torn snapshots.

package feed

import (
	"sync/atomic"

	"itchfeed/constants"
	"itchfeed/control"
	"itchfeed/itch"
	"itchfeed/mold64"
	"itchfeed/ring64"
	"itchfeed/types"
	"itchfeed/utils"
)

// ============================================================================
// STATISTICS
// ============================================================================

// Stats aggregates the handler's own counters with the parser and
// session counter blocks, mirroring what the operator loop prints.
type Stats struct {
	PacketsProcessed uint64
	BytesProcessed   uint64
	InvalidPackets   uint64
	MessagesPushed   uint64
	BufferFullCount  uint64
	Parser           itch.Stats
	Session          mold64.Stats
}

// ============================================================================
// HANDLER
// ============================================================================

// Handler wires SessionDecoder -> MessageParser -> SPSCRing on the
// producer execution context.
//
// ⚠️ Not safe for concurrent use. One ingest goroutine drives all Feed*
// methods; the consumer context only touches the ring and the read-only
// accessors.
type Handler struct {
	ring    *ring64.Ring
	session *mold64.Session
	parser  *itch.Parser

	running uint32 // Cleared to drain polling loops on their next turn

	// Producer-owned counters
	packetsProcessed uint64
	bytesProcessed   uint64
	invalidPackets   uint64
	messagesPushed   uint64
	bufferFullCount  uint64
}

// NewHandler builds a handler pushing normalized records into ring.
// The session decoder's message callback and the parser's emit target
// are wired here so every decoded order event lands in the ring without
// further indirection.
func NewHandler(ring *ring64.Ring) *Handler {
	h := &Handler{
		ring:    ring,
		session: mold64.NewSession(),
		parser:  itch.NewParser(),
	}

	h.parser.SetEmit(h.push)
	h.session.SetMessageCallback(func(msg []byte, seq uint64) {
		h.parser.Parse(msg)
	})

	return h
}

// push attempts the ring enqueue for one normalized record.
//
//go:nosplit
//go:inline
func (h *Handler) push(rec *types.Record) {
	if h.ring.Push(rec.AsBytes()) {
		h.messagesPushed++
	} else {
		h.bufferFullCount++ // Ring full: record dropped, consumer decides policy
	}
}

// ============================================================================
// INPUT MODES
// ============================================================================

// FeedFramed processes an Ethernet/IPv4/UDP framed datagram. Validates
// the EtherType and IP protocol, skips the link and transport headers
// using the encoded IPv4 header length, and passes the UDP payload to
// the session decoder. Anything shorter than the minimum composite
// header, or not IPv4/UDP, is counted invalid and dropped.
func (h *Handler) FeedFramed(buf []byte) bool {
	if len(buf) < constants.FramedMinSize {
		h.invalidPackets++
		return false
	}

	// Ethernet: require IPv4
	if utils.LoadBE16(buf[constants.EthTypeOffset:]) != constants.EtherTypeIPv4 {
		h.invalidPackets++
		return false
	}

	// IPv4: header length comes from the IHL nibble (options possible)
	ip := buf[constants.EthHeaderSize:]
	ipHdrLen := int(ip[0]&0x0F) * 4
	if ipHdrLen < constants.IPv4MinHeaderSize ||
		len(ip) < ipHdrLen+constants.UDPHeaderSize {
		h.invalidPackets++
		return false
	}
	if ip[constants.IPProtoOffset] != constants.IPProtoUDP {
		h.invalidPackets++
		return false
	}

	// UDP: fixed 8-byte header, remainder is the session payload
	payload := ip[ipHdrLen+constants.UDPHeaderSize:]

	control.SignalActivity()
	if !h.session.ProcessPacket(payload) {
		h.invalidPackets++
		return false
	}

	h.packetsProcessed++
	h.bytesProcessed += uint64(len(buf))
	return true
}

// FeedSession processes a bare session-layer packet with no link-layer
// framing, as delivered by a collaborator that already de-framed.
func (h *Handler) FeedSession(buf []byte) bool {
	control.SignalActivity()
	if !h.session.ProcessPacket(buf) {
		h.invalidPackets++
		return false
	}

	h.packetsProcessed++
	h.bytesProcessed += uint64(len(buf))
	return true
}

// FeedFile processes a raw capture stream of 2-byte big-endian
// length-prefixed messages, bypassing the session decoder entirely.
// Returns the number of messages the parser accepted. Iteration stops
// at the first prefix or body that extends past the buffer end.
func (h *Handler) FeedFile(buf []byte) int {
	control.SignalActivity()

	offset := 0
	decoded := 0

	for offset+constants.MessageBlockPrefix <= len(buf) {
		msgLen := int(utils.LoadBE16(buf[offset:]))
		offset += constants.MessageBlockPrefix

		if offset+msgLen > len(buf) {
			break // Incomplete trailing message
		}

		if h.parser.Parse(buf[offset:offset+msgLen]) > 0 {
			decoded++
		}
		offset += msgLen
	}

	h.bytesProcessed += uint64(offset)
	return decoded
}

// ============================================================================
// CONTROL
// ============================================================================

// Start marks the handler running.
func (h *Handler) Start() { atomic.StoreUint32(&h.running, 1) }

// Stop clears the running flag; polling loops drain and exit on their
// next turn.
func (h *Handler) Stop() { atomic.StoreUint32(&h.running, 0) }

// IsRunning reports the running flag with acquire semantics.
func (h *Handler) IsRunning() bool { return atomic.LoadUint32(&h.running) == 1 }

// ============================================================================
// OBSERVERS
// ============================================================================

// Stats snapshots every counter block. Producer-written values; a
// cross-thread reader may observe an inconsistent snapshot.
func (h *Handler) Stats() Stats {
	return Stats{
		PacketsProcessed: h.packetsProcessed,
		BytesProcessed:   h.bytesProcessed,
		InvalidPackets:   h.invalidPackets,
		MessagesPushed:   h.messagesPushed,
		BufferFullCount:  h.bufferFullCount,
		Parser:           h.parser.Stats(),
		Session:          h.session.Stats(),
	}
}

// Session exposes the decoder for state, gap list, and callback wiring.
func (h *Handler) Session() *mold64.Session { return h.session }

// SetGapCallback forwards the one-shot-per-gap notification target.
func (h *Handler) SetGapCallback(cb mold64.GapFunc) { h.session.SetGapCallback(cb) }

// HasGaps reports whether the session has unfilled gaps.
func (h *Handler) HasGaps() bool { return h.session.HasGaps() }
