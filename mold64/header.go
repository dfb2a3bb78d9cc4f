// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: header.go — MoldUDP64 session-layer framing
//
// Purpose:
//   - Decodes the 20-byte session header that fronts every downlink
//     packet: 10-byte ASCII session identifier, 8-byte big-endian
//     sequence of the first carried message, 2-byte big-endian count.
//   - Recognizes the two special packets that carry no message data:
//     heartbeats (seq 0, count 0) and end-of-session (seq all-ones).
//
// Notes:
//   - The session identifier is raw ASCII, right-padded with spaces,
//     never null-terminated. Comparison is byte-for-byte.
//   - Each carried message is framed as a 2-byte big-endian length
//     followed by exactly that many payload bytes.
// ─────────────────────────────────────────────────────────────────────────────

package mold64

import (
	"itchfeed/constants"
	"itchfeed/utils"
)

// Header is the decoded session-layer packet header.
type Header struct {
	Session  [constants.SessionIDLen]byte // ASCII identifier, space padded
	Sequence uint64                       // Sequence of the first message in the packet
	Count    uint16                       // Number of message blocks that follow
}

// ParseHeader decodes the 20-byte session header from the front of buf.
// Returns false without touching h if buf cannot hold a full header.
//
//go:nosplit
//go:inline
func ParseHeader(buf []byte, h *Header) bool {
	if len(buf) < constants.MoldHeaderSize {
		return false
	}
	copy(h.Session[:], buf[:constants.SessionIDLen])
	h.Sequence = utils.LoadBE64(buf[constants.SessionIDLen:])
	h.Count = utils.LoadBE16(buf[constants.SessionIDLen+8:])
	return true
}

// IsHeartbeat reports whether the header describes a keep-alive packet.
//
//go:nosplit
//go:inline
func (h *Header) IsHeartbeat() bool {
	return h.Sequence == constants.HeartbeatSequence && h.Count == 0
}

// IsEndOfSession reports whether the header terminates the session.
// The count field is irrelevant for this packet type.
//
//go:nosplit
//go:inline
func (h *Header) IsEndOfSession() bool {
	return h.Sequence == constants.EndOfSessionSequence
}

// SessionString trims the space padding off the identifier for log and
// journal output. Allocates; cold paths only.
func (h *Header) SessionString() string {
	end := len(h.Session)
	for end > 0 && h.Session[end-1] == ' ' {
		end--
	}
	return string(h.Session[:end])
}
