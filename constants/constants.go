// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Wire-Format Constants & Feed Handler Tunables
//
// Purpose:
//   - Defines the MoldUDP64 framing geometry, link-layer offsets, and
//     special sequence values shared by the session decoder and the
//     packet handler.
//   - Defines feed-wide tunables: ring sizing, gap-list bounds, and
//     price scaling factors.
//
// Notes:
//   - All multibyte wire integers are big-endian; offsets below are byte
//     offsets into the raw packet buffer.
//   - Prices travel as 32-bit unsigned with 4 implicit decimals and are
//     lifted to a signed 64-bit internal scale of 6 decimals.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── MoldUDP64 Framing ──────────────────────────

const (
	// SessionIDLen is the length of the ASCII session identifier that
	// opens every MoldUDP64 packet. Right-padded with spaces, never
	// null-terminated.
	SessionIDLen = 10

	// MoldHeaderSize is the fixed session-layer header:
	// 10-byte session + 8-byte sequence + 2-byte message count.
	MoldHeaderSize = 20

	// MessageBlockPrefix is the 2-byte big-endian length that precedes
	// every message body inside a packet (and every record in the raw
	// capture-file format).
	MessageBlockPrefix = 2

	// HeartbeatSequence marks a keep-alive packet when paired with a
	// zero message count.
	HeartbeatSequence = uint64(0)

	// EndOfSessionSequence terminates the session regardless of count.
	EndOfSessionSequence = ^uint64(0)

	// FirstSequence is the initial expected sequence of a fresh session.
	FirstSequence = uint64(1)
)

// ───────────────────────────── Link-Layer Offsets ──────────────────────────

const (
	// EthHeaderSize covers dst MAC + src MAC + EtherType.
	EthHeaderSize = 14

	// EthTypeOffset locates the 16-bit EtherType within the Ethernet
	// header.
	EthTypeOffset = 12

	// EtherTypeIPv4 is the EtherType carried by IPv4 datagrams.
	EtherTypeIPv4 = uint16(0x0800)

	// IPProtoOffset locates the protocol byte within the IPv4 header.
	IPProtoOffset = 9

	// IPProtoUDP is the IPv4 protocol number for UDP.
	IPProtoUDP = 17

	// IPv4MinHeaderSize is the option-free IPv4 header; the real length
	// is read from the IHL nibble at runtime.
	IPv4MinHeaderSize = 20

	// UDPHeaderSize covers src port + dst port + length + checksum.
	UDPHeaderSize = 8

	// FramedMinSize is the smallest packet that can carry a session
	// payload behind Ethernet/IPv4/UDP framing. Anything shorter is
	// counted invalid and dropped before session decode.
	FramedMinSize = EthHeaderSize + IPv4MinHeaderSize + UDPHeaderSize
)

// ───────────────────────────── Gap Management ──────────────────────────────

const (
	// MaxPendingGaps bounds the pending gap list so the producer path
	// never allocates without limit; exceeding it is an unrecoverable
	// session error. 1024 outstanding gaps on one session means the
	// upstream is broken, not lagging.
	MaxPendingGaps = 1024
)

// ───────────────────────────── Price Scaling ───────────────────────────────

const (
	// PriceScale is the internal fixed-point denominator (6 decimals).
	PriceScale = int64(1_000_000)

	// WirePriceLift converts wire prices (4 implicit decimals) to the
	// internal scale: 10^6 / 10^4.
	WirePriceLift = int64(100)
)

// ───────────────────────────── Ring Defaults ───────────────────────────────

const (
	// DefaultRingSize is the normalized-record ring capacity used when
	// the config omits one. Power-of-two required; 65536 × 64 B = 4 MiB
	// of slot storage, sized to ride out consumer stalls during bursts.
	DefaultRingSize = 1 << 16
)
