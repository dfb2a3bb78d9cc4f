package types

import "unsafe"

// ============================================================================
// NORMALIZED MARKET-DATA RECORD - FIXED-LAYOUT DOWNSTREAM UNIT
// ============================================================================

// Kind tags a normalized record with the event class it was decoded from.
// Order-flow kinds are materialized into the ring; administrative kinds are
// counted by the parser but never emitted downstream in this release.
// KindCrossTrade and KindBrokenTrade are defined, but the parser counts
// those messages without emitting a record for them.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAddOrder
	KindAddOrderMPID
	KindOrderExecuted
	KindOrderExecutedWithPrice
	KindOrderCancel
	KindOrderDelete
	KindOrderReplace
	KindTrade
	KindCrossTrade
	KindBrokenTrade

	// Administrative tail - tracked for statistics, not materialized.
	KindSystemEvent
	KindStockDirectory
	KindStockTradingAction
	KindRegSHO
	KindMarketParticipantPosition
	KindMWCB
	KindIPOQuotingPeriod
	KindLULD
	KindOperationalHalt
)

// Side is the resting side of an order. The wire uses 'B' for buy;
// every other indicator maps to sell.
type Side uint8

const (
	Buy Side = iota
	Sell
)

// RecordSize is the exact byte footprint of a Record. The SPSC ring
// carries records as raw [RecordSize]byte payloads.
const RecordSize = 64

// Record is the uniform downstream unit produced by the parser and
// carried through the ring. Trivially copyable, no owned allocations,
// exactly one cache line. Fields a given kind does not use are zeroed.
//
// Memory Layout Analysis:
// - Bytes  0..7:  Timestamp   (hot - every kind)
// - Bytes  8..15: OrderRef    (hot - every order kind)
// - Bytes 16..23: NewOrderRef (replace only)
// - Bytes 24..31: Price       (internal 10^6 fixed point, signed)
// - Bytes 32..39: Stock       (8 raw ASCII bytes, space padded)
// - Bytes 40..43: Quantity
// - Bytes 44..47: ExecutedQuantity
// - Byte  48:     Kind tag
// - Byte  49:     Side
// - Bytes 50..63: Padding to a full cache line
//
// ⚠️ The layout is load-bearing: feed casts *Record ↔ *[64]byte across
// the ring boundary. Any field change must keep the struct at exactly
// RecordSize bytes.
//
//go:align 64
type Record struct {
	Timestamp        uint64  // Nanoseconds since local midnight (48-bit wire range)
	OrderRef         uint64  // Opaque venue order identifier
	NewOrderRef      uint64  // Replacement identifier (OrderReplace only)
	Price            int64   // Fixed point, 6 implicit decimals
	Stock            [8]byte // ASCII symbol, right-padded with spaces
	Quantity         uint32  // Shares (add/replace/trade) or cancelled shares
	ExecutedQuantity uint32  // Shares executed (executions only)
	Kind             Kind    // Event class tag
	Side             Side    // Buy/Sell
	_                [14]byte
}

// ============================================================================
// RING PAYLOAD CASTS
// ============================================================================

// AsBytes reinterprets a Record as the raw ring payload. Zero-copy; the
// returned pointer aliases r.
//
//go:nosplit
//go:inline
func (r *Record) AsBytes() *[RecordSize]byte {
	return (*[RecordSize]byte)(unsafe.Pointer(r))
}

// RecordFromBytes reinterprets a ring payload as a Record. Zero-copy;
// the result aliases b and is only valid while b is.
//
//go:nosplit
//go:inline
func RecordFromBytes(b *[RecordSize]byte) *Record {
	return (*Record)(unsafe.Pointer(b))
}

// StockString trims the space padding off the symbol field for
// human-readable output paths. Allocates; keep off the hot path.
func (r *Record) StockString() string {
	end := len(r.Stock)
	for end > 0 && r.Stock[end-1] == ' ' {
		end--
	}
	return string(r.Stock[:end])
}
