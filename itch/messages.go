// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: messages.go — ITCH 5.0 message-kind table
//
// Purpose:
//   - Declares the first-byte kind codes and the exact wire size of every
//     supported message, driving the parser's table dispatch.
//
// Notes:
//   - Every message opens with the same 11-byte header: kind code (1),
//     stock locate (2), tracking number (2), timestamp (6 bytes,
//     big-endian nanoseconds since midnight). Field offsets in the
//     parser are absolute from the kind byte.
//   - Messages are bit-for-bit contiguous with no padding; all multibyte
//     integers are big-endian.
//
// ⚠️ No runtime logic here beyond the size lookup — the table must stay
// in lockstep with the parser's field offsets.
// ─────────────────────────────────────────────────────────────────────────────

package itch

// Message kind codes (first byte of every message).
const (
	TypeSystemEvent              = 'S'
	TypeStockDirectory           = 'R'
	TypeStockTradingAction       = 'H'
	TypeRegSHORestriction        = 'Y'
	TypeMarketParticipantPos     = 'L'
	TypeMWCBDecline              = 'V'
	TypeMWCBStatus               = 'W'
	TypeIPOQuotingPeriod         = 'K'
	TypeLULDAuctionCollar        = 'J'
	TypeOperationalHalt          = 'h'
	TypeAddOrder                 = 'A'
	TypeAddOrderMPID             = 'F'
	TypeOrderExecuted            = 'E'
	TypeOrderExecutedWithPrice   = 'C'
	TypeOrderCancel              = 'X'
	TypeOrderDelete              = 'D'
	TypeOrderReplace             = 'U'
	TypeTrade                    = 'P'
	TypeCrossTrade               = 'Q'
	TypeBrokenTrade              = 'B'
	TypeNOII                     = 'I'
	TypeRPII                     = 'N'
)

// Exact wire sizes per kind.
const (
	SizeSystemEvent            = 12
	SizeStockDirectory         = 39
	SizeStockTradingAction     = 25
	SizeRegSHORestriction      = 20
	SizeMarketParticipantPos   = 26
	SizeMWCBDecline            = 35
	SizeMWCBStatus             = 12
	SizeIPOQuotingPeriod       = 28
	SizeLULDAuctionCollar      = 35
	SizeOperationalHalt        = 21
	SizeAddOrder               = 36
	SizeAddOrderMPID           = 40
	SizeOrderExecuted          = 31
	SizeOrderExecutedWithPrice = 36
	SizeOrderCancel            = 23
	SizeOrderDelete            = 19
	SizeOrderReplace           = 35
	SizeTrade                  = 44
	SizeCrossTrade             = 40
	SizeBrokenTrade            = 19
	SizeNOII                   = 50
	SizeRPII                   = 20
)

// msgSize maps a kind code to its exact wire size; zero marks an unknown
// code. Indexed by the raw first byte for branch-free lookup.
var msgSize = [256]uint8{
	TypeSystemEvent:            SizeSystemEvent,
	TypeStockDirectory:         SizeStockDirectory,
	TypeStockTradingAction:     SizeStockTradingAction,
	TypeRegSHORestriction:      SizeRegSHORestriction,
	TypeMarketParticipantPos:   SizeMarketParticipantPos,
	TypeMWCBDecline:            SizeMWCBDecline,
	TypeMWCBStatus:             SizeMWCBStatus,
	TypeIPOQuotingPeriod:       SizeIPOQuotingPeriod,
	TypeLULDAuctionCollar:      SizeLULDAuctionCollar,
	TypeOperationalHalt:        SizeOperationalHalt,
	TypeAddOrder:               SizeAddOrder,
	TypeAddOrderMPID:           SizeAddOrderMPID,
	TypeOrderExecuted:          SizeOrderExecuted,
	TypeOrderExecutedWithPrice: SizeOrderExecutedWithPrice,
	TypeOrderCancel:            SizeOrderCancel,
	TypeOrderDelete:            SizeOrderDelete,
	TypeOrderReplace:           SizeOrderReplace,
	TypeTrade:                  SizeTrade,
	TypeCrossTrade:             SizeCrossTrade,
	TypeBrokenTrade:            SizeBrokenTrade,
	TypeNOII:                   SizeNOII,
	TypeRPII:                   SizeRPII,
}

// MessageSize returns the exact wire size for a kind code, or 0 for an
// unknown code.
//
//go:nosplit
//go:inline
func MessageSize(code byte) int {
	return int(msgSize[code])
}
