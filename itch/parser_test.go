// ============================================================================
// ITCH 5.0 PARSER VALIDATION SUITE
// ============================================================================
//
// Test categories:
//   - Size table: declared size equals bytes consumed for every kind
//   - Short buffers: zero consumed, zero counter movement
//   - Normalization: field extraction, price lifting, side mapping
//   - Statistics: per-kind counter attribution
//   - Unknown kinds: counted, zero consumed

package itch

import (
	"testing"

	"itchfeed/types"
	"itchfeed/utils"
)

// ============================================================================
// TEST UTILITIES AND HELPERS
// ============================================================================

// buildMessage allocates a message of the exact size for code with the
// common header stamped: kind, locate, tracking, 6-byte timestamp.
func buildMessage(code byte, ts uint64) []byte {
	b := make([]byte, MessageSize(code))
	b[0] = code
	utils.StoreBE16(b[1:], 1)   // Stock locate
	utils.StoreBE16(b[3:], 2)   // Tracking number
	utils.StoreBE48(b[5:], ts)
	return b
}

// buildAddOrder assembles an 'A' message.
func buildAddOrder(ref uint64, side byte, shares uint32, stock string, priceWire uint32, ts uint64) []byte {
	b := buildMessage(TypeAddOrder, ts)
	utils.StoreBE64(b[11:], ref)
	b[19] = side
	utils.StoreBE32(b[20:], shares)
	copy(b[24:32], stock)
	utils.StoreBE32(b[32:], priceWire)
	return b
}

// buildOrderExecuted assembles an 'E' message.
func buildOrderExecuted(ref uint64, shares uint32, match uint64, ts uint64) []byte {
	b := buildMessage(TypeOrderExecuted, ts)
	utils.StoreBE64(b[11:], ref)
	utils.StoreBE32(b[19:], shares)
	utils.StoreBE64(b[23:], match)
	return b
}

// buildOrderReplace assembles a 'U' message.
func buildOrderReplace(orig, repl uint64, shares uint32, priceWire uint32, ts uint64) []byte {
	b := buildMessage(TypeOrderReplace, ts)
	utils.StoreBE64(b[11:], orig)
	utils.StoreBE64(b[19:], repl)
	utils.StoreBE32(b[27:], shares)
	utils.StoreBE32(b[31:], priceWire)
	return b
}

// buildTrade assembles a 'P' message.
func buildTrade(ref uint64, side byte, shares uint32, stock string, priceWire uint32, match uint64, ts uint64) []byte {
	b := buildMessage(TypeTrade, ts)
	utils.StoreBE64(b[11:], ref)
	b[19] = side
	utils.StoreBE32(b[20:], shares)
	copy(b[24:32], stock)
	utils.StoreBE32(b[32:], priceWire)
	utils.StoreBE64(b[36:], match)
	return b
}

// capture collects emitted records.
type capture struct {
	recs []types.Record
}

func (c *capture) attach(p *Parser) {
	p.SetEmit(func(r *types.Record) {
		c.recs = append(c.recs, *r)
	})
}

// ============================================================================
// SIZE TABLE
// ============================================================================

var allKinds = []byte{
	TypeSystemEvent, TypeStockDirectory, TypeStockTradingAction,
	TypeRegSHORestriction, TypeMarketParticipantPos, TypeMWCBDecline,
	TypeMWCBStatus, TypeIPOQuotingPeriod, TypeLULDAuctionCollar,
	TypeOperationalHalt, TypeAddOrder, TypeAddOrderMPID,
	TypeOrderExecuted, TypeOrderExecutedWithPrice, TypeOrderCancel,
	TypeOrderDelete, TypeOrderReplace, TypeTrade, TypeCrossTrade,
	TypeBrokenTrade, TypeNOII, TypeRPII,
}

// TestConsumedMatchesDeclaredSize validates that every kind consumes
// exactly its declared size, including on oversized buffers.
func TestConsumedMatchesDeclaredSize(t *testing.T) {
	for _, code := range allKinds {
		t.Run(string(code), func(t *testing.T) {
			p := NewParser()
			want := MessageSize(code)
			if want == 0 {
				t.Fatalf("kind %q missing from size table", code)
			}

			// Exact-size buffer
			if got := p.Parse(buildMessage(code, 1)); got != want {
				t.Errorf("exact buffer consumed %d, want %d", got, want)
			}

			// Oversized buffer still consumes exactly the declared size
			big := append(buildMessage(code, 1), make([]byte, 32)...)
			if got := p.Parse(big); got != want {
				t.Errorf("oversized buffer consumed %d, want %d", got, want)
			}

			if p.Stats().TotalMessages != 2 {
				t.Errorf("TotalMessages = %d, want 2", p.Stats().TotalMessages)
			}
		})
	}
}

// TestShortBufferConsumesNothing validates that every truncation length
// of every kind reports zero consumed and moves no counters.
func TestShortBufferConsumesNothing(t *testing.T) {
	for _, code := range allKinds {
		full := buildMessage(code, 1)
		for n := 1; n < len(full); n++ {
			p := NewParser()
			var c capture
			c.attach(p)

			if got := p.Parse(full[:n]); got != 0 {
				t.Fatalf("kind %q len %d consumed %d, want 0", code, n, got)
			}
			if p.Stats() != (Stats{}) {
				t.Fatalf("kind %q len %d moved counters: %+v", code, n, p.Stats())
			}
			if len(c.recs) != 0 {
				t.Fatalf("kind %q len %d emitted a record", code, n)
			}
		}
	}
}

// TestUnknownKind validates the unknown-code path: counted, nothing
// consumed, nothing emitted.
func TestUnknownKind(t *testing.T) {
	p := NewParser()
	var c capture
	c.attach(p)

	buf := make([]byte, 64)
	buf[0] = 'z' // Not in the table

	if got := p.Parse(buf); got != 0 {
		t.Errorf("consumed %d, want 0", got)
	}
	if p.Stats().UnknownMessages != 1 {
		t.Errorf("UnknownMessages = %d, want 1", p.Stats().UnknownMessages)
	}
	if p.Stats().TotalMessages != 0 {
		t.Errorf("TotalMessages = %d, want 0", p.Stats().TotalMessages)
	}
	if len(c.recs) != 0 {
		t.Error("unknown kind emitted a record")
	}

	if got := p.Parse(nil); got != 0 {
		t.Errorf("empty buffer consumed %d", got)
	}
}

// ============================================================================
// NORMALIZATION
// ============================================================================

// TestAddOrderRoundTrip validates the full field round trip: wire fields
// in, normalized record out, price lifted by 100.
func TestAddOrderRoundTrip(t *testing.T) {
	const (
		ref       = uint64(987654321)
		shares    = uint32(250)
		priceWire = uint32(1_234_500)
		ts        = uint64(34_200_000_000_000)
	)

	p := NewParser()
	var c capture
	c.attach(p)

	msg := buildAddOrder(ref, 'B', shares, "MSFT    ", priceWire, ts)
	if got := p.Parse(msg); got != SizeAddOrder {
		t.Fatalf("consumed %d, want %d", got, SizeAddOrder)
	}

	if len(c.recs) != 1 {
		t.Fatalf("emitted %d records, want 1", len(c.recs))
	}
	rec := c.recs[0]

	if rec.Kind != types.KindAddOrder {
		t.Errorf("kind = %d", rec.Kind)
	}
	if rec.OrderRef != ref {
		t.Errorf("order ref = %d, want %d", rec.OrderRef, ref)
	}
	if rec.Side != types.Buy {
		t.Errorf("side = %d, want buy", rec.Side)
	}
	if rec.Quantity != shares {
		t.Errorf("quantity = %d, want %d", rec.Quantity, shares)
	}
	if want := int64(priceWire) * 100; rec.Price != want {
		t.Errorf("price = %d, want %d (wire x100)", rec.Price, want)
	}
	if string(rec.Stock[:]) != "MSFT    " {
		t.Errorf("stock = %q", rec.Stock)
	}
	if rec.Timestamp != ts {
		t.Errorf("timestamp = %d, want %d", rec.Timestamp, ts)
	}
	if rec.ExecutedQuantity != 0 || rec.NewOrderRef != 0 {
		t.Error("unused fields not zeroed")
	}
}

// TestSideMapping validates that only 'B' maps to buy.
func TestSideMapping(t *testing.T) {
	for _, tc := range []struct {
		wire byte
		want types.Side
	}{
		{'B', types.Buy},
		{'S', types.Sell},
		{'X', types.Sell}, // Anything non-'B' is a sell
		{0, types.Sell},
	} {
		p := NewParser()
		var c capture
		c.attach(p)
		p.Parse(buildAddOrder(1, tc.wire, 1, "AAPL    ", 1, 1))
		if len(c.recs) != 1 {
			t.Fatalf("side %q: emitted %d records", tc.wire, len(c.recs))
		}
		if c.recs[0].Side != tc.want {
			t.Errorf("side %q mapped to %d, want %d", tc.wire, c.recs[0].Side, tc.want)
		}
	}
}

// TestOrderExecuted validates execution normalization.
func TestOrderExecuted(t *testing.T) {
	p := NewParser()
	var c capture
	c.attach(p)

	p.Parse(buildOrderExecuted(123456789, 50, 999_888_777, 34_200_100_000_000))

	if len(c.recs) != 1 {
		t.Fatalf("emitted %d records", len(c.recs))
	}
	rec := c.recs[0]
	if rec.Kind != types.KindOrderExecuted {
		t.Errorf("kind = %d", rec.Kind)
	}
	if rec.OrderRef != 123456789 {
		t.Errorf("order ref = %d", rec.OrderRef)
	}
	if rec.ExecutedQuantity != 50 {
		t.Errorf("executed = %d, want 50", rec.ExecutedQuantity)
	}
	if rec.Timestamp != 34_200_100_000_000 {
		t.Errorf("timestamp = %d", rec.Timestamp)
	}
	if rec.Quantity != 0 || rec.Price != 0 {
		t.Error("unused fields not zeroed")
	}
	if p.Stats().OrderExecuted != 1 {
		t.Errorf("OrderExecuted = %d", p.Stats().OrderExecuted)
	}
}

// TestOrderReplace validates original/new reference extraction.
func TestOrderReplace(t *testing.T) {
	p := NewParser()
	var c capture
	c.attach(p)

	p.Parse(buildOrderReplace(111, 222, 75, 500_000, 7))

	rec := c.recs[0]
	if rec.Kind != types.KindOrderReplace {
		t.Errorf("kind = %d", rec.Kind)
	}
	if rec.OrderRef != 111 || rec.NewOrderRef != 222 {
		t.Errorf("refs = %d/%d, want 111/222", rec.OrderRef, rec.NewOrderRef)
	}
	if rec.Quantity != 75 {
		t.Errorf("quantity = %d", rec.Quantity)
	}
	if rec.Price != 50_000_000 {
		t.Errorf("price = %d, want 50000000", rec.Price)
	}
	if p.Stats().OrderReplaced != 1 {
		t.Errorf("OrderReplaced = %d", p.Stats().OrderReplaced)
	}
}

// TestTrade validates non-cross trade normalization.
func TestTrade(t *testing.T) {
	p := NewParser()
	var c capture
	c.attach(p)

	p.Parse(buildTrade(42, 'S', 300, "TSLA    ", 2_501_000, 5, 9))

	rec := c.recs[0]
	if rec.Kind != types.KindTrade {
		t.Errorf("kind = %d", rec.Kind)
	}
	if rec.Side != types.Sell {
		t.Errorf("side = %d", rec.Side)
	}
	if rec.Quantity != 300 {
		t.Errorf("quantity = %d", rec.Quantity)
	}
	if string(rec.Stock[:]) != "TSLA    " {
		t.Errorf("stock = %q", rec.Stock)
	}
	if rec.Price != 250_100_000 {
		t.Errorf("price = %d", rec.Price)
	}
	if p.Stats().Trades != 1 {
		t.Errorf("Trades = %d", p.Stats().Trades)
	}
}

// ============================================================================
// STATISTICS
// ============================================================================

// TestAdminKindsCountedNotEmitted validates that administrative kinds
// move other_messages and emit nothing.
func TestAdminKindsCountedNotEmitted(t *testing.T) {
	admin := []byte{
		TypeSystemEvent, TypeStockDirectory, TypeStockTradingAction,
		TypeRegSHORestriction, TypeMarketParticipantPos, TypeMWCBDecline,
		TypeMWCBStatus, TypeIPOQuotingPeriod, TypeLULDAuctionCollar,
		TypeOperationalHalt, TypeCrossTrade, TypeBrokenTrade,
		TypeNOII, TypeRPII,
	}

	p := NewParser()
	var c capture
	c.attach(p)

	for _, code := range admin {
		if got := p.Parse(buildMessage(code, 1)); got != MessageSize(code) {
			t.Errorf("kind %q consumed %d", code, got)
		}
	}

	st := p.Stats()
	if st.OtherMessages != uint64(len(admin)) {
		t.Errorf("OtherMessages = %d, want %d", st.OtherMessages, len(admin))
	}
	if st.TotalMessages != uint64(len(admin)) {
		t.Errorf("TotalMessages = %d, want %d", st.TotalMessages, len(admin))
	}
	if len(c.recs) != 0 {
		t.Errorf("admin kinds emitted %d records", len(c.recs))
	}
}

// TestStatsAttributionAndReset validates per-kind counters and reset.
func TestStatsAttributionAndReset(t *testing.T) {
	p := NewParser()

	p.Parse(buildAddOrder(1, 'B', 1, "AAPL    ", 1, 1))
	p.Parse(buildOrderExecuted(1, 1, 1, 1))
	p.Parse(buildMessage(TypeOrderExecutedWithPrice, 1))
	p.Parse(buildMessage(TypeOrderCancel, 1))
	p.Parse(buildMessage(TypeOrderDelete, 1))
	p.Parse(buildOrderReplace(1, 2, 1, 1, 1))
	p.Parse(buildTrade(1, 'B', 1, "AAPL    ", 1, 1, 1))
	p.Parse(buildMessage(TypeSystemEvent, 1))

	st := p.Stats()
	if st.AddOrders != 1 || st.OrderExecuted != 2 || st.OrderCancelled != 1 ||
		st.OrderDeleted != 1 || st.OrderReplaced != 1 || st.Trades != 1 ||
		st.OtherMessages != 1 || st.TotalMessages != 8 {
		t.Errorf("stats = %+v", st)
	}

	p.ResetStats()
	if p.Stats() != (Stats{}) {
		t.Errorf("reset left %+v", p.Stats())
	}
}

// TestOrderedDispatch validates wire-order dispatch of a back-to-back
// message run with sequential order references.
func TestOrderedDispatch(t *testing.T) {
	p := NewParser()
	var c capture
	c.attach(p)

	for i := uint64(0); i < 10; i++ {
		msg := buildAddOrder(i, 'B', 100, "AAPL    ", 1, 1)
		if got := p.Parse(msg); got != SizeAddOrder {
			t.Fatalf("message %d consumed %d", i, got)
		}
	}

	if len(c.recs) != 10 {
		t.Fatalf("emitted %d records, want 10", len(c.recs))
	}
	for i, rec := range c.recs {
		if rec.OrderRef != uint64(i) {
			t.Errorf("record %d carries ref %d", i, rec.OrderRef)
		}
	}
	if st := p.Stats(); st.TotalMessages != 10 || st.AddOrders != 10 {
		t.Errorf("stats = %+v", st)
	}
}
