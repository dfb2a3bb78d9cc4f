// ════════════════════════════════════════════════════════════════════════════════════════════════
// Market Data Feed Handler - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: ITCH 5.0 / MoldUDP64 Feed Handler
// Component: Main Entry Point & System Orchestration
//
// Description:
//   System orchestration with phased initialization and clean separation of concerns.
//   Configuration → Journal → Ring + Consumer Bring-up → Ingest (live or replay) → Teardown
//
// Architecture:
//   - Phase 0: Configuration load and journal open
//   - Phase 1: Ring construction and pinned consumer launch
//   - Phase 2: Ingest loop on the producer context (UDP socket or capture replay)
//   - Phase 3: Drain, final statistics, journal close-out
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"itchfeed/config"
	"itchfeed/control"
	"itchfeed/debug"
	"itchfeed/feed"
	"itchfeed/journal"
	"itchfeed/mold64"
	"itchfeed/ring64"
	"itchfeed/types"
	"itchfeed/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// main orchestrates the complete system lifecycle in distinct phases.
func main() {
	// PHASE 0: Configuration and journal
	cfg := loadConfig()

	var jnl *journal.Journal
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			debug.DropError("JOURNAL", err)
			os.Exit(1)
		}
		jnl = j
		defer jnl.Close()
		debug.DropMessage("JOURNAL", "Run "+jnl.RunID())
	}

	// PHASE 1: Ring, handler, and pinned consumer bring-up
	ring := ring64.New(cfg.RingSize)
	handler := feed.NewHandler(ring)

	// Gap notifications hop off the producer context through a buffered
	// channel; the operator goroutine narrates and journals them.
	gapCh := make(chan mold64.Gap, 256)
	handler.SetGapCallback(func(g mold64.Gap) {
		select {
		case gapCh <- g:
		default: // Operator lagging: the session still tracks the gap
		}
	})
	go drainGaps(gapCh, jnl)

	var consumed uint64 // Records seen by the consumer context
	stopFlag, hotFlag := control.Flags()
	consumerDone := make(chan struct{})
	ring64.PinnedConsumerWithCooldown(cfg.ConsumerCore, ring, stopFlag, hotFlag,
		func(raw *[ring64.PayloadSize]byte) {
			// Downstream consumers (book build, persistence) plug in here.
			_ = types.RecordFromBytes(raw)
			atomic.AddUint64(&consumed, 1)
		}, consumerDone)

	handler.Start()
	setupSignalHandling(handler)
	debug.DropMessage("READY", "Ring "+utils.Itoa(cfg.RingSize)+" mode "+cfg.Ingest.Mode)

	if cfg.StatsSeconds > 0 {
		go statsLoop(handler, &consumed, time.Duration(cfg.StatsSeconds)*time.Second)
	}

	// PHASE 2: Ingest on the producer context
	switch cfg.Ingest.Mode {
	case "replay":
		runReplay(cfg, handler, jnl)
	case "live":
		runLive(cfg, handler)
	}

	// PHASE 3: Teardown - stop, drain the consumer, record the run
	handler.Stop()
	control.Shutdown()
	<-consumerDone

	st := handler.Stats()
	printStats(st, atomic.LoadUint64(&consumed))

	if jnl != nil {
		if sess := handler.Session().SessionID(); sess != ([10]byte{}) {
			var h mold64.Header
			h.Session = sess
			_ = jnl.RecordSession(h.SessionString())
		}
		if err := jnl.Finish(st); err != nil {
			debug.DropError("JOURNAL", err)
		}
	}
}

// loadConfig reads the config path from argv or falls back to defaults.
func loadConfig() *config.Config {
	if len(os.Args) > 1 {
		cfg, err := config.LoadAndValidate(os.Args[1])
		if err != nil {
			debug.DropError("CONFIG", err)
			os.Exit(1)
		}
		return cfg
	}
	debug.DropMessage("CONFIG", "No config file given, using defaults")
	return config.Default()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// INGEST MODES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// runReplay streams a length-prefixed capture file through the parser.
func runReplay(cfg *config.Config, handler *feed.Handler, jnl *journal.Journal) {
	path := cfg.Ingest.ReplayFile
	if path == "" {
		debug.DropMessage("REPLAY", "No replay file configured")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		debug.DropError("REPLAY", err)
		return
	}
	if jnl != nil {
		if err := jnl.RecordCapture(path); err != nil {
			debug.DropError("JOURNAL", err)
		}
	}

	start := time.Now()
	decoded := handler.FeedFile(data)
	elapsed := time.Since(start)

	debug.DropMessage("REPLAY", utils.Itoa(decoded)+" messages from "+
		utils.Itoa(len(data))+" bytes in "+elapsed.String())
}

// runLive reads session-layer datagrams off a UDP socket until stopped.
// The kernel already stripped the link framing, so packets go straight
// to FeedSession. Kernel-bypass ingest replaces this loop in production
// and calls FeedFramed with whole frames.
func runLive(cfg *config.Config, handler *feed.Handler) {
	addr, err := net.ResolveUDPAddr("udp4", cfg.Ingest.Listen)
	if err != nil {
		debug.DropError("LIVE", err)
		return
	}

	var conn *net.UDPConn
	if addr.IP != nil && addr.IP.IsMulticast() {
		conn, err = net.ListenMulticastUDP("udp4", nil, addr)
	} else {
		conn, err = net.ListenUDP("udp4", addr)
	}
	if err != nil {
		debug.DropError("LIVE", err)
		return
	}
	defer conn.Close()
	_ = conn.SetReadBuffer(8 << 20)

	debug.DropMessage("LIVE", "Listening on "+cfg.Ingest.Listen)

	buf := make([]byte, 2048) // Venue datagrams fit a single MTU
	for handler.IsRunning() {
		// Short deadline keeps the running flag responsive
		_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			debug.DropError("LIVE", err)
			return
		}
		handler.FeedSession(buf[:n])

		// A terminal session ends the run
		switch handler.Session().State() {
		case mold64.StateEndOfSession:
			debug.DropMessage("LIVE", "End of session")
			return
		case mold64.StateError:
			debug.DropMessage("LIVE", "Session error, stopping")
			return
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// OPERATOR LOOPS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// drainGaps narrates and journals gap notifications off the hot path.
func drainGaps(gapCh <-chan mold64.Gap, jnl *journal.Journal) {
	for g := range gapCh {
		debug.DropMessage("GAP", "["+utils.Utoa(g.Start)+","+utils.Utoa(g.End)+"]")
		if jnl != nil {
			if err := jnl.RecordGap(g); err != nil {
				debug.DropError("JOURNAL", err)
			}
		}
	}
}

// statsLoop prints the counter snapshot periodically while running.
func statsLoop(handler *feed.Handler, consumed *uint64, period time.Duration) {
	tick := time.NewTicker(period)
	defer tick.Stop()
	for range tick.C {
		if !handler.IsRunning() {
			return
		}
		printStats(handler.Stats(), atomic.LoadUint64(consumed))
	}
}

// printStats renders the aggregate counter block.
func printStats(st feed.Stats, consumed uint64) {
	debug.DropMessage("STATS",
		"packets "+utils.Utoa(st.PacketsProcessed)+
			" bytes "+utils.Utoa(st.BytesProcessed)+
			" invalid "+utils.Utoa(st.InvalidPackets)+
			" pushed "+utils.Utoa(st.MessagesPushed)+
			" dropped "+utils.Utoa(st.BufferFullCount)+
			" consumed "+utils.Utoa(consumed))
	debug.DropMessage("PARSER",
		"total "+utils.Utoa(st.Parser.TotalMessages)+
			" adds "+utils.Utoa(st.Parser.AddOrders)+
			" execs "+utils.Utoa(st.Parser.OrderExecuted)+
			" cancels "+utils.Utoa(st.Parser.OrderCancelled)+
			" deletes "+utils.Utoa(st.Parser.OrderDeleted)+
			" replaces "+utils.Utoa(st.Parser.OrderReplaced)+
			" trades "+utils.Utoa(st.Parser.Trades)+
			" other "+utils.Utoa(st.Parser.OtherMessages)+
			" unknown "+utils.Utoa(st.Parser.UnknownMessages))
	debug.DropMessage("SESSION",
		"packets "+utils.Utoa(st.Session.PacketsReceived)+
			" messages "+utils.Utoa(st.Session.MessagesReceived)+
			" gaps "+utils.Utoa(st.Session.GapsDetected)+
			" heartbeats "+utils.Utoa(st.Session.HeartbeatsReceived))
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SIGNAL HANDLING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// setupSignalHandling stops the ingest loop on SIGINT/SIGTERM; the main
// flow then tears the consumer down in order.
func setupSignalHandling(handler *feed.Handler) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		debug.DropMessage("SIGNAL", "Shutdown requested")
		handler.Stop()
	}()
}
