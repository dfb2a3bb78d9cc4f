// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: config.go — Runtime configuration for the feed handler
//
// Purpose:
//   - Declares the YAML-backed configuration consumed at bring-up:
//     ingest endpoint, ring geometry, core placement, replay input,
//     and journal location.
//
// Notes:
//   - Values feed the cold bring-up path only; nothing here is touched
//     after the ingest loop starts.
// ─────────────────────────────────────────────────────────────────────────────

package config

import (
	"fmt"

	"itchfeed/constants"
)

// Config is the full runtime configuration.
type Config struct {
	// Ingest selects the packet source.
	Ingest IngestConfig `yaml:"ingest"`

	// RingSize is the normalized-record ring capacity. Power of two;
	// usable capacity is one less.
	RingSize int `yaml:"ring_size"`

	// ConsumerCore pins the ring consumer context. ProducerCore is only
	// checked against ConsumerCore; the ingest context is not pinned.
	// Negative values leave placement to the scheduler.
	ProducerCore int `yaml:"producer_core"`
	ConsumerCore int `yaml:"consumer_core"`

	// JournalPath locates the sqlite run journal. Empty disables it.
	JournalPath string `yaml:"journal_path"`

	// StatsSeconds is the period of the operator stats printout.
	// Zero or omitted selects the 10-second default; a negative value
	// disables periodic printing.
	StatsSeconds int `yaml:"stats_seconds"`
}

// IngestConfig selects and parameterizes the packet source.
type IngestConfig struct {
	// Mode is "live" (UDP socket) or "replay" (capture file).
	Mode string `yaml:"mode"`

	// Listen is the UDP listen address for live mode, e.g.
	// "233.54.12.111:26477" for the venue multicast group.
	Listen string `yaml:"listen"`

	// ReplayFile is the length-prefixed capture for replay mode.
	ReplayFile string `yaml:"replay_file"`
}

// applyDefaults fills unset fields with working values.
func (c *Config) applyDefaults() {
	if c.RingSize == 0 {
		c.RingSize = constants.DefaultRingSize
	}
	if c.Ingest.Mode == "" {
		c.Ingest.Mode = "replay"
	}
	if c.ProducerCore == 0 && c.ConsumerCore == 0 {
		// Keep the two contexts off core 0 and apart by default.
		c.ProducerCore = 1
		c.ConsumerCore = 2
	}
	if c.StatsSeconds == 0 {
		c.StatsSeconds = 10
	}
}

// Validate rejects configurations the bring-up path cannot honor.
func (c *Config) Validate() error {
	if c.RingSize <= 0 || c.RingSize&(c.RingSize-1) != 0 {
		return fmt.Errorf("ring_size %d: must be a positive power of two", c.RingSize)
	}

	switch c.Ingest.Mode {
	case "live":
		if c.Ingest.Listen == "" {
			return fmt.Errorf("ingest mode live: listen address required")
		}
	case "replay":
		if c.Ingest.ReplayFile == "" {
			return fmt.Errorf("ingest mode replay: replay_file required")
		}
	default:
		return fmt.Errorf("ingest mode %q: must be live or replay", c.Ingest.Mode)
	}

	if c.ProducerCore >= 0 && c.ProducerCore == c.ConsumerCore {
		return fmt.Errorf("producer_core and consumer_core are both %d: contexts must not share a core", c.ProducerCore)
	}
	return nil
}
