// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ RUN JOURNAL - COLD-PATH PERSISTENCE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Feed Handler
// Component: Operator Run Journal
//
// Description:
//   Cold-path sqlite journal tying a feed-handler run to its inputs and outcomes: one row per
//   run, a row per detected sequence gap, a digest per replayed capture file, and the final
//   counter snapshot as JSON. Strictly off the hot path - the ingest context never touches
//   the database; gap rows are written from the operator goroutine that drains the gap
//   notification channel.
//
// Persistence Characteristics:
//   - Single writer, append-mostly workload
//   - Explicit schema creation, prepared statements for the per-gap insert
//   - No in-flight state: the journal records history, never recovers it
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package journal

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"itchfeed/mold64"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SCHEMA
// ═══════════════════════════════════════════════════════════════════════════════════════════════

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		started_at  INTEGER NOT NULL,
		finished_at INTEGER,
		session_id  TEXT,
		stats_json  TEXT
	) WITHOUT ROWID;

	CREATE TABLE IF NOT EXISTS gaps (
		run_id         TEXT NOT NULL,
		start_seq      INTEGER NOT NULL,
		end_seq        INTEGER NOT NULL,
		detected_at_ns INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS captures (
		run_id   TEXT NOT NULL,
		path     TEXT NOT NULL,
		sha3_256 TEXT NOT NULL,
		bytes    INTEGER NOT NULL
	);
	`

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// JOURNAL
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Journal is one open run journal. One instance per process run; the
// run row is created at Open and closed out by Finish.
type Journal struct {
	db      *sql.DB
	runID   string
	gapStmt *sql.Stmt
}

// Open creates or opens the journal database, ensures the schema, and
// starts a new run row identified by a fresh UUID.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=100")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}

	j := &Journal{
		db:    db,
		runID: uuid.NewString(),
	}

	if _, err := db.Exec(
		`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`,
		j.runID, time.Now().UnixNano(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("insert run row: %w", err)
	}

	j.gapStmt, err = db.Prepare(
		`INSERT INTO gaps (run_id, start_seq, end_seq, detected_at_ns) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare gap insert: %w", err)
	}

	return j, nil
}

// RunID returns the identity of the current run.
func (j *Journal) RunID() string { return j.runID }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RECORDING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// RecordGap persists one detected sequence gap.
//
// ⚠️ Called from the operator context, never from the ingest path: the
// gap callback hands gaps to a channel and the drain loop lands here.
func (j *Journal) RecordGap(g mold64.Gap) error {
	if _, err := j.gapStmt.Exec(j.runID, int64(g.Start), int64(g.End), int64(g.DetectedAtNs)); err != nil {
		return fmt.Errorf("record gap [%d,%d]: %w", g.Start, g.End, err)
	}
	return nil
}

// RecordSession stamps the run row with the adopted session identifier.
func (j *Journal) RecordSession(sessionID string) error {
	if _, err := j.db.Exec(
		`UPDATE runs SET session_id = ? WHERE run_id = ?`,
		sessionID, j.runID,
	); err != nil {
		return fmt.Errorf("record session id: %w", err)
	}
	return nil
}

// RecordCapture digests a replayed capture file with SHA3-256 and ties
// it to the run, so results are traceable to exact inputs.
func (j *Journal) RecordCapture(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open capture %s: %w", path, err)
	}
	defer f.Close()

	h := sha3.New256()
	n, err := io.Copy(h, f)
	if err != nil {
		return fmt.Errorf("digest capture %s: %w", path, err)
	}

	if _, err := j.db.Exec(
		`INSERT INTO captures (run_id, path, sha3_256, bytes) VALUES (?, ?, ?, ?)`,
		j.runID, path, fmt.Sprintf("%x", h.Sum(nil)), n,
	); err != nil {
		return fmt.Errorf("record capture %s: %w", path, err)
	}
	return nil
}

// Finish closes out the run row with the final counter snapshot encoded
// as JSON. The snapshot argument is any stats aggregate the caller
// assembled (typically the handler's full Stats block).
func (j *Journal) Finish(snapshot any) error {
	blob, err := sonnet.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode stats snapshot: %w", err)
	}

	if _, err := j.db.Exec(
		`UPDATE runs SET finished_at = ?, stats_json = ? WHERE run_id = ?`,
		time.Now().UnixNano(), string(blob), j.runID,
	); err != nil {
		return fmt.Errorf("finish run row: %w", err)
	}
	return nil
}

// Close releases the prepared statements and the database handle.
func (j *Journal) Close() error {
	if j.gapStmt != nil {
		j.gapStmt.Close()
	}
	return j.db.Close()
}
