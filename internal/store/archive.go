// Package store archives completed sweeps in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/qdev-lab/memtest/internal/sample"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
-- One row per completed sweep
CREATE TABLE IF NOT EXISTS sweeps (
    id TEXT PRIMARY KEY,
    protocol TEXT NOT NULL,
    started_at TEXT NOT NULL,
    params TEXT,   -- JSON
    metrics TEXT   -- JSON
);
CREATE INDEX IF NOT EXISTS idx_sweeps_protocol ON sweeps(protocol);
CREATE INDEX IF NOT EXISTS idx_sweeps_started ON sweeps(started_at);

-- One row per sample, ordered by seq within a sweep
CREATE TABLE IF NOT EXISTS samples (
    sweep_id TEXT NOT NULL REFERENCES sweeps(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    timestamp REAL NOT NULL,
    voltage REAL NOT NULL,
    current REAL NOT NULL,
    label TEXT,
    PRIMARY KEY (sweep_id, seq)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

// Archive is the sweep database. Writes are serialized through a single
// connection; the port side of a test session is sequential anyway.
type Archive struct {
	mu sync.RWMutex
	db *sql.DB
}

// SweepSummary is the listing view of an archived sweep.
type SweepSummary struct {
	ID        string    `json:"id"`
	Protocol  string    `json:"protocol"`
	StartedAt time.Time `json:"started_at"`
	Samples   int       `json:"samples"`
}

// Open creates or opens the archive database at dir/memtest.db.
func Open(dir string) (*Archive, error) {
	dbPath := filepath.Join(dir, "memtest.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.db.Close()
}

// Save archives a completed sweep with its samples, parameters, and metrics.
func (a *Archive) Save(ctx context.Context, sw *sample.Sweep) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	params, err := json.Marshal(sw.Params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	metrics, err := json.Marshal(sw.Metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sweeps (id, protocol, started_at, params, metrics) VALUES (?, ?, ?, ?, ?)`,
		sw.ID, sw.Protocol, sw.StartedAt.UTC().Format(time.RFC3339Nano), string(params), string(metrics))
	if err != nil {
		return fmt.Errorf("inserting sweep %s: %w", sw.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (sweep_id, seq, timestamp, voltage, current, label) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing sample insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range sw.Log.Samples() {
		if _, err := stmt.ExecContext(ctx, sw.ID, i, s.Timestamp, s.Voltage, s.Current, s.Label); err != nil {
			return fmt.Errorf("inserting sample %d of sweep %s: %w", i, sw.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sweep %s: %w", sw.ID, err)
	}
	return nil
}

// List returns archived sweep summaries, newest first. An empty protocol
// matches all protocols.
func (a *Archive) List(ctx context.Context, protocol string) ([]SweepSummary, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	query := `
SELECT s.id, s.protocol, s.started_at, COUNT(m.sweep_id)
FROM sweeps s LEFT JOIN samples m ON m.sweep_id = s.id
WHERE (? = '' OR s.protocol = ?)
GROUP BY s.id
ORDER BY s.started_at DESC`

	rows, err := a.db.QueryContext(ctx, query, protocol, protocol)
	if err != nil {
		return nil, fmt.Errorf("listing sweeps: %w", err)
	}
	defer rows.Close()

	var out []SweepSummary
	for rows.Next() {
		var sum SweepSummary
		var started string
		if err := rows.Scan(&sum.ID, &sum.Protocol, &started, &sum.Samples); err != nil {
			return nil, fmt.Errorf("scanning sweep row: %w", err)
		}
		sum.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at of %s: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get loads one archived sweep with its full sample log.
func (a *Archive) Get(ctx context.Context, id string) (*sample.Sweep, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var sw sample.Sweep
	var started, params, metrics string
	err := a.db.QueryRowContext(ctx,
		`SELECT id, protocol, started_at, params, metrics FROM sweeps WHERE id = ?`, id).
		Scan(&sw.ID, &sw.Protocol, &started, &params, &metrics)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sweep %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading sweep %s: %w", id, err)
	}

	sw.StartedAt, err = time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &sw.Params); err != nil {
		return nil, fmt.Errorf("decoding params: %w", err)
	}
	if err := json.Unmarshal([]byte(metrics), &sw.Metrics); err != nil {
		return nil, fmt.Errorf("decoding metrics: %w", err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT timestamp, voltage, current, label FROM samples WHERE sweep_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("loading samples of %s: %w", id, err)
	}
	defer rows.Close()

	sw.Log = sample.NewLog()
	for rows.Next() {
		var s sample.Sample
		if err := rows.Scan(&s.Timestamp, &s.Voltage, &s.Current, &s.Label); err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}
		sw.Log.Append(s)
	}
	return &sw, rows.Err()
}
