package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Record is one journaled event.
type Record struct {
	// Seq is the logical clock stamp. Unique; ties the row to the exact
	// dispatch order.
	Seq int64

	// Token correlates this row with the dispatch's log lines.
	Token string

	// Kind is the event's stable kind tag (see internal/engine).
	Kind string

	// Payload is the event serialized as JSON.
	Payload string

	// RecordedAt is the canonical wall-clock timestamp of the append.
	// Informational only - ordering always uses Seq.
	RecordedAt string
}

// Journal is a SQLite-backed append-only event log.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path. Applies required
// pragmas and the schema; idempotent, safe to call on an existing file.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection to
	// avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append inserts a record. Idempotent on seq: re-appending an already
// recorded sequence number is silently ignored.
func (j *Journal) Append(ctx context.Context, rec Record) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (seq, token, kind, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, rec.Seq, rec.Token, rec.Kind, rec.Payload, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("append event seq %d: %w", rec.Seq, err)
	}
	return nil
}

// Recent returns the newest limit records in ascending seq order.
// limit <= 0 returns the whole journal.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT seq, token, kind, payload, recorded_at
		FROM events
		ORDER BY seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Seq, &rec.Token, &rec.Kind, &rec.Payload, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	// Flip newest-first to ascending seq for deterministic display.
	for i, k := 0, len(records)-1; i < k; i, k = i+1, k-1 {
		records[i], records[k] = records[k], records[i]
	}
	return records, nil
}

// LastSeq returns the highest recorded sequence number, or 0 for an empty
// journal. Used to resume the logical clock across restarts.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := j.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}
