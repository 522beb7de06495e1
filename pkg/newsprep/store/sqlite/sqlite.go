package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
	"github.com/cognicore/newsprep/pkg/newsprep/store"
	"github.com/cognicore/newsprep/pkg/newsprep/vocab"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	input TEXT NOT NULL,
	output TEXT,
	column_name TEXT NOT NULL,
	format TEXT,
	mode TEXT NOT NULL,
	chunk_size INTEGER DEFAULT 0,
	workers INTEGER DEFAULT 0,
	row_count INTEGER DEFAULT 0,
	chunk_count INTEGER DEFAULT 0,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	vocab_json TEXT,
	error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_timings (
	run_id TEXT NOT NULL,
	phase TEXT NOT NULL,
	nanos INTEGER NOT NULL,
	PRIMARY KEY(run_id, phase),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// RecordRun inserts or replaces a run and its timings in one transaction
func (s *sqliteStore) RecordRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run without id: %w", internalerr.ErrInvalidConfig)
	}

	var vocabJSON sql.NullString
	if r.Vocab != nil {
		data, err := json.Marshal(r.Vocab)
		if err != nil {
			return err
		}
		vocabJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, input, output, column_name, format, mode, chunk_size, workers, row_count, chunk_count, started_at, finished_at, vocab_json, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	input=excluded.input,
	output=excluded.output,
	column_name=excluded.column_name,
	format=excluded.format,
	mode=excluded.mode,
	chunk_size=excluded.chunk_size,
	workers=excluded.workers,
	row_count=excluded.row_count,
	chunk_count=excluded.chunk_count,
	started_at=excluded.started_at,
	finished_at=excluded.finished_at,
	vocab_json=excluded.vocab_json,
	error=excluded.error;
`, r.ID, r.Input, r.Output, r.Column, r.Format, r.Mode, r.ChunkSize, r.Workers, r.Rows, r.Chunks,
		formatTime(r.StartedAt), formatTime(r.FinishedAt), vocabJSON, r.Error)
	if err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_timings WHERE run_id = ?`, r.ID); err != nil {
		return err
	}
	for phase, d := range r.Timings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_timings (run_id, phase, nanos) VALUES (?, ?, ?)`,
			r.ID, phase, int64(d)); err != nil {
			return fmt.Errorf("insert timing %s: %w", phase, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, input, output, column_name, format, mode, chunk_size, workers, row_count, chunk_count, started_at, finished_at, vocab_json, error
FROM runs WHERE id = ?`, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}

	if r.Timings, err = s.loadTimings(ctx, id); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// ListRuns returns the most recent runs
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, input, output, column_name, format, mode, chunk_size, workers, row_count, chunk_count, started_at, finished_at, vocab_json, error
FROM runs
ORDER BY started_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if runs[i].Timings, err = s.loadTimings(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *sqliteStore) loadTimings(ctx context.Context, id string) (map[string]time.Duration, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phase, nanos FROM run_timings WHERE run_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timings := make(map[string]time.Duration)
	for rows.Next() {
		var phase string
		var nanos int64
		if err := rows.Scan(&phase, &nanos); err != nil {
			return nil, err
		}
		timings[phase] = time.Duration(nanos)
	}
	return timings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r                              store.Run
		output, format, finished, errS sql.NullString
		started                        string
		vocabJSON                      sql.NullString
	)
	if err := sc.Scan(&r.ID, &r.Input, &output, &r.Column, &format, &r.Mode,
		&r.ChunkSize, &r.Workers, &r.Rows, &r.Chunks,
		&started, &finished, &vocabJSON, &errS); err != nil {
		return store.Run{}, err
	}
	r.Output = output.String
	r.Format = format.String
	r.Error = errS.String

	var err error
	if r.StartedAt, err = parseTime(started); err != nil {
		return store.Run{}, fmt.Errorf("run %s started_at: %w", r.ID, err)
	}
	if r.FinishedAt, err = parseTime(finished.String); err != nil {
		return store.Run{}, fmt.Errorf("run %s finished_at: %w", r.ID, err)
	}

	if vocabJSON.Valid && vocabJSON.String != "" {
		var stats vocab.Stats
		if err := json.Unmarshal([]byte(vocabJSON.String), &stats); err != nil {
			return store.Run{}, fmt.Errorf("run %s vocab: %w", r.ID, err)
		}
		r.Vocab = &stats
	}
	return r, nil
}

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
