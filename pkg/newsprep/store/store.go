package store

import (
	"context"
	"time"

	"github.com/cognicore/newsprep/pkg/newsprep/vocab"
)

// Store persists the history of preprocessing runs. Processed datasets
// themselves live in the output files, never here.
type Store interface {
	Close() error

	// RecordRun inserts or replaces a run, keyed by ID.
	RecordRun(ctx context.Context, r Run) error
	// GetRun returns internalerr.ErrNotFound for unknown IDs.
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns up to limit runs, newest first. limit <= 0 means 20.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// Run modes
const (
	ModeWhole   = "whole"
	ModeChunked = "chunked"
)

// Run is the record of one pipeline execution
type Run struct {
	ID         string
	Input      string
	Output     string
	Column     string
	Format     string
	Mode       string
	ChunkSize  int
	Workers    int
	Rows       int
	Chunks     int
	StartedAt  time.Time
	FinishedAt time.Time
	// Timings maps a phase name to its summed wall time.
	Timings map[string]time.Duration
	// Vocab is nil when statistics were not requested or could not be
	// computed.
	Vocab *vocab.Stats
	Error string
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed reports whether the run ended with an error.
func (r Run) Failed() bool {
	return r.Error != ""
}

// DefaultListLimit applies when ListRuns is called with limit <= 0.
const DefaultListLimit = 20
