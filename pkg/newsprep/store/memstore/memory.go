package memstore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
	"github.com/cognicore/newsprep/pkg/newsprep/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-off runs without a database.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.Run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// RecordRun inserts or replaces a run.
func (s *Store) RecordRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run without id: %w", internalerr.ErrInvalidConfig)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a copy of the stored run.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// ListRuns returns the newest runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	s.mu.RLock()
	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, copyRun(r))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyRun(r store.Run) store.Run {
	r.Timings = maps.Clone(r.Timings)
	if r.Vocab != nil {
		v := *r.Vocab
		r.Vocab = &v
	}
	return r
}
