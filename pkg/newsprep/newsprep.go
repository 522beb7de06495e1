package newsprep

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/newsprep/pkg/newsprep/config"
	"github.com/cognicore/newsprep/pkg/newsprep/dataset"
	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
	"github.com/cognicore/newsprep/pkg/newsprep/pipeline"
	"github.com/cognicore/newsprep/pkg/newsprep/store"
	"github.com/cognicore/newsprep/pkg/newsprep/vocab"
)

// Engine runs preprocessing jobs and keeps a history of them
type Engine struct {
	store  store.Store
	logger *log.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// Options configures an Engine
type Options struct {
	// Store records every run. Nil keeps no history.
	Store  store.Store
	Logger *log.Logger
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	return &Engine{
		store:   opts.Store,
		logger:  opts.Logger,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Close cleanly shuts down the Engine
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Report describes a finished job
type Report struct {
	Run    store.Run
	Result *pipeline.Result
	// Vocab is set when the job asked for statistics and they could be
	// computed. VocabErr holds the reason otherwise.
	Vocab    *vocab.Stats
	VocabErr error
}

// Process runs a job end to end: open the source, normalize the text
// column, append to the output and record the run. A failed run is still
// recorded, with its error text.
func (e *Engine) Process(ctx context.Context, job *config.Job) (*Report, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	listFormat, err := dataset.ParseListFormat(job.ListFormat)
	if err != nil {
		return nil, err
	}
	comp, err := job.Loader().Load()
	if err != nil {
		return nil, err
	}

	run := store.Run{
		ID:        e.newID(),
		Input:     job.Input,
		Output:    job.Output,
		Column:    job.Column,
		Format:    job.SourceFormat(),
		Mode:      store.ModeWhole,
		ChunkSize: job.ChunkSize,
		Workers:   job.Workers,
		StartedAt: e.now(),
	}
	if job.ChunkSize > 0 {
		run.Mode = store.ModeChunked
	}
	report := &Report{}

	var acc *vocab.Accumulator
	if job.Stats {
		acc = vocab.NewAccumulator()
	}

	res, runErr := e.run(ctx, job, comp, listFormat, acc)
	report.Result = res
	if res != nil {
		run.Rows = res.Rows
		run.Chunks = res.Chunks
		run.Timings = phaseTimings(res.Timings)
	}
	run.FinishedAt = e.now()

	if acc != nil && runErr == nil {
		stats, err := acc.Stats()
		if err != nil {
			report.VocabErr = err
		} else {
			report.Vocab = &stats
			run.Vocab = &stats
		}
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	report.Run = run

	if e.store != nil {
		// A cancelled run is still worth recording.
		if err := e.store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
			if runErr != nil {
				return report, runErr
			}
			return report, fmt.Errorf("record run %s: %w", run.ID, err)
		}
	}

	if runErr != nil {
		e.logf("run %s failed after %d rows: %v", run.ID, run.Rows, runErr)
		return report, runErr
	}
	e.logf("run %s: %d rows from %s in %s", run.ID, run.Rows, run.Input, run.Duration().Round(time.Millisecond))
	return report, nil
}

func (e *Engine) run(ctx context.Context, job *config.Job, comp *config.Components, listFormat dataset.ListFormat, acc *vocab.Accumulator) (*pipeline.Result, error) {
	src, err := OpenSource(job)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// Checked before the output is created so a bad column leaves no file.
	if !slices.Contains(src.Header(), job.Column) {
		return nil, fmt.Errorf("column %q in %s: %w", job.Column, job.Input, internalerr.ErrColumnNotFound)
	}

	var sink *dataset.CSVSink
	if job.Output != "" {
		if sink, err = dataset.CreateCSV(job.Output, dataset.WriteOptions{ListFormat: listFormat}); err != nil {
			return nil, err
		}
	}

	opts := pipeline.Options{
		Column:    job.Column,
		ChunkSize: job.ChunkSize,
		Workers:   job.Workers,
		Logger:    e.logger,
	}
	if acc != nil {
		opts.OnChunk = func(r pipeline.ChunkReport) error {
			acc.AddFrame(r.Frame)
			return nil
		}
	}

	p := pipeline.New(comp.Normalizer, opts)
	var res *pipeline.Result
	if sink != nil {
		res, err = p.Run(ctx, src, sink)
		if cerr := sink.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", job.Output, cerr)
		}
	} else {
		res, err = p.Run(ctx, src, nil)
	}
	return res, err
}

// OpenSource opens the job input according to its format.
func OpenSource(job *config.Job) (dataset.Source, error) {
	switch job.SourceFormat() {
	case config.FormatCSV:
		return dataset.OpenCSV(job.Input, dataset.ReadOptions{Columns: job.Columns})
	case config.FormatTSV:
		return dataset.OpenCSV(job.Input, dataset.ReadOptions{Comma: '\t', Columns: job.Columns})
	case config.FormatJSONL:
		return dataset.OpenJSONL(job.Input, job.Columns)
	}
	return nil, fmt.Errorf("format %q: %w", job.Format, internalerr.ErrInvalidConfig)
}

// Runs lists recorded runs, newest first.
func (e *Engine) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if e.store == nil {
		return nil, fmt.Errorf("no run store configured: %w", internalerr.ErrInvalidConfig)
	}
	return e.store.ListRuns(ctx, limit)
}

// GetRun returns one recorded run.
func (e *Engine) GetRun(ctx context.Context, id string) (store.Run, error) {
	if e.store == nil {
		return store.Run{}, fmt.Errorf("no run store configured: %w", internalerr.ErrInvalidConfig)
	}
	return e.store.GetRun(ctx, id)
}

// ComputeStats reads a processed CSV and computes the vocabulary
// statistics of column.
func ComputeStats(path, column string, opts dataset.ReadOptions) (vocab.Stats, error) {
	frame, err := dataset.ReadProcessed(path, column, opts)
	if err != nil {
		return vocab.Stats{}, err
	}
	return vocab.Compute(frame, column)
}

func (e *Engine) newID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String()
}

func (e *Engine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

func phaseTimings(t pipeline.Timings) map[string]time.Duration {
	out := make(map[string]time.Duration, len(t))
	for phase, d := range t {
		out[phase.String()] = d
	}
	return out
}
