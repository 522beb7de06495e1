package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/newsprep/pkg/newsprep/dataset"
	"github.com/cognicore/newsprep/pkg/newsprep/ingest"
	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

// Options configures a pipeline run.
type Options struct {
	// Column is the free-text column to normalize.
	Column string
	// ChunkSize bounds the rows held in memory at once. Zero or less reads
	// the whole dataset in one piece.
	ChunkSize int
	// Workers bounds per-stage parallelism. Zero means GOMAXPROCS.
	Workers int
	// Logger receives one line per phase per chunk. Nil disables logging.
	Logger *log.Logger
	// OnChunk is called with every processed chunk before it is written.
	// Returning an error aborts the run.
	OnChunk func(ChunkReport) error
}

// ChunkReport describes one processed chunk.
type ChunkReport struct {
	Index   int
	Frame   *dataset.Frame
	Timings Timings
}

// Result summarizes a run.
type Result struct {
	// Frame holds every processed row, or nil when chunks were streamed to
	// a sink.
	Frame   *dataset.Frame
	Rows    int
	Chunks  int
	Timings Timings
	Elapsed time.Duration
}

// Pipeline applies a Normalizer across a dataset, either in one piece or in
// bounded chunks appended to a sink as they complete.
type Pipeline struct {
	norm *ingest.Normalizer
	opts Options
}

// New creates a pipeline
func New(norm *ingest.Normalizer, opts Options) *Pipeline {
	return &Pipeline{norm: norm, opts: opts}
}

// Chunked reports whether the pipeline reads in bounded chunks.
func (p *Pipeline) Chunked() bool {
	return p.opts.ChunkSize > 0
}

// Run reads src, normalizes the configured column and writes to sink when
// one is given. In chunked mode with a sink only one chunk is held in
// memory. The context is checked between chunks; a cancelled run leaves
// only whole chunks in the sink.
func (p *Pipeline) Run(ctx context.Context, src dataset.Source, sink dataset.Sink) (*Result, error) {
	if p.opts.Column == "" {
		return nil, fmt.Errorf("pipeline: empty text column: %w", internalerr.ErrInvalidConfig)
	}
	header := src.Header()
	if indexOf(header, p.opts.Column) < 0 {
		return nil, fmt.Errorf("column %q in %v: %w", p.opts.Column, header, internalerr.ErrColumnNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{Timings: Timings{}}
	var err error
	if p.Chunked() {
		err = p.runChunked(ctx, src, sink, res)
	} else {
		err = p.runWhole(src, sink, res)
	}
	res.Elapsed = time.Since(start)
	if err != nil {
		return res, err
	}
	p.logf("pipeline complete: %d rows in %d chunk(s) in %s", res.Rows, res.Chunks, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (p *Pipeline) runWhole(src dataset.Source, sink dataset.Sink, res *Result) error {
	timings := Timings{}

	t0 := time.Now()
	frame, err := dataset.ReadAll(src)
	if err != nil {
		return err
	}
	timings.record(PhaseReading, t0)
	p.logf("read %d rows in %s", frame.Len(), timings[PhaseReading].Round(time.Millisecond))

	if err := p.finishChunk(0, frame, timings, sink, res); err != nil {
		return err
	}
	res.Frame = frame
	return nil
}

func (p *Pipeline) runChunked(ctx context.Context, src dataset.Source, sink dataset.Sink, res *Result) error {
	p.logf("reading and processing in chunks of %d", p.opts.ChunkSize)

	var acc *dataset.Frame
	if sink == nil {
		acc = &dataset.Frame{Header: src.Header(), Column: p.opts.Column}
	}

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		timings := Timings{}
		t0 := time.Now()
		rows, err := src.Next(p.opts.ChunkSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("chunk %d: %w", index+1, err)
		}
		timings.record(PhaseReading, t0)

		frame := dataset.NewFrame(src.Header(), rows)
		if err := p.finishChunk(index, frame, timings, sink, res); err != nil {
			return fmt.Errorf("chunk %d: %w", index+1, err)
		}
		if acc != nil {
			acc.Append(frame)
		}
	}

	// An empty source still gets a header, as in whole mode.
	if res.Chunks == 0 && sink != nil {
		if err := sink.WriteChunk(&dataset.Frame{Header: src.Header(), Column: p.opts.Column}); err != nil {
			return err
		}
	}

	res.Frame = acc
	return nil
}

// finishChunk processes one frame, reports it and hands it to the sink.
func (p *Pipeline) finishChunk(index int, frame *dataset.Frame, timings Timings, sink dataset.Sink, res *Result) error {
	stages, err := p.ProcessFrame(frame)
	if err != nil {
		return err
	}
	timings.Add(stages)
	p.logChunk(index, frame.Len(), timings)

	if p.opts.OnChunk != nil {
		if err := p.opts.OnChunk(ChunkReport{Index: index, Frame: frame, Timings: timings}); err != nil {
			return err
		}
	}

	if sink != nil {
		t0 := time.Now()
		if err := sink.WriteChunk(frame); err != nil {
			return err
		}
		timings.record(PhaseWriting, t0)
	}

	res.Rows += frame.Len()
	res.Chunks++
	res.Timings.Add(timings)
	return nil
}

// ProcessFrame runs the four normalization stages over every row of f and
// returns the time spent in each. A row that makes a stage panic fails the
// frame with an error naming the row.
func (p *Pipeline) ProcessFrame(f *dataset.Frame) (Timings, error) {
	f.Column = p.opts.Column
	idx := f.ColumnIndex(p.opts.Column)
	for i := range f.Rows {
		text := ""
		if idx >= 0 && idx < len(f.Rows[i].Values) {
			text = f.Rows[i].Values[idx]
		}
		f.Rows[i].Record = ingest.Record{Text: text}
	}

	timings := Timings{}
	stages := []struct {
		phase Phase
		fn    func(*ingest.Record)
	}{
		{PhaseExtracting, p.norm.Extract},
		{PhaseTokenizing, p.norm.Tokenize},
		{PhaseFiltering, p.norm.FilterStopwords},
		{PhaseStemming, p.norm.Stem},
	}
	for _, st := range stages {
		if err := p.stage(f.Rows, st.phase, timings, st.fn); err != nil {
			return timings, err
		}
	}
	return timings, nil
}

// stage applies fn to every record using contiguous blocks of rows, one
// block per worker. Each worker writes only its own rows, so row order is
// kept without reassembly.
func (p *Pipeline) stage(rows []dataset.Row, phase Phase, timings Timings, fn func(*ingest.Record)) error {
	t0 := time.Now()
	defer timings.record(phase, t0)

	if len(rows) == 0 {
		return nil
	}
	workers := p.workers()
	block := (len(rows) + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < len(rows); lo += block {
		hi := min(lo+block, len(rows))
		g.Go(func() (err error) {
			i := lo
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s row %d: %v", phase, i+1, r)
				}
			}()
			for ; i < hi; i++ {
				fn(&rows[i].Record)
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) workers() int {
	if p.opts.Workers > 0 {
		return p.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (p *Pipeline) logChunk(index, rows int, timings Timings) {
	if p.opts.Logger == nil {
		return
	}
	for _, phase := range []Phase{PhaseReading, PhaseExtracting, PhaseTokenizing, PhaseFiltering, PhaseStemming} {
		if d, ok := timings[phase]; ok {
			p.logf("chunk %d: %s %d rows in %s", index+1, phase, rows, d.Round(time.Microsecond))
		}
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.opts.Logger != nil {
		p.opts.Logger.Printf(format, args...)
	}
}

func indexOf(values []string, name string) int {
	for i, v := range values {
		if v == name {
			return i
		}
	}
	return -1
}
