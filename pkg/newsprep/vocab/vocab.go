package vocab

import (
	"fmt"
	"io"

	"github.com/cognicore/newsprep/pkg/newsprep/dataset"
	"github.com/cognicore/newsprep/pkg/newsprep/ingest"
	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

// Stats holds distinct-token counts per stage and the reduction between
// consecutive stages, as percentages.
type Stats struct {
	SizeRaw              int     `json:"vocabulary_size_raw"`
	SizeNoStop           int     `json:"vocabulary_size_no_stopwords"`
	SizeStemmed          int     `json:"vocabulary_size_stemmed"`
	StopwordReductionPct float64 `json:"stopword_reduction_rate"`
	StemmingReductionPct float64 `json:"stemming_reduction_rate"`
}

// Write prints the statistics one per line.
func (s Stats) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"Vocabulary Size Raw: %d\n"+
			"Vocabulary Size No Stopwords: %d\n"+
			"Vocabulary Size Stemmed: %d\n"+
			"Stopword Reduction Rate: %.2f%%\n"+
			"Stemming Reduction Rate: %.2f%%\n",
		s.SizeRaw, s.SizeNoStop, s.SizeStemmed, s.StopwordReductionPct, s.StemmingReductionPct)
	return err
}

// Accumulator collects the distinct tokens of each stage across records.
// It is not safe for concurrent use.
type Accumulator struct {
	raw     map[string]struct{}
	noStop  map[string]struct{}
	stemmed map[string]struct{}
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		raw:     make(map[string]struct{}),
		noStop:  make(map[string]struct{}),
		stemmed: make(map[string]struct{}),
	}
}

// Add records the tokens of one record.
func (a *Accumulator) Add(rec ingest.Record) {
	addAll(a.raw, rec.Tokens)
	addAll(a.noStop, rec.TokensNoStop)
	addAll(a.stemmed, rec.TokensStemmed)
}

// AddFrame records every row of a processed frame.
func (a *Accumulator) AddFrame(f *dataset.Frame) {
	for i := range f.Rows {
		a.Add(f.Rows[i].Record)
	}
}

// Stats computes the statistics for everything added so far. Sizes are
// always filled in; when a denominator stage is empty the error is
// internalerr.ErrDivisionUndefined and the affected percentage is zero.
func (a *Accumulator) Stats() (Stats, error) {
	s := Stats{
		SizeRaw:     len(a.raw),
		SizeNoStop:  len(a.noStop),
		SizeStemmed: len(a.stemmed),
	}

	var err error
	if s.StopwordReductionPct, err = reduction(s.SizeRaw, s.SizeNoStop, "tokens"); err != nil {
		return s, err
	}
	if s.StemmingReductionPct, err = reduction(s.SizeNoStop, s.SizeStemmed, "tokens_no_stop"); err != nil {
		return s, err
	}
	return s, nil
}

// Compute returns the statistics of a processed frame. column must be the
// column the frame was processed on.
func Compute(f *dataset.Frame, column string) (Stats, error) {
	if f.Column == "" {
		return Stats{}, fmt.Errorf("frame: %w", internalerr.ErrNotProcessed)
	}
	if f.Column != column {
		return Stats{}, fmt.Errorf("column %q (frame processed %q): %w", column, f.Column, internalerr.ErrColumnNotFound)
	}
	acc := NewAccumulator()
	acc.AddFrame(f)
	return acc.Stats()
}

func reduction(before, after int, stage string) (float64, error) {
	if before == 0 {
		return 0, fmt.Errorf("%s vocabulary is empty: %w", stage, internalerr.ErrDivisionUndefined)
	}
	return (1 - float64(after)/float64(before)) * 100, nil
}

func addAll(set map[string]struct{}, tokens []string) {
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
}
