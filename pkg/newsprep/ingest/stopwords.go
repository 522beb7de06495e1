package ingest

import (
	"github.com/cognicore/newsprep/pkg/newsprep/fields"
	"github.com/cognicore/newsprep/pkg/newsprep/stoplist"
)

// StopwordFilter drops closed-class words from a token sequence.
type StopwordFilter struct {
	stops *stoplist.Set
	reg   *fields.Registry
}

// NewStopwordFilter creates a filter over the given stopword set
func NewStopwordFilter(stops *stoplist.Set, reg *fields.Registry) *StopwordFilter {
	return &StopwordFilter{stops: stops, reg: reg}
}

// Filter returns the tokens that are placeholders or not stopwords, in their
// original order. The input slice is not modified.
func (f *StopwordFilter) Filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if f.reg.IsPlaceholder(tok) || !f.stops.Contains(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Stopwords returns the underlying set.
func (f *StopwordFilter) Stopwords() *stoplist.Set {
	return f.stops
}
