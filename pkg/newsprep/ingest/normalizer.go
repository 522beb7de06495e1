package ingest

import (
	"github.com/cognicore/newsprep/pkg/newsprep/fields"
	"github.com/cognicore/newsprep/pkg/newsprep/stoplist"
)

// Record holds one text value and the attributes derived from it. Each
// stage fills its own attribute and leaves earlier ones untouched.
type Record struct {
	Text          string
	Fields        fields.Extracted
	Cleaned       string
	Tokens        []string
	TokensNoStop  []string
	TokensStemmed []string
}

// Normalizer wires the per-record stages:
// text → field extraction → tokenization → stopword removal → stemming
//
// A Normalizer is immutable and may be shared by concurrent workers.
type Normalizer struct {
	registry  *fields.Registry
	extractor *fields.Extractor
	tokenizer *Tokenizer
	filter    *StopwordFilter
	stemmer   *Stemmer
	stripHTML bool
}

// NewNormalizer creates a normalizer with the given components
func NewNormalizer(reg *fields.Registry, extractor *fields.Extractor, tokenizer *Tokenizer, filter *StopwordFilter, stemmer *Stemmer) *Normalizer {
	return &Normalizer{
		registry:  reg,
		extractor: extractor,
		tokenizer: tokenizer,
		filter:    filter,
		stemmer:   stemmer,
	}
}

// NewDefaultNormalizer builds a normalizer from a registry and stopword set.
func NewDefaultNormalizer(reg *fields.Registry, stops *stoplist.Set) *Normalizer {
	return NewNormalizer(
		reg,
		fields.NewExtractor(reg),
		NewTokenizer(reg),
		NewStopwordFilter(stops, reg),
		NewStemmer(reg),
	)
}

// WithHTMLStripping returns a copy that removes markup before extraction.
func (n *Normalizer) WithHTMLStripping(enabled bool) *Normalizer {
	cp := *n
	cp.stripHTML = enabled
	return &cp
}

// Registry returns the field registry the normalizer was built with.
func (n *Normalizer) Registry() *fields.Registry {
	return n.registry
}

// Extract fills Fields and Cleaned from Text.
func (n *Normalizer) Extract(rec *Record) {
	text := rec.Text
	if n.stripHTML {
		text = StripHTML(text)
	}
	ex := n.extractor.Extract(text)
	rec.Fields = ex.Fields
	rec.Cleaned = ex.Cleaned
}

// Tokenize fills Tokens from Cleaned.
func (n *Normalizer) Tokenize(rec *Record) {
	rec.Tokens = n.tokenizer.Tokenize(rec.Cleaned)
}

// FilterStopwords fills TokensNoStop from Tokens.
func (n *Normalizer) FilterStopwords(rec *Record) {
	rec.TokensNoStop = n.filter.Filter(rec.Tokens)
}

// Stem fills TokensStemmed from TokensNoStop.
func (n *Normalizer) Stem(rec *Record) {
	rec.TokensStemmed = n.stemmer.Stem(rec.TokensNoStop)
}

// Process runs one text value through every stage.
func (n *Normalizer) Process(text string) Record {
	rec := Record{Text: text}
	n.Extract(&rec)
	n.Tokenize(&rec)
	n.FilterStopwords(&rec)
	n.Stem(&rec)
	return rec
}
