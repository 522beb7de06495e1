package ingest

import (
	"github.com/kljensen/snowball/english"

	"github.com/cognicore/newsprep/pkg/newsprep/fields"
)

// Stemmer reduces words to their English stem. Placeholders pass through.
type Stemmer struct {
	reg *fields.Registry
}

// NewStemmer creates a stemmer that leaves the registry's placeholders alone
func NewStemmer(reg *fields.Registry) *Stemmer {
	return &Stemmer{reg: reg}
}

// Stem maps every token to its stem. The result has the same length as the
// input.
func (s *Stemmer) Stem(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = s.stemToken(tok)
	}
	return out
}

func (s *Stemmer) stemToken(tok string) string {
	if s.reg.IsPlaceholder(tok) {
		return tok
	}
	stem := english.Stem(tok, true)
	if stem == "" {
		return tok
	}
	return stem
}
