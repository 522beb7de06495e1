package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/newsprep/pkg/newsprep/fields"
)

// contractions lists single words the word-boundary tokenizer splits in two,
// matching the Penn Treebank rules once apostrophes are gone.
var contractions = map[string][2]string{
	"cannot": {"can", "not"},
	"gimme":  {"gim", "me"},
	"gonna":  {"gon", "na"},
	"gotta":  {"got", "ta"},
	"lemme":  {"lem", "me"},
	"wanna":  {"wan", "na"},
}

// Tokenizer splits cleaned text into tokens. Registered placeholders are
// kept as single opaque tokens; everything else is lowercased, stripped of
// punctuation and split on whitespace.
type Tokenizer struct {
	placeholders []string
}

// NewTokenizer creates a tokenizer that preserves the registry's placeholders
func NewTokenizer(reg *fields.Registry) *Tokenizer {
	return &Tokenizer{placeholders: reg.Placeholders()}
}

// Tokenize splits text into placeholder and word tokens. It never emits an
// empty token.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	rest := text
	for rest != "" {
		idx, ph := t.nextPlaceholder(rest)
		if idx < 0 {
			tokens = appendWords(tokens, rest)
			break
		}
		tokens = appendWords(tokens, rest[:idx])
		tokens = append(tokens, ph)
		rest = rest[idx+len(ph):]
	}
	return tokens
}

// nextPlaceholder returns the offset and text of the first placeholder in s.
func (t *Tokenizer) nextPlaceholder(s string) (int, string) {
	from := 0
	for {
		i := strings.IndexByte(s[from:], '<')
		if i < 0 {
			return -1, ""
		}
		at := from + i
		for _, ph := range t.placeholders {
			if strings.HasPrefix(s[at:], ph) {
				return at, ph
			}
		}
		from = at + 1
	}
}

// appendWords normalizes one ordinary-text segment and appends its words.
// Characters that are neither word characters nor whitespace are deleted,
// so "don't" becomes "dont" and "U.S." becomes "us".
func appendWords(tokens []string, segment string) []string {
	if segment == "" {
		return tokens
	}
	segment = norm.NFC.String(segment)

	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()
		if parts, ok := contractions[word]; ok {
			tokens = append(tokens, parts[0], parts[1])
			return
		}
		tokens = append(tokens, word)
	}

	for _, r := range segment {
		switch {
		case isWordRune(r):
			current.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			flush()
		}
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}
