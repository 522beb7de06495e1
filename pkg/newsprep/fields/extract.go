package fields

import (
	"sort"
	"strings"
)

// Match is one recognized special field within a record's raw text.
// Start and End are byte offsets into the raw text.
type Match struct {
	Type  Type
	Text  string
	Start int
	End   int
}

// Extracted holds matched literals per field type in order of appearance.
// Types without matches have no entry.
type Extracted map[Type][]string

// Get returns the literals recorded for t, or nil.
func (e Extracted) Get(t Type) []string {
	return e[t]
}

// Extraction is the result of running the extractor over one record.
type Extraction struct {
	Cleaned string
	Fields  Extracted
	Matches []Match
}

// Extractor finds special fields and replaces them with placeholders.
type Extractor struct {
	reg *Registry
}

// NewExtractor creates an extractor over the given registry
func NewExtractor(reg *Registry) *Extractor {
	return &Extractor{reg: reg}
}

// Extract recognizes urls first, then dates, emails and numbers in the text
// between urls, and returns the text with every match replaced by its
// placeholder. Unmatched text is copied verbatim.
func (e *Extractor) Extract(text string) Extraction {
	if text == "" {
		return Extraction{Fields: Extracted{}}
	}

	var matches []Match
	prev := 0
	for _, span := range e.reg.Pattern(URL).Matcher.FindAll(text) {
		matches = append(matches, e.findCombined(text[prev:span[0]], prev)...)
		matches = append(matches, Match{
			Type:  URL,
			Text:  text[span[0]:span[1]],
			Start: span[0],
			End:   span[1],
		})
		prev = span[1]
	}
	matches = append(matches, e.findCombined(text[prev:], prev)...)

	// replaceSpans needs matches sorted by start.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})

	fields := Extracted{}
	for _, m := range matches {
		fields[m.Type] = append(fields[m.Type], m.Text)
	}

	return Extraction{
		Cleaned: replaceSpans(text, matches),
		Fields:  fields,
		Matches: matches,
	}
}

// findCombined runs the date|email|number alternation over one segment that
// contains no url. Offsets are shifted by base into the record's coordinates.
func (e *Extractor) findCombined(segment string, base int) []Match {
	if segment == "" {
		return nil
	}
	f := fold(segment)
	var out []Match
	for _, m := range e.reg.combined.scan(f) {
		span := f.span(m.start, m.end)
		out = append(out, Match{
			Type:  m.typ,
			Text:  segment[span[0]:span[1]],
			Start: base + span[0],
			End:   base + span[1],
		})
	}
	return out
}

// replaceSpans substitutes placeholders for sorted, non-overlapping matches.
// Every offset refers to the original text, so substitution never shifts a
// span that is yet to be replaced.
func replaceSpans(text string, matches []Match) string {
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, m := range matches {
		b.WriteString(text[prev:m.Start])
		b.WriteString(m.Type.Placeholder())
		prev = m.End
	}
	b.WriteString(text[prev:])
	return b.String()
}
