package fields

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

// Type identifies a class of special field recognized in raw text.
type Type int

const (
	URL Type = iota
	Date
	Email
	Number
)

// All returns every field type in extraction priority order.
func All() []Type {
	return []Type{URL, Date, Email, Number}
}

func (t Type) String() string {
	switch t {
	case URL:
		return "url"
	case Date:
		return "date"
	case Email:
		return "email"
	case Number:
		return "number"
	}
	return "unknown"
}

// Placeholder returns the reserved token substituted for fields of this type.
func (t Type) Placeholder() string {
	switch t {
	case URL:
		return "<URL>"
	case Date:
		return "<DATE>"
	case Email:
		return "<EMAIL>"
	case Number:
		return "<NUMBER>"
	}
	return ""
}

// Plural is the column suffix used for the type's extraction list ("urls", "dates", ...).
func (t Type) Plural() string {
	return t.String() + "s"
}

// ParseType maps a field name ("url", "dates", ...) back to its Type.
func ParseType(s string) (Type, bool) {
	s = strings.TrimSuffix(strings.ToLower(s), "s")
	for _, t := range All() {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Matcher finds all non-overlapping [start, end) spans of one field type.
type Matcher interface {
	FindAll(text string) [][]int
}

// Pattern binds a field type to its matcher and placeholder.
type Pattern struct {
	Type        Type
	Placeholder string
	Matcher     Matcher
}

// The patterns run over folded text (see fold), where \b, \d and \s carry
// their Unicode meaning.
const monthPrefix = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*`

var (
	datePattern = strings.Join([]string{
		`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
		`\b\d{4}[.-]\d{1,2}[.-]\d{1,2}\b`,
		`\b\d{1,2}\s` + monthPrefix + `\s\d{4}\b`,
		`\b` + monthPrefix + `\s\d{1,2},\s\d{4}\b`,
		`\b` + monthPrefix + `\s\d{1,2}\b`,
		`\b\d{1,2}\s` + monthPrefix + `\b`,
	}, "|")
	emailPattern  = `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`
	numberPattern = `\b\d+\b`
)

// Registry holds the ordered field definitions. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	patterns     []Pattern
	combined     *scanner
	placeholders map[string]Type
}

// DefaultRegistry builds the registry for url, date, email and number fields.
func DefaultRegistry() *Registry {
	r := &Registry{
		combined: newScanner(
			`(?i)(` + datePattern + `)|(` + emailPattern + `)|(` + numberPattern + `)`,
			Date, Email, Number,
		),
		placeholders: make(map[string]Type, 4),
	}
	r.patterns = []Pattern{
		{Type: URL, Matcher: urlMatcher{re: xurls.Relaxed()}},
		{Type: Date, Matcher: regexpMatcher{newScanner(`((?i)` + datePattern + `)`, Date)}},
		{Type: Email, Matcher: regexpMatcher{newScanner(`(` + emailPattern + `)`, Email)}},
		{Type: Number, Matcher: regexpMatcher{newScanner(`(` + numberPattern + `)`, Number)}},
	}
	for i := range r.patterns {
		r.patterns[i].Placeholder = r.patterns[i].Type.Placeholder()
		r.placeholders[r.patterns[i].Placeholder] = r.patterns[i].Type
	}
	return r
}

// Pattern returns the definition for t.
func (r *Registry) Pattern(t Type) Pattern {
	for _, p := range r.patterns {
		if p.Type == t {
			return p
		}
	}
	return Pattern{Type: t}
}

// Patterns returns all definitions in priority order.
func (r *Registry) Patterns() []Pattern {
	out := make([]Pattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// IsPlaceholder reports whether tok is one of the reserved placeholder tokens.
func (r *Registry) IsPlaceholder(tok string) bool {
	_, ok := r.placeholders[tok]
	return ok
}

// Placeholders returns the reserved tokens in priority order.
func (r *Registry) Placeholders() []string {
	out := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		out[i] = p.Placeholder
	}
	return out
}

// regexpMatcher applies one pattern with Unicode word boundaries and digits.
type regexpMatcher struct {
	sc *scanner
}

func (m regexpMatcher) FindAll(text string) [][]int {
	if text == "" {
		return nil
	}
	f := fold(text)
	var spans [][]int
	for _, ts := range m.sc.scan(f) {
		spans = append(spans, f.span(ts.start, ts.end))
	}
	return spans
}

// urlMatcher wraps the relaxed xurls detector. Relaxed mode also recognizes
// bare email addresses; those are left for the email pattern.
type urlMatcher struct {
	re *regexp.Regexp
}

func (m urlMatcher) FindAll(text string) [][]int {
	var spans [][]int
	for _, loc := range m.re.FindAllStringIndex(text, -1) {
		if isBareEmail(text[loc[0]:loc[1]]) {
			continue
		}
		// The domain half of an email is not a url on its own.
		if loc[0] > 0 && text[loc[0]-1] == '@' {
			continue
		}
		spans = append(spans, loc)
	}
	return spans
}

func isBareEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return false
	}
	return !strings.ContainsAny(s[:at], ":/")
}
