package fields

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// folded is a copy of a text with one ASCII byte per rune. RE2 gives \b, \d
// and \s their ASCII meaning only, so patterns run over the folded copy:
//
//	Unicode spaces         ' '
//	non-ASCII digits (Nd)  '0'
//	other letters, numbers '_'
//	anything else          '#'
//
// On the folded text \b, \d and \s agree with their Unicode definitions, and
// the ASCII classes of the email pattern reject every folded rune except
// '_'. An email whose local part holds a folded letter is rejected in
// scanner.scan.
type folded struct {
	text  string
	ascii string
	// offs[i] is the byte offset in text of rune i; offs[len(ascii)] is len(text).
	offs []int
}

func fold(text string) folded {
	b := make([]byte, 0, len(text))
	offs := make([]int, 0, len(text)+1)
	for i, r := range text {
		offs = append(offs, i)
		b = append(b, foldRune(r))
	}
	offs = append(offs, len(text))
	return folded{text: text, ascii: string(b), offs: offs}
}

func foldRune(r rune) byte {
	switch {
	case r == '\v' || (r >= 0x1c && r <= 0x1f):
		return ' '
	case r < utf8.RuneSelf:
		return byte(r)
	case unicode.IsSpace(r):
		return ' '
	case unicode.Is(unicode.Nd, r):
		return '0'
	case unicode.IsLetter(r) || unicode.IsNumber(r):
		return '_'
	}
	return '#'
}

// isFoldedLetter reports whether folded rune i stands for a non-ASCII letter
// or number.
func (f folded) isFoldedLetter(i int) bool {
	return f.ascii[i] == '_' && f.text[f.offs[i]] >= utf8.RuneSelf
}

func (f folded) span(start, end int) []int {
	return []int{f.offs[start], f.offs[end]}
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// scanner finds leftmost-first matches of an alternation with one capture
// group per field type.
type scanner struct {
	re *regexp.Regexp
	// resume matches like re but only from the second byte of its input, so
	// a search restarted mid-text still sees the preceding byte for \b.
	resume *regexp.Regexp
	types  []Type
}

// newScanner compiles expr, an alternation whose capture groups appear in
// the order of types.
func newScanner(expr string, types ...Type) *scanner {
	return &scanner{
		re:     regexp.MustCompile(expr),
		resume: regexp.MustCompile(`\A(?s:.)(?s:.)*?(?:` + expr + `)`),
		types:  types,
	}
}

type typedSpan struct {
	typ        Type
	start, end int
}

// find returns the leftmost match starting at or after pos in folded
// coordinates.
func (s *scanner) find(text string, pos int) (typedSpan, bool) {
	var loc []int
	shift := 0
	if pos == 0 {
		loc = s.re.FindStringSubmatchIndex(text)
	} else if pos < len(text) {
		shift = pos - 1
		loc = s.resume.FindStringSubmatchIndex(text[shift:])
	}
	if loc == nil {
		return typedSpan{}, false
	}
	for g, t := range s.types {
		start, end := loc[2*(g+1)], loc[2*(g+1)+1]
		if start >= 0 {
			return typedSpan{typ: t, start: shift + start, end: shift + end}, true
		}
	}
	return typedSpan{}, false
}

// scan returns every match in f in folded coordinates.
func (s *scanner) scan(f folded) []typedSpan {
	var out []typedSpan
	pos := 0
	for pos < len(f.ascii) {
		m, ok := s.find(f.ascii, pos)
		if !ok {
			break
		}
		if m.typ == Email && f.hasFoldedLetter(m.start, m.end) {
			// No email can start here. A number is the only lower
			// alternative left to try at the same position.
			if end, ok := numberAt(f.ascii, m.start); ok && s.has(Number) {
				out = append(out, typedSpan{typ: Number, start: m.start, end: end})
				pos = end
				continue
			}
			pos = m.start + 1
			continue
		}
		out = append(out, m)
		pos = m.end
	}
	return out
}

func (s *scanner) has(t Type) bool {
	for _, typ := range s.types {
		if typ == t {
			return true
		}
	}
	return false
}

func (f folded) hasFoldedLetter(start, end int) bool {
	for i := start; i < end; i++ {
		if f.isFoldedLetter(i) {
			return true
		}
	}
	return false
}

// numberAt matches the number pattern anchored at start.
func numberAt(s string, start int) (int, bool) {
	if start > 0 && isWordByte(s[start-1]) {
		return 0, false
	}
	end := start
	for end < len(s) && '0' <= s[end] && s[end] <= '9' {
		end++
	}
	if end == start || (end < len(s) && isWordByte(s[end])) {
		return 0, false
	}
	return end, true
}
