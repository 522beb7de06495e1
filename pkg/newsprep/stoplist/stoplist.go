package stoplist

import (
	"sort"
	"strings"
)

// Set is an immutable stopword set. It is safe to share across goroutines;
// With and Without return modified copies.
type Set struct {
	stops map[string]struct{}
}

// New creates a set from the given terms, lowercased.
func New(terms []string) *Set {
	stops := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		stops[t] = struct{}{}
	}
	return &Set{stops: stops}
}

// Contains checks if a token is a stopword
func (s *Set) Contains(token string) bool {
	_, ok := s.stops[token]
	return ok
}

// Len returns the number of stopwords.
func (s *Set) Len() int {
	return len(s.stops)
}

// Terms returns all stopwords in sorted order.
func (s *Set) Terms() []string {
	out := make([]string, 0, len(s.stops))
	for t := range s.stops {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// With returns a copy of the set that also contains terms.
func (s *Set) With(terms ...string) *Set {
	return New(append(s.Terms(), terms...))
}

// Without returns a copy of the set with terms removed.
func (s *Set) Without(terms ...string) *Set {
	drop := New(terms)
	kept := make([]string, 0, len(s.stops))
	for t := range s.stops {
		if !drop.Contains(t) {
			kept = append(kept, t)
		}
	}
	return New(kept)
}
