package ingest

import (
	"reflect"
	"testing"

	"github.com/cognicore/newsprep/pkg/newsprep/fields"
	"github.com/cognicore/newsprep/pkg/newsprep/stoplist"
)

func newTestNormalizer() *Normalizer {
	return NewDefaultNormalizer(fields.DefaultRegistry(), stoplist.English())
}

func TestNormalizerEndToEnd(t *testing.T) {
	rec := newTestNormalizer().Process("Visit https://example.com on 2024-01-05, email me at a@b.com, I have 3 cats")

	if got := rec.Fields.Get(fields.URL); !reflect.DeepEqual(got, []string{"https://example.com"}) {
		t.Errorf("urls = %v", got)
	}
	if got := rec.Fields.Get(fields.Email); !reflect.DeepEqual(got, []string{"a@b.com"}) {
		t.Errorf("emails = %v", got)
	}

	expectedTokens := []string{"visit", "<URL>", "on", "<DATE>", "email", "me", "at", "<EMAIL>", "i", "have", "<NUMBER>", "cats"}
	if !reflect.DeepEqual(rec.Tokens, expectedTokens) {
		t.Errorf("tokens = %v", rec.Tokens)
	}

	expectedNoStop := []string{"visit", "<URL>", "<DATE>", "email", "<EMAIL>", "<NUMBER>", "cats"}
	if !reflect.DeepEqual(rec.TokensNoStop, expectedNoStop) {
		t.Errorf("tokens without stopwords = %v", rec.TokensNoStop)
	}

	expectedStemmed := []string{"visit", "<URL>", "<DATE>", "email", "<EMAIL>", "<NUMBER>", "cat"}
	if !reflect.DeepEqual(rec.TokensStemmed, expectedStemmed) {
		t.Errorf("stemmed tokens = %v", rec.TokensStemmed)
	}
}

func TestNormalizerEmptyText(t *testing.T) {
	rec := newTestNormalizer().Process("")

	if rec.Cleaned != "" {
		t.Errorf("cleaned should be empty, got %q", rec.Cleaned)
	}
	if len(rec.Fields) != 0 {
		t.Errorf("fields should be empty, got %v", rec.Fields)
	}
	if len(rec.Tokens) != 0 || len(rec.TokensNoStop) != 0 || len(rec.TokensStemmed) != 0 {
		t.Errorf("expected no tokens, got %v / %v / %v", rec.Tokens, rec.TokensNoStop, rec.TokensStemmed)
	}
}

func TestNormalizerStagesDoNotMutateEarlierOutput(t *testing.T) {
	n := newTestNormalizer()
	rec := Record{Text: "The dogs were running"}

	n.Extract(&rec)
	n.Tokenize(&rec)
	tokens := append([]string(nil), rec.Tokens...)
	n.FilterStopwords(&rec)
	noStop := append([]string(nil), rec.TokensNoStop...)
	n.Stem(&rec)

	if !reflect.DeepEqual(rec.Tokens, tokens) {
		t.Errorf("stopword stage modified tokens: %v", rec.Tokens)
	}
	if !reflect.DeepEqual(rec.TokensNoStop, noStop) {
		t.Errorf("stem stage modified filtered tokens: %v", rec.TokensNoStop)
	}
	if !reflect.DeepEqual(rec.TokensStemmed, []string{"dog", "run"}) {
		t.Errorf("stemmed = %v", rec.TokensStemmed)
	}
}

func TestNormalizerHTMLStripping(t *testing.T) {
	base := newTestNormalizer()
	n := base.WithHTMLStripping(true)

	rec := n.Process("<p>Markets <b>rallied</b> on 5 May</p><script>var x = 1;</script>")
	expected := []string{"markets", "rallied", "on", "<DATE>"}
	if !reflect.DeepEqual(rec.Tokens, expected) {
		t.Errorf("tokens = %v, want %v", rec.Tokens, expected)
	}

	plain := base.Process("<p>Markets</p>")
	if !reflect.DeepEqual(plain.Tokens, []string{"pmarketsp"}) {
		t.Errorf("markup should reach the tokenizer when stripping is off, got %v", plain.Tokens)
	}
}

func TestStopwordFilter(t *testing.T) {
	reg := fields.DefaultRegistry()
	filter := NewStopwordFilter(stoplist.New([]string{"the", "a"}), reg)

	if got := filter.Filter(nil); len(got) != 0 {
		t.Errorf("empty input should give empty output, got %v", got)
	}

	in := []string{"the", "cat", "<URL>", "a", "cat"}
	got := filter.Filter(in)
	expected := []string{"cat", "<URL>", "cat"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if in[0] != "the" {
		t.Error("input slice should not be modified")
	}
}

func TestStopwordFilterKeepsPlaceholderEvenIfListed(t *testing.T) {
	reg := fields.DefaultRegistry()
	filter := NewStopwordFilter(stoplist.New([]string{"<number>", "<NUMBER>"}), reg)

	got := filter.Filter([]string{"<NUMBER>", "x"})
	if !reflect.DeepEqual(got, []string{"<NUMBER>", "x"}) {
		t.Errorf("placeholder should be retained, got %v", got)
	}
}

func TestStemmer(t *testing.T) {
	stemmer := NewStemmer(fields.DefaultRegistry())

	if got := stemmer.Stem(nil); len(got) != 0 {
		t.Errorf("empty input should give empty output, got %v", got)
	}

	in := []string{"cats", "<DATE>", "running", "jumps", "<EMAIL>"}
	got := stemmer.Stem(in)
	expected := []string{"cat", "<DATE>", "run", "jump", "<EMAIL>"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if len(got) != len(in) {
		t.Errorf("stemming must be one-to-one: %d -> %d", len(in), len(got))
	}
}

func TestStemmerIdempotentOnCommonWords(t *testing.T) {
	stemmer := NewStemmer(fields.DefaultRegistry())

	once := stemmer.Stem([]string{"connection", "running", "cats", "visited"})
	twice := stemmer.Stem(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("stemming stems changed them: %v -> %v", once, twice)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<p>one</p><p>two</p>", "one two"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<style>p{}</style>kept", "kept"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizerUnicodeNumbers(t *testing.T) {
	n := newTestNormalizer()

	rec := n.Process("caf\u00e92019 rocks")
	if len(rec.Fields.Get(fields.Number)) != 0 || rec.Cleaned != "caf\u00e92019 rocks" {
		t.Errorf("no number expected: fields=%v cleaned=%q", rec.Fields, rec.Cleaned)
	}
	if !reflect.DeepEqual(rec.Tokens, []string{"caf\u00e92019", "rocks"}) {
		t.Errorf("tokens = %v", rec.Tokens)
	}

	rec = n.Process("costs \u0663\u0665 dinars")
	if got := rec.Fields.Get(fields.Number); !reflect.DeepEqual(got, []string{"\u0663\u0665"}) {
		t.Errorf("numbers = %q", got)
	}
	if !reflect.DeepEqual(rec.Tokens, []string{"costs", "<NUMBER>", "dinars"}) {
		t.Errorf("tokens = %v", rec.Tokens)
	}
}
