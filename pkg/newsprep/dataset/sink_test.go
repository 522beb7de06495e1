package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/newsprep/pkg/newsprep/fields"
	"github.com/cognicore/newsprep/pkg/newsprep/ingest"
	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
	"github.com/cognicore/newsprep/pkg/newsprep/stoplist"
)

func processedFrame(header []string, column string, rows [][]string) *Frame {
	n := ingest.NewDefaultNormalizer(fields.DefaultRegistry(), stoplist.English())
	f := NewFrame(header, rows)
	f.Column = column
	idx := f.ColumnIndex(column)
	for i := range f.Rows {
		f.Rows[i].Record = n.Process(f.Rows[i].Values[idx])
	}
	return f
}

func TestOutputColumns(t *testing.T) {
	want := []string{
		"content-cleaned",
		"content-urls", "content-dates", "content-emails", "content-numbers",
		"content-tokens", "content-tokens_no_stop", "content-tokens_stemmed",
	}
	if got := OutputColumns("content"); !reflect.DeepEqual(got, want) {
		t.Errorf("OutputColumns = %v, want %v", got, want)
	}
}

func TestCSVSinkHeaderOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "processed.csv")
	sink, err := CreateCSV(path, WriteOptions{})
	if err != nil {
		t.Fatalf("CreateCSV: %v", err)
	}

	header := []string{"id", "content"}
	if err := sink.WriteChunk(processedFrame(header, "content", [][]string{{"1", "first cat"}})); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := sink.WriteChunk(processedFrame(header, "content", [][]string{{"2", "second dog"}, {"3", ""}})); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "content-tokens_stemmed"); n != 1 {
		t.Errorf("header should appear once, found %d times", n)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Errorf("expected header + 3 rows, got %d lines", len(lines))
	}
}

func TestCSVSinkRejectsMismatchedHeader(t *testing.T) {
	sink, err := CreateCSV(filepath.Join(t.TempDir(), "out.csv"), WriteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	if err := sink.WriteChunk(processedFrame([]string{"content"}, "content", [][]string{{"a"}})); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteChunk(processedFrame([]string{"statement"}, "statement", [][]string{{"b"}})); err == nil {
		t.Error("a chunk with a different header should be rejected")
	}
}

func TestReadProcessedRoundTrip(t *testing.T) {
	for _, format := range []ListFormat{ListJSON, ListJoined} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "processed.csv")
			sink, err := CreateCSV(path, WriteOptions{ListFormat: format})
			if err != nil {
				t.Fatal(err)
			}

			written := processedFrame([]string{"id", "content"}, "content", [][]string{
				{"1", "Visit https://example.com on 2024-01-05, email me at a@b.com, I have 3 cats"},
				{"2", ""},
				{"3", "Rates rose 2 points on Jan 5, 2024"},
			})
			if err := sink.WriteChunk(written); err != nil {
				t.Fatal(err)
			}
			sink.Close()

			read, err := ReadProcessed(path, "content", ReadOptions{})
			if err != nil {
				t.Fatalf("ReadProcessed: %v", err)
			}
			if !reflect.DeepEqual(read.Header, []string{"id", "content"}) {
				t.Errorf("header = %v", read.Header)
			}
			if read.Len() != written.Len() {
				t.Fatalf("rows = %d, want %d", read.Len(), written.Len())
			}

			for i := range written.Rows {
				w, r := written.Rows[i].Record, read.Rows[i].Record
				if r.Text != w.Text || r.Cleaned != w.Cleaned {
					t.Errorf("row %d text/cleaned mismatch: %q/%q vs %q/%q", i, r.Text, r.Cleaned, w.Text, w.Cleaned)
				}
				for _, typ := range fields.All() {
					if !sameList(r.Fields.Get(typ), w.Fields.Get(typ)) {
						t.Errorf("row %d %s: %v vs %v", i, typ, r.Fields.Get(typ), w.Fields.Get(typ))
					}
				}
				if !sameList(r.Tokens, w.Tokens) || !sameList(r.TokensNoStop, w.TokensNoStop) || !sameList(r.TokensStemmed, w.TokensStemmed) {
					t.Errorf("row %d token lists differ after re-read", i)
				}
			}
		})
	}
}

func TestReadProcessedUnprocessedFile(t *testing.T) {
	path := writeFile(t, "raw.csv", "id,content\n1,hello\n")

	_, err := ReadProcessed(path, "content", ReadOptions{})
	if !errors.Is(err, internalerr.ErrNotProcessed) {
		t.Errorf("expected ErrNotProcessed, got %v", err)
	}
}

func TestEncodeListJSONKeepsPlaceholdersReadable(t *testing.T) {
	got := encodeList([]string{"<URL>", "cat"}, ListJSON, " ")
	if got != `["<URL>","cat"]` {
		t.Errorf("encodeList = %s", got)
	}
	if got := encodeList(nil, ListJSON, " "); got != "[]" {
		t.Errorf("nil list should encode as [], got %s", got)
	}
}

func TestParseListFormat(t *testing.T) {
	if f, err := ParseListFormat(""); err != nil || f != ListJSON {
		t.Errorf("empty format should default to json, got %q, %v", f, err)
	}
	if f, err := ParseListFormat("Joined"); err != nil || f != ListJoined {
		t.Errorf("got %q, %v", f, err)
	}
	if _, err := ParseListFormat("pickle"); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func sameList(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
