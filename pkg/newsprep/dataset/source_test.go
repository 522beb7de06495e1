package dataset

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenCSVHeaderAndChunks(t *testing.T) {
	path := writeFile(t, "news.csv", "id,type,content\n1,fake,one\n2,reliable,two\n3,fake,three\n")

	src, err := OpenCSV(path, ReadOptions{})
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer src.Close()

	if !reflect.DeepEqual(src.Header(), []string{"id", "type", "content"}) {
		t.Errorf("header = %v", src.Header())
	}

	first, err := src.Next(2)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(first) != 2 || first[1][2] != "two" {
		t.Errorf("first chunk = %v", first)
	}

	second, err := src.Next(2)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(second) != 1 || second[0][0] != "3" {
		t.Errorf("second chunk = %v", second)
	}

	if _, err := src.Next(2); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestOpenCSVMissingFile(t *testing.T) {
	_, err := OpenCSV(filepath.Join(t.TempDir(), "missing.csv"), ReadOptions{})
	if !errors.Is(err, internalerr.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestOpenCSVEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	if _, err := OpenCSV(path, ReadOptions{}); err == nil {
		t.Error("empty file without header should fail")
	}
}

func TestOpenCSVRaggedRowsAreFitted(t *testing.T) {
	path := writeFile(t, "ragged.csv", "a,b,c\n1\n1,2,3,4\n")

	src, err := OpenCSV(path, ReadOptions{})
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer src.Close()

	rows, err := src.Next(0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := [][]string{{"1", "", ""}, {"1", "2", "3"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestOpenCSVStripsBOM(t *testing.T) {
	path := writeFile(t, "bom.csv", "\ufeffcontent\nhello\n")

	src, err := OpenCSV(path, ReadOptions{})
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer src.Close()

	if src.Header()[0] != "content" {
		t.Errorf("BOM should be stripped, got %q", src.Header()[0])
	}
}

func TestOpenTSVWithExplicitColumns(t *testing.T) {
	path := writeFile(t, "liar.tsv", "2635.json\tfalse\tSays the \"Annies List\" group\n10540.json\thalf-true\tWhen did the decline start\n")

	src, err := OpenCSV(path, ReadOptions{Comma: '\t', Columns: []string{"id", "type", "content"}})
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer src.Close()

	frame, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if frame.Len() != 2 {
		t.Fatalf("expected 2 rows (no header consumed), got %d", frame.Len())
	}
	if frame.Rows[0].Values[2] != `Says the "Annies List" group` {
		t.Errorf("content = %q", frame.Rows[0].Values[2])
	}
	if frame.ColumnIndex("content") != 2 {
		t.Errorf("content index = %d", frame.ColumnIndex("content"))
	}
}

func TestOpenJSONLInfersHeader(t *testing.T) {
	path := writeFile(t, "docs.jsonl", `{"url":"https://a.example","text":"first","score":3}
not json at all

{"url":"https://b.example","text":null,"score":true,"source_cats":["x"]}
`)

	src, err := OpenJSONL(path, nil)
	if err != nil {
		t.Fatalf("OpenJSONL: %v", err)
	}
	defer src.Close()

	if !reflect.DeepEqual(src.Header(), []string{"score", "text", "url"}) {
		t.Errorf("header = %v", src.Header())
	}

	rows, err := src.Next(0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := [][]string{
		{"3", "first", "https://a.example"},
		{"", "", ""},
		{"true", "", "https://b.example"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestOpenJSONLExplicitColumns(t *testing.T) {
	path := writeFile(t, "docs.jsonl", `{"title":"T","text":"body","source_cats":["a"]}`+"\n")

	src, err := OpenJSONL(path, []string{"text", "source_cats", "missing"})
	if err != nil {
		t.Fatalf("OpenJSONL: %v", err)
	}
	defer src.Close()

	rows, err := src.Next(10)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]string{{"body", "", ""}}) {
		t.Errorf("rows = %v", rows)
	}
	if _, err := src.Next(10); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestOpenJSONLNoValidItems(t *testing.T) {
	path := writeFile(t, "bad.jsonl", "nope\n{broken\n")
	if _, err := OpenJSONL(path, nil); err == nil {
		t.Error("file without a valid object should fail when inferring the header")
	}
}
