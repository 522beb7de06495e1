package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/newsprep/pkg/newsprep"
	"github.com/cognicore/newsprep/pkg/newsprep/config"
	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

func TestRunPrintsStats(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "news.csv")
	csv := "id,content\n1,The runners were running fast\n2,A runner runs 5 miles\n"
	if err := os.WriteFile(in, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "news_processed.csv")
	if _, err := newsprep.New(newsprep.Options{}).Process(context.Background(), &config.Job{
		Input:  in,
		Output: out,
		Column: "content",
	}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	var buf bytes.Buffer
	if err := run(out, "content", &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 || !strings.HasPrefix(lines[0], "Vocabulary Size Raw: ") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[3], "Stopword Reduction Rate: ") || !strings.HasSuffix(lines[3], "%") {
		t.Errorf("reduction line = %q", lines[3])
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.csv")
	if err := os.WriteFile(raw, []byte("id,content\n1,hello world\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := run("", "content", &buf); err == nil {
		t.Error("missing --data should fail")
	}
	if err := run(filepath.Join(dir, "nope.csv"), "content", &buf); !errors.Is(err, internalerr.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
	if err := run(raw, "content", &buf); !errors.Is(err, internalerr.ErrNotProcessed) {
		t.Errorf("expected ErrNotProcessed, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be printed on error, got %q", buf.String())
	}
}
