package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"sort"

	"github.com/cognicore/newsprep/pkg/newsprep/internalerr"
)

const maxJSONLLine = 64 << 20

type jsonlSource struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	header  []string
	line    int
	pending []string
}

// OpenJSONL opens a file with one JSON object per line. When columns is
// empty the header is the sorted key set of the first valid object.
//
// Strings are kept as-is, numbers and booleans become their literal text,
// and null, objects and arrays become empty cells. A malformed line yields
// an empty row so row positions stay aligned.
func OpenJSONL(path string, columns []string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", internalerr.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxJSONLLine)
	src := &jsonlSource{path: path, file: f, scanner: sc, header: columns}

	if len(src.header) == 0 {
		obj, err := src.firstObject()
		if err != nil {
			f.Close()
			return nil, err
		}
		for k := range obj {
			src.header = append(src.header, k)
		}
		sort.Strings(src.header)
		src.pending = src.rowFrom(obj)
	}
	return src, nil
}

// firstObject scans to the first parseable line.
func (s *jsonlSource) firstObject() (map[string]json.RawMessage, error) {
	for s.scanner.Scan() {
		s.line++
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(line, &obj); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", s.line, s.path, err)
			continue
		}
		return obj, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return nil, fmt.Errorf("no valid items found in %s", s.path)
}

func (s *jsonlSource) Header() []string {
	return s.header
}

func (s *jsonlSource) Next(n int) ([][]string, error) {
	var rows [][]string
	if s.pending != nil {
		rows = append(rows, s.pending)
		s.pending = nil
	}
	for (n <= 0 || len(rows) < n) && s.scanner.Scan() {
		s.line++
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(line, &obj); err != nil {
			log.Printf("Warning: malformed JSON at line %d in %s, using empty row: %v", s.line, s.path, err)
			obj = nil
		}
		rows = append(rows, s.rowFrom(obj))
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, io.EOF
	}
	return rows, nil
}

func (s *jsonlSource) Close() error {
	return s.file.Close()
}

func (s *jsonlSource) rowFrom(obj map[string]json.RawMessage) []string {
	row := make([]string, len(s.header))
	for i, col := range s.header {
		row[i] = cellFromJSON(obj[col])
	}
	return row
}

func cellFromJSON(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	}
	return string(raw)
}
