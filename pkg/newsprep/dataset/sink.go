package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Sink receives processed chunks in order.
type Sink interface {
	// WriteChunk appends every row of f. The first call also writes the
	// header.
	WriteChunk(f *Frame) error
	Close() error
}

// WriteOptions configures a CSV sink.
type WriteOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma      rune
	ListFormat ListFormat
}

// CSVSink appends processed chunks to a delimited-text file. Each chunk is
// encoded in memory and written with a single write followed by fsync, so
// the file only ever holds whole chunks.
type CSVSink struct {
	path   string
	file   *os.File
	opts   WriteOptions
	header []string
}

// CreateCSV creates or truncates path, creating parent directories.
func CreateCSV(path string, opts WriteOptions) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if opts.ListFormat == "" {
		opts.ListFormat = ListJSON
	}
	return &CSVSink{path: path, file: f, opts: opts}, nil
}

// Path returns the file being written.
func (s *CSVSink) Path() string {
	return s.path
}

func (s *CSVSink) WriteChunk(f *Frame) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if s.opts.Comma != 0 {
		w.Comma = s.opts.Comma
	}

	header := f.OutputHeader()
	if s.header == nil {
		if err := w.Write(header); err != nil {
			return err
		}
	} else if !slices.Equal(s.header, header) {
		return fmt.Errorf("write %s: chunk header %v does not match %v", s.path, header, s.header)
	}

	for _, row := range f.Rows {
		if err := w.Write(EncodeRow(f.Header, row, s.opts.ListFormat)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if _, err := s.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", s.path, err)
	}
	if s.header == nil {
		s.header = header
	}
	return nil
}

func (s *CSVSink) Close() error {
	return s.file.Close()
}
